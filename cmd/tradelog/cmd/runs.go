package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/journal"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journal runs recorded in the SQLite store",
	Long: `List every build recorded in the SQLite journal DB, oldest first.

Examples:
  tradelog runs
  tradelog runs --db journal.sqlite`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the journal of a recorded run",
	Long: `Print a recorded run: its summary, advisories and journal rows as CSV.
With --org the closes are printed as Org-mode blocks instead.

Examples:
  tradelog show 01HV5Z3Q1J8K4M2N6P7R9S0T1V
  tradelog show --org 01HV5Z3Q1J8K4M2N6P7R9S0T1V`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	storeDBPath string
	showOrg     bool
)

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)

	for _, c := range []*cobra.Command{runsCmd, showCmd} {
		c.Flags().StringVarP(&storeDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
	}
	showCmd.Flags().BoolVar(&showOrg, "org", false, "print closes as Org-mode blocks")
}

func openStore() (*journal.SQLite, error) {
	path := storeDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal DB configured")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	printRuns(out, runs)
	return nil
}

func printRuns(w io.Writer, runs []journal.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSOURCE\tACCOUNT\tRECORDS\tADVISORIES\tNET P/L")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Source, r.AccountID,
			r.Records, r.Advisories, r.TotalPL)
	}
	_ = tw.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	runID := args[0]

	rs, err := j.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	recs, err := j.ListRecords(ctx, runID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	advs, err := j.ListAdvisories(ctx, runID)
	if err != nil {
		return fmt.Errorf("list advisories: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", rs.ID)
	fmt.Fprintf(out, "  Source: %s\n", rs.Source)
	if rs.AccountID != "" {
		fmt.Fprintf(out, "  Account: %s\n", rs.AccountID)
	}
	fmt.Fprintf(out, "  Created: %s\n", rs.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Lines: %d, events: %d, records: %d\n", rs.Lines, rs.Events, rs.Records)
	fmt.Fprintf(out, "  Net P/L: %.2f\n", rs.TotalPL)
	if rs.FinalBalance != nil {
		fmt.Fprintf(out, "  Final balance: %.2f\n", *rs.FinalBalance)
	}
	fmt.Fprintln(out)
	printAdvisories(out, advs)

	if showOrg {
		fmt.Fprint(out, journal.FormatClosesOrg(recs))
		return nil
	}
	return journal.WriteCSV(out, journal.NewTable(recs))
}
