package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/config"
	"github.com/rustyeddy/tradelog/internal/id"
	"github.com/rustyeddy/tradelog/internal/source"
	"github.com/rustyeddy/tradelog/journal"
)

var buildCmd = &cobra.Command{
	Use:   "build <log-file|->",
	Short: "Build a trading journal from a terminal log",
	Long: `Read a terminal log, rebuild its trading journal and write it to the
configured sinks. Use "-" to read the log from standard input. Files ending
in .xz or .gz are decompressed on the fly.

The CSV file defaults to journal_<log name>.csv. With --db, or a journal type
of sqlite or both, the run is also recorded in the SQLite store.

Examples:
  tradelog build 20240101.log
  tradelog build --csv january.csv logs/20240101.log.xz
  tradelog build --db journal.sqlite --org 20240101.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var (
	buildCSVFile string
	buildDBPath  string
	buildOrg     bool
	buildQuiet   bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildCSVFile, "csv", "", "CSV output file (default journal_<log name>.csv)")
	buildCmd.Flags().StringVarP(&buildDBPath, "db", "d", "", "record the run in this SQLite journal DB")
	buildCmd.Flags().BoolVar(&buildOrg, "org", false, "print an Org-mode run report")
	buildCmd.Flags().BoolVarP(&buildQuiet, "quiet", "q", false, "do not print advisories")
}

// process is swapped out by tests.
var process = journal.Process

func runBuild(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	data, name, err := source.Read(path, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	res, err := process(data, log)
	if err != nil {
		if errors.Is(err, journal.ErrDecode) {
			log.Error().Str("source", name).Msg("log is not valid UTF-8")
		}
		return err
	}

	logAdvisories(log, res.Advisories)
	if res.Failed() {
		return fmt.Errorf("build %s: journal could not be built", name)
	}

	run := journal.Run{
		ID:        id.New(),
		Source:    name,
		CreatedAt: time.Now(),
		Result:    res,
	}

	jc := sinkConfig(cfg.Journal, cmd)
	sinks, err := openSinks(jc, name)
	if err != nil {
		return err
	}
	if err := sinks.RecordRun(cmd.Context(), run); err != nil {
		_ = sinks.Close()
		return fmt.Errorf("record run: %w", err)
	}
	if err := sinks.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.Report.Advisories && !buildQuiet {
		printAdvisories(out, res.Advisories)
	}
	if cfg.Report.Org || buildOrg {
		if err := journal.WriteRunOrg(out, run); err != nil {
			return fmt.Errorf("org report: %w", err)
		}
	}
	printSummary(out, run, jc, name)
	return nil
}

// sinkConfig applies the build flags on top of the configured journal.
// Naming a CSV file or DB path switches that sink on.
func sinkConfig(jc config.JournalConfig, cmd *cobra.Command) config.JournalConfig {
	if cmd.Flags().Changed("csv") {
		jc.CSVFile = buildCSVFile
		if !jc.WantsCSV() {
			jc.Type = config.JournalBoth
		}
	}
	if cmd.Flags().Changed("db") {
		jc.DBPath = buildDBPath
		if !jc.WantsSQLite() {
			jc.Type = config.JournalBoth
		}
	}
	return jc
}

func csvPath(jc config.JournalConfig, name string) string {
	if jc.CSVFile != "" {
		return jc.CSVFile
	}
	return source.CSVName(name)
}

func openSinks(jc config.JournalConfig, name string) (journal.MultiSink, error) {
	var sinks journal.MultiSink
	if jc.WantsCSV() {
		j, err := journal.NewCSV(csvPath(jc, name))
		if err != nil {
			return nil, fmt.Errorf("create csv journal: %w", err)
		}
		sinks = append(sinks, j)
	}
	if jc.WantsSQLite() {
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("open db: %w", err)
		}
		sinks = append(sinks, j)
	}
	return sinks, nil
}

func logAdvisories(l zerolog.Logger, advs []journal.Advisory) {
	for _, a := range advs {
		var ev *zerolog.Event
		switch a.Severity {
		case journal.SeverityError:
			ev = l.Error()
		case journal.SeverityWarning:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev = ev.Int("line", a.Line).Str("at", a.Timestamp)
		if len(a.OrderIDs) > 0 {
			ev = ev.Ints64("orders", a.OrderIDs)
		}
		if a.Delta != nil {
			ev = ev.Float64("delta", *a.Delta)
		}
		ev.Msg(a.Message)
	}
}

func printAdvisories(w io.Writer, advs []journal.Advisory) {
	if len(advs) == 0 {
		return
	}
	fmt.Fprintf(w, "Advisories (%d):\n", len(advs))
	for _, a := range advs {
		fmt.Fprintf(w, "  [%s] %s\n", a.Severity, a.Message)
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, run journal.Run, jc config.JournalConfig, name string) {
	res := run.Result
	if res.Table.Empty() {
		fmt.Fprintf(w, "No journal records found in %s\n", name)
	} else {
		fmt.Fprintf(w, "✓ Built journal from %s\n", name)
	}
	if res.AccountID != "" {
		fmt.Fprintf(w, "  Account: %s\n", res.AccountID)
	}
	fmt.Fprintf(w, "  Lines: %d (%d skipped)\n", res.Stats.Lines, res.Stats.Skipped())
	fmt.Fprintf(w, "  Records: %d (%d closes)\n", res.Table.Len(), len(res.Table.Closes()))
	fmt.Fprintf(w, "  Net P/L: %.2f\n", res.Table.TotalPL())
	if res.FinalBalance != nil {
		fmt.Fprintf(w, "  Final balance: %.2f\n", *res.FinalBalance)
	}
	if jc.WantsCSV() {
		fmt.Fprintf(w, "  CSV: %s\n", csvPath(jc, name))
	}
	if jc.WantsSQLite() {
		fmt.Fprintf(w, "  Run: %s (%s)\n", run.ID, jc.DBPath)
	}
}
