package journal

import (
	"io"
	"text/template"
	"time"
)

// RunReport is the data behind the Org run summary.
type RunReport struct {
	RunID     string
	Source    string
	AccountID string
	Created   time.Time

	First string
	Last  string

	Lines   int
	Events  int
	Skipped int
	Records int

	Opens      int
	Closes     int
	Attributed int
	Wins       int
	Losses     int
	NetPL      float64
	WinRate    float64

	FinalBalance  *float64
	PendingOrders []int64
	OpenPositions []int64
	Advisories    []Advisory
}

// NewRunReport derives the summary figures of a run.
func NewRunReport(run Run) RunReport {
	res := run.Result
	rep := RunReport{
		RunID:         run.ID,
		Source:        run.Source,
		AccountID:     res.AccountID,
		Created:       run.CreatedAt,
		Lines:         res.Stats.Lines,
		Events:        res.Stats.Events,
		Skipped:       res.Stats.Skipped(),
		Records:       res.Table.Len(),
		NetPL:         res.Table.TotalPL(),
		FinalBalance:  res.FinalBalance,
		PendingOrders: res.PendingOrders,
		OpenPositions: res.OpenPositions,
		Advisories:    res.Advisories,
	}
	if n := res.Table.Len(); n > 0 {
		rep.First = res.Table.Rows[0].Timestamp
		rep.Last = res.Table.Rows[n-1].Timestamp
	}

	for _, r := range res.Table.Rows {
		switch r.Action {
		case ActionOpen:
			rep.Opens++
		case ActionClose:
			rep.Closes++
			if r.PL == nil {
				continue
			}
			rep.Attributed++
			switch {
			case *r.PL > 0:
				rep.Wins++
			case *r.PL < 0:
				rep.Losses++
			}
		}
	}
	if rep.Attributed > 0 {
		rep.WinRate = float64(rep.Wins) / float64(rep.Attributed)
	}
	return rep
}

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"money": func(v *float64) string { return orUnknown(optMoney(v)) },
	"ids":   joinIDs,
}

var runOrg = template.Must(template.New("run").Funcs(reportFuncs).Parse(RunOrgTemplate))

// WriteRunOrg renders the run summary followed by one block per close.
func WriteRunOrg(w io.Writer, run Run) error {
	if err := runOrg.Execute(w, NewRunReport(run)); err != nil {
		return err
	}
	_, err := io.WriteString(w, FormatClosesOrg(run.Result.Table.Rows))
	return err
}

const RunOrgTemplate = `* JOURNAL: {{if .AccountID}}{{.AccountID}}{{else}}(account?){{end}} {{.Source}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:ACCOUNT:     {{if .AccountID}}{{.AccountID}}{{else}}(account?){{end}}
:SOURCE:      {{.Source}}
:FIRST:       {{if .First}}{{.First}}{{else}}(none){{end}}
:LAST:        {{if .Last}}{{.Last}}{{else}}(none){{end}}
:LINES:       {{.Lines}}
:EVENTS:      {{.Events}}
:RECORDS:     {{.Records}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:END_BAL:     {{money .FinalBalance}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Closes:           *{{.Closes}}* ({{.Attributed}} attributed)
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*

| Outcome | Count |
|---------+-------|
| Opens   | {{.Opens}} |
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Closes  | {{.Closes}} |
{{- if or .PendingOrders .OpenPositions }}

** Left Open
{{- if .PendingOrders }}
- Pending orders: {{ids .PendingOrders}}
{{- end }}
{{- if .OpenPositions }}
- Open positions: {{ids .OpenPositions}}
{{- end }}
{{- end }}
{{- if .Advisories }}

** Advisories
{{- range .Advisories }}
- [{{.Severity}}] {{.Message}}
{{- end }}
{{- end }}

`
