package portfolio

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// Report is a Summary ready to be written out as an Org-mode note.
type Report struct {
	Summary
	Created time.Time
	Title   string
	Notes   []string
}

var reportFuncs = template.FuncMap{
	"money": func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"pct":   func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportOrgTemplate))

// WriteOrg renders the report to w.
func (r Report) WriteOrg(w io.Writer) error {
	if err := reportTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

const reportOrgTemplate = `* PORTFOLIO: {{if .Title}}{{.Title}}{{else}}snapshot{{end}}
:PROPERTIES:
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:POSITIONS:   {{len .Metrics}}
:TOTAL_VALUE: {{money .TotalValue}}
:TOTAL_COST:  {{money .TotalCost}}
:GAIN:        {{money .Gain}}
:GAIN_PCT:    {{pct .GainPercent}}
:CASH:        {{money .Cash}}
:NET_WORTH:   {{money .NetWorth}}
:END:

** Holdings
| Symbol | Category | Qty | Avg Cost | Price | Value | Gain % | Alloc % |
|--------+----------+-----+----------+-------+-------+--------+---------|
{{- range .Metrics}}
| {{.Symbol}} | {{.Category}} | {{.Quantity}} | {{money .AvgBuyPrice}} | {{money .CurrentPrice}} | {{money .TotalValue}} | {{pct .PercentDiff}} | {{pct .Percent}} |
{{- end}}
{{- if .Notes}}

** Notes
{{- range .Notes}}
- {{.}}
{{- end}}
{{- end}}
`
