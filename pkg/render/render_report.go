package render

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/yumyai/sangercheck/pkg/align"
	"github.com/yumyai/sangercheck/pkg/model"
)

var report_template *template.Template

// ReportData is everything the report needs for one batch.
type ReportData struct {
	Outcomes      []model.Outcome
	Scheme        align.Scheme
	ShowAlignment bool
}

func init() {
	reportTmpl := `Comparing AB1-derived reads to reference FASTA sequences

{{range .Outcomes -}}
{{if .Skipped -}}
[{{base .Skipped.Path}}] MISSING – skipping
{{else if .Err -}}
[{{base .Pair.Read}}] ERROR – {{.Err}}
{{else -}}
Sample: {{base .Pair.Read}} vs {{base .Pair.Reference}}
  Read length: {{.ReadLen}} bp
  Ref  length: {{.RefLen}} bp
  Alignment score: {{printf "%.1f" .Result.Score}}
  Percent identity (aligned region): {{printf "%.2f" .Identity}}%
{{if $.ShowAlignment}}
{{.Result.Format}}{{end}}
{{end -}}
{{end -}}
`

	report_template = template.New("report").Funcs(template.FuncMap{
		"base": filepath.Base,
	})
	report_template = template.Must(report_template.Parse(reportTmpl))
}

// RenderReport writes the plain-text comparison report.
func RenderReport(w io.Writer, data ReportData) error {
	return report_template.Execute(w, data)
}

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Render dispatches on format.
func Render(w io.Writer, format string, data ReportData) error {
	switch format {
	case "", FormatText:
		return RenderReport(w, data)
	case FormatJSON:
		return RenderReportJSON(w, data)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// OutcomeJSON is an Outcome with its status spelled out.
type OutcomeJSON struct {
	model.Outcome
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type jsonReport struct {
	Scheme   align.Scheme  `json:"scheme"`
	NPolicy  string        `json:"n_policy"`
	Outcomes []OutcomeJSON `json:"outcomes"`
	Summary  model.Summary `json:"summary"`
}

// Outcome status values in JSON output.
const (
	StatusAligned = "aligned"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// NewJSONOutcomes flattens outcomes for JSON, carrying skip and error text.
func NewJSONOutcomes(outcomes []model.Outcome) []OutcomeJSON {
	out := make([]OutcomeJSON, len(outcomes))
	for i, o := range outcomes {
		jo := OutcomeJSON{Outcome: o, Status: StatusAligned}
		switch {
		case o.Skipped != nil:
			jo.Status = StatusSkipped
			jo.Message = o.Skipped.Error()
		case o.Err != nil:
			jo.Status = StatusError
			jo.Message = o.Err.Error()
		}
		out[i] = jo
	}
	return out
}

// RenderReportJSON writes the report as one indented JSON document.
func RenderReportJSON(w io.Writer, data ReportData) error {
	report := jsonReport{
		Scheme:   data.Scheme,
		NPolicy:  data.Scheme.NPolicy.String(),
		Outcomes: NewJSONOutcomes(data.Outcomes),
		Summary:  model.Summarize(data.Outcomes),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
