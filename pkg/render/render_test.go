package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yumyai/sangercheck/pkg/align"
	"github.com/yumyai/sangercheck/pkg/model"
)

func sampleOutcomes() []model.Outcome {
	return []model.Outcome{
		{
			Pair:     model.Pair{Read: "data/processed/r1.fasta", Reference: "data/processed/ref1.fasta"},
			ReadLen:  4,
			RefLen:   4,
			Result:   &align.Result{AlignedQuery: "ACGT", AlignedReference: "ACCT", Score: 5, QueryEnd: 4, RefEnd: 4},
			Identity: 75,
		},
		{
			Pair:    model.Pair{Read: "data/processed/r2.fasta", Reference: "data/processed/ref2.fasta"},
			Skipped: &model.MissingInputError{Path: "data/processed/r2.fasta", Role: model.RoleRead},
		},
		{
			Pair: model.Pair{Read: "data/processed/r3.fasta", Reference: "data/processed/ref3.fasta"},
			Err:  errors.New("boom"),
		},
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, ReportData{Outcomes: sampleOutcomes()}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "Comparing AB1-derived reads to reference FASTA sequences\n" +
		"\n" +
		"Sample: r1.fasta vs ref1.fasta\n" +
		"  Read length: 4 bp\n" +
		"  Ref  length: 4 bp\n" +
		"  Alignment score: 5.0\n" +
		"  Percent identity (aligned region): 75.00%\n" +
		"\n" +
		"[r2.fasta] MISSING – skipping\n" +
		"[r3.fasta] ERROR – boom\n"

	if got := buf.String(); got != want {
		t.Errorf("report mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderReportShowAlignment(t *testing.T) {
	var buf bytes.Buffer
	data := ReportData{Outcomes: sampleOutcomes()[:1], ShowAlignment: true}
	if err := RenderReport(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "1 ACGT\n  ||.|\n1 ACCT\n") {
		t.Errorf("alignment block missing:\n%s", buf.String())
	}
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, ReportData{Outcomes: sampleOutcomes(), Scheme: align.DefaultScheme()}); err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded struct {
		Scheme   align.Scheme `json:"scheme"`
		NPolicy  string       `json:"n_policy"`
		Outcomes []struct {
			Status   string  `json:"status"`
			Message  string  `json:"message"`
			Identity float64 `json:"percent_identity"`
			Result   *struct {
				Score float64 `json:"score"`
			} `json:"alignment"`
		} `json:"outcomes"`
		Summary model.Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}

	if decoded.Scheme.GapExtend != -0.5 || decoded.NPolicy != "symbol" {
		t.Errorf("scheme = %+v %s", decoded.Scheme, decoded.NPolicy)
	}
	if len(decoded.Outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(decoded.Outcomes))
	}
	if decoded.Outcomes[0].Status != StatusAligned || decoded.Outcomes[0].Result.Score != 5 {
		t.Errorf("outcome 0 = %+v", decoded.Outcomes[0])
	}
	if decoded.Outcomes[1].Status != StatusSkipped || decoded.Outcomes[1].Result != nil {
		t.Errorf("outcome 1 = %+v", decoded.Outcomes[1])
	}
	if decoded.Outcomes[2].Status != StatusError || decoded.Outcomes[2].Message != "boom" {
		t.Errorf("outcome 2 = %+v", decoded.Outcomes[2])
	}
	if decoded.Summary != (model.Summary{Aligned: 1, Skipped: 1, Failed: 1}) {
		t.Errorf("summary = %+v", decoded.Summary)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, "xml", ReportData{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderJobPage(t *testing.T) {
	var buf bytes.Buffer
	err := RenderJobPage(&buf, JobPageData{
		JobID:                  "abc",
		Status:                 "running",
		ShouldRefresh:          true,
		RefreshIntervalSeconds: 3,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "3000") || !strings.Contains(out, "still running") {
		t.Errorf("unexpected page:\n%s", out)
	}

	buf.Reset()
	if err := RenderJobPage(&buf, JobPageData{JobID: "abc", Status: "completed", Report: "<b>x</b>"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<b>x</b>") {
		t.Errorf("report text must be escaped")
	}
}
