package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/ibew-locals/internal/pipeline"
	"github.com/pfrederiksen/ibew-locals/internal/union"
)

func sampleResult() pipeline.Result {
	members := func(n int) *int { return &n }
	return pipeline.Result{
		Records: []union.Record{
			{Detail: union.Detail{Summary: union.Summary{LocalID: "3", State: "NY"}}, MemberCount: members(1200)},
			{Detail: union.Detail{Summary: union.Summary{LocalID: "25", State: "NY"}, Degraded: true}, MemberCount: members(900)},
			{Detail: union.Detail{Summary: union.Summary{LocalID: "11", State: "CA"}}},
		},
		Stats: pipeline.Stats{
			States:   []string{"NY", "CA"},
			Locals:   3,
			Degraded: 1,
			Roster:   40,
			Matched:  2,
			Duration: 1500 * time.Millisecond,
		},
	}
}

func TestNewRunSummary(t *testing.T) {
	summary := NewRunSummary(sampleResult(), "out.xlsx", 4)

	if summary.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", summary.Unmatched)
	}
	if summary.Duration != "1.5s" {
		t.Errorf("Duration = %q, want 1.5s", summary.Duration)
	}
	if len(summary.ByState) != 2 {
		t.Fatalf("ByState has %d entries, want 2", len(summary.ByState))
	}

	// Sorted by state code
	ca, ny := summary.ByState[0], summary.ByState[1]
	if ca.State != "CA" || ca.Locals != 1 || ca.Matched != 0 || ca.Members != 0 {
		t.Errorf("CA summary = %+v", ca)
	}
	if ny.State != "NY" || ny.Locals != 2 || ny.Matched != 2 || ny.Degraded != 1 || ny.Members != 2100 {
		t.Errorf("NY summary = %+v", ny)
	}
}

func TestWriteOutput(t *testing.T) {
	tests := []struct {
		name         string
		format       OutputFormat
		result       pipeline.Result
		wantErr      bool
		wantContains []string
	}{
		{
			name:   "text table",
			format: FormatText,
			result: sampleResult(),
			wantContains: []string{
				"STATE", "NY", "CA", "TOTAL", "2100",
				"Wrote 4 rows for 3 locals to out.xlsx in 1.5s",
				"1 locals had no UnionFacts member count",
				"1 locals are missing classifications or counties",
			},
		},
		{
			name:         "text no locals",
			format:       FormatText,
			result:       pipeline.Result{Stats: pipeline.Stats{States: []string{"WY"}}},
			wantContains: []string{"No locals found."},
		},
		{
			name:         "json",
			format:       FormatJSON,
			result:       sampleResult(),
			wantContains: []string{`"output": "out.xlsx"`, `"rows": 4`, `"unmatched": 1`, `"state": "CA"`},
		},
		{
			name:    "unknown format",
			format:  OutputFormat("csv"),
			result:  sampleResult(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteOutput(&buf, NewRunSummary(tt.result, "out.xlsx", 4), tt.format)

			if (err != nil) != tt.wantErr {
				t.Fatalf("WriteOutput() error = %v, wantErr %v", err, tt.wantErr)
			}

			output := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, output)
				}
			}
		})
	}
}

func TestWriteOutput_JSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, NewRunSummary(sampleResult(), "out.xlsx", 4), FormatJSON); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}

	var got RunSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Locals != 3 || got.Matched != 2 || len(got.ByState) != 2 {
		t.Errorf("decoded summary = %+v", got)
	}
}
