package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/ibew-locals/internal/pipeline"
	"github.com/pfrederiksen/ibew-locals/internal/union"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// StateSummary holds per-state counts for the run summary
type StateSummary struct {
	State    string `json:"state"`
	Locals   int    `json:"locals"`
	Matched  int    `json:"matched"`
	Degraded int    `json:"degraded"`
	Members  int    `json:"members"`
}

// RunSummary contains data to be output after an export
type RunSummary struct {
	FinishedAt time.Time      `json:"finished_at"`
	Output     string         `json:"output"`
	Rows       int            `json:"rows"`
	States     []string       `json:"states"`
	Locals     int            `json:"locals"`
	Matched    int            `json:"matched"`
	Unmatched  int            `json:"unmatched"`
	Degraded   int            `json:"degraded"`
	Roster     int            `json:"roster"`
	Duration   string         `json:"duration"`
	ByState    []StateSummary `json:"by_state"`
}

// NewRunSummary builds the summary for a finished run
func NewRunSummary(result pipeline.Result, output string, rows int) *RunSummary {
	stats := result.Stats
	return &RunSummary{
		FinishedAt: time.Now().UTC(),
		Output:     output,
		Rows:       rows,
		States:     stats.States,
		Locals:     stats.Locals,
		Matched:    stats.Matched,
		Unmatched:  stats.Locals - stats.Matched,
		Degraded:   stats.Degraded,
		Roster:     stats.Roster,
		Duration:   stats.Duration.Round(time.Millisecond).String(),
		ByState:    summariseByState(result.Records),
	}
}

// summariseByState groups records by their directory state, sorted by state code
func summariseByState(records []union.Record) []StateSummary {
	byState := make(map[string]*StateSummary)
	for _, rec := range records {
		s, ok := byState[rec.State]
		if !ok {
			s = &StateSummary{State: rec.State}
			byState[rec.State] = s
		}
		s.Locals++
		if rec.MemberCount != nil {
			s.Matched++
			s.Members += *rec.MemberCount
		}
		if rec.Degraded {
			s.Degraded++
		}
	}

	states := make([]StateSummary, 0, len(byState))
	for _, s := range byState {
		states = append(states, *s)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].State < states[j].State
	})
	return states
}

// WriteOutput writes the summary in the specified format
func WriteOutput(w io.Writer, summary *RunSummary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeText(w, summary)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, summary *RunSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// writeText outputs the summary as a table followed by totals
func writeText(w io.Writer, summary *RunSummary) error {
	if summary.Locals == 0 {
		fmt.Fprintln(w, "No locals found.")
		fmt.Fprintf(w, "Wrote header only to %s\n", summary.Output)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"State", "Locals", "Matched", "Degraded", "Members"})

	members := 0
	for _, s := range summary.ByState {
		t.AppendRow(table.Row{s.State, s.Locals, s.Matched, s.Degraded, s.Members})
		members += s.Members
	}
	t.AppendFooter(table.Row{"Total", summary.Locals, summary.Matched, summary.Degraded, members})
	t.Render()

	fmt.Fprintf(w, "\nWrote %d rows for %d locals to %s in %s\n", summary.Rows, summary.Locals, summary.Output, summary.Duration)
	if summary.Unmatched > 0 {
		fmt.Fprintf(w, "%d locals had no UnionFacts member count\n", summary.Unmatched)
	}
	if summary.Degraded > 0 {
		fmt.Fprintf(w, "%d locals are missing classifications or counties (see log)\n", summary.Degraded)
	}
	return nil
}
