package pipeline

import (
	"context"
	"time"

	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/metrics"
	"github.com/pfrederiksen/ibew-locals/internal/union"
	"golang.org/x/sync/errgroup"
)

// Record stages reported to metrics
const (
	StageLocals   = "locals"
	StageDegraded = "degraded"
	StageRoster   = "roster"
	StageMatched  = "matched"
)

// Directory lists locals by state and fetches their details
type Directory interface {
	Locals(ctx context.Context, states []string) ([]union.Summary, error)
	Details(ctx context.Context, summaries []union.Summary) []union.Detail
}

// Membership fetches the member count roster
type Membership interface {
	FetchRoster(ctx context.Context) (union.Roster, error)
}

// Stats summarises a run
type Stats struct {
	States   []string      `json:"states"`
	Locals   int           `json:"locals"`
	Degraded int           `json:"degraded"`
	Roster   int           `json:"roster"`
	Matched  int           `json:"matched"`
	Duration time.Duration `json:"duration_ns"`
}

// Result is the merged output of a run
type Result struct {
	Records []union.Record
	Stats   Stats
}

// Pipeline wires the two sources together
type Pipeline struct {
	directory  Directory
	membership Membership
	metrics    *metrics.Recorder
}

// New creates a Pipeline. rec may be nil.
func New(directory Directory, membership Membership, rec *metrics.Recorder) *Pipeline {
	return &Pipeline{
		directory:  directory,
		membership: membership,
		metrics:    rec,
	}
}

// Run collects and merges locals for states. Any fatal branch error is
// returned and no partial result is produced.
func (p *Pipeline) Run(ctx context.Context, states []string) (Result, error) {
	start := time.Now()

	var (
		details []union.Detail
		roster  union.Roster
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := p.membership.FetchRoster(gctx)
		if err != nil {
			return err
		}
		roster = r
		return nil
	})

	g.Go(func() error {
		summaries, err := p.directory.Locals(gctx, states)
		if err != nil {
			return err
		}
		details = p.directory.Details(gctx, summaries)
		// Details degrades rather than fails, so surface cancellation here
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Collection failed", logger.Fields{"states": states}, err)
		return Result{}, err
	}

	records := union.Merge(details, roster)

	stats := Stats{
		States:   states,
		Locals:   len(records),
		Degraded: countDegraded(details),
		Roster:   len(roster),
		Matched:  union.Matched(records),
		Duration: time.Since(start),
	}

	p.metrics.SetRecords(StageLocals, stats.Locals)
	p.metrics.SetRecords(StageDegraded, stats.Degraded)
	p.metrics.SetRecords(StageRoster, stats.Roster)
	p.metrics.SetRecords(StageMatched, stats.Matched)

	logger.Info("Merged locals", logger.Fields{
		"locals":   stats.Locals,
		"matched":  stats.Matched,
		"degraded": stats.Degraded,
		"duration": stats.Duration.String(),
	})

	return Result{Records: records, Stats: stats}, nil
}

func countDegraded(details []union.Detail) int {
	n := 0
	for _, d := range details {
		if d.Degraded {
			n++
		}
	}
	return n
}
