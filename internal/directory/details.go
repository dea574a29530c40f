package directory

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/union"
	"golang.org/x/sync/errgroup"
)

type tradeClassRow struct {
	TradeClass text `json:"TradeClass"`
}

type countyRow struct {
	CountyName    text `json:"CountyName"`
	District      text `json:"District"`
	Population    text `json:"Population"`
	LandArea      text `json:"LandArea"`
	Percentage    text `json:"Percentage"`
	Jurisdiction  text `json:"jurisdiction"`
	StateProvince text `json:"StateProvince"`
}

// Details fetches classifications and counties for every summary on a pool of
// at most c.workers goroutines. The result has exactly one Detail per summary,
// in input order. Failed calls are logged and leave the record degraded.
func (c *Client) Details(ctx context.Context, summaries []union.Summary) []union.Detail {
	details := make([]union.Detail, len(summaries))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, s := range summaries {
		g.Go(func() error {
			// Each goroutine owns details[i]; the slice is read only after Wait.
			details[i] = c.detail(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	degraded := 0
	for _, d := range details {
		if d.Degraded {
			degraded++
		}
	}
	logger.Info("Fetched local details", logger.Fields{
		"count":    len(details),
		"degraded": degraded,
		"workers":  c.workers,
	})
	return details
}

func (c *Client) detail(ctx context.Context, s union.Summary) union.Detail {
	d := union.Detail{Summary: s}

	// The run is aborting; don't report the calls that would fail as a result
	if ctx.Err() != nil {
		d.Degraded = true
		return d
	}
	fields := logger.Fields{"local_id": s.LocalID, "id": s.ID}

	classes, err := c.Classifications(ctx, s.ID)
	if err != nil {
		d.Degraded = true
		c.detailFailed(ctx, "classifications", fields, err)
	}
	for _, name := range classes {
		d.AddClassification(name)
	}

	// Partial county lists are kept alongside the error
	counties, err := c.Counties(ctx, s.ID)
	if err != nil {
		d.Degraded = true
		c.detailFailed(ctx, "counties", fields, err)
	}
	d.Counties = counties

	return d
}

// detailFailed logs and counts a failed detail call unless ctx was cancelled
func (c *Client) detailFailed(ctx context.Context, call string, fields logger.Fields, err error) {
	if ctx.Err() != nil {
		return
	}
	c.metrics.DetailFailure(call)
	logger.Warn("Fetching "+call+" failed", fields, err)
}

// Classifications returns the trade classifications of the local with directory id
func (c *Client) Classifications(ctx context.Context, id string) ([]string, error) {
	var rows []tradeClassRow
	if err := c.get(ctx, map[string]string{
		"action":       actionTradeClasses,
		"LocalUnionID": id,
	}, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := row.TradeClass.String(); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Counties returns the county coverage table of the local with directory id.
// Rows with unparsable numbers are skipped with a warning; the remaining rows
// are returned together with an error naming how many were dropped.
func (c *Client) Counties(ctx context.Context, id string) ([]union.County, error) {
	var rows []countyRow
	if err := c.get(ctx, map[string]string{
		"action": actionCounties,
		"lu":     id,
	}, &rows); err != nil {
		return nil, err
	}

	counties := make([]union.County, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		county, err := row.county()
		if err != nil {
			skipped++
			logger.Warn("Skipping county row", logger.Fields{
				"id":     id,
				"county": row.CountyName.String(),
			}, err)
			continue
		}
		counties = append(counties, county)
	}

	if skipped > 0 {
		return counties, fmt.Errorf("skipped %d of %d county rows", skipped, len(rows))
	}
	return counties, nil
}

func (r countyRow) county() (union.County, error) {
	population, err := parseCount(r.Population.String())
	if err != nil {
		return union.County{}, fmt.Errorf("population: %w", err)
	}
	sqMiles, err := parseDecimal(r.LandArea.String())
	if err != nil {
		return union.County{}, fmt.Errorf("land area: %w", err)
	}
	percent, err := parseDecimal(r.Percentage.String())
	if err != nil {
		return union.County{}, fmt.Errorf("percentage: %w", err)
	}

	return union.County{
		Name:         r.CountyName.String(),
		District:     r.District.String(),
		Population:   population,
		SqMiles:      sqMiles,
		Percent:      percent,
		Jurisdiction: r.Jurisdiction.String(),
		State:        r.StateProvince.String(),
	}, nil
}
