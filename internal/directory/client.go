package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/metrics"
	"github.com/pfrederiksen/ibew-locals/internal/union"
)

const (
	BaseURL        = "https://ibew.org"
	DataPath       = "/ludSearch/DataIO.ashx"
	UserAgent      = "ibew-locals/1.0 (github.com/pfrederiksen/ibew-locals)"
	Timeout        = 10 * time.Second
	DefaultWorkers = 10
	MaxWorkers     = 10
)

// Directory API actions
const (
	actionLocalsByState = "list-locals-by-state"
	actionTradeClasses  = "list-local-trade-classes"
	actionCounties      = "list-local-counties"
)

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Workers   int
	Metrics   *metrics.Recorder
}

// Client queries the directory API
type Client struct {
	http    *resty.Client
	workers int
	metrics *metrics.Recorder
}

// New creates a new directory Client
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:    client,
		workers: opts.Workers,
		metrics: opts.Metrics,
	}
}

// localRow is one entry of the list-locals-by-state response
type localRow struct {
	ID          text `json:"ID"`
	LU          text `json:"LU"`
	CharterCity text `json:"CharterCity"`
	State       text `json:"State"`
	VPDistrict  text `json:"VP_District"`
}

// Locals returns the locals chartered in states, de-duplicated by local number.
// States are queried in order and the first listing of a local wins. Any failed
// state query fails the whole call.
func (c *Client) Locals(ctx context.Context, states []string) ([]union.Summary, error) {
	var all []union.Summary
	for _, state := range states {
		summaries, err := c.localsByState(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("querying locals for state %s: %w", state, err)
		}
		logger.Info("Fetched locals for state", logger.Fields{
			"state": state,
			"count": len(summaries),
		})
		all = append(all, summaries...)
	}

	unique := union.Dedupe(all)
	if dropped := len(all) - len(unique); dropped > 0 {
		logger.Debug("Dropped duplicate locals", logger.Fields{"duplicates": dropped})
	}
	return unique, nil
}

func (c *Client) localsByState(ctx context.Context, state string) ([]union.Summary, error) {
	var rows []localRow
	err := c.get(ctx, map[string]string{
		"action": actionLocalsByState,
		"state":  state,
		"filter": "all",
	}, &rows)
	if err != nil {
		return nil, err
	}

	summaries := make([]union.Summary, 0, len(rows))
	for _, row := range rows {
		localID := union.NormalizeLocalID(row.LU.String())
		if localID == "" {
			logger.Warn("Skipping directory row without local number", logger.Fields{
				"state": state,
				"id":    row.ID.String(),
			}, nil)
			continue
		}

		rowState := strings.ToUpper(row.State.String())
		if rowState == "" {
			rowState = state
		}

		summaries = append(summaries, union.Summary{
			ID:         row.ID.String(),
			LocalID:    localID,
			City:       cleanCity(row.CharterCity.String()),
			State:      rowState,
			VPDistrict: row.VPDistrict.String(),
		})
	}
	return summaries, nil
}

// get issues one DataIO request and decodes the JSON body into out.
// An empty body leaves out untouched.
func (c *Client) get(ctx context.Context, params map[string]string, out interface{}) error {
	start := time.Now()
	err := c.doGet(ctx, params, out)
	c.metrics.ObserveRequest(metrics.SourceDirectory, time.Since(start), err)
	return err
}

func (c *Client) doGet(ctx context.Context, params map[string]string, out interface{}) error {
	logger.Debug("Directory request", logger.Fields{"params": params})

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(DataPath)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", params["action"], err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s returned status %d", params["action"], resp.StatusCode())
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", params["action"], err)
	}
	return nil
}

// cleanCity drops the directory's "---" placeholder for locals without a charter city
func cleanCity(city string) string {
	city = strings.TrimSpace(city)
	if strings.Trim(city, "-") == "" {
		return ""
	}
	return city
}
