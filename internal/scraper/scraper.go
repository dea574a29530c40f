package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/metrics"
	"github.com/pfrederiksen/ibew-locals/internal/union"
	"golang.org/x/net/html/charset"
)

const (
	MembershipURL = "https://unionfacts.com/locals/International_Brotherhood_of_Electrical_Workers"
	UserAgent     = "ibew-locals/1.0 (github.com/pfrederiksen/ibew-locals)"
	Timeout       = 10 * time.Second
)

// Matches the local number in designations like "Local 3" or "IBEW Local 1245"
var localPattern = regexp.MustCompile(`\bLocal\s+(\d+)\b`)

// Options configures a Scraper. Zero values fall back to the package defaults.
type Options struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Recorder
}

// Scraper handles fetching and parsing the UnionFacts membership listing
type Scraper struct {
	client  *resty.Client
	url     string
	metrics *metrics.Recorder
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	if opts.URL == "" {
		opts.URL = MembershipURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Scraper{
		client:  client,
		url:     opts.URL,
		metrics: opts.Metrics,
	}
}

// URL returns the page the scraper reads
func (s *Scraper) URL() string {
	return s.url
}

// FetchRoster fetches the listing page and returns member counts keyed by local id.
// Any fetch or parse failure is returned; there is no partial roster.
func (s *Scraper) FetchRoster(ctx context.Context) (union.Roster, error) {
	start := time.Now()
	roster, err := s.fetchRoster(ctx)
	s.metrics.ObserveRequest(metrics.SourceMembership, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", s.url, err)
	}
	return roster, nil
}

func (s *Scraper) fetchRoster(ctx context.Context) (union.Roster, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	body, err := charset.NewReader(bytes.NewReader(resp.Body()), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}

	return s.parseRoster(body, s.url)
}

// parseRoster extracts numbered locals from the first listing table.
// Relative unit links are resolved against sourceURL.
func (s *Scraper) parseRoster(r io.Reader, sourceURL string) (union.Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find("div.tab-content table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("membership table not found")
	}

	base, _ := url.Parse(sourceURL)
	roster := union.Roster{}
	skipped := 0

	// Header rows use th cells and fall out on the cell count check
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		unionName := cellText(cells.Eq(0))
		matches := localPattern.FindStringSubmatch(unionName)
		if matches == nil {
			skipped++
			return
		}

		members, err := parseMembers(cellText(cells.Eq(3)))
		if err != nil {
			logger.Warn("Skipping membership row", logger.Fields{
				"union": unionName,
				"row":   i,
			}, err)
			return
		}

		roster.Add(union.Membership{
			LocalID:  matches[1],
			Members:  members,
			Union:    unionName,
			UnitName: cellText(cells.Eq(1)),
			Location: cellText(cells.Eq(2)),
			URL:      resolveLink(base, cells.Eq(0).Find("a").AttrOr("href", "")),
		})
	})

	logger.Info("Parsed membership roster", logger.Fields{
		"locals":  len(roster),
		"skipped": skipped,
		"url":     sourceURL,
	})

	return roster, nil
}

// cellText returns the cell text with runs of whitespace collapsed
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// parseMembers parses counts like "1,200"
func parseMembers(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid member count %q", s)
	}
	return n, nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
