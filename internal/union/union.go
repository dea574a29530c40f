package union

import (
	"strings"
)

// Summary is a local union as listed by the directory state query
type Summary struct {
	ID         string `json:"id"`       // Directory record id, used for detail queries
	LocalID    string `json:"local_id"` // Local number, the join key
	City       string `json:"city"`
	State      string `json:"state"`
	VPDistrict string `json:"vp_district,omitempty"`
}

// County is one row of a local's county coverage table
type County struct {
	Name         string  `json:"name"`
	District     string  `json:"district,omitempty"`
	Population   int     `json:"population"`
	SqMiles      float64 `json:"sq_miles"`
	Percent      float64 `json:"percent"`
	Jurisdiction string  `json:"jurisdiction"`
	State        string  `json:"state,omitempty"`
}

// Detail is a Summary with classifications and county coverage attached
type Detail struct {
	Summary
	Classifications []string `json:"classifications"`
	Counties        []County `json:"counties"`
	Degraded        bool     `json:"degraded,omitempty"` // A detail call failed for this local
}

// Membership is a UnionFacts listing row for a numbered local
type Membership struct {
	LocalID  string `json:"local_id"`
	Members  int    `json:"members"`
	Union    string `json:"union"`
	UnitName string `json:"unit_name,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Roster maps a normalised local id to its membership row
type Roster map[string]Membership

// Add stores m under its normalised local id, replacing any earlier row
func (r Roster) Add(m Membership) {
	m.LocalID = NormalizeLocalID(m.LocalID)
	r[m.LocalID] = m
}

// Record is the merged export row for one local
type Record struct {
	Detail
	MemberCount   *int   `json:"member_count"` // nil when UnionFacts has no matching local
	Union         string `json:"union,omitempty"`
	UnitName      string `json:"unit_name,omitempty"`
	Location      string `json:"location,omitempty"`
	UnionFactsURL string `json:"unionfacts_url,omitempty"`
}

// NormalizeLocalID trims id and strips leading zeros from purely numeric ids
func NormalizeLocalID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return id
	}
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Dedupe drops summaries whose LocalID was already seen. The first occurrence
// wins, so callers control precedence through input order.
func Dedupe(summaries []Summary) []Summary {
	seen := make(map[string]bool, len(summaries))
	unique := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if seen[s.LocalID] {
			continue
		}
		seen[s.LocalID] = true
		unique = append(unique, s)
	}
	return unique
}

// AddClassification appends name unless it is empty or already present
func (d *Detail) AddClassification(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, existing := range d.Classifications {
		if existing == name {
			return
		}
	}
	d.Classifications = append(d.Classifications, name)
}
