package directory

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// text decodes a JSON string or number into a trimmed string.
// The directory returns most numeric fields quoted but not all of them.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = text(n.String())
	return nil
}

func (t text) String() string {
	return string(t)
}

// parseCount parses values like "219846" or "1,600,000". Empty is zero.
func parseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	f = math.Round(f)
	if f < float64(math.MinInt) || f >= float64(math.MaxInt) {
		return 0, fmt.Errorf("count %q out of range", s)
	}
	return int(f), nil
}

// parseDecimal parses values like "522.95", "1,024.5" or "75%". Empty is zero.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// finite rejects the NaN and Inf spellings ParseFloat accepts
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
