package union

// Merge attaches membership data from roster to each detail. The result has
// one Record per detail in the same order; MemberCount is nil for locals the
// roster does not contain.
func Merge(details []Detail, roster Roster) []Record {
	records := make([]Record, 0, len(details))
	for _, d := range details {
		rec := Record{Detail: d}
		if m, ok := roster[NormalizeLocalID(d.LocalID)]; ok {
			members := m.Members
			rec.MemberCount = &members
			rec.Union = m.Union
			rec.UnitName = m.UnitName
			rec.Location = m.Location
			rec.UnionFactsURL = m.URL
		}
		records = append(records, rec)
	}
	return records
}

// Matched returns how many records carry a member count
func Matched(records []Record) int {
	n := 0
	for _, r := range records {
		if r.MemberCount != nil {
			n++
		}
	}
	return n
}
