package model

// Roster is the mutable arena of one matching run: the roster records in
// their fixed scan order plus the comparison projections derived from them.
// It is created at run start, mutated by the matcher, read by the score
// deriver and then discarded.
type Roster struct {
	records     []*RosterRecord
	names       []string
	identifiers []string
}

// NewRoster takes ownership of records and computes their projections.
func NewRoster(records []*RosterRecord) *Roster {
	r := &Roster{
		records:     records,
		names:       make([]string, len(records)),
		identifiers: make([]string, len(records)),
	}
	for i, rec := range records {
		r.names[i] = NormalizeName(rec.Name)
		r.identifiers[i] = NormalizeIdentifier(rec.Identifier)
	}
	return r
}

// Len returns the number of roster records.
func (r *Roster) Len() int { return len(r.records) }

// Record returns the record at scan position i.
func (r *Roster) Record(i int) *RosterRecord { return r.records[i] }

// Records returns all records in scan order.
func (r *Roster) Records() []*RosterRecord { return r.records }

// NormalizedName returns the comparison name of the record at position i.
func (r *Roster) NormalizedName(i int) string { return r.names[i] }

// Identifier returns the trimmed identifier of the record at position i.
func (r *Roster) Identifier(i int) string { return r.identifiers[i] }
