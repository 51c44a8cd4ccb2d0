package model

// Table is one sheet of tabular input: a header row and data rows keyed by
// header. Readers guarantee every row carries a key for every column.
type Table struct {
	Name    string // source label used in error messages, usually the file name
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains col exactly.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}
