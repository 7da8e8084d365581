// Package records defines the positional row and table value types shared by
// the DD parser, the table assembler, and the storage backends. It is
// intentionally small and dependency-free so that parsed data can flow through
// the program without additional glue code.
package records

// Row is one positional record: an ordered list of text values. For parameter
// rows the last value is the scalar and the preceding values are the key
// components; for set rows the values are the tuple components.
type Row []string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Table is a named, fixed-width table: a header plus data rows. Every row is
// expected to have exactly len(Header) values; the assembler in
// internal/storage enforces this before a Table is handed to any backend.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}
