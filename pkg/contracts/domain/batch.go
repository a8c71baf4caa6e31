package domain

// Value is a single cell value within a row. A nil Value means the source
// carried no value for that column (empty cell, SQL NULL).
type Value interface{}

// Row maps column names to cell values. Rows are never mutated once loaded;
// the engine only classifies them.
type Row map[string]Value

// Batch is a finite, ordered collection of rows with a stable schema.
// Column order matches the source (CSV header order, Excel sheet order,
// SQL result order) and row order matches the source's row order. Row
// identity is positional.
type Batch struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewBatch creates an empty batch with the given column schema.
func NewBatch(columns []string) *Batch {
	return &Batch{
		Columns: append([]string(nil), columns...),
		Rows:    []Row{},
	}
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Rows)
}

// HasColumn reports whether the batch schema contains the named column.
func (b *Batch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row to the end of the batch.
func (b *Batch) Append(row Row) {
	b.Rows = append(b.Rows, row)
}

// Role is a logical purpose for a field (e.g. "price") independent of the
// literal column name present in the source.
type Role string

// FieldMapping maps logical roles to actual column names. It must be fully
// resolved before validation starts: every role required by an enabled rule
// needs a non-empty mapped column name.
type FieldMapping map[Role]string
