package sheets

// HeaderRow is the 1-based sheet row holding the column names.
const HeaderRow = 1

// ColumnOwner holds the email of the identity allowed to edit a row.
const ColumnOwner = 0

// Table is one load of the sheet: the full header row plus data rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// Row is a data row addressed by its 1-based position in the sheet.
type Row struct {
	Index int
	Data  []string

	fields map[string]int
}

// NewTable builds a Table from parsed records. The first record is the header
// row and every following record is numbered from HeaderRow+1.
func NewTable(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}

	headers := records[0]
	fields := fieldIndex(headers)

	rows := make([]Row, 0, len(records)-1)
	for i, data := range records[1:] {
		rows = append(rows, Row{
			Index:  HeaderRow + 1 + i,
			Data:   data,
			fields: fields,
		})
	}
	return &Table{Headers: headers, Rows: rows}
}

func fieldIndex(headers []string) map[string]int {
	fields := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := fields[h]; !ok {
			fields[h] = i
		}
	}
	return fields
}

// Row returns the data row with the given sheet index.
func (t *Table) Row(index int) (Row, bool) {
	for _, r := range t.Rows {
		if r.Index == index {
			return r, true
		}
	}
	return Row{}, false
}

// Column returns the position of the named header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Get returns the cell under the named header. Rows shorter than the header
// row report trailing cells as absent.
func (r Row) Get(name string) (string, bool) {
	i, ok := r.fields[name]
	if !ok || i >= len(r.Data) {
		return "", false
	}
	return r.Data[i], true
}

// Field returns the cell position of the named header.
func (r Row) Field(name string) (int, bool) {
	i, ok := r.fields[name]
	return i, ok
}

// Record returns the row keyed by header name.
func (r Row) Record() map[string]string {
	rec := make(map[string]string, len(r.fields))
	for name, i := range r.fields {
		if i < len(r.Data) {
			rec[name] = r.Data[i]
		}
	}
	return rec
}

// Owner returns the raw owner cell, or "" when the row has no cells.
func (r Row) Owner() string {
	if len(r.Data) <= ColumnOwner {
		return ""
	}
	return r.Data[ColumnOwner]
}

// With returns a copy of the row carrying data instead of the current cells.
func (r Row) With(data []string) Row {
	cp := make([]string, len(data))
	copy(cp, data)
	return Row{Index: r.Index, Data: cp, fields: r.fields}
}
