package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOwner(t *testing.T) {
	tests := []struct {
		name     string
		data     []string
		identity string
		want     bool
	}{
		{"exact match", []string{"bob@x.com", "1"}, "bob@x.com", true},
		{"case and whitespace in cell", []string{"Bob@X.com ", "1"}, "bob@x.com", true},
		{"case and whitespace in identity", []string{"bob@x.com"}, "  BOB@x.COM\t", true},
		{"different email", []string{"alice@x.com"}, "bob@x.com", false},
		{"owner in another column", []string{"", "bob@x.com"}, "bob@x.com", false},
		{"empty row", []string{}, "bob@x.com", false},
		{"nil row", nil, "bob@x.com", false},
		{"empty row against empty identity", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOwner(Row{Index: 2, Data: tt.data}, tt.identity))
			assert.Equal(t, tt.want, OwnsData(tt.data, tt.identity))
		})
	}
}

func TestFilterByOwner(t *testing.T) {
	table := NewTable(ParseCSV("email,v\nbob@x.com,1\nalice@x.com,2\nBob@X.com ,3\n"))
	before := make([]Row, len(table.Rows))
	copy(before, table.Rows)

	owned := FilterByOwner(table.Rows, "bob@x.com")

	assert.Len(t, owned, 2)
	assert.Equal(t, 2, owned[0].Index)
	assert.Equal(t, 4, owned[1].Index)
	assert.LessOrEqual(t, len(owned), len(table.Rows))
	assert.Equal(t, before, table.Rows, "input rows must not change")

	assert.Empty(t, FilterByOwner(table.Rows, "nobody@x.com"))
	assert.Empty(t, FilterByOwner(nil, "bob@x.com"))
}
