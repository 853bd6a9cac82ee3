package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "escaped quotes",
			in:   "a,b\nc,\"\"\"d\"\"\"\n",
			want: [][]string{{"a", "b"}, {"c", `"d"`}},
		},
		{
			name: "doubled quotes around a bare word",
			in:   "a,b\nc,\"\"d\"\"\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "quoted separator and newline",
			in:   "a,b\n\"x,y\",\"line1\nline2\"\n",
			want: [][]string{{"a", "b"}, {"x,y", "line1\nline2"}},
		},
		{
			name: "crlf terminators",
			in:   "a,b\r\nc,d\r\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "bare cr outside quotes is dropped",
			in:   "a\rb,c\n",
			want: [][]string{{"ab", "c"}},
		},
		{
			name: "cr inside quotes is kept",
			in:   "\"a\rb\",c\n",
			want: [][]string{{"a\rb", "c"}},
		},
		{
			name: "fully blank record dropped",
			in:   "a,b\n,\n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "whitespace only record dropped",
			in:   "a,b\n  ,\t\n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "blank lines between records dropped",
			in:   "a,b\n\n\nc,d\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "partially blank record kept",
			in:   "a,b\nx,\n",
			want: [][]string{{"a", "b"}, {"x", ""}},
		},
		{
			name: "last record without terminator",
			in:   "a,b\nc,d",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "trailing empty field without terminator",
			in:   "a,b\nc,",
			want: [][]string{{"a", "b"}, {"c", ""}},
		},
		{
			name: "unterminated quote consumes the rest",
			in:   "a,b\nc,\"open\nmore",
			want: [][]string{{"a", "b"}, {"c", "open\nmore"}},
		},
		{
			name: "unterminated empty quote flushes collected fields",
			in:   "a,b\nc,\"",
			want: [][]string{{"a", "b"}, {"c", ""}},
		},
		{
			name: "quote opens mid field",
			in:   "ab\"c,d\"e\n",
			want: [][]string{{"abc,de"}},
		},
		{
			name: "no type coercion",
			in:   "n\n007\n",
			want: [][]string{{"n"}, {"007"}},
		},
		{
			name: "utf8 passes through",
			in:   "名稱,電郵\n測試,é@x.com\n",
			want: [][]string{{"名稱", "電郵"}, {"測試", "é@x.com"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCSV(tt.in))
		})
	}
}

func TestNewTable(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		table := NewTable(ParseCSV("email,name\n"))
		assert.Equal(t, []string{"email", "name"}, table.Headers)
		assert.Empty(t, table.Rows)
	})

	t.Run("no records", func(t *testing.T) {
		table := NewTable(nil)
		assert.Empty(t, table.Headers)
		assert.Empty(t, table.Rows)
	})

	t.Run("row indices follow the header row", func(t *testing.T) {
		table := NewTable(ParseCSV("email,name\na@x.com,A\nb@x.com,B\nc@x.com,C\n"))
		var got []int
		for _, r := range table.Rows {
			got = append(got, r.Index)
		}
		assert.Equal(t, []int{2, 3, 4}, got)
	})

	t.Run("dropped blank row does not keep its slot", func(t *testing.T) {
		table := NewTable(ParseCSV("email\na@x.com\n,\nb@x.com\n"))
		assert.Equal(t, 3, table.Rows[1].Index)
		assert.Equal(t, "b@x.com", table.Rows[1].Owner())
	})
}
