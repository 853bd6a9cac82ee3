package sheets

import "strings"

// ParseCSV splits exported sheet text into records of string fields.
//
// Quoted fields may contain separators, line breaks and doubled quotes. Records
// made only of blank fields are skipped, which also drops blank data rows. An
// unterminated quote simply runs to the end of the input.
func ParseCSV(text string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
	)

	flush := func() {
		record = append(record, field.String())
		field.Reset()
		if !blankRecord(record) {
			records = append(records, record)
		}
		record = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		if inQuotes {
			switch {
			case c == '"' && next == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"':
			inQuotes = true
		case c == ',':
			record = append(record, field.String())
			field.Reset()
		case c == '\n':
			flush()
		case c == '\r' && next == '\n':
			flush()
			i++
		case c == '\r':
			// bare CR outside quotes
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(record) > 0 {
		flush()
	}

	return records
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
