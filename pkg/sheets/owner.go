package sheets

import "strings"

// NormalizeIdentity lower-cases and trims an email for comparison.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsOwner reports whether identity may edit row. This is the only
// authorization rule; the proxy evaluates it again before every write.
func IsOwner(row Row, identity string) bool {
	return OwnsData(row.Data, identity)
}

// OwnsData applies the ownership rule to a bare slice of cells.
func OwnsData(data []string, identity string) bool {
	if len(data) <= ColumnOwner {
		return false
	}
	return NormalizeIdentity(data[ColumnOwner]) == NormalizeIdentity(identity)
}

// FilterByOwner returns the rows owned by identity, keeping their sheet indices.
// The input slice is left untouched.
func FilterByOwner(rows []Row, identity string) []Row {
	owned := make([]Row, 0, len(rows))
	for _, r := range rows {
		if IsOwner(r, identity) {
			owned = append(owned, r)
		}
	}
	return owned
}
