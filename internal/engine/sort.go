package engine

import (
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"techjobs/internal/models"
)

// DefaultSortField is the column job listings are ordered by.
const DefaultSortField = "name"

// CompareFold compares a and b ignoring case. Differing runes are compared
// by their upper case form, then by their lower case form. When one string
// is a prefix of the other the shorter sorts first.
func CompareFold(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		a, b = a[na:], b[nb:]
		if ra == rb {
			continue
		}
		ra, rb = unicode.ToUpper(ra), unicode.ToUpper(rb)
		if ra == rb {
			continue
		}
		ra, rb = unicode.ToLower(ra), unicode.ToLower(rb)
		if ra != rb {
			return int(ra) - int(rb)
		}
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// SortRowsByField orders rows by field ascending, ignoring case. Rows with
// equal keys keep their relative order. rows is sorted in place and
// returned; on error it is left untouched.
func SortRowsByField(rows []models.Row, field string) ([]models.Row, error) {
	keys := make(map[models.Row]string, len(rows))
	for i, row := range rows {
		v, ok := row.GetString(field)
		if !ok {
			return nil, fmt.Errorf("%w: %q missing from row %d", ErrMissingField, field, i)
		}
		keys[row] = v
	}
	slices.SortStableFunc(rows, func(a, b models.Row) int {
		return CompareFold(keys[a], keys[b])
	})
	return rows, nil
}

// SortStrings orders values ascending, ignoring case. Values that only
// differ by case keep their relative order. values is sorted in place.
func SortStrings(values []string) []string {
	slices.SortStableFunc(values, CompareFold)
	return values
}
