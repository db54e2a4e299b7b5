package sheets

import (
	"fmt"
	"strings"
)

// ColumnIndex converts a column letter ("A", "AB") to its 1-based index.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, fmt.Errorf("empty column")
	}
	n := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column %q", letters)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// ColumnLetter converts a 1-based column index to letters.
func ColumnLetter(index int) string {
	var b []byte
	for index > 0 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
		index /= 26
	}
	return string(b)
}

// ValidColumn reports whether s is a column reference.
func ValidColumn(s string) bool {
	_, err := ColumnIndex(s)
	return err == nil
}

// RowRange is a span of columns on one row, as "A12:D12".
type RowRange struct {
	Row         int
	StartColumn string
	EndColumn   string
}

func (r RowRange) String() string {
	return fmt.Sprintf("%s%d:%s%d", r.StartColumn, r.Row, r.EndColumn, r.Row)
}

// quoteTitle prepares a worksheet title for an A1 range.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
