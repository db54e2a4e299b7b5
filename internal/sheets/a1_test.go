package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"A", 1}, {"b", 2}, {"Z", 26}, {"AA", 27}, {"AZ", 52}, {"ZZ", 702}, {" d ", 4},
	}
	for _, tt := range tests {
		got, err := ColumnIndex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want, mustIndex(t, ColumnLetter(got)))
	}

	for _, bad := range []string{"", "1", "A1", "é"} {
		_, err := ColumnIndex(bad)
		assert.Error(t, err, bad)
		assert.False(t, ValidColumn(bad), bad)
	}
}

func mustIndex(t *testing.T, s string) int {
	t.Helper()
	n, err := ColumnIndex(s)
	require.NoError(t, err)
	return n
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", ColumnLetter(1))
	assert.Equal(t, "Z", ColumnLetter(26))
	assert.Equal(t, "AA", ColumnLetter(27))
	assert.Equal(t, "ZZ", ColumnLetter(702))
	assert.Equal(t, "", ColumnLetter(0))
}

func TestRowRangeString(t *testing.T) {
	assert.Equal(t, "A12:D12", RowRange{Row: 12, StartColumn: "A", EndColumn: "D"}.String())
}

func TestQuoteTitle(t *testing.T) {
	assert.Equal(t, "'Draft Board'", quoteTitle("Draft Board"))
	assert.Equal(t, "'Kev''s Sheet'", quoteTitle("Kev's Sheet"))
}
