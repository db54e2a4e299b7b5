package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("curry", "curry"))
	assert.Equal(t, 0.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", ""))
	assert.InDelta(t, 80.0, Ratio("curry", "cury"), 0.01)
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("james lebron", "lebron james"))
	assert.Less(t, TokenSortRatio("kevin durant", "kevin love"), 85.0)
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "subset", a: "green", b: "jalen green", want: 100},
		{name: "superset", a: "kevin durant jr", b: "kevin durant", want: 100},
		{name: "one typo", a: "lebrom james", b: "lebron james", want: 91.67},
		{name: "two typos", a: "lebron jmaes", b: "lebron james", want: 83.33},
		{name: "empty side", a: "", b: "lebron james", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSetRatio(tt.a, tt.b), 0.01)
		})
	}
}
