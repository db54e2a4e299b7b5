package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "leading pick number", raw: "65. lebron james", want: "lebron james"},
		{name: "mentions and custom emoji", raw: "<@123456> LeBron James <:fire:987654>", want: "lebron james"},
		{name: "animated emoji and role mention", raw: "<a:dance:42><@&77> Kevin Durant", want: "kevin durant"},
		{name: "diacritics folded", raw: "Nikola Jokić", want: "nikola jokic"},
		{name: "smart apostrophe dropped", raw: "Shaquille O’Neal", want: "shaquille oneal"},
		{name: "parenthetical and price", raw: "Kevin Durant (steal) $45", want: "kevin durant"},
		{name: "zero width characters", raw: "Luka\u200b Dončić!!", want: "luka doncic"},
		{name: "url stripped", raw: "https://example.com/x?y=1 curry", want: "curry"},
		{name: "season years", raw: "12) Steph Curry 2015-16", want: "steph curry"},
		{name: "decimal price", raw: "$12.50 jokic", want: "jokic"},
		{name: "whitespace only", raw: "   \t ", want: ""},
		{name: "emoji only", raw: "🔥🔥", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"65. lebron james",
		"<@!99> De’Aaron Fox (value) £3",
		"Nikola Jokić!!!",
		"KARL-ANTHONY TOWNS",
		"\u202eevil\u202c text",
		"(((nested))) parens)",
		"skip",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestExtractLeadingOrdinal(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{raw: "65. lebron james", want: 65, wantOK: true},
		{raw: "  12) curry", want: 12, wantOK: true},
		{raw: "3 - jokic", want: 3, wantOK: true},
		{raw: "7: embiid", want: 7, wantOK: true},
		{raw: "lebron 65", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "99999999999999999999999 overflow", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ExtractLeadingOrdinal(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.raw)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %q", tt.raw)
		}
	}
}
