package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Red, 1e-9)
	assert.InDelta(t, 128.0/255, c.Green, 1e-9)
	assert.InDelta(t, 0.0, c.Blue, 1e-9)
	assert.Equal(t, "#ff8000", c.Hex())

	c, err = ParseHexColor("2659EA")
	require.NoError(t, err)
	assert.Equal(t, "#2659ea", c.Hex())

	for _, bad := range []string{"", "#fff", "#gggggg", "#12345678"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestHighlightStyle(t *testing.T) {
	s := HighlightStyle(DefaultHighlight)
	assert.Equal(t, DefaultHighlight, s.Background)
	assert.Equal(t, White, s.Foreground)
	assert.True(t, s.Bold)
	assert.Equal(t, "#ffffff", White.Hex())
}
