package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGB color with components in [0, 1], the way the Sheets API
// expects them.
type Color struct {
	Red, Green, Blue float64
}

var (
	// DefaultHighlight is the blue the highlighter has always used.
	DefaultHighlight = Color{Red: 0.15, Green: 0.35, Blue: 0.85}
	White            = Color{Red: 1, Green: 1, Blue: 1}
	Black            = Color{}
	Magenta          = Color{Red: 1, Blue: 1}
)

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		Red:   float64(v>>16&0xff) / 255,
		Green: float64(v>>8&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}, nil
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.Red), channel(c.Green), channel(c.Blue))
}

func channel(f float64) int {
	return int(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// Style is the cell format applied to a picked row or a header.
type Style struct {
	Background Color
	Foreground Color
	Bold       bool
	Centered   bool
}

// HighlightStyle is bg with bold white text.
func HighlightStyle(bg Color) Style {
	return Style{Background: bg, Foreground: White, Bold: true}
}

// HeaderStyle is the results-sheet header: bold black on magenta, centered.
func HeaderStyle() Style {
	return Style{Background: Magenta, Foreground: Black, Bold: true, Centered: true}
}
