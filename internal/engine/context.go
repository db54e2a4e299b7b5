package engine

import (
	"sync"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

// Mode selects what a confirmed pick does to the sheet.
type Mode string

const (
	// ModeHighlight colors the pick's row and optionally writes the typed pick.
	ModeHighlight Mode = "highlight"
	// ModeADP records the typed pick and writes the running average.
	ModeADP Mode = "adp"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeHighlight || m == ModeADP
}

// Layout names the sheet columns a context works with.
type Layout struct {
	NameColumn     string
	HighlightStart string
	HighlightEnd   string
	// WriteColumn receives the typed pick in highlight mode. Empty disables it.
	WriteColumn string
	ADPColumn   string
}

// ContextConfig describes one channel and the worksheet it drafts into.
type ContextConfig struct {
	ID     string
	Name   string
	Mode   Mode
	Layout Layout
	Color  sheets.Color
}

// DraftContext is a configured channel with its roster snapshot.
type DraftContext struct {
	ContextConfig

	index *draft.Index
	adp   *adpTracker

	mu    sync.Mutex
	color sheets.Color
}

func newDraftContext(cfg ContextConfig, idx *draft.Index) *DraftContext {
	return &DraftContext{
		ContextConfig: cfg,
		index:         idx,
		adp:           newADPTracker(),
		color:         cfg.Color,
	}
}

// Index returns the roster snapshot.
func (dc *DraftContext) Index() *draft.Index {
	return dc.index
}

// Style is the highlight applied to picked rows.
func (dc *DraftContext) Style() sheets.Style {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return sheets.HighlightStyle(dc.color)
}

// SetColor changes the highlight background for later picks.
func (dc *DraftContext) SetColor(c sheets.Color) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.color = c
}

// ValueColumn is where pick values are written, empty when nothing is.
func (dc *DraftContext) ValueColumn() string {
	if dc.Mode == ModeADP {
		return dc.Layout.ADPColumn
	}
	return dc.Layout.WriteColumn
}

// RowRange is the highlighted span for a candidate's row.
func (dc *DraftContext) RowRange(c draft.Candidate) sheets.RowRange {
	return sheets.RowRange{
		Row:         c.Position,
		StartColumn: dc.Layout.HighlightStart,
		EndColumn:   dc.Layout.HighlightEnd,
	}
}
