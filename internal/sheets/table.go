package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	newSheetRows = 1000
	newSheetCols = 3
)

// EnsureWorksheet returns the tab named title, adding it when the spreadsheet
// has none.
func (c *Client) EnsureWorksheet(ctx context.Context, spreadsheetID, title string) (*Worksheet, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error fetching spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &Worksheet{client: c, spreadsheetID: spreadsheetID, gid: sh.Properties.SheetId, title: title}, nil
		}
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetCols,
					},
				},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error adding worksheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, fmt.Errorf("adding worksheet %q: empty reply", title)
	}
	props := resp.Replies[0].AddSheet.Properties
	c.logger.Info("added worksheet", zap.String("title", props.Title), zap.Int64("gid", props.SheetId))
	return &Worksheet{client: c, spreadsheetID: spreadsheetID, gid: props.SheetId, title: props.Title}, nil
}

// ReplaceValues clears the tab and writes rows from A1. The first row is
// styled as a header across the widest row.
func (w *Worksheet) ReplaceValues(ctx context.Context, rows [][]interface{}, header Style) error {
	if err := w.client.wait(ctx); err != nil {
		return err
	}
	tab := quoteTitle(w.title)
	if _, err := w.client.svc.Spreadsheets.Values.Clear(w.spreadsheetID, tab, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error clearing %s: %w", w.title, err)
	}
	if len(rows) == 0 {
		return nil
	}

	if err := w.client.wait(ctx); err != nil {
		return err
	}
	rng := tab + "!A1"
	_, err := w.client.svc.Spreadsheets.Values.Update(w.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing %s: %w", rng, err)
	}
	w.client.logger.Info("replaced values", zap.String("worksheet", w.title), zap.Int("rows", len(rows)))

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return nil
	}
	return w.ApplyStyle(ctx, RowRange{Row: 1, StartColumn: "A", EndColumn: ColumnLetter(width)}, header)
}
