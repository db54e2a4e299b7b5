package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	formatFields         = "userEnteredFormat(backgroundColor,textFormat)"
	centeredFormatFields = "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)"
)

// Client wraps the Sheets API with a shared request limiter. The API allows
// roughly one write per second per user, so every call waits its turn.
type Client struct {
	svc     *sheetsapi.Service
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Credentials picks one way to authenticate: inline service-account JSON or
// a path to a key file.
type Credentials struct {
	JSON []byte
	File string
}

// Options turns credentials into client options.
func (c Credentials) Options() ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	switch {
	case len(c.JSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(c.JSON))
	case c.File != "":
		opts = append(opts, option.WithCredentialsFile(c.File))
	default:
		return nil, fmt.Errorf("no Google credentials configured")
	}
	return opts, nil
}

// NewClient creates a Sheets client.
func NewClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
	}, nil
}

// SetLimit replaces the request rate.
func (c *Client) SetLimit(every time.Duration, burst int) {
	c.limiter = rate.NewLimiter(rate.Every(every), burst)
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for sheets quota: %w", err)
	}
	return nil
}

// Worksheet resolves a tab of a spreadsheet by its gid.
func (c *Client) Worksheet(ctx context.Context, spreadsheetID string, gid int64) (*Worksheet, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error fetching spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.SheetId == gid {
			return &Worksheet{
				client:        c,
				spreadsheetID: spreadsheetID,
				gid:           gid,
				title:         sh.Properties.Title,
			}, nil
		}
	}
	return nil, fmt.Errorf("worksheet gid %d not found in spreadsheet %s", gid, spreadsheetID)
}

// Worksheet is one tab. It satisfies the engine's Sheet interface.
type Worksheet struct {
	client        *Client
	spreadsheetID string
	gid           int64
	title         string
}

// Title returns the tab name.
func (w *Worksheet) Title() string {
	return w.title
}

// ReadColumn returns every value in column, top to bottom. Index i holds row i+1.
func (w *Worksheet) ReadColumn(ctx context.Context, column string) ([]string, error) {
	if !ValidColumn(column) {
		return nil, fmt.Errorf("invalid column %q", column)
	}
	if err := w.client.wait(ctx); err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!%s:%s", quoteTitle(w.title), column, column)
	vr, err := w.client.svc.Spreadsheets.Values.Get(w.spreadsheetID, rng).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", rng, err)
	}
	if len(vr.Values) == 0 {
		return nil, nil
	}
	out := make([]string, len(vr.Values[0]))
	for i, v := range vr.Values[0] {
		out[i] = fmt.Sprint(v)
	}
	w.client.logger.Debug("read column",
		zap.String("worksheet", w.title),
		zap.String("column", column),
		zap.Int("rows", len(out)),
	)
	return out, nil
}

// WriteCell sets one cell as if typed by a user. An empty value clears it.
func (w *Worksheet) WriteCell(ctx context.Context, row int, column, value string) error {
	if err := w.client.wait(ctx); err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!%s%d", quoteTitle(w.title), column, row)
	_, err := w.client.svc.Spreadsheets.Values.Update(w.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing %s: %w", rng, err)
	}
	w.client.logger.Info("wrote cell", zap.String("range", rng), zap.String("value", value))
	return nil
}

// ApplyStyle formats every cell in r.
func (w *Worksheet) ApplyStyle(ctx context.Context, r RowRange, style Style) error {
	format := &sheetsapi.CellFormat{
		BackgroundColor: apiColor(style.Background),
		TextFormat: &sheetsapi.TextFormat{
			ForegroundColor: apiColor(style.Foreground),
			Bold:            style.Bold,
		},
	}
	fields := formatFields
	if style.Centered {
		format.HorizontalAlignment = "CENTER"
		fields = centeredFormatFields
	}
	if err := w.repeatFormat(ctx, r, format, fields); err != nil {
		return err
	}
	w.client.logger.Info("styled row",
		zap.String("worksheet", w.title),
		zap.String("range", r.String()),
		zap.String("color", style.Background.Hex()),
	)
	return nil
}

// ClearStyle resets the background and text format of r.
func (w *Worksheet) ClearStyle(ctx context.Context, r RowRange) error {
	return w.repeatFormat(ctx, r, &sheetsapi.CellFormat{}, formatFields)
}

func (w *Worksheet) repeatFormat(ctx context.Context, r RowRange, format *sheetsapi.CellFormat, fields string) error {
	grid, err := w.gridRange(r)
	if err != nil {
		return err
	}
	if err := w.client.wait(ctx); err != nil {
		return err
	}
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			RepeatCell: &sheetsapi.RepeatCellRequest{
				Range:  grid,
				Cell:   &sheetsapi.CellData{UserEnteredFormat: format},
				Fields: fields,
			},
		}},
	}
	if _, err := w.client.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error formatting %s: %w", r, err)
	}
	return nil
}

func (w *Worksheet) gridRange(r RowRange) (*sheetsapi.GridRange, error) {
	if r.Row < 1 {
		return nil, fmt.Errorf("invalid row %d", r.Row)
	}
	start, err := ColumnIndex(r.StartColumn)
	if err != nil {
		return nil, err
	}
	end, err := ColumnIndex(r.EndColumn)
	if err != nil {
		return nil, err
	}
	if end < start {
		start, end = end, start
	}
	return &sheetsapi.GridRange{
		SheetId:          w.gid,
		StartRowIndex:    int64(r.Row - 1),
		EndRowIndex:      int64(r.Row),
		StartColumnIndex: int64(start - 1),
		EndColumnIndex:   int64(end),
		// Zero indexes are meaningful here and would otherwise be dropped.
		ForceSendFields: []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}, nil
}

func apiColor(c Color) *sheetsapi.Color {
	return &sheetsapi.Color{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}
}
