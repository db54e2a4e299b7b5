package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/engine"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

const (
	DefaultFile            = "draft.yaml"
	defaultCredentialsPath = "service_account.json"
	maxEnvContexts         = 9
)

// Config holds the bot configuration
type Config struct {
	DiscordToken   string   `yaml:"discord_token"`
	GuildID        string   `yaml:"guild_id"`
	CommandPrefix  string   `yaml:"command_prefix"`
	CommishRoles   []string `yaml:"commish_roles"`
	ReactOnMiss    bool     `yaml:"react_on_miss"`
	MetricsAddress string   `yaml:"metrics_address"`

	OpenAIToken string  `yaml:"openai_api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	Matching Matching  `yaml:"matching"`
	Google   Google    `yaml:"google"`
	Contexts []Context `yaml:"contexts"`
	Tally    Tally     `yaml:"tally"`
}

// Matching tunes the name matcher.
type Matching struct {
	FuzzyHigh    float64  `yaml:"fuzzy_high"`
	FuzzyLow     float64  `yaml:"fuzzy_low"`
	SurnameScore float64  `yaml:"surname_score"`
	MinWords     int      `yaml:"min_words"`
	Stopwords    []string `yaml:"stopwords"`
}

// Google holds service-account credentials, one of the three forms.
type Google struct {
	CredentialsJSON string `yaml:"credentials_json"`
	CredentialsB64  string `yaml:"credentials_b64"`
	CredentialsPath string `yaml:"credentials_path"`
}

// Tally points the win counters at their source channels and result sheet.
// The counters are off while SheetID is empty.
type Tally struct {
	SheetID          string `yaml:"sheet_id"`
	PlayerChannelID  string `yaml:"player_channel_id"`
	ResultsChannelID string `yaml:"results_channel_id"`
	PlayerTab        string `yaml:"player_tab"`
	DrafterTab       string `yaml:"drafter_tab"`
}

// Enabled reports whether the win counters have somewhere to write.
func (t Tally) Enabled() bool {
	return t.SheetID != ""
}

// Context maps one Discord channel to one worksheet.
type Context struct {
	ChannelID      string `yaml:"channel_id"`
	Name           string `yaml:"name"`
	SheetID        string `yaml:"sheet_id"`
	WorksheetGID   int64  `yaml:"worksheet_gid"`
	Mode           string `yaml:"mode"`
	NameColumn     string `yaml:"name_column"`
	HighlightStart string `yaml:"highlight_start"`
	HighlightEnd   string `yaml:"highlight_end"`
	WriteColumn    string `yaml:"write_column"`
	ADPColumn      string `yaml:"adp_column"`
	Color          string `yaml:"color"`
}

func defaults() *Config {
	th := draft.DefaultThresholds()
	return &Config{
		CommandPrefix: "!",
		CommishRoles:  []string{"LeComissioner"},
		MaxTokens:     150,
		Temperature:   0.7,
		Matching: Matching{
			FuzzyHigh:    th.FuzzyHigh,
			FuzzyLow:     th.FuzzyLow,
			SurnameScore: th.SurnameScore,
			MinWords:     th.MinWords,
		},
		Tally: Tally{
			PlayerTab:  "Player Wins",
			DrafterTab: "Drafters",
		},
	}
}

// LoadConfig reads filename if it exists, then applies environment
// variables on top. Contexts come from the environment only when the file
// declares none.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillContextDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DiscordToken, "DISCORD_TOKEN")
	setString(&c.GuildID, "GUILD_ID")
	setString(&c.CommandPrefix, "COMMAND_PREFIX")
	setString(&c.MetricsAddress, "METRICS_ADDRESS")
	setString(&c.OpenAIToken, "OPENAI_API_KEY")
	setString(&c.Google.CredentialsJSON, "GOOGLE_CREDENTIALS_JSON")
	setString(&c.Google.CredentialsB64, "GOOGLE_CREDENTIALS_B64")
	setString(&c.Google.CredentialsPath, "GOOGLE_CREDENTIALS_PATH")
	setString(&c.Tally.SheetID, "TALLY_SHEET_ID")
	setString(&c.Tally.PlayerChannelID, "PLAYER_WINS_CHANNEL_ID")
	setString(&c.Tally.ResultsChannelID, "ATD_RESULTS_CHANNEL_ID")
	setString(&c.Tally.PlayerTab, "PLAYER_WINS_TAB")
	setString(&c.Tally.DrafterTab, "DRAFTER_WINS_TAB")

	if v := os.Getenv("COMMISH_ROLES"); v != "" {
		c.CommishRoles = splitList(v)
	}
	if v := os.Getenv("STOPWORDS"); v != "" {
		c.Matching.Stopwords = append(c.Matching.Stopwords, splitList(v)...)
	}
	if v := os.Getenv("REACT_ON_MISS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REACT_ON_MISS: %w", err)
		}
		c.ReactOnMiss = b
	}

	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"FUZZY_THRESHOLD", &c.Matching.FuzzyHigh},
		{"LOW_FUZZY_CUTOFF", &c.Matching.FuzzyLow},
		{"SURNAME_SCORE", &c.Matching.SurnameScore},
		{"TEMPERATURE", &c.Temperature},
	} {
		if v := os.Getenv(f.key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = n
		}
	}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"MIN_WORDS", &c.Matching.MinWords},
		{"MAX_TOKENS", &c.MaxTokens},
	} {
		if v := os.Getenv(f.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = n
		}
	}

	if len(c.Contexts) == 0 {
		contexts, err := contextsFromEnv()
		if err != nil {
			return err
		}
		c.Contexts = contexts
	}
	return nil
}

// contextsFromEnv reads DISCORD_CHANNEL_ID and DISCORD_CHANNEL_ID_1.._9, each
// paired with the GOOGLE_WORKSHEET_GID of the same suffix. The sheet and the
// column layout are shared.
func contextsFromEnv() ([]Context, error) {
	shared := Context{
		SheetID:        os.Getenv("GOOGLE_SHEET_ID"),
		Mode:           os.Getenv("DRAFT_MODE"),
		NameColumn:     os.Getenv("NAME_COLUMN"),
		HighlightStart: os.Getenv("ROW_HILIGHT_START"),
		HighlightEnd:   os.Getenv("ROW_HILIGHT_END"),
		WriteColumn:    os.Getenv("WRITE_COLUMN"),
		ADPColumn:      os.Getenv("ADP_COLUMN"),
		Color:          os.Getenv("HIGHLIGHT_COLOR"),
	}

	var out []Context
	for i := 0; i <= maxEnvContexts; i++ {
		suffix := ""
		if i > 0 {
			suffix = "_" + strconv.Itoa(i)
		}
		channel := strings.TrimSpace(os.Getenv("DISCORD_CHANNEL_ID" + suffix))
		if channel == "" {
			continue
		}
		ctx := shared
		ctx.ChannelID = channel
		if v := os.Getenv("GOOGLE_WORKSHEET_GID" + suffix); v != "" {
			gid, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid GOOGLE_WORKSHEET_GID%s: %w", suffix, err)
			}
			ctx.WorksheetGID = gid
		}
		out = append(out, ctx)
	}
	return out, nil
}

func (c *Config) fillContextDefaults() {
	for i := range c.Contexts {
		ctx := &c.Contexts[i]
		ctx.Mode = strings.ToLower(strings.TrimSpace(ctx.Mode))
		if ctx.Mode == "" {
			ctx.Mode = string(engine.ModeHighlight)
		}
		// ADP boards list names in A with the pick number beside them.
		if ctx.Mode == string(engine.ModeADP) {
			setDefault(&ctx.NameColumn, "A")
			setDefault(&ctx.ADPColumn, "B")
		} else {
			setDefault(&ctx.NameColumn, "B")
			setDefault(&ctx.HighlightStart, "A")
			setDefault(&ctx.HighlightEnd, "D")
		}
		for _, col := range []*string{&ctx.NameColumn, &ctx.HighlightStart, &ctx.HighlightEnd, &ctx.WriteColumn, &ctx.ADPColumn} {
			*col = strings.ToUpper(strings.TrimSpace(*col))
		}
	}
}

func setDefault(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

// Validate checks everything the bot needs before it connects.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.CommandPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be empty")
	}
	if len(c.CommishRoles) == 0 {
		return fmt.Errorf("at least one commish role is required")
	}

	m := c.Matching
	for name, v := range map[string]float64{"fuzzy_high": m.FuzzyHigh, "fuzzy_low": m.FuzzyLow, "surname_score": m.SurnameScore} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
		}
	}
	if m.FuzzyLow > m.FuzzyHigh {
		return fmt.Errorf("fuzzy_low (%v) must not exceed fuzzy_high (%v)", m.FuzzyLow, m.FuzzyHigh)
	}
	if m.MinWords < 0 {
		return fmt.Errorf("min_words must not be negative")
	}

	if len(c.Contexts) == 0 {
		return fmt.Errorf("no draft channels configured: set DISCORD_CHANNEL_ID or add contexts to %s", DefaultFile)
	}
	seen := make(map[string]bool, len(c.Contexts))
	for _, ctx := range c.Contexts {
		if err := ctx.validate(); err != nil {
			return fmt.Errorf("context %s: %w", ctx.ChannelID, err)
		}
		if seen[ctx.ChannelID] {
			return fmt.Errorf("channel %s is configured twice", ctx.ChannelID)
		}
		seen[ctx.ChannelID] = true
	}

	if t := c.Tally; t.Enabled() {
		if strings.TrimSpace(t.PlayerTab) == "" || strings.TrimSpace(t.DrafterTab) == "" {
			return fmt.Errorf("tally tabs must have names")
		}
		if t.PlayerTab == t.DrafterTab {
			return fmt.Errorf("tally player_tab and drafter_tab must differ")
		}
	}

	if _, err := c.Credentials(); err != nil {
		return err
	}
	return nil
}

func (ctx Context) validate() error {
	if ctx.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if ctx.SheetID == "" {
		return fmt.Errorf("sheet_id is required")
	}
	mode := engine.Mode(ctx.Mode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", ctx.Mode)
	}

	required := map[string]string{"name_column": ctx.NameColumn}
	if mode == engine.ModeHighlight {
		required["highlight_start"] = ctx.HighlightStart
		required["highlight_end"] = ctx.HighlightEnd
	} else {
		required["adp_column"] = ctx.ADPColumn
	}
	for name, col := range required {
		if !sheets.ValidColumn(col) {
			return fmt.Errorf("%s %q is not a column", name, col)
		}
	}
	if ctx.WriteColumn != "" && !sheets.ValidColumn(ctx.WriteColumn) {
		return fmt.Errorf("write_column %q is not a column", ctx.WriteColumn)
	}
	if ctx.Color != "" {
		if _, err := sheets.ParseHexColor(ctx.Color); err != nil {
			return err
		}
	}
	return nil
}

// Thresholds converts the matching section for the matcher.
func (c *Config) Thresholds() draft.Thresholds {
	return draft.Thresholds{
		FuzzyHigh:    c.Matching.FuzzyHigh,
		FuzzyLow:     c.Matching.FuzzyLow,
		SurnameScore: c.Matching.SurnameScore,
		MinWords:     c.Matching.MinWords,
	}
}

// Stopwords is the default list plus any configured extras.
func (c *Config) Stopwords() []string {
	out := append([]string(nil), draft.DefaultStopwords...)
	return append(out, c.Matching.Stopwords...)
}

// Credentials resolves the Google service-account credentials. Inline JSON
// wins over base64, which wins over a key file path.
func (c *Config) Credentials() (sheets.Credentials, error) {
	g := c.Google
	switch {
	case g.CredentialsJSON != "":
		return sheets.Credentials{JSON: []byte(g.CredentialsJSON)}, nil
	case g.CredentialsB64 != "":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(g.CredentialsB64))
		if err != nil {
			return sheets.Credentials{}, fmt.Errorf("invalid GOOGLE_CREDENTIALS_B64: %w", err)
		}
		return sheets.Credentials{JSON: raw}, nil
	}

	path := g.CredentialsPath
	if path == "" {
		path = defaultCredentialsPath
	}
	if _, err := os.Stat(path); err != nil {
		return sheets.Credentials{}, fmt.Errorf("missing credentials: set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_B64 or GOOGLE_CREDENTIALS_PATH: %w", err)
	}
	return sheets.Credentials{File: path}, nil
}

// EngineConfig converts a context for the engine.
func (ctx Context) EngineConfig() (engine.ContextConfig, error) {
	color := sheets.DefaultHighlight
	if ctx.Color != "" {
		c, err := sheets.ParseHexColor(ctx.Color)
		if err != nil {
			return engine.ContextConfig{}, err
		}
		color = c
	}
	name := ctx.Name
	if name == "" {
		name = ctx.ChannelID
	}
	return engine.ContextConfig{
		ID:   ctx.ChannelID,
		Name: name,
		Mode: engine.Mode(ctx.Mode),
		Layout: engine.Layout{
			NameColumn:     ctx.NameColumn,
			HighlightStart: ctx.HighlightStart,
			HighlightEnd:   ctx.HighlightEnd,
			WriteColumn:    ctx.WriteColumn,
			ADPColumn:      ctx.ADPColumn,
		},
		Color: color,
	}, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
