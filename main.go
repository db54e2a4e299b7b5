package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/config"
	"github.com/hunterjsb/draftbot/internal/discord"
	"github.com/hunterjsb/draftbot/internal/dotenv"
	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/engine"
	"github.com/hunterjsb/draftbot/internal/observability"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

func main() {
	app := &cli.App{
		Name:  "draftbot",
		Usage: "record fantasy draft picks from Discord channels onto Google Sheets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultFile,
				EnvVars: []string{"DRAFT_CONFIG"},
				Usage:   "path to the YAML configuration file",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Value: cli.NewStringSlice(".env"),
				Usage: "dotenv files to load before reading configuration",
			},
		},
		Before: func(c *cli.Context) error {
			return dotenv.LoadOptional(c.StringSlice("env-file")...)
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect to Discord and start recording picks",
				Action: runBot,
			},
			matchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "draftbot: %v\n", err)
		os.Exit(1)
	}
}

func runBot(c *cli.Context) error {
	logger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath(c))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	var ops *observability.OpsServer
	if cfg.MetricsAddress != "" {
		ops = observability.NewOpsServer(cfg.MetricsAddress, registry, logger)
		ops.Start()
	}

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	matcher := draft.NewMatcher(
		draft.WithThresholds(cfg.Thresholds()),
		draft.WithStopwords(cfg.Stopwords()),
	)
	eng := engine.New(matcher, discord.NewRoleAuthorizer(session),
		engine.WithLogger(logger.Named("engine")),
		engine.WithMetrics(metrics),
		engine.WithRoles(cfg.CommishRoles...),
		engine.WithReactOnMiss(cfg.ReactOnMiss),
	)
	disp := engine.NewDispatcher(eng, logger.Named("dispatch"), metrics)

	ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
	defer cancel()
	sheetsClient, err := loadBoards(ctx, cfg, eng, disp, logger)
	if err != nil {
		return err
	}

	bot := discord.NewDiscordBot(session, cfg, eng, disp, logger.Named("discord"))
	if cfg.Tally.Enabled() {
		bot.EnableTally(sheetsClient)
	}
	bot.OnReady = func() {
		if ops != nil {
			ops.SetReady(true)
		}
	}

	logger.Info("starting Discord bot", zap.Int("boards", len(cfg.Contexts)))
	if err := bot.Start(); err != nil {
		return fmt.Errorf("starting bot: %w", err)
	}

	discord.SetupCloseHandler(logger, func() error {
		if ops != nil {
			ops.SetReady(false)
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := ops.Shutdown(shutdownCtx); err != nil {
				logger.Warn("ops server shutdown", zap.Error(err))
			}
		}
		return bot.Stop()
	})

	logger.Info("bot is now running, press CTRL-C to exit")
	select {}
}

// loadBoards snapshots each configured worksheet's name column and registers
// the channel with the engine and dispatcher. The client is returned for the
// win counters.
func loadBoards(ctx context.Context, cfg *config.Config, eng *engine.Engine, disp *engine.Dispatcher, logger *zap.Logger) (*sheets.Client, error) {
	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	opts, err := creds.Options()
	if err != nil {
		return nil, err
	}
	client, err := sheets.NewClient(ctx, logger.Named("sheets"), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	for _, cc := range cfg.Contexts {
		ecfg, err := cc.EngineConfig()
		if err != nil {
			return nil, err
		}
		ws, err := client.Worksheet(ctx, cc.SheetID, cc.WorksheetGID)
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", ecfg.Name, err)
		}
		names, err := ws.ReadColumn(ctx, ecfg.Layout.NameColumn)
		if err != nil {
			return nil, fmt.Errorf("board %s: reading roster: %w", ecfg.Name, err)
		}
		if _, err := eng.AddContext(ecfg, names); err != nil {
			return nil, fmt.Errorf("board %s: %w", ecfg.Name, err)
		}
		disp.Register(ecfg.ID, ws)
	}
	return client, nil
}

// configPath honors DRAFT_CONFIG from a .env file, which is loaded after
// flags are parsed.
func configPath(c *cli.Context) string {
	if !c.IsSet("config") {
		if v := os.Getenv("DRAFT_CONFIG"); v != "" {
			return v
		}
	}
	return c.String("config")
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "resolve text against a roster file without Discord or Sheets",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "roster",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "file with one player name per line, in sheet row order",
			},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return cli.Exit("nothing to match", 2)
			}

			cfg, err := config.LoadConfig(configPath(c))
			if err != nil {
				return err
			}
			data, err := os.ReadFile(c.String("roster"))
			if err != nil {
				return err
			}

			idx := draft.BuildIndex(strings.Split(string(data), "\n"))
			m := draft.NewMatcher(
				draft.WithThresholds(cfg.Thresholds()),
				draft.WithStopwords(cfg.Stopwords()),
			)

			res, ok := m.Match(text, idx)
			if !ok {
				fmt.Fprintf(c.App.Writer, "no match for %q (normalized %q)\n", text, draft.Normalize(text))
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%.2f\trow %d\n",
				res.Candidate.DisplayName, res.Kind, res.Confidence, res.Candidate.Position)
			return nil
		},
	}
}
