package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/commands"
	"github.com/MarisaKirisame/mdo/internal/config"
	"github.com/MarisaKirisame/mdo/internal/task"
)

var version = "dev"

func main() {
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:    "mdo",
		Usage:   "Hierarchical task manager with due dates and recurrence",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "config file path",
				Value:       commands.DefaultConfigPath(),
				Sources:     cli.EnvVars("MDO_CONFIG"),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "task store file (overrides the config file)",
				Sources:     cli.EnvVars("MDO_STORE"),
				Destination: &flags.StorePath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level: trace, debug, info, warn, error",
				Sources:     cli.EnvVars("MDO_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "today",
				Usage:       "pin the reference day (YYYY-MM-DD) for date expressions",
				Sources:     cli.EnvVars("MDO_TODAY"),
				Destination: &flags.TodayOverride,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			level := cfg.Log.Level
			if flags.LogLevel != "" {
				level = flags.LogLevel
			}
			flags.Logger, err = newLogger(level)
			if err != nil {
				return ctx, err
			}

			storePath := cfg.Store.Path
			if flags.StorePath != "" {
				storePath = flags.StorePath
			}
			flags.Store, err = task.NewStore(storePath)
			if err != nil {
				return ctx, fmt.Errorf("open task store: %w", err)
			}
			return ctx, nil
		},
	}

	commands.NewAddCmd(flags).Register(app)
	commands.NewListCmd(flags).Register(app)
	commands.NewMoveCmd(flags).Register(app)
	commands.NewDueCmd(flags).Register(app)
	commands.NewRepeatCmd(flags).Register(app)
	commands.NewDoCmd(flags).Register(app)
	commands.NewAgendaCmd(flags).Register(app)
	commands.NewClearCmd(flags).Register(app)
	commands.NewServeCmd(flags).Register(app)

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mdo: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q", level)
		}
		lvl = parsed
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
