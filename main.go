package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/colonyops/signoff/internal/commands"
	"github.com/colonyops/signoff/internal/core/config"
	"github.com/colonyops/signoff/internal/core/logging"
	"github.com/colonyops/signoff/internal/metrics"
	"github.com/colonyops/signoff/internal/printer"
	"github.com/colonyops/signoff/internal/store/jsonfile"
	"github.com/colonyops/signoff/internal/workflow"
	"github.com/colonyops/signoff/pkg/logutils"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser  func()
		signoffApp = &workflow.App{}
		collector  = metrics.New()
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "signoff",
		Usage:     "Review and approve content bundles before publishing",
		UsageText: "signoff [global options] command [command options]",
		Description: `Signoff gates AI-drafted content on human review.

'signoff prepare' opens a review session for a Hugo page bundle and runs the
validation checkpoints. Reviewers leave inline comments, resolve them, and
approve or reject the session. Approval is refused until every checkpoint
passes and no comment is pending.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SIGNOFF_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/signoff.log, \"-\" for console output)",
				Sources:     cli.EnvVars("SIGNOFF_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SIGNOFF_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SIGNOFF_DATA_DIR", "AGENT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "metrics-file",
				Usage:       "write Prometheus metrics to this textfile after each command (overrides metrics.file)",
				Sources:     cli.EnvVars("SIGNOFF_METRICS_FILE"),
				Destination: &flags.MetricsFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Always log to a file; use explicit path or default to <datadir>/signoff.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			if flags.MetricsFile != "" {
				cfg.Metrics.File = flags.MetricsFile
			}

			sessions, err := jsonfile.OpenSessionStore(cfg.SessionsPath(), logging.Component("session-store"))
			if err != nil {
				return ctx, fmt.Errorf("open session store: %w", err)
			}
			metadata := jsonfile.NewMetadataStore(cfg.MetadataPath())

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*signoffApp = *workflow.NewApp(cfg, sessions, metadata, nil, collector, log.Logger)

			ctx = logging.WithCommand(ctx, c.Args().First())
			ctx = printer.NewContext(ctx, printer.New(c.Root().Writer, c.Root().ErrWriter))
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			defer func() {
				if logCloser != nil {
					logCloser()
				}
			}()

			if signoffApp.Reviews == nil || flags.Config == nil || flags.Config.Metrics.File == "" {
				return nil
			}

			if st, err := signoffApp.Reviews.GetStatistics(ctx); err == nil {
				collector.SetStatistics(st)
			}
			if err := collector.WriteTextfile(flags.Config.Metrics.File, time.Now()); err != nil {
				log.Error().Err(err).Str("path", flags.Config.Metrics.File).Msg("failed to write metrics textfile")
				return err
			}
			return nil
		},
	}

	app = commands.NewPrepareCmd(flags, signoffApp).Register(app)
	app = commands.NewStatusCmd(flags, signoffApp).Register(app)
	app = commands.NewCommentCmd(flags, signoffApp).Register(app)
	app = commands.NewApproveCmd(flags, signoffApp).Register(app)
	app = commands.NewSessionsCmd(flags, signoffApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
