package triage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Tomas-vilte/sonar-funnel/internal/config"
	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/report"
	"github.com/Tomas-vilte/sonar-funnel/internal/services"
	"github.com/Tomas-vilte/sonar-funnel/internal/services/cost"
	"github.com/Tomas-vilte/sonar-funnel/internal/ui"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

const defaultDays = 7

// Runner is a minimal interface for testing purposes
type Runner interface {
	Run(ctx context.Context, opts services.TriageOptions) (*services.TriageReport, error)
}

// ReportPoster delivers the chat report.
type ReportPoster interface {
	PostReport(ctx context.Context, text string) error
}

// Dependencies are the collaborators of one run. Poster is nil on dry runs.
type Dependencies struct {
	Runner Runner
	Poster ReportPoster
}

type DependencyProvider func(ctx context.Context, cfg *config.Config, dryRun bool) (*Dependencies, error)

// ConfigLoader reloads configuration when --config is given.
type ConfigLoader func(path string) (*config.Config, error)

// TriageCommandFactory is the factory to create the triage command.
type TriageCommandFactory struct {
	provider   DependencyProvider
	loadConfig ConfigLoader
	costs      *cost.Calculator
	stdout     io.Writer
	stderr     io.Writer
}

type Option func(*TriageCommandFactory)

// WithOutput replaces stdout and stderr, mostly for tests.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(f *TriageCommandFactory) {
		f.stdout = stdout
		f.stderr = stderr
	}
}

func WithConfigLoader(loader ConfigLoader) Option {
	return func(f *TriageCommandFactory) {
		f.loadConfig = loader
	}
}

func NewTriageCommandFactory(provider DependencyProvider, opts ...Option) *TriageCommandFactory {
	f := &TriageCommandFactory{
		provider: provider,
		loadConfig: func(path string) (*config.Config, error) {
			return config.Load(path)
		},
		costs:  cost.NewCalculator(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCommand creates the triage command. cfg is the configuration read
// from the environment and is replaced when --config points to a file.
func (f *TriageCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "triage",
		Usage:  t.GetMessage("triage_command_description", 0, nil),
		Flags:  f.createFlags(t),
		Action: f.createAction(t, cfg),
	}
}

func (f *TriageCommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "days",
			Value: defaultDays,
			Usage: t.GetMessage("flag_days_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   t.GetMessage("flag_verbose_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: t.GetMessage("flag_debug_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "execute",
			Usage: t.GetMessage("flag_execute_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: t.GetMessage("flag_dry_run_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: t.GetMessage("flag_source_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "format",
			Value: report.FormatTextName,
			Usage: t.GetMessage("flag_format_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: t.GetMessage("flag_config_usage", 0, nil),
		},
	}
}

func (f *TriageCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		execute, dryRun := cmd.Bool("execute"), cmd.Bool("dry-run")
		if execute == dryRun {
			return appErrors.ErrRunModeMissing
		}

		days := cmd.Int("days")
		if days < 0 {
			return appErrors.ErrInvalidDays.WithContext("days", fmt.Sprint(days))
		}

		format := cmd.String("format")
		if !report.ValidFormat(format) {
			return appErrors.ErrUnknownFormat.WithContext("format", format)
		}

		runCfg := cfg
		if path := cmd.String("config"); path != "" {
			loaded, err := f.loadConfig(path)
			if err != nil {
				return err
			}
			runCfg = loaded
		}
		if source := cmd.String("source"); source != "" {
			copied := *runCfg
			copied.Source = source
			runCfg = &copied
		}

		log := logger.New(f.stderr, cmd.Bool("debug"), cmd.Bool("verbose")).
			With("run_id", uuid.NewString())
		ctx = logger.WithLogger(ctx, log)

		if err := runCfg.Validate(dryRun); err != nil {
			return err
		}

		deps, err := f.provider(ctx, runCfg, dryRun)
		if err != nil {
			return err
		}

		return f.run(ctx, t, deps, runCfg.Source, days, format, dryRun)
	}
}

func (f *TriageCommandFactory) run(ctx context.Context, t *i18n.Translations, deps *Dependencies, source string, days int, format string, dryRun bool) error {
	ui.PrintProgress(f.stderr, t.GetMessage("fetching_issues", 0, map[string]interface{}{
		"Source": source,
		"Days":   days,
	}))

	result, err := deps.Runner.Run(ctx, services.TriageOptions{
		Days:   days,
		DryRun: dryRun,
		OnFetched: func(count int) {
			if count == 0 {
				return
			}
			ui.PrintProgress(f.stderr, t.GetMessage("issues_found", count, map[string]interface{}{"Count": count})+"\n")
		},
		OnAnalyze: func(bundle models.IssueBundle) {
			ui.PrintProgress(f.stderr, t.GetMessage("analyzing_issue", 0, map[string]interface{}{"Title": bundle.Title}))
		},
	})
	if err != nil {
		return err
	}

	if result.Empty() {
		ui.PrintProgress(f.stderr, t.GetMessage("no_issues_found", 0, nil))
		if format != "" && format != report.FormatTextName {
			if err := report.Render(f.stdout, format, result.Results); err != nil {
				return err
			}
		}
		return f.post(ctx, t, deps, report.FormatNoIssues(days))
	}

	if err := report.Render(f.stdout, format, result.Results); err != nil {
		return err
	}
	ui.PrintTokenUsage(f.stderr, result.Usage, f.costs.EstimateCost(result.Usage), t)

	return f.post(ctx, t, deps, report.FormatSlack(result.Results))
}

func (f *TriageCommandFactory) post(ctx context.Context, t *i18n.Translations, deps *Dependencies, text string) error {
	if deps.Poster == nil {
		logger.Info(ctx, "dry run, skipping slack")
		ui.PrintProgress(f.stderr, t.GetMessage("dry_run_skip", 0, nil))
		return nil
	}

	if err := deps.Poster.PostReport(ctx, text); err != nil {
		return err
	}
	ui.PrintSuccess(f.stderr, t.GetMessage("report_posted", 0, nil))
	return nil
}
