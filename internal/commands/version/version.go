package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Tomas-vilte/sonar-funnel/internal/config"
	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/Tomas-vilte/sonar-funnel/internal/ui"
	"github.com/urfave/cli/v3"
)

type updateChecker interface {
	LatestVersion(ctx context.Context) (string, error)
	IsUpdateAvailable(latest string) bool
}

type VersionCommandFactory struct {
	currentVersion string
	checker        updateChecker
	out            io.Writer
}

func NewVersionCommandFactory(currentVersion string, checker updateChecker) *VersionCommandFactory {
	return &VersionCommandFactory{
		currentVersion: currentVersion,
		checker:        checker,
		out:            os.Stdout,
	}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version_command_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: t.GetMessage("flag_check_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, _ = fmt.Fprintln(f.out, f.currentVersion)
			if !cmd.Bool("check") || f.checker == nil {
				return nil
			}

			latest, err := f.checker.LatestVersion(ctx)
			if err != nil {
				ui.PrintWarning(f.out, t.GetMessage("update_check_failed", 0, nil))
				return nil
			}
			if f.checker.IsUpdateAvailable(latest) {
				ui.PrintWarning(f.out, t.GetMessage("update_available", 0, map[string]interface{}{
					"Current": f.currentVersion,
					"Latest":  latest,
				}))
				return nil
			}
			ui.PrintSuccess(f.out, t.GetMessage("up_to_date", 0, nil))
			return nil
		},
	}
}
