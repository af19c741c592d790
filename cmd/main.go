package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Tomas-vilte/sonar-funnel/internal/cli/registry"
	"github.com/Tomas-vilte/sonar-funnel/internal/commands/triage"
	versioncmd "github.com/Tomas-vilte/sonar-funnel/internal/commands/version"
	cfg "github.com/Tomas-vilte/sonar-funnel/internal/config"
	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/Tomas-vilte/sonar-funnel/internal/services"
	"github.com/Tomas-vilte/sonar-funnel/internal/ui"
	"github.com/Tomas-vilte/sonar-funnel/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, translations, err := initializeApp()
	if err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, *i18n.Translations, error) {
	cfgApp, err := cfg.Load("")
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	triageFactory := triage.NewTriageCommandFactory(triage.BuildDependencies)

	registerCommand := registry.NewRegistry(cfgApp, translations)
	if err := registerCommand.Register("triage", triageFactory); err != nil {
		return nil, translations, err
	}
	checker := services.NewVersionChecker(version.FullVersion(), nil)
	if err := registerCommand.Register("version", versioncmd.NewVersionCommandFactory(version.FullVersion(), checker)); err != nil {
		return nil, translations, err
	}

	// Running without a subcommand behaves like "triage".
	root := triageFactory.CreateCommand(translations, cfgApp)

	return &cli.Command{
		Name:                  "sonar-funnel",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.Version,
		Description:           translations.GetMessage("app_description", 0, nil),
		Flags:                 root.Flags,
		Action:                root.Action,
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
	}, translations, nil
}
