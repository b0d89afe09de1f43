package main

import (
	"context"
	"fmt"

	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/logging"
	"github.com/HendryAvila/clinimap/internal/server"
)

// openApp loads the config, applies flag overrides and builds the App.
func openApp(flags *globalFlags) (*server.App, error) {
	path := flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.workspace != "" {
		cfg.Workspace = flags.workspace
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return server.NewApp(cfg, logger)
}

// openWorkspaceApp is openApp for commands that read records: the
// workspace must be configured and grantable.
func openWorkspaceApp(ctx context.Context, flags *globalFlags) (*server.App, error) {
	app, err := openApp(flags)
	if err != nil {
		return nil, err
	}
	if app.Config.Workspace == "" {
		app.Close()
		return nil, fmt.Errorf("no workspace: pass --workspace or set 'workspace' in the config file")
	}
	if err := app.SelectConfigured(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("opening workspace %s: %w", app.Config.Workspace, err)
	}
	return app, nil
}

func closeApp(app *server.App) {
	app.Close()
	_ = app.Logger.Sync()
}
