package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/config"
	"github.com/HendryAvila/clinimap/internal/journal"
	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/workspace"
)

// App holds the concrete components shared by the MCP server and the CLI
// commands.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Workspace *workspace.Manager
	Store     *records.Store
	State     *appstate.State

	// Journal is nil when the history database could not be opened.
	Journal *journal.Store
}

// NewApp resolves every dependency from cfg. The history database is an
// independent subsystem: if it fails to open, a warning is logged and the
// records keep working without it.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := records.ParseLoadPolicy(cfg.SessionLoadPolicy)
	if err != nil {
		return nil, err
	}

	var picker workspace.Picker
	if cfg.Workspace != "" {
		picker = workspace.PathPicker{Path: cfg.Workspace}
	}
	ws := workspace.NewManager(picker, workspace.WithLogger(logger.Named("workspace")))

	app := &App{Config: cfg, Logger: logger, Workspace: ws}

	jcfg := journal.DefaultConfig()
	jcfg.DataDir = cfg.DataDir
	j, err := journal.New(jcfg, logger.Named("journal"))
	if err != nil {
		logger.Warn("activity history disabled", zap.Error(err))
	} else {
		app.Journal = j
	}

	storeOpts := []records.StoreOption{
		records.WithLoadPolicy(policy),
		records.WithStoreLogger(logger.Named("records")),
	}
	if !cfg.RevisionCheck {
		storeOpts = append(storeOpts, records.WithoutRevisionCheck())
	}
	stateOpts := []appstate.Option{appstate.WithLogger(logger.Named("state"))}
	if app.Journal != nil {
		storeOpts = append(storeOpts, records.WithRecorder(app.Journal))
		stateOpts = append(stateOpts, appstate.WithRecorder(app.Journal))
	}

	app.Store = records.NewStore(ws, storeOpts...)
	app.State = appstate.New(app.Store, ws, cfg, stateOpts...)
	return app, nil
}

// SelectConfigured grants the workspace named in the config, if any.
func (a *App) SelectConfigured(ctx context.Context) error {
	if !a.Workspace.Supported() {
		return nil
	}
	_, err := a.Workspace.Select(ctx)
	return err
}

// Recorder returns the journal as a records.Recorder, or nil.
func (a *App) Recorder() records.Recorder {
	if a.Journal == nil {
		return nil
	}
	return a.Journal
}

// Close releases the workspace grant and the history database.
func (a *App) Close() {
	if err := a.Workspace.Close(); err != nil {
		a.Logger.Warn("closing workspace", zap.Error(err))
	}
	if a.Journal != nil {
		if err := a.Journal.Close(); err != nil {
			a.Logger.Warn("closing activity history", zap.Error(err))
		}
	}
}
