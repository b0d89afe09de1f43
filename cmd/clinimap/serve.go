package main

import (
	"context"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/clinimap/internal/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio.

If a workspace is configured it is granted at startup; otherwise the
assistant must call clinic_select_workspace with a path first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.SelectConfigured(ctx); err != nil {
				// The assistant can still pick a folder.
				app.Logger.Warn("configured workspace unavailable",
					zap.String("path", app.Config.Workspace), zap.Error(err))
			}

			go app.State.RunAutosave(ctx)

			app.Logger.Info("serving", zap.String("version", server.Version))
			serveErr := mcpserver.ServeStdio(server.New(app))

			if app.State.HasPendingChanges() {
				if err := app.State.Save(context.Background()); err != nil {
					app.Logger.Error("saving on shutdown", zap.Error(err))
				}
			}
			return serveErr
		},
	}
}
