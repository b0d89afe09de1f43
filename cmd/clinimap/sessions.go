package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/clinimap/internal/records"
)

func sessionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <patient>",
		Short: "List a patient's sessions, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openWorkspaceApp(ctx, flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			sessions, err := app.Store.LoadSessions(ctx, args[0])
			var loadErr *records.LoadError
			if errors.As(err, &loadErr) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", loadErr)
			} else if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Fprintf(os.Stdout, "No sessions for %s.\n", args[0])
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(os.Stdout, "%s  %3d processes  %3d connections  %s\n",
					s.Date.UTC().Format("2006-01-02"), len(s.Processes), len(s.Connections), s.ID)
			}
			return nil
		},
	}
}
