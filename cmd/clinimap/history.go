package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/clinimap/internal/records"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	var (
		entity string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent activity from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			if app.Journal == nil {
				return errors.New("activity history is unavailable (see the log for the reason)")
			}

			var events []records.Event
			if entity != "" {
				events, err = app.Journal.ForEntity(ctx, entity, limit)
			} else {
				events, err = app.Journal.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(os.Stdout, "No activity recorded.")
				return nil
			}
			for _, ev := range events {
				fmt.Fprintf(os.Stdout, "%s  %-9s %-9s %s",
					ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Kind, ev.Entity, ev.EntityID)
				if len(ev.Data) > 0 {
					fmt.Fprintf(os.Stdout, "  %s", ev.Data)
				}
				fmt.Fprintln(os.Stdout)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Only events for this patient, session or process id")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum events")
	return cmd
}
