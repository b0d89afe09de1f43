package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/clinimap/internal/records"
	"github.com/HendryAvila/clinimap/internal/search"
)

func searchCmd(flags *globalFlags) *cobra.Command {
	var (
		dimension string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search <patient> <term>",
		Short: "Search a patient's process texts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dimension != "" && !records.ValidDimension(records.Dimension(dimension)) {
				return fmt.Errorf("invalid dimension %q", dimension)
			}

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

			shown := 0
			for _, r := range search.Search(args[1], sessions) {
				if dimension != "" && r.Process.Dimension != records.Dimension(dimension) {
					continue
				}
				if limit > 0 && shown == limit {
					break
				}
				fmt.Fprintf(os.Stdout, "%s  [%s]  %s  (%d)\n",
					r.Session.Date.UTC().Format("2006-01-02"), r.Process.Dimension, r.Process.Text, r.Relevance)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(os.Stdout, "No matches.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "", "Only processes of this dimension")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results (0 = all)")
	return cmd
}
