package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func patientsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List the patients in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openWorkspaceApp(ctx, flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			names, err := app.Store.ListPatients(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(os.Stdout, "No patients.")
				return nil
			}

			for _, name := range names {
				p, err := app.Store.LoadPatient(ctx, name)
				if err != nil || p == nil {
					fmt.Fprintf(os.Stdout, "%s (unreadable)\n", name)
					continue
				}
				fmt.Fprintf(os.Stdout, "%s (%s, %d) [%d sessions]\n", p.Name, p.Sex, p.Age, len(p.Sessions))
			}
			return nil
		},
	}
}
