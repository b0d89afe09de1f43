package main

import (
	"github.com/spf13/cobra"

	"github.com/HendryAvila/clinimap/internal/server"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(server.Version)
		},
	}
}
