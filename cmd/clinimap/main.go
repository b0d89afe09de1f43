// clinimap: local clinical process-map records.
//
// Patients and their therapy sessions are kept as JSON documents inside a
// folder the clinician chooses. The records are edited by an AI assistant
// through the MCP server, or inspected from the command line.
//
// Usage:
//
//	clinimap serve                     # Start MCP server (stdio transport)
//	clinimap patients                  # List patients
//	clinimap sessions <name>           # List a patient's sessions
//	clinimap search <name> <term>      # Search a patient's process texts
//	clinimap export <name>             # Write a patient backup
//	clinimap history                   # Show recent activity
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	workspace  string
	verbose    bool
}

func main() {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "clinimap",
		Short:        "Local clinical process-map records",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.clinimap/config.yaml)")
	root.PersistentFlags().StringVar(&flags.workspace, "workspace", "", "Records folder, overrides the config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging on stderr")

	root.AddCommand(serveCmd(flags))
	root.AddCommand(patientsCmd(flags))
	root.AddCommand(sessionsCmd(flags))
	root.AddCommand(searchCmd(flags))
	root.AddCommand(exportCmd(flags))
	root.AddCommand(historyCmd(flags))
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
