package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/clinimap/internal/export"
	"github.com/HendryAvila/clinimap/internal/server"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		outDir string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <patient>",
		Short: "Write a single-file backup of a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := openWorkspaceApp(ctx, flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			dir := outDir
			if dir == "" {
				dir = filepath.Join(app.Config.DataDir, server.ExportsDir)
			}
			dest := export.FileDestination{Dir: dir, Path: out}
			exp := export.NewExporter(app.Store, dest, app.State.Configuration,
				export.WithRecorder(app.Recorder()),
				export.WithLogger(app.Logger.Named("export")))

			name, err := exp.ExportPatient(ctx, args[0], f)
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintf(os.Stdout, "Format %s is not produced yet; nothing written.\n", f)
				return nil
			}
			written := out
			if written == "" {
				written = filepath.Join(dir, name)
			}
			fmt.Fprintf(os.Stdout, "Exported %s to %s\n", args[0], written)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or pdf")
	cmd.Flags().StringVar(&outDir, "output-dir", "", "Folder for the backup (default <data_dir>/exports)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Exact output file, overrides --output-dir")
	return cmd
}
