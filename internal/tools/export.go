package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/clinimap/internal/appstate"
	"github.com/HendryAvila/clinimap/internal/export"
	"github.com/HendryAvila/clinimap/internal/records"
)

// ExportTool handles the clinic_export MCP tool.
type ExportTool struct {
	state      *appstate.State
	source     export.Source
	recorder   records.Recorder
	logger     *zap.Logger
	defaultDir string
}

// NewExportTool creates an ExportTool. Files go to defaultDir unless the
// call names another folder or path.
func NewExportTool(state *appstate.State, source export.Source, recorder records.Recorder, logger *zap.Logger, defaultDir string) *ExportTool {
	return &ExportTool{state: state, source: source, recorder: recorder, logger: logger, defaultDir: defaultDir}
}

// Definition returns the MCP tool definition for registration.
func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool("clinic_export",
		mcp.WithDescription(
			"Export a patient backup: the patient record, every session and the "+
				"current settings in a single JSON file named "+
				"'<name>_backup_<date>.json'. Format 'pdf' is accepted and produces nothing.",
		),
		mcp.WithString("patient",
			mcp.Description("Patient name (default: the open patient)"),
		),
		mcp.WithString("format",
			mcp.Description("json (default) or pdf"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Folder for the file (default: the exports folder of the data directory)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Exact file path; overrides output_dir and the suggested name"),
		),
	)
}

// Handle processes the clinic_export tool call.
func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := activePatientName(t.state, req.GetString("patient", ""))
	if err != nil {
		return errorResult("exporting", err), nil
	}
	format, err := export.ParseFormat(strings.TrimSpace(req.GetString("format", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dest := export.FileDestination{
		Dir:  strings.TrimSpace(req.GetString("output_dir", "")),
		Path: strings.TrimSpace(req.GetString("output_path", "")),
	}
	if dest.Dir == "" {
		dest.Dir = t.defaultDir
	}

	exporter := export.NewExporter(t.source, dest, t.state.Configuration,
		export.WithRecorder(t.recorder),
		export.WithLogger(t.logger),
	)
	file, err := exporter.ExportPatient(ctx, name, format)
	if err != nil {
		return errorResult("exporting", err), nil
	}
	if format == export.FormatPDF {
		return mcp.NewToolResultText("PDF export is not available; nothing was written."), nil
	}

	where := dest.Path
	if where == "" {
		where = filepath.Join(dest.Dir, file)
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"## Export Complete\n\n- **Patient:** %s\n- **File:** `%s`\n- **Schema version:** %s\n",
		name, where, export.SchemaVersion,
	)), nil
}
