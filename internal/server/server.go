// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/clinimap/internal/prompts"
	"github.com/HendryAvila/clinimap/internal/resources"
	"github.com/HendryAvila/clinimap/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ExportsDir is the default export folder inside the data directory.
const ExportsDir = "exports"

// New creates the MCP server with all tools, prompts and resources
// registered on top of app.
func New(app *App) *server.MCPServer {
	s := server.NewMCPServer(
		"clinimap",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Workspace & patients ---

	selectWorkspace := tools.NewSelectWorkspaceTool(app.State)
	s.AddTool(selectWorkspace.Definition(), selectWorkspace.Handle)

	listPatients := tools.NewListPatientsTool(app.Store)
	s.AddTool(listPatients.Definition(), listPatients.Handle)

	savePatient := tools.NewSavePatientTool(app.State)
	s.AddTool(savePatient.Definition(), savePatient.Handle)

	openPatient := tools.NewOpenPatientTool(app.State)
	s.AddTool(openPatient.Definition(), openPatient.Handle)

	// --- Session editing ---

	newSession := tools.NewNewSessionTool(app.State)
	s.AddTool(newSession.Definition(), newSession.Handle)

	addProcess := tools.NewAddProcessTool(app.State)
	s.AddTool(addProcess.Definition(), addProcess.Handle)

	editProcess := tools.NewEditProcessTool(app.State)
	s.AddTool(editProcess.Definition(), editProcess.Handle)

	connect := tools.NewConnectProcessesTool(app.State)
	s.AddTool(connect.Definition(), connect.Handle)

	save := tools.NewSaveTool(app.State)
	s.AddTool(save.Definition(), save.Handle)

	// --- Search, export, history ---

	searchTool := tools.NewSearchTool(app.State, app.Store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	exportTool := tools.NewExportTool(app.State, app.Store, app.Recorder(),
		app.Logger.Named("export"), filepath.Join(app.Config.DataDir, ExportsDir))
	s.AddTool(exportTool.Definition(), exportTool.Handle)

	// A nil *journal.Store must reach the tool as a nil interface.
	var history tools.EventLog
	if app.Journal != nil {
		history = app.Journal
	}
	historyTool := tools.NewHistoryTool(history)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	// --- Prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(app.State)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to use the server.
func serverInstructions() string {
	return `You have access to clinimap, a local clinical records server.

Records are plain JSON files inside a folder the clinician grants:
  Processos Clinicos/Pacientes/<patient>/dados.json
  Processos Clinicos/Pacientes/<patient>/Sessões/sessao_<YYYY-MM-DD>.json

## WORKFLOW

1. clinic_select_workspace: grant the records folder (once per run)
2. clinic_list_patients, then clinic_open_patient or clinic_save_patient
3. clinic_new_session to start today's map, or keep the most recent one
4. clinic_add_process for each observation, choosing one dimension:
   afeto, cognição, atenção, motivação, self (psychological) or
   biofisiologico, contexto, sociocultural (contextual levels)
5. clinic_connect_processes to relate processes (causal, correlacional,
   temporal, bidirectional); clinic_edit_process to fix or remove one
6. clinic_save when the clinician is done. Autosave may also run.

## RULES

- Never invent clinical content: only record what the clinician states.
- One session file per day: a second session on the same date replaces it.
- If a save reports the document changed elsewhere, re-open the patient.
- Use clinic_search to find earlier observations and clinic_export to
  produce a single-file backup of a patient.
- Read clinic://workspace/status to see what is open and unsaved.`
}
