// Package prompts implements MCP prompt handlers for the clinical records
// server.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the clinic_start MCP prompt.
// It guides the AI through opening a workspace and a patient session.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("clinic_start",
		mcp.WithPromptDescription(
			"Start a clinical session: select the records folder, open or create "+
				"the patient and begin a session map.",
		),
		mcp.WithArgument("patient_name",
			mcp.ArgumentDescription("Patient to open or create"),
		),
		mcp.WithArgument("workspace",
			mcp.ArgumentDescription("Absolute path of the records folder. Default: the configured folder"),
		),
	)
}

// Handle processes the clinic_start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var patient, folder string
	if args := req.Params.Arguments; args != nil {
		patient = strings.TrimSpace(args["patient_name"])
		folder = strings.TrimSpace(args["workspace"])
	}

	var sb strings.Builder
	sb.WriteString("I want to start a clinical session.\n\nPlease:\n")
	if folder != "" {
		fmt.Fprintf(&sb, "1. Run `clinic_select_workspace` with path='%s'\n", folder)
	} else {
		sb.WriteString("1. Run `clinic_select_workspace` (no path: use the configured folder)\n")
	}
	if patient != "" {
		fmt.Fprintf(&sb, "2. Run `clinic_list_patients`. If '%s' is listed, open it with `clinic_open_patient`; "+
			"otherwise ask me for sex and age and create it with `clinic_save_patient`\n", patient)
	} else {
		sb.WriteString("2. Run `clinic_list_patients` and ask me which patient to open, or whether to create a new one\n")
	}
	sb.WriteString("3. Ask me whether to continue the most recent session or start a new one with `clinic_new_session`\n")
	sb.WriteString("4. As I describe what I observe, place each process with `clinic_add_process` using the right dimension, " +
		"and link related processes with `clinic_connect_processes`\n")
	sb.WriteString("5. Run `clinic_save` when I say the session is done")

	description := "Start clinical session"
	if patient != "" {
		description = fmt.Sprintf("Start clinical session: %s", patient)
	}
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(sb.String()),
			},
		},
	}, nil
}
