package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the clinic_status MCP prompt.
// It instructs the AI to read and present the current working state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("clinic_status",
		mcp.WithPromptDescription(
			"Summarise the open patient and session: what is on the map, "+
				"whether there are unsaved changes and the latest activity.",
		),
	)
}

// Handle processes the clinic_status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Clinical session status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please read the `clinic://workspace/status` resource and run `clinic_history` with limit=10.\n\n" +
						"Then:\n" +
						"1. Tell me which workspace and patient are open\n" +
						"2. Summarise the session map by dimension\n" +
						"3. Warn me if there are changes that were never saved\n" +
						"4. List the latest activity in one line each",
				),
			},
		},
	}, nil
}
