package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(res.Messages))
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Messages[0].Content)
	}
	return tc.Text
}

func TestStartPrompt_WithArguments(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"patient_name": "Ana", "workspace": "/srv/prontuarios"}

	res, err := NewStartPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, res)
	for _, want := range []string{"path='/srv/prontuarios'", "'Ana'", "clinic_new_session", "clinic_save"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
	if res.Description != "Start clinical session: Ana" {
		t.Errorf("Description = %s", res.Description)
	}
}

func TestStartPrompt_Defaults(t *testing.T) {
	res, err := NewStartPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if text := promptText(t, res); !strings.Contains(text, "ask me which patient") {
		t.Errorf("unexpected prompt:\n%s", text)
	}
}

func TestPromptNames(t *testing.T) {
	if got := NewStartPrompt().Definition().Name; got != "clinic_start" {
		t.Errorf("start prompt name = %s", got)
	}
	if got := NewStatusPrompt().Definition().Name; got != "clinic_status" {
		t.Errorf("status prompt name = %s", got)
	}
}
