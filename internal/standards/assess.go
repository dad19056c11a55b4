package standards

import (
	"context"
	"fmt"
	"strings"

	"stanchion/internal/llm"
)

// Assessor pairs the standards library with the chat deployment that reviews
// code against it. The MCP tool, the assess command, and the TUI all go
// through this type so the prompt assembly happens in exactly one place.
type Assessor struct {
	library   *Library
	completer llm.ChatCompleter
}

// NewAssessor builds an Assessor. completer may be nil when Azure OpenAI is
// not configured; Assess then reports llm.ErrNotConfigured.
func NewAssessor(library *Library, completer llm.ChatCompleter) *Assessor {
	return &Assessor{library: library, completer: completer}
}

// Configured reports whether the assessor has a chat deployment to talk to.
func (a *Assessor) Configured() bool {
	return a.completer != nil
}

// Assess sends the code to the deployment together with the assembled
// standards prompt and returns the model's verdict verbatim.
func (a *Assessor) Assess(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("nothing to assess: code is empty")
	}
	if a.completer == nil {
		return "", llm.ErrNotConfigured
	}

	system, err := a.library.BuildSystemPrompt()
	if err != nil {
		return "", fmt.Errorf("assemble standards prompt: %w", err)
	}

	return a.completer.Complete(ctx, system, code)
}
