package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stanchion/internal/llm"
)

// ErrNoTemplates is returned by Select when the catalog has nothing to offer.
// The MCP tool maps it to a fixed informational message instead of an error.
var ErrNoTemplates = errors.New("no templates available")

// selectionPrompt frames the template choice for the LLM. The model must
// answer with a bare filename; anything else falls back to keyword matching.
const selectionPrompt = `You are an Azure infrastructure expert. Based on the user's query, select the MOST APPROPRIATE template from the available options.

Available templates:
%s

Instructions:
1. Analyze the user's query to understand their infrastructure needs
2. Select the single best matching template filename
3. Respond with ONLY the filename (e.g., "azure-webapp.bicep")
4. Do not include any explanation or additional text

User query: %s`

// Select resolves the best template for a query and returns its name and
// content. When completer is non-nil the LLM picks first; an invalid answer
// or a transport failure degrades to keyword matching rather than erroring.
func (c *Catalog) Select(ctx context.Context, completer llm.ChatCompleter, query string) (string, string, error) {
	templates, err := c.List()
	if err != nil {
		return "", "", err
	}
	if len(templates) == 0 {
		return "", "", ErrNoTemplates
	}

	available := make([]string, len(templates))
	for i, t := range templates {
		available[i] = t.Name
	}

	selected := ""
	if completer != nil {
		selected = c.selectWithLLM(ctx, completer, query, templates, available)
	}
	if selected == "" {
		c.logger.Debug("Using keyword matching for template selection", "query", query)
		selected = MatchKeywords(query, available)
	}
	if !contains(available, selected) {
		selected = available[0]
	}

	content, err := c.Get(selected)
	if err != nil {
		return "", "", err
	}

	c.logger.Debug("Template selected", "query", query, "template", selected)
	return selected, content, nil
}

// Selector binds the catalog to an optional chat completer so callers that
// resolve templates repeatedly (the MCP tool handler in particular) don't
// thread the completer through every call.
type Selector struct {
	catalog   *Catalog
	completer llm.ChatCompleter
}

// Selector returns the catalog bound to completer. A nil completer means
// every selection uses keyword matching.
func (c *Catalog) Selector(completer llm.ChatCompleter) *Selector {
	return &Selector{catalog: c, completer: completer}
}

// Select resolves the best template for a query and returns its name and
// content.
func (s *Selector) Select(ctx context.Context, query string) (string, string, error) {
	return s.catalog.Select(ctx, s.completer, query)
}

// selectWithLLM asks the model to pick a filename. It returns "" whenever
// the answer cannot be trusted, signalling the caller to fall back.
func (c *Catalog) selectWithLLM(ctx context.Context, completer llm.ChatCompleter, query string, templates []Template, available []string) string {
	lines := make([]string, len(templates))
	for i, t := range templates {
		lines[i] = fmt.Sprintf("- %s: %s", t.Name, t.Description)
	}

	system := fmt.Sprintf(selectionPrompt, strings.Join(lines, "\n"), query)
	user := "Select the best template for: " + query

	answer, err := completer.Complete(ctx, system, user)
	if err != nil {
		c.logger.Warn("Template selection via LLM failed, falling back to keyword matching", "error", err)
		return ""
	}

	answer = strings.TrimSpace(answer)
	if !contains(available, answer) {
		c.logger.Warn("LLM returned invalid template, falling back to keyword matching", "answer", answer)
		return ""
	}
	return answer
}
