package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

var _ llms.Model = (*Model)(nil)

// Model wraps a langchaingo model so call options chosen at construction
// time are applied to every request, with per-call options layered on top.
type Model struct {
	model   llms.Model
	options []llms.CallOption
}

func NewModel(model llms.Model, options ...llms.CallOption) *Model {
	return &Model{
		model:   model,
		options: options,
	}
}

func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	all := make([]llms.CallOption, 0, len(m.options)+len(options))
	all = append(all, m.options...)
	all = append(all, options...)
	return m.model.GenerateContent(ctx, messages, all...)
}

// Call implements the deprecated single-prompt entry point of llms.Model.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("deprecated, call GenerateContent")
}
