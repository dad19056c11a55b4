package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stanchion/internal/logging"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ ChatCompleter = (*Client)(nil)

// Client talks to one Azure OpenAI chat deployment.
type Client struct {
	model  *Model
	logger *logging.AppLogger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger      *logging.AppLogger
	callOptions []llms.CallOption
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logging.AppLogger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithCallOptions adds default langchaingo call options (temperature, max
// tokens, ...) applied to every completion.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(o *clientOptions) { o.callOptions = append(o.callOptions, opts...) }
}

// New builds a Client for the given settings. It returns ErrNotConfigured
// (wrapped) when the settings are incomplete, so callers can pick a fallback
// instead of surfacing a transport error.
func New(settings Settings, opts ...Option) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	options := clientOptions{logger: logging.GetDefault()}
	for _, opt := range opts {
		opt(&options)
	}

	base, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(strings.TrimRight(settings.Endpoint, "/")),
		openai.WithToken(settings.APIKey),
		openai.WithModel(settings.Deployment),
		openai.WithAPIVersion(settings.APIVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}

	options.logger.Debug("Azure OpenAI client created",
		"endpoint", settings.Endpoint,
		"deployment", settings.Deployment,
		"api_version", settings.APIVersion)

	return &Client{
		model:  NewModel(base, options.callOptions...),
		logger: options.logger,
	}, nil
}

// Complete sends the system and user messages to the deployment and returns
// the first choice's text. The response is not post-processed.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("azure openai completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("azure openai returned no choices")
	}

	c.logger.Debug("Completion received", "choices", len(resp.Choices), "content_length", len(resp.Choices[0].Content))
	return resp.Choices[0].Content, nil
}
