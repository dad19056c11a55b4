package main

import (
	"errors"

	"stanchion/internal/config"
	"stanchion/internal/llm"
	"stanchion/internal/logging"
	"stanchion/internal/repository"

	"github.com/charmbracelet/glamour"
)

// errUnconfigured guides the user from a one-shot command to a working
// configuration.
var errUnconfigured = errors.New("Azure OpenAI is not configured: run 'stanchion setup' or set AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT_NAME")

// loadOrDefaultConfig returns the stored configuration, falling back to
// defaults plus environment variables when no config file exists. MCP
// clients commonly configure the server entirely through their env block,
// so a missing file is not an error here.
func loadOrDefaultConfig(logger *logging.AppLogger) *config.Config {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Debug("No stored configuration, using defaults and environment", "error", err)
		def := config.DefaultConfig()
		def.ApplyEnv()
		return &def
	}
	return cfg
}

// newCompleter builds the Azure OpenAI chat client from the resolved
// settings, consulting the OS keyring for the API key. It returns nil when
// the deployment is not configured; callers degrade (keyword template
// matching) or refuse (assessment) as appropriate.
func newCompleter(cfg *config.Config, logger *logging.AppLogger) llm.ChatCompleter {
	settings := llm.ResolveSettings(cfg, repository.NewCredentialManager())

	client, err := llm.New(settings, llm.WithLogger(logger))
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			logger.Warn("Azure OpenAI is not configured", "error", err)
		} else {
			logger.Error("Failed to create Azure OpenAI client", "error", err)
		}
		return nil
	}
	return client
}

// renderMarkdown renders a markdown verdict for the terminal. On any
// renderer failure the raw markdown is returned so output is never lost.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
