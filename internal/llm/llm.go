// Package llm provides the Azure OpenAI chat client used for standards
// assessments and template selection.
//
// The package exposes a narrow ChatCompleter interface so callers (MCP tool
// handlers, the TUI, one-shot CLI commands) depend only on "send a system and
// a user message, get text back". The concrete Client is built on langchaingo
// configured for the Azure OpenAI API surface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stanchion/internal/config"
)

// ErrNotConfigured is returned when the Azure OpenAI connection settings are
// missing or still carry placeholder values. Callers decide whether that is
// fatal (code assessment) or triggers a degraded path (keyword-based template
// selection).
var ErrNotConfigured = errors.New("azure openai is not configured")

// ChatCompleter is the seam between the LLM transport and everything that
// needs a completion. Implementations must be safe for concurrent use.
type ChatCompleter interface {
	// Complete sends one system and one user message to the chat deployment
	// and returns the assistant's text verbatim.
	Complete(ctx context.Context, system, user string) (string, error)
}

// KeyStore yields the Azure OpenAI API key from secure storage. The
// repository package's CredentialManager satisfies this.
type KeyStore interface {
	AzureAPIKey() (string, error)
}

// Settings holds the resolved connection parameters for one chat deployment.
type Settings struct {
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string
}

// Validate reports ErrNotConfigured (wrapped with the offending fields) when
// the settings cannot produce a working client. Placeholder values from a
// freshly templated config count as missing.
func (s Settings) Validate() error {
	var missing []string
	if s.Endpoint == "" || s.Endpoint == config.PlaceholderEndpoint {
		missing = append(missing, "endpoint")
	}
	if s.APIKey == "" || s.APIKey == config.PlaceholderAPIKey {
		missing = append(missing, "api key")
	}
	if s.Deployment == "" {
		missing = append(missing, "deployment")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// ResolveSettings assembles Settings from the application config, falling
// back to the OS keyring for the API key when the config file and
// environment leave it unset. A nil keys store skips the keyring lookup.
// Environment overrides are already folded in by config.Load.
func ResolveSettings(cfg *config.Config, keys KeyStore) Settings {
	s := Settings{
		Endpoint:   cfg.Azure.Endpoint,
		Deployment: cfg.Azure.Deployment,
		APIVersion: cfg.Azure.APIVersion,
		APIKey:     cfg.Azure.APIKey,
	}
	if s.APIVersion == "" {
		s.APIVersion = config.DefaultAPIVersion
	}
	if (s.APIKey == "" || s.APIKey == config.PlaceholderAPIKey) && keys != nil {
		if key, err := keys.AzureAPIKey(); err == nil && key != "" {
			s.APIKey = key
		}
	}
	return s
}
