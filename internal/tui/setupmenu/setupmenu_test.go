package setupmenu

import (
	"errors"
	"os"
	"strings"
	"testing"

	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/internal/tui/helpers"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Helper functions

func createTestLogger(t *testing.T) *logging.AppLogger {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return logger
}

func createTestUIContext(t *testing.T) helpers.UIContext {
	t.Helper()
	logger := createTestLogger(t)
	return helpers.NewUIContext(100, 30, nil, logger)
}

func createTestModel(t *testing.T) *SetupModel {
	t.Helper()
	ctx := createTestUIContext(t)
	model := NewSetupModel(ctx)

	// Use test credential manager with cleanup
	testCredManager := repository.NewTestCredentialManager(t)
	model.credManager = testCredManager.CredentialManager

	return model
}

func createModelInState(t *testing.T, state SetupState) *SetupModel {
	t.Helper()
	model := createTestModel(t)
	model.state = state

	// Set up context based on state
	switch state {
	case SetupStateDeployment, SetupStateAPIVersion, SetupStateAPIKey:
		model.Endpoint = "https://contoso.openai.azure.com"
	case SetupStateLibraryBranch, SetupStateClonePath, SetupStateLibraryPAT:
		model.libraryType = LibraryTypeGit
		model.libraryTypeIndex = 2
		model.LibraryURL = "https://github.com/test/standards.git"
	case SetupStateConfirmation, SetupStateComplete:
		model.LibraryDir = "/test/library/dir"
	}

	if state == SetupStateClonePath || state == SetupStateLibraryPAT {
		model.LibraryBranch = "main"
	}
	if state == SetupStateLibraryPAT {
		model.LibraryDir = "~/test-standards"
	}

	return model
}

// Tests

func TestNewSetupModel(t *testing.T) {
	model := createTestModel(t)

	if model.state != SetupStateWelcome {
		t.Errorf("expected state %v, got %v", SetupStateWelcome, model.state)
	}
	if model.Cancelled {
		t.Error("expected Cancelled to be false")
	}
	if model.Endpoint != "" {
		t.Errorf("expected empty Endpoint, got %q", model.Endpoint)
	}
	if model.LibraryURL != "" {
		t.Errorf("expected empty LibraryURL, got %q", model.LibraryURL)
	}
	if !model.textInput.Focused() {
		t.Error("expected text input to be focused")
	}
	if model.logger == nil {
		t.Error("expected logger to be non-nil")
	}
}

func TestInit(t *testing.T) {
	model := createTestModel(t)
	cmd := model.Init()
	if cmd == nil {
		t.Error("expected Init to return non-nil cmd")
	}
}

func TestWelcomeState(t *testing.T) {
	tests := []struct {
		name          string
		key           tea.KeyType
		expectedState SetupState
		shouldQuit    bool
	}{
		{
			name:          "enter transitions to endpoint input",
			key:           tea.KeyEnter,
			expectedState: SetupStateEndpoint,
			shouldQuit:    false,
		},
		{
			name:          "space transitions to endpoint input",
			key:           tea.KeySpace,
			expectedState: SetupStateEndpoint,
			shouldQuit:    false,
		},
		{
			name:          "escape quits",
			key:           tea.KeyEscape,
			expectedState: SetupStateCancelled,
			shouldQuit:    true,
		},
		{
			name:          "q quits",
			key:           tea.KeyRunes,
			expectedState: SetupStateCancelled,
			shouldQuit:    true,
		},
		{
			name:          "ctrl+c quits",
			key:           tea.KeyCtrlC,
			expectedState: SetupStateCancelled,
			shouldQuit:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := createModelInState(t, SetupStateWelcome)

			var key tea.KeyMsg
			if tt.key == tea.KeyRunes {
				key = tea.KeyMsg{Type: tt.key, Runes: []rune("q")}
			} else {
				key = tea.KeyMsg{Type: tt.key}
			}

			updatedModel, _ := model.Update(key)
			model = updatedModel.(*SetupModel)

			if model.state != tt.expectedState {
				t.Errorf("expected state %v, got %v", tt.expectedState, model.state)
			}

			if tt.shouldQuit && !model.Cancelled {
				t.Error("expected Cancelled to be true")
			}
		})
	}
}

func TestEndpointInput(t *testing.T) {
	t.Run("valid https endpoint proceeds to deployment", func(t *testing.T) {
		model := createModelInState(t, SetupStateEndpoint)
		model.textInput.SetValue("https://contoso.openai.azure.com")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateDeployment {
			t.Errorf("expected state %v, got %v", SetupStateDeployment, model.state)
		}
		if model.Endpoint != "https://contoso.openai.azure.com" {
			t.Errorf("expected endpoint to be stored, got %q", model.Endpoint)
		}
	})

	t.Run("empty endpoint skips the Azure steps", func(t *testing.T) {
		model := createModelInState(t, SetupStateEndpoint)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryType {
			t.Errorf("expected state %v, got %v", SetupStateLibraryType, model.state)
		}
		if model.Endpoint != "" {
			t.Errorf("expected empty endpoint, got %q", model.Endpoint)
		}
	})

	t.Run("non-http endpoint shows error", func(t *testing.T) {
		model := createModelInState(t, SetupStateEndpoint)
		model.textInput.SetValue("contoso.openai.azure.com")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, cmd := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateEndpoint {
			t.Errorf("expected state %v, got %v", SetupStateEndpoint, model.state)
		}
		if cmd == nil {
			t.Fatal("expected non-nil cmd for error")
		}
		if _, ok := cmd().(setupErrorMsg); !ok {
			t.Error("expected setupErrorMsg")
		}
	})

	t.Run("escape goes back to welcome", func(t *testing.T) {
		model := createModelInState(t, SetupStateEndpoint)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateWelcome {
			t.Errorf("expected state %v, got %v", SetupStateWelcome, model.state)
		}
	})

	t.Run("typing updates input", func(t *testing.T) {
		model := createModelInState(t, SetupStateEndpoint)

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if !strings.Contains(model.textInput.Value(), "a") {
			t.Error("expected text input to contain 'a'")
		}
	})
}

func TestDeploymentInput(t *testing.T) {
	t.Run("deployment name proceeds to api version", func(t *testing.T) {
		model := createModelInState(t, SetupStateDeployment)
		model.textInput.SetValue("gpt-4o")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.Deployment != "gpt-4o" {
			t.Errorf("expected deployment 'gpt-4o', got %q", model.Deployment)
		}
		if model.state != SetupStateAPIVersion {
			t.Errorf("expected state %v, got %v", SetupStateAPIVersion, model.state)
		}
	})

	t.Run("empty deployment shows error", func(t *testing.T) {
		model := createModelInState(t, SetupStateDeployment)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, cmd := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateDeployment {
			t.Errorf("expected state %v, got %v", SetupStateDeployment, model.state)
		}
		if cmd == nil {
			t.Fatal("expected non-nil cmd for error")
		}
		if _, ok := cmd().(setupErrorMsg); !ok {
			t.Error("expected setupErrorMsg")
		}
	})

	t.Run("escape goes back to endpoint", func(t *testing.T) {
		model := createModelInState(t, SetupStateDeployment)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateEndpoint {
			t.Errorf("expected state %v, got %v", SetupStateEndpoint, model.state)
		}
	})
}

func TestAPIVersionInput(t *testing.T) {
	t.Run("version proceeds to api key in password mode", func(t *testing.T) {
		model := createModelInState(t, SetupStateAPIVersion)
		model.textInput.SetValue("2025-01-01")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.APIVersion != "2025-01-01" {
			t.Errorf("expected API version '2025-01-01', got %q", model.APIVersion)
		}
		if model.state != SetupStateAPIKey {
			t.Errorf("expected state %v, got %v", SetupStateAPIKey, model.state)
		}
		if model.textInput.EchoMode != textinput.EchoPassword {
			t.Errorf("expected EchoPassword mode, got %v", model.textInput.EchoMode)
		}
	})

	t.Run("empty version is allowed", func(t *testing.T) {
		model := createModelInState(t, SetupStateAPIVersion)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.APIVersion != "" {
			t.Errorf("expected empty API version, got %q", model.APIVersion)
		}
		if model.state != SetupStateAPIKey {
			t.Errorf("expected state %v, got %v", SetupStateAPIKey, model.state)
		}
	})
}

func TestAPIKeyInput(t *testing.T) {
	t.Run("key is held in memory and proceeds to library type", func(t *testing.T) {
		model := createModelInState(t, SetupStateAPIKey)
		model.textInput.SetValue("test-api-key")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.APIKey != "test-api-key" {
			t.Errorf("expected API key to be held, got %q", model.APIKey)
		}
		if model.state != SetupStateLibraryType {
			t.Errorf("expected state %v, got %v", SetupStateLibraryType, model.state)
		}
	})

	t.Run("empty key keeps the stored one", func(t *testing.T) {
		model := createModelInState(t, SetupStateAPIKey)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.APIKey != "" {
			t.Errorf("expected empty API key, got %q", model.APIKey)
		}
		if model.state != SetupStateLibraryType {
			t.Errorf("expected state %v, got %v", SetupStateLibraryType, model.state)
		}
	})

	t.Run("escape goes back to api version", func(t *testing.T) {
		model := createModelInState(t, SetupStateAPIKey)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateAPIVersion {
			t.Errorf("expected state %v, got %v", SetupStateAPIVersion, model.state)
		}
	})
}

func TestLibraryTypeSelection(t *testing.T) {
	t.Run("default selection is built-in", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		if model.libraryTypeIndex != 0 {
			t.Errorf("expected libraryTypeIndex 0, got %d", model.libraryTypeIndex)
		}
	})

	t.Run("down arrow navigates down", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		key := tea.KeyMsg{Type: tea.KeyDown}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryTypeIndex != 1 {
			t.Errorf("expected libraryTypeIndex 1, got %d", model.libraryTypeIndex)
		}
	})

	t.Run("j key navigates down", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryTypeIndex != 1 {
			t.Errorf("expected libraryTypeIndex 1, got %d", model.libraryTypeIndex)
		}
	})

	t.Run("up arrow stays at 0", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.libraryTypeIndex = 0

		key := tea.KeyMsg{Type: tea.KeyUp}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryTypeIndex != 0 {
			t.Errorf("expected libraryTypeIndex 0, got %d", model.libraryTypeIndex)
		}
	})

	t.Run("down arrow stops at 2", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.libraryTypeIndex = 2

		key := tea.KeyMsg{Type: tea.KeyDown}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryTypeIndex != 2 {
			t.Errorf("expected libraryTypeIndex 2, got %d", model.libraryTypeIndex)
		}
	})

	t.Run("enter selects built-in and goes straight to confirmation", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.libraryTypeIndex = 0

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryType != LibraryTypeBuiltin {
			t.Errorf("expected libraryType %v, got %v", LibraryTypeBuiltin, model.libraryType)
		}
		if model.state != SetupStateConfirmation {
			t.Errorf("expected state %v, got %v", SetupStateConfirmation, model.state)
		}
		if model.LibraryDir != repository.GetDefaultLibraryDir() {
			t.Errorf("expected default library dir, got %q", model.LibraryDir)
		}
	})

	t.Run("enter selects local and transitions", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.libraryTypeIndex = 1

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryType != LibraryTypeLocal {
			t.Errorf("expected libraryType %v, got %v", LibraryTypeLocal, model.libraryType)
		}
		if model.state != SetupStateLibraryDir {
			t.Errorf("expected state %v, got %v", SetupStateLibraryDir, model.state)
		}
	})

	t.Run("enter selects git and transitions", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.libraryTypeIndex = 2

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.libraryType != LibraryTypeGit {
			t.Errorf("expected libraryType %v, got %v", LibraryTypeGit, model.libraryType)
		}
		if model.state != SetupStateLibraryURL {
			t.Errorf("expected state %v, got %v", SetupStateLibraryURL, model.state)
		}
	})

	t.Run("escape without endpoint goes back to endpoint input", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.Endpoint = ""

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateEndpoint {
			t.Errorf("expected state %v, got %v", SetupStateEndpoint, model.state)
		}
	})

	t.Run("escape with endpoint goes back to api key", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryType)
		model.Endpoint = "https://contoso.openai.azure.com"

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateAPIKey {
			t.Errorf("expected state %v, got %v", SetupStateAPIKey, model.state)
		}
	})
}

func TestLibraryDirInput(t *testing.T) {
	t.Run("valid path proceeds to confirmation", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryDir)
		model.textInput.SetValue("~/test-standards")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateConfirmation {
			t.Errorf("expected state %v, got %v", SetupStateConfirmation, model.state)
		}
	})

	t.Run("empty path falls back to the default directory", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryDir)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateConfirmation {
			t.Errorf("expected state %v, got %v", SetupStateConfirmation, model.state)
		}
		if model.LibraryDir == "" {
			t.Error("expected library dir to be set to the default")
		}
	})

	t.Run("escape goes back to library type", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryDir)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryType {
			t.Errorf("expected state %v, got %v", SetupStateLibraryType, model.state)
		}
	})
}

func TestLibraryURLInput(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		shouldError   bool
		expectedState SetupState
	}{
		{
			name:          "valid https url",
			url:           "https://github.com/owner/standards.git",
			shouldError:   false,
			expectedState: SetupStateLibraryBranch,
		},
		{
			name:          "valid ssh url",
			url:           "git@github.com:owner/standards.git",
			shouldError:   false,
			expectedState: SetupStateLibraryBranch,
		},
		{
			name:          "valid http url",
			url:           "http://github.com/owner/standards.git",
			shouldError:   false,
			expectedState: SetupStateLibraryBranch,
		},
		{
			name:          "empty url",
			url:           "",
			shouldError:   true,
			expectedState: SetupStateLibraryURL,
		},
		{
			name:          "invalid format",
			url:           "invalid-url",
			shouldError:   true,
			expectedState: SetupStateLibraryURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := createModelInState(t, SetupStateLibraryURL)
			model.textInput.SetValue(tt.url)

			key := tea.KeyMsg{Type: tea.KeyEnter}
			updatedModel, cmd := model.Update(key)
			model = updatedModel.(*SetupModel)

			if model.state != tt.expectedState {
				t.Errorf("expected state %v, got %v", tt.expectedState, model.state)
			}

			if tt.shouldError {
				if cmd == nil {
					t.Error("expected non-nil cmd for error")
				} else {
					msg := cmd()
					if _, ok := msg.(setupErrorMsg); !ok {
						t.Error("expected setupErrorMsg")
					}
				}
			}
		})
	}
}

func TestLibraryBranchInput(t *testing.T) {
	t.Run("branch value is stored", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryBranch)
		model.textInput.SetValue("develop")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.LibraryBranch != "develop" {
			t.Errorf("expected branch 'develop', got %q", model.LibraryBranch)
		}
		if model.state != SetupStateClonePath {
			t.Errorf("expected state %v, got %v", SetupStateClonePath, model.state)
		}
	})

	t.Run("empty branch is allowed", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryBranch)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.LibraryBranch != "" {
			t.Errorf("expected empty branch, got %q", model.LibraryBranch)
		}
		if model.state != SetupStateClonePath {
			t.Errorf("expected state %v, got %v", SetupStateClonePath, model.state)
		}
	})

	t.Run("escape goes back to url", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryBranch)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryURL {
			t.Errorf("expected state %v, got %v", SetupStateLibraryURL, model.state)
		}
	})
}

func TestClonePathInput(t *testing.T) {
	t.Run("valid path proceeds to PAT in password mode", func(t *testing.T) {
		model := createModelInState(t, SetupStateClonePath)
		// Use temp dir which is guaranteed to be valid
		validPath := t.TempDir()
		model.textInput.SetValue(validPath)

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryPAT {
			t.Errorf("expected state %v, got %v", SetupStateLibraryPAT, model.state)
		}
		if model.textInput.EchoMode != textinput.EchoPassword {
			t.Errorf("expected EchoPassword mode, got %v", model.textInput.EchoMode)
		}
	})

	t.Run("empty path derives a default from the url", func(t *testing.T) {
		model := createModelInState(t, SetupStateClonePath)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryPAT {
			t.Errorf("expected state %v, got %v", SetupStateLibraryPAT, model.state)
		}
		if !strings.Contains(model.LibraryDir, "standards") {
			t.Errorf("expected derived path to carry the repo name, got %q", model.LibraryDir)
		}
	})

	t.Run("escape goes back to branch", func(t *testing.T) {
		model := createModelInState(t, SetupStateClonePath)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryBranch {
			t.Errorf("expected state %v, got %v", SetupStateLibraryBranch, model.state)
		}
	})
}

func TestLibraryPATInput(t *testing.T) {
	t.Run("token is held in memory and proceeds to confirmation", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryPAT)
		model.textInput.SetValue("ghp_testtoken")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.LibraryPAT != "ghp_testtoken" {
			t.Errorf("expected PAT to be held, got %q", model.LibraryPAT)
		}
		if model.state != SetupStateConfirmation {
			t.Errorf("expected state %v, got %v", SetupStateConfirmation, model.state)
		}
	})

	t.Run("empty token is allowed for public repos", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryPAT)
		model.textInput.SetValue("")

		key := tea.KeyMsg{Type: tea.KeyEnter}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.LibraryPAT != "" {
			t.Errorf("expected empty PAT, got %q", model.LibraryPAT)
		}
		if model.state != SetupStateConfirmation {
			t.Errorf("expected state %v, got %v", SetupStateConfirmation, model.state)
		}
	})

	t.Run("escape goes back to clone path", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryPAT)

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateClonePath {
			t.Errorf("expected state %v, got %v", SetupStateClonePath, model.state)
		}
	})
}

func TestConfirmationState(t *testing.T) {
	t.Run("y confirms local setup", func(t *testing.T) {
		_, cleanup := SetTestConfigPath(t)
		defer cleanup()

		model := createModelInState(t, SetupStateConfirmation)
		model.libraryType = LibraryTypeLocal
		model.LibraryDir = t.TempDir()

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}
		_, cmd := model.Update(key)

		if cmd == nil {
			t.Error("expected non-nil cmd")
		}
	})

	t.Run("n goes back to library dir for local", func(t *testing.T) {
		model := createModelInState(t, SetupStateConfirmation)
		model.libraryType = LibraryTypeLocal

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryDir {
			t.Errorf("expected state %v, got %v", SetupStateLibraryDir, model.state)
		}
	})

	t.Run("n goes back to PAT for git", func(t *testing.T) {
		model := createModelInState(t, SetupStateConfirmation)
		model.libraryType = LibraryTypeGit
		model.LibraryPAT = "test-token"

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryPAT {
			t.Errorf("expected state %v, got %v", SetupStateLibraryPAT, model.state)
		}
	})

	t.Run("n goes back to library type for built-in", func(t *testing.T) {
		model := createModelInState(t, SetupStateConfirmation)
		model.libraryType = LibraryTypeBuiltin

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryType {
			t.Errorf("expected state %v, got %v", SetupStateLibraryType, model.state)
		}
	})

	t.Run("escape goes back", func(t *testing.T) {
		model := createModelInState(t, SetupStateConfirmation)
		model.libraryType = LibraryTypeLocal

		key := tea.KeyMsg{Type: tea.KeyEscape}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.state != SetupStateLibraryDir {
			t.Errorf("expected state %v, got %v", SetupStateLibraryDir, model.state)
		}
	})
}

func TestErrorHandling(t *testing.T) {
	t.Run("error message displays error", func(t *testing.T) {
		model := createTestModel(t)
		testErr := errors.New("test error")

		updatedModel, _ := model.Update(setupErrorMsg{testErr})
		model = updatedModel.(*SetupModel)

		if model.layout.GetError() == nil {
			t.Error("expected layout to have error")
		}
	})

	t.Run("typing clears error", func(t *testing.T) {
		model := createModelInState(t, SetupStateLibraryDir)
		model.layout = model.layout.SetError(errors.New("test error"))

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}
		updatedModel, _ := model.Update(key)
		model = updatedModel.(*SetupModel)

		if model.layout.GetError() != nil {
			t.Error("expected error to be cleared")
		}
	})

	t.Run("complete message clears error and changes state", func(t *testing.T) {
		model := createTestModel(t)
		model.layout = model.layout.SetError(errors.New("test error"))

		updatedModel, _ := model.Update(setupCompleteMsg{})
		model = updatedModel.(*SetupModel)

		if model.layout.GetError() != nil {
			t.Error("expected error to be cleared")
		}
		if model.state != SetupStateComplete {
			t.Errorf("expected state %v, got %v", SetupStateComplete, model.state)
		}
	})
}

func TestViewRendering(t *testing.T) {
	tests := []struct {
		name     string
		state    SetupState
		contains []string
	}{
		{
			name:     "welcome view",
			state:    SetupStateWelcome,
			contains: []string{"Welcome"},
		},
		{
			name:     "endpoint view",
			state:    SetupStateEndpoint,
			contains: []string{"Endpoint"},
		},
		{
			name:     "deployment view",
			state:    SetupStateDeployment,
			contains: []string{"Deployment", "deployment name"},
		},
		{
			name:     "api version view",
			state:    SetupStateAPIVersion,
			contains: []string{"API Version"},
		},
		{
			name:     "api key view",
			state:    SetupStateAPIKey,
			contains: []string{"API Key", "keyring"},
		},
		{
			name:     "library type view",
			state:    SetupStateLibraryType,
			contains: []string{"Standards Library", "Built-in", "Local Directory", "Git Repository"},
		},
		{
			name:     "library dir view",
			state:    SetupStateLibraryDir,
			contains: []string{"Library Directory"},
		},
		{
			name:     "library url view",
			state:    SetupStateLibraryURL,
			contains: []string{"Repository URL"},
		},
		{
			name:     "branch view",
			state:    SetupStateLibraryBranch,
			contains: []string{"Branch"},
		},
		{
			name:     "clone path view",
			state:    SetupStateClonePath,
			contains: []string{"Clone Path"},
		},
		{
			name:     "pat view",
			state:    SetupStateLibraryPAT,
			contains: []string{"Access Token", "PAT"},
		},
		{
			name:     "complete view",
			state:    SetupStateComplete,
			contains: []string{"Setup Complete"},
		},
		{
			name:     "cancelled view",
			state:    SetupStateCancelled,
			contains: []string{"Setup Cancelled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := createModelInState(t, tt.state)
			view := model.View()

			for _, expected := range tt.contains {
				if !strings.Contains(view, expected) {
					t.Errorf("expected view to contain %q", expected)
				}
			}
		})
	}
}

func TestWindowSizeHandling(t *testing.T) {
	model := createTestModel(t)

	msg := tea.WindowSizeMsg{Width: 120, Height: 40}
	updatedModel, _ := model.Update(msg)
	model = updatedModel.(*SetupModel)

	// Just verify it doesn't panic
	if model == nil {
		t.Error("expected non-nil model after window size update")
	}
}

func TestPerformConfigCreation(t *testing.T) {
	t.Run("creates local config", func(t *testing.T) {
		_, cleanup := SetTestConfigPath(t)
		defer cleanup()

		model := createTestModel(t)
		model.libraryType = LibraryTypeLocal
		model.LibraryDir = CreateTempLibraryDir(t, "stanchion-test-local-")
		model.Endpoint = "https://contoso.openai.azure.com"
		model.Deployment = "gpt-4o"

		if err := model.performConfigCreation(); err != nil {
			t.Fatalf("unexpected error creating local config: %v", err)
		}

		cfg, err := LoadTestConfig(t)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if cfg.Azure.Endpoint != "https://contoso.openai.azure.com" {
			t.Errorf("expected endpoint to be saved, got %q", cfg.Azure.Endpoint)
		}
		if cfg.Azure.Deployment != "gpt-4o" {
			t.Errorf("expected deployment to be saved, got %q", cfg.Azure.Deployment)
		}
		if cfg.LibraryDir != model.LibraryDir {
			t.Errorf("expected library dir %q, got %q", model.LibraryDir, cfg.LibraryDir)
		}
		if cfg.Azure.APIKey != "" {
			t.Error("API key must never be written to the config file")
		}
	})

	t.Run("creates git config", func(t *testing.T) {
		_, cleanup := SetTestConfigPath(t)
		defer cleanup()

		model := createTestModel(t)
		model.libraryType = LibraryTypeGit
		model.LibraryURL = "https://github.com/test/standards.git"
		model.LibraryBranch = "main"
		model.LibraryDir = CreateTempLibraryDir(t, "stanchion-test-git-")

		if err := model.performConfigCreation(); err != nil {
			t.Fatalf("unexpected error creating git config: %v", err)
		}

		cfg, err := LoadTestConfig(t)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if cfg.LibraryURL != "https://github.com/test/standards.git" {
			t.Errorf("expected library url to be saved, got %q", cfg.LibraryURL)
		}
		if cfg.LibraryBranch != "main" {
			t.Errorf("expected branch to be saved, got %q", cfg.LibraryBranch)
		}
	})

	t.Run("built-in library seeds the directory", func(t *testing.T) {
		_, cleanup := SetTestConfigPath(t)
		defer cleanup()

		model := createTestModel(t)
		model.libraryType = LibraryTypeBuiltin
		model.LibraryDir = CreateTempLibraryDir(t, "stanchion-test-builtin-")

		if err := model.performConfigCreation(); err != nil {
			t.Fatalf("unexpected error creating built-in config: %v", err)
		}

		entries, err := os.ReadDir(model.LibraryDir)
		if err != nil {
			t.Fatalf("failed to read library dir: %v", err)
		}
		if len(entries) == 0 {
			t.Error("expected the bundled standards to be written to the library dir")
		}
	})
}

// Benchmarks

func BenchmarkUpdate(b *testing.B) {
	logger, _ := logging.NewTestLogger()
	ctx := helpers.NewUIContext(100, 30, nil, logger)
	model := NewSetupModel(ctx)
	key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		model.Update(key)
	}
}

func BenchmarkView(b *testing.B) {
	logger, _ := logging.NewTestLogger()
	ctx := helpers.NewUIContext(100, 30, nil, logger)
	model := NewSetupModel(ctx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		model.View()
	}
}
