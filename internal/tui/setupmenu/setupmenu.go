// Package setupmenu provides the setup wizard for the stanchion TUI application.
//
// This package implements a multi-step wizard that connects stanchion to an
// Azure OpenAI deployment and configures the enterprise standards library. It
// supports built-in defaults, a local directory, and git-backed libraries with
// secure access-token management.
//
// The setup flow consists of several states:
//   - Welcome: Introduction and overview
//   - Azure OpenAI: Endpoint → Deployment → API Version → API Key
//   - Library Type Selection: Built-in defaults, local directory, or git repository
//   - Local Flow: Library directory configuration
//   - Git Flow: URL → Branch → Clone Path → Access Token
//   - Confirmation: Review and confirm settings
//   - Complete/Cancelled: Final state
//
// Key features:
//   - Reference-based model functions for state management
//   - Secrets stored via OS keyring (never written to the config file)
//   - Validation at each step with helpful error messages
//   - Back navigation support with Escape key
//   - Re-runnable: existing configuration values are offered as defaults
//   - Responsive layout using centralized components
package setupmenu

import (
	"fmt"
	"strings"

	"stanchion/internal/config"
	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/internal/standards"
	"stanchion/internal/tui/components"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/styles"
	"stanchion/pkg/fileops"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SetupState represents the current state of the setup process
type SetupState int

const (
	SetupStateWelcome       SetupState = iota // Initial welcome screen
	SetupStateEndpoint                        // Azure OpenAI endpoint URL input
	SetupStateDeployment                      // Azure OpenAI deployment name input
	SetupStateAPIVersion                      // Azure OpenAI API version input (optional)
	SetupStateAPIKey                          // Azure OpenAI API key input (password-masked)
	SetupStateLibraryType                     // Choose built-in, local directory, or git library
	SetupStateLibraryDir                      // Local library directory input
	SetupStateLibraryURL                      // Git repository URL input
	SetupStateLibraryBranch                   // Branch name input (optional)
	SetupStateClonePath                       // Local clone path input
	SetupStateLibraryPAT                      // Git access token input (password-masked, optional)
	SetupStateConfirmation                    // Review and confirm configuration
	SetupStateComplete                        // Setup successfully completed
	SetupStateCancelled                       // Setup was cancelled by user
)

// LibraryType indicates how the enterprise standards library is sourced.
type LibraryType int

const (
	LibraryTypeBuiltin LibraryType = iota // Seed the default directory with the bundled standards
	LibraryTypeLocal                      // Use an existing local directory of standards documents
	LibraryTypeGit                        // Clone and sync a git repository of standards documents
)

// Custom messages for internal state transitions
type (
	setupErrorMsg    struct{ err error }
	setupCompleteMsg struct{}
)

// SetupModel manages the setup wizard state and user interactions.
// It implements the tea.Model interface for Bubble Tea TUI framework.
//
// The model uses reference-based methods (pointer receivers) throughout to ensure
// state changes are properly propagated across the event loop.
type SetupModel struct {
	// Current state in the setup wizard flow
	state SetupState

	// Library configuration
	libraryType      LibraryType // Built-in, local, or git
	libraryTypeIndex int         // Selected index in library type menu (0=Built-in, 1=Local, 2=Git)

	// Azure OpenAI connection details
	Endpoint   string // Azure OpenAI resource endpoint (empty = skip Azure setup)
	Deployment string // Model deployment name
	APIVersion string // Data-plane API version (empty = default)
	APIKey     string // API key (held in memory until final confirmation)

	// Standards library details
	LibraryDir    string // Directory holding the standards library (or clone target)
	LibraryURL    string // Git repository URL (HTTPS or SSH format)
	LibraryBranch string // Branch name (empty = use default branch)
	LibraryPAT    string // Git access token (held in memory until final confirmation)

	// Flow control
	Cancelled bool               // True if user cancelled setup
	embedded  bool               // True when running inside the main TUI rather than standalone
	logger    *logging.AppLogger // Structured logging

	// Existing configuration offered as defaults when re-running setup
	prefill *config.Config

	// Credential management
	credManager *repository.CredentialManager // Manages secure secret storage

	// UI components
	textInput textinput.Model        // Reused text input for all input screens
	layout    components.LayoutModel // Centralized layout and styling
}

// NewSetupModel creates a setup wizard model for standalone use, where
// finishing or cancelling the wizard quits the program. The caller inspects
// the Cancelled field after the program exits.
//
// Any configuration already present in ctx.Config is offered as defaults so
// the wizard can be re-run safely.
func NewSetupModel(ctx helpers.UIContext) *SetupModel {
	return newSetupModel(ctx, false)
}

// NewEmbeddedSetupModel creates a setup wizard model for use inside the main
// TUI. Finishing or cancelling navigates back to the main menu instead of
// quitting, and a completed setup triggers a config reload.
func NewEmbeddedSetupModel(ctx helpers.UIContext) *SetupModel {
	return newSetupModel(ctx, true)
}

func newSetupModel(ctx helpers.UIContext, embedded bool) *SetupModel {
	ti := textinput.New()
	ti.Placeholder = "https://your-resource.openai.azure.com/"
	ti.Focus()
	ti.CharLimit = 256

	// Create centralized layout - will be reconfigured per state
	layout := components.NewLayout(components.LayoutConfig{
		MarginX:  2,
		MarginY:  1,
		MaxWidth: 100,
	})

	// Apply window sizing if available
	if ctx.HasValidDimensions() {
		windowMsg := tea.WindowSizeMsg{Width: ctx.Width, Height: ctx.Height}
		layout, _ = layout.Update(windowMsg)
		ti.Width = layout.InputWidth()
	}

	return &SetupModel{
		state:       SetupStateWelcome,
		textInput:   ti,
		layout:      layout,
		logger:      ctx.Logger,
		embedded:    embedded,
		prefill:     ctx.Config,
		credManager: repository.NewCredentialManager(),
	}
}

// Init initializes the setup model when it's first started.
// Returns a command to start the text input cursor blinking.
func (m *SetupModel) Init() tea.Cmd {
	m.logger.Info("Setup model initialized")
	return textinput.Blink
}

// Update handles all incoming messages and delegates to appropriate state-specific handlers.
// This is the main event loop entry point for the Bubble Tea framework.
func (m *SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Log all messages for debugging
	m.logger.LogMessage(msg)

	// Update layout with window size changes
	m.layout, _ = m.layout.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Update layout and text input width responsively
		m.layout, _ = m.layout.Update(msg)
		m.textInput.Width = m.layout.InputWidth()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case setupErrorMsg:
		m.layout = m.layout.SetError(msg.err)
		return m, nil

	case setupCompleteMsg:
		m.state = SetupStateComplete
		m.layout = m.layout.ClearError()
		return m, nil
	}

	return m, cmd
}

// updateTextInput updates the text input component and clears any displayed errors.
// This is called for all keyboard input that modifies the text field.
func (m *SetupModel) updateTextInput(msg tea.Msg) (*SetupModel, tea.Cmd) {
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	// Clear error on input change
	if m.layout.GetError() != nil {
		m.layout = m.layout.ClearError()
	}
	return m, cmd
}

// handleKeyPress routes key press events to the appropriate state-specific handler.
// Ctrl+C cancels from anywhere; plain 'q' stays typable in the input screens
// and only cancels on the choice screens that handle it explicitly.
func (m *SetupModel) handleKeyPress(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}

	switch m.state {
	case SetupStateWelcome:
		return m.handleWelcomeKeys(msg)
	case SetupStateEndpoint:
		return m.handleEndpointKeys(msg)
	case SetupStateDeployment:
		return m.handleDeploymentKeys(msg)
	case SetupStateAPIVersion:
		return m.handleAPIVersionKeys(msg)
	case SetupStateAPIKey:
		return m.handleAPIKeyKeys(msg)
	case SetupStateLibraryType:
		return m.handleLibraryTypeKeys(msg)
	case SetupStateLibraryDir:
		return m.handleLibraryDirKeys(msg)
	case SetupStateLibraryURL:
		return m.handleLibraryURLKeys(msg)
	case SetupStateLibraryBranch:
		return m.handleLibraryBranchKeys(msg)
	case SetupStateClonePath:
		return m.handleClonePathKeys(msg)
	case SetupStateLibraryPAT:
		return m.handleLibraryPATKeys(msg)
	case SetupStateConfirmation:
		return m.handleConfirmationKeys(msg)
	default:
		// Complete or Cancelled: any key leaves the wizard
		if m.embedded {
			cmds := []tea.Cmd{func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }}
			if m.state == SetupStateComplete {
				cmds = append(cmds, config.ReloadConfig())
			}
			return m, tea.Batch(cmds...)
		}
		return m, tea.Quit
	}
}

// State-specific key handlers
// Each handler manages keyboard input for its respective setup state.

// handleWelcomeKeys handles input on the welcome screen.
// Enter/Space: proceed to endpoint input
// Esc/q: quit setup
func (m *SetupModel) handleWelcomeKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		return m, m.resetTextInputForState(SetupStateEndpoint, m.prefillEndpoint(), "https://your-resource.openai.azure.com/", textinput.EchoNormal)
	case "esc", "q":
		return m.handleQuit()
	}
	return m, nil
}

// handleEndpointKeys handles input on the Azure OpenAI endpoint screen.
// Enter: validate URL and proceed to deployment input (empty skips Azure setup)
// Esc: go back to welcome
// Other keys: update text input
func (m *SetupModel) handleEndpointKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("endpoint_submit", m.textInput.Value())

		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			// Azure OpenAI can be configured later through environment
			// variables; the assessment tools report what is missing until then.
			m.Endpoint = ""
			m.Deployment = ""
			m.APIVersion = ""
			m.APIKey = ""
			m.logger.LogStateTransition("SetupModel", "SetupStateEndpoint", "SetupStateLibraryType")
			m.state = SetupStateLibraryType
			m.layout = m.layout.ClearError()
			return m, nil
		}

		if !strings.HasPrefix(input, "https://") && !strings.HasPrefix(input, "http://") {
			return m, func() tea.Msg {
				return setupErrorMsg{fmt.Errorf("invalid endpoint - must start with https://")}
			}
		}

		m.Endpoint = input
		return m, m.resetTextInputForState(SetupStateDeployment, m.prefillDeployment(), "gpt-4o", textinput.EchoNormal)

	case "esc":
		m.state = SetupStateWelcome
		m.layout = m.layout.ClearError()
		return m, nil
	default:
		return m.updateTextInput(msg)
	}
}

// handleDeploymentKeys handles input on the deployment name screen.
// Enter: validate non-empty name and proceed to API version input
// Esc: go back to endpoint input
// Other keys: update text input
func (m *SetupModel) handleDeploymentKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("deployment_submit", m.textInput.Value())

		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, func() tea.Msg { return setupErrorMsg{fmt.Errorf("deployment name cannot be empty")} }
		}

		m.Deployment = input
		return m, m.resetTextInputForState(SetupStateAPIVersion, m.prefillAPIVersion(), config.DefaultAPIVersion+" (leave empty for default)", textinput.EchoNormal)

	case "esc":
		return m, m.resetTextInputForState(SetupStateEndpoint, m.prefillEndpoint(), "https://your-resource.openai.azure.com/", textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleAPIVersionKeys handles input on the API version screen.
// Enter: accept version (empty = use default) and proceed to API key input
// Esc: go back to deployment input
// Other keys: update text input
func (m *SetupModel) handleAPIVersionKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.APIVersion = strings.TrimSpace(m.textInput.Value())
		m.logger.LogUserAction("api_version_submit", m.APIVersion)
		return m, m.resetTextInputForState(SetupStateAPIKey, "", "paste your Azure OpenAI API key", textinput.EchoPassword)
	case "esc":
		return m, m.resetTextInputForState(SetupStateDeployment, m.prefillDeployment(), "gpt-4o", textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleAPIKeyKeys handles input on the API key screen.
// Enter: hold the key in memory and proceed to library type selection; an
// empty value keeps whatever the keyring or AZURE_OPENAI_API_KEY provides
// Esc: go back to API version input
// Other keys: update text input (displayed as asterisks via EchoPassword mode)
func (m *SetupModel) handleAPIKeyKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("api_key_submit", "[REDACTED]")

		// The key is stored in the OS keyring only at final confirmation.
		m.APIKey = strings.TrimSpace(m.textInput.Value())
		m.logger.LogStateTransition("SetupModel", "SetupStateAPIKey", "SetupStateLibraryType")
		m.state = SetupStateLibraryType
		m.layout = m.layout.ClearError()
		return m, nil

	case "esc":
		return m, m.resetTextInputForState(SetupStateAPIVersion, m.prefillAPIVersion(), config.DefaultAPIVersion+" (leave empty for default)", textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleLibraryTypeKeys handles input on the library type selection screen.
// Up/Down/j/k: navigate between the built-in, local, and git options
// Enter/Space: select current option and proceed
// Esc: go back to the Azure OpenAI steps
// q: cancel setup
func (m *SetupModel) handleLibraryTypeKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.libraryTypeIndex > 0 {
			m.libraryTypeIndex--
		}
	case "down", "j":
		if m.libraryTypeIndex < 2 {
			m.libraryTypeIndex++
		}
	case "enter", " ":
		m.libraryType = LibraryType(m.libraryTypeIndex)
		switch m.libraryType {
		case LibraryTypeBuiltin:
			m.LibraryDir = repository.GetDefaultLibraryDir()
			m.LibraryURL = ""
			m.LibraryBranch = ""
			m.logger.LogStateTransition("SetupModel", "SetupStateLibraryType", "SetupStateConfirmation")
			m.state = SetupStateConfirmation
			m.layout = m.layout.ClearError()
			return m, nil
		case LibraryTypeLocal:
			m.LibraryURL = ""
			m.LibraryBranch = ""
			defaultDir := repository.GetDefaultLibraryDir()
			return m, m.resetTextInputForState(SetupStateLibraryDir, m.prefillLibraryDir(), defaultDir, textinput.EchoNormal)
		case LibraryTypeGit:
			return m, m.resetTextInputForState(SetupStateLibraryURL, m.prefillLibraryURL(), "https://github.com/org/standards.git", textinput.EchoNormal)
		}
	case "esc":
		if m.Endpoint == "" {
			return m, m.resetTextInputForState(SetupStateEndpoint, m.prefillEndpoint(), "https://your-resource.openai.azure.com/", textinput.EchoNormal)
		}
		return m, m.resetTextInputForState(SetupStateAPIKey, "", "paste your Azure OpenAI API key", textinput.EchoPassword)
	case "q":
		return m.handleQuit()
	}
	return m, nil
}

// handleLibraryDirKeys handles input on the local library directory screen.
// Enter: validate path and proceed to confirmation (empty = default directory)
// Esc: go back to library type selection
// Other keys: update text input
func (m *SetupModel) handleLibraryDirKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("library_dir_submit", m.textInput.Value())

		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			input = repository.GetDefaultLibraryDir()
		}
		m.logger.Debug("Validating library directory", "path", input)

		if err := fileops.ValidateStoragePath(input); err != nil {
			m.logger.Warn("Library directory validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}

		m.LibraryDir = fileops.ExpandPath(input)
		m.logger.LogStateTransition("SetupModel", "SetupStateLibraryDir", "SetupStateConfirmation")
		m.state = SetupStateConfirmation
		m.layout = m.layout.ClearError()
		return m, nil

	case "esc":
		m.state = SetupStateLibraryType
		m.layout = m.layout.ClearError()
		return m, nil
	default:
		return m.updateTextInput(msg)
	}
}

// handleLibraryURLKeys handles input on the git repository URL screen.
// Enter: validate URL format and proceed to branch input
// Esc: go back to library type selection
// Other keys: update text input
func (m *SetupModel) handleLibraryURLKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("library_url_submit", m.textInput.Value())

		input := strings.TrimSpace(m.textInput.Value())
		m.logger.Debug("Validating library repository URL", "url", input)

		if input == "" {
			return m, func() tea.Msg { return setupErrorMsg{fmt.Errorf("repository URL cannot be empty")} }
		}

		if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") && !strings.HasPrefix(input, "git@") {
			return m, func() tea.Msg {
				return setupErrorMsg{fmt.Errorf("invalid repository URL format - must start with https://, http://, or git@")}
			}
		}

		if _, err := repository.ParseGitURL(input); err != nil {
			return m, func() tea.Msg { return setupErrorMsg{fmt.Errorf("invalid repository URL: %w", err)} }
		}

		m.LibraryURL = input
		return m, m.resetTextInputForState(SetupStateLibraryBranch, m.prefillLibraryBranch(), "main (leave empty for default)", textinput.EchoNormal)

	case "esc":
		m.state = SetupStateLibraryType
		m.layout = m.layout.ClearError()
		return m, nil
	default:
		return m.updateTextInput(msg)
	}
}

// handleLibraryBranchKeys handles input on the branch name screen.
// Enter: accept branch (empty = use default) and proceed to clone path
// Esc: go back to URL input
// Other keys: update text input
func (m *SetupModel) handleLibraryBranchKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.LibraryBranch = strings.TrimSpace(m.textInput.Value())
		m.logger.LogUserAction("library_branch_submit", m.LibraryBranch)
		return m, m.resetTextInputForState(SetupStateClonePath, "", m.deriveClonePathPlaceholder(), textinput.EchoNormal)
	case "esc":
		return m, m.resetTextInputForState(SetupStateLibraryURL, m.prefillLibraryURL(), "https://github.com/org/standards.git", textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleClonePathKeys handles input on the local clone path screen.
// Enter: validate path and proceed to access token input (empty = derived default)
// Esc: go back to branch input
// Other keys: update text input
func (m *SetupModel) handleClonePathKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("clone_path_submit", m.textInput.Value())

		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			input = m.deriveClonePathPlaceholder()
		}
		m.logger.Debug("Validating library clone path", "path", input)

		if err := fileops.ValidateStoragePath(input); err != nil {
			m.logger.Warn("Library clone path validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}

		m.LibraryDir = fileops.ExpandPath(input)
		return m, m.resetTextInputForState(SetupStateLibraryPAT, "", "ghp_xxxxxxxxxxxxxxxxxxxxxxxx (empty for public repos)", textinput.EchoPassword)

	case "esc":
		return m, m.resetTextInputForState(SetupStateLibraryBranch, m.prefillLibraryBranch(), "main (leave empty for default)", textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleLibraryPATKeys handles input on the git access token screen.
// Enter: hold the token in memory and proceed to confirmation; empty is fine
// for public repositories or when a token is already stored
// Esc: go back to clone path input
// Other keys: update text input (displayed as asterisks via EchoPassword mode)
func (m *SetupModel) handleLibraryPATKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.logger.LogUserAction("library_pat_submit", "[REDACTED]")

		// The token is stored in the OS keyring only at final confirmation.
		m.LibraryPAT = strings.TrimSpace(m.textInput.Value())
		m.logger.LogStateTransition("SetupModel", "SetupStateLibraryPAT", "SetupStateConfirmation")
		m.state = SetupStateConfirmation
		m.layout = m.layout.ClearError()
		return m, nil

	case "esc":
		return m, m.resetTextInputForState(SetupStateClonePath, "", m.deriveClonePathPlaceholder(), textinput.EchoNormal)
	default:
		return m.updateTextInput(msg)
	}
}

// handleConfirmationKeys handles input on the confirmation screen.
// y/Y/Enter: accept configuration and create config file
// n/N/Esc: go back to the last input screen for the chosen library type
// q: cancel setup
func (m *SetupModel) handleConfirmationKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "n", "N", "esc":
		m.logger.LogUserAction("confirmation_reject", "going back")
		switch m.libraryType {
		case LibraryTypeLocal:
			return m, m.resetTextInputForState(SetupStateLibraryDir, m.LibraryDir, repository.GetDefaultLibraryDir(), textinput.EchoNormal)
		case LibraryTypeGit:
			return m, m.resetTextInputForState(SetupStateLibraryPAT, "", "ghp_xxxxxxxxxxxxxxxxxxxxxxxx (empty for public repos)", textinput.EchoPassword)
		default:
			m.state = SetupStateLibraryType
			m.layout = m.layout.ClearError()
			return m, nil
		}
	case "y", "Y", "enter":
		m.logger.LogUserAction("confirmation_accept", "creating config")
		return m, m.createConfig()
	case "q":
		return m.handleQuit()
	}
	return m, nil
}

// createConfig returns a Bubble Tea command that creates the configuration file.
// This runs asynchronously to avoid blocking the UI during file operations.
func (m *SetupModel) createConfig() tea.Cmd {
	return func() tea.Msg {
		m.logger.Info("Creating configuration", "library_dir", m.LibraryDir, "library_url", m.LibraryURL)
		if err := m.performConfigCreation(); err != nil {
			m.logger.Error("Configuration creation failed", "error", err)
			return setupErrorMsg{err}
		}
		m.logger.Info("Configuration created successfully")
		return setupCompleteMsg{}
	}
}

// handleQuit marks the setup as cancelled. Embedded wizards navigate back to
// the main menu; standalone wizards show the cancelled screen until a key
// press quits the program.
func (m *SetupModel) handleQuit() (*SetupModel, tea.Cmd) {
	m.logger.Warn("Setup cancelled by user")
	m.Cancelled = true
	m.state = SetupStateCancelled
	if m.embedded {
		return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
	}
	return m, nil
}

// performConfigCreation creates and saves the configuration based on user choices.
// Secrets are stored via the credential manager at this point and never written
// to the config file. Choosing the built-in library seeds the default directory
// with the bundled standards documents.
func (m *SetupModel) performConfigCreation() error {
	cfg := config.DefaultConfig()

	cfg.Azure.Endpoint = m.Endpoint
	cfg.Azure.Deployment = m.Deployment
	if m.APIVersion != "" {
		cfg.Azure.APIVersion = m.APIVersion
	}

	cfg.LibraryDir = m.LibraryDir
	cfg.LibraryURL = m.LibraryURL
	cfg.LibraryBranch = m.LibraryBranch
	if m.prefill != nil {
		cfg.TemplatesDir = m.prefill.TemplatesDir
	}

	if m.APIKey != "" {
		m.logger.Debug("Storing Azure OpenAI API key in keyring")
		if err := m.credManager.StoreAzureAPIKey(m.APIKey); err != nil {
			return fmt.Errorf("failed to store Azure OpenAI API key: %w", err)
		}
	}

	if m.LibraryPAT != "" {
		m.logger.Debug("Storing git access token in keyring")
		if err := m.credManager.StoreGitHubToken(m.LibraryPAT); err != nil {
			return fmt.Errorf("failed to store git access token: %w", err)
		}
	}

	if err := config.CreateNewConfig(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if m.libraryType == LibraryTypeBuiltin {
		if err := standards.Install(cfg.LibraryDir, false, m.logger); err != nil {
			return fmt.Errorf("failed to seed built-in standards: %w", err)
		}
	}

	return nil
}

// View renders the appropriate screen based on the current setup state.
// This is the main rendering function for the Bubble Tea framework.
func (m *SetupModel) View() string {
	switch m.state {
	case SetupStateWelcome:
		return m.viewWelcome()
	case SetupStateEndpoint:
		return m.viewEndpoint()
	case SetupStateDeployment:
		return m.viewDeployment()
	case SetupStateAPIVersion:
		return m.viewAPIVersion()
	case SetupStateAPIKey:
		return m.viewAPIKey()
	case SetupStateLibraryType:
		return m.viewLibraryType()
	case SetupStateLibraryDir:
		return m.viewLibraryDir()
	case SetupStateLibraryURL:
		return m.viewLibraryURL()
	case SetupStateLibraryBranch:
		return m.viewLibraryBranch()
	case SetupStateClonePath:
		return m.viewClonePath()
	case SetupStateLibraryPAT:
		return m.viewLibraryPAT()
	case SetupStateConfirmation:
		return m.viewConfirmation()
	case SetupStateComplete:
		return m.viewComplete()
	case SetupStateCancelled:
		return m.viewCancelled()
	}
	return ""
}

// View rendering functions
// Each function renders the UI for its respective setup state using the centralized layout.

// viewWelcome renders the welcome/introduction screen.
func (m *SetupModel) viewWelcome() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔧 Welcome to Stanchion!",
		Subtitle: "Let's set up your configuration.",
		HelpText: "Press Enter to continue, or Esc to cancel",
	})

	content := `Stanchion assesses Azure infrastructure code against your enterprise security standards using Azure OpenAI.

We'll need to set up:
• Azure OpenAI connection (endpoint, deployment, API key)
• The standards library your code is assessed against

The standards library can use the built-in defaults, a local directory of markdown documents, or a git repository shared across your team. Secrets are stored in your OS keyring, never in plain text.`

	return m.layout.Render(content)
}

// viewEndpoint renders the Azure OpenAI endpoint input screen.
func (m *SetupModel) viewEndpoint() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "☁️ Azure OpenAI Endpoint",
		Subtitle: "Which Azure OpenAI resource should assessments use?",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty to configure later",
	})

	explanation := `Enter the endpoint URL of your Azure OpenAI resource. You can find it under "Keys and Endpoint" in the Azure portal.

Leaving this empty skips the Azure OpenAI steps; assessments will explain what is missing until the AZURE_OPENAI_* environment variables are set or setup is re-run.`

	prompt := "Endpoint URL:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewDeployment renders the deployment name input screen.
func (m *SetupModel) viewDeployment() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🧠 Model Deployment",
		Subtitle: "Which model deployment should run the assessments?",
		HelpText: "Press Enter to continue • Esc to go back",
	})

	explanation := `Enter the name of the model deployment on your Azure OpenAI resource. This is the deployment name you chose when deploying the model, not the underlying model identifier.

Reasoning-capable chat models give the most useful compliance verdicts.`

	prompt := "Deployment name:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewAPIVersion renders the API version input screen.
// Users can leave this empty to use the default data-plane version.
func (m *SetupModel) viewAPIVersion() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🗓 API Version",
		Subtitle: "Which Azure OpenAI API version should be used? (optional)",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty for " + config.DefaultAPIVersion,
	})

	explanation := fmt.Sprintf(`Azure OpenAI pins requests to a data-plane API version. Unless your deployment requires a specific one, the default (%s) is a safe choice.`, config.DefaultAPIVersion)

	prompt := "API version (optional):"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewAPIKey renders the API key input screen.
// The text input is in EchoPassword mode, displaying asterisks instead of the actual key.
func (m *SetupModel) viewAPIKey() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔑 Azure OpenAI API Key",
		Subtitle: "Enter the API key for your Azure OpenAI resource",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty to keep the current key",
	})

	explanation := `The API key authenticates requests to your Azure OpenAI resource.

🔒 Security Assurance:
• Your key is securely stored in your OS keyring (Keychain/Credential Manager)
• Never stored in plain text files or configuration
• The AZURE_OPENAI_API_KEY environment variable takes precedence when set

Leave this empty to keep a previously stored key or rely on the environment variable.`

	prompt := "API key:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewLibraryType renders the library type selection screen with three options:
// built-in defaults, local directory, and git repository. Visual indicators
// show the selected option.
func (m *SetupModel) viewLibraryType() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "📚 Standards Library",
		Subtitle: "Where should your enterprise security standards come from?",
		HelpText: "Use ↑/↓ to select • Press Enter to continue • Esc to go back • q to cancel",
	})

	content := `Choose how the standards library used during assessments is sourced:

`

	builtinIndicator := "  "
	if m.libraryTypeIndex == 0 {
		builtinIndicator = "▶ "
	}
	content += fmt.Sprintf("%s📦 Built-in Defaults\n", builtinIndicator)
	content += "     Seed the default directory with the bundled security standards\n"
	content += "     Best for trying stanchion out or as a starting point to edit\n\n"

	localIndicator := "  "
	if m.libraryTypeIndex == 1 {
		localIndicator = "▶ "
	}
	content += fmt.Sprintf("%s📁 Local Directory\n", localIndicator)
	content += "     Point at a directory of markdown standards you already maintain\n"
	content += "     Perfect for personal use or single-machine setups\n\n"

	gitIndicator := "  "
	if m.libraryTypeIndex == 2 {
		gitIndicator = "▶ "
	}
	content += fmt.Sprintf("%s🐙 Git Repository\n", gitIndicator)
	content += "     Clone and sync a shared standards repository\n"
	content += "     Keeps the whole team assessing against the same standards\n"
	content += "     Private repositories need an access token for authentication"

	return m.layout.Render(content)
}

// viewLibraryDir renders the local library directory input screen.
func (m *SetupModel) viewLibraryDir() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "📁 Library Directory",
		Subtitle: "Where are your standards documents stored?",
		HelpText: "Press Enter to continue • Esc to go back • Use ~ for home directory",
	})

	explanation := `This directory holds the markdown documents describing your enterprise security standards. Each document becomes part of the assessment prompt sent to Azure OpenAI.

The directory is created if it does not exist yet.`

	prompt := "Library directory path:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewLibraryURL renders the git repository URL input screen.
// Includes security note about token storage in OS keyring.
func (m *SetupModel) viewLibraryURL() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🐙 Library Repository URL",
		Subtitle: "Enter the URL of your standards repository",
		HelpText: "Press Enter to continue • Esc to go back",
	})

	explanation := `Enter the HTTPS or SSH URL of the git repository where your standards documents are stored.

🔒 Security Note: Any access token will be securely stored in your OS keyring and never stored in plain text.

Examples:
• https://github.com/org/standards.git
• git@github.com:org/standards.git`

	prompt := "Repository URL:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewLibraryBranch renders the branch name input screen.
// Users can leave this empty to use the repository's default branch.
func (m *SetupModel) viewLibraryBranch() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🌿 Branch",
		Subtitle: "Which branch should we use? (optional)",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty for default branch",
	})

	explanation := `Specify the branch to sync standards from. If left empty, the repository's default branch will be used automatically.

Common branch names: main, master, develop`

	prompt := "Branch name (optional):"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewClonePath renders the local clone path input screen.
func (m *SetupModel) viewClonePath() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "💾 Clone Path",
		Subtitle: "Where should we clone the repository locally?",
		HelpText: "Press Enter to continue • Esc to go back • Use ~ for home directory",
	})

	explanation := `This is where the standards repository will be cloned and cached locally. The path should be accessible and writable.

Syncing (from the main menu or 'stanchion standards sync') keeps the clone up to date with the remote.`

	prompt := "Local clone path:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewLibraryPAT renders the git access token input screen.
// The text input is in EchoPassword mode, displaying asterisks instead of the actual token.
func (m *SetupModel) viewLibraryPAT() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔑 Git Access Token",
		Subtitle: "Enter an access token for the repository (optional)",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty for public repos",
	})

	explanation := `A Personal Access Token (PAT) is required to sync standards from private repositories.

🔒 Security Assurance:
• Your token is securely stored in your OS keyring (Keychain/Credential Manager)
• Never stored in plain text files or configuration
• Can be updated anytime by re-running setup

Required scopes: 'repo' (for private repos) or 'public_repo' (for public repos)

Generate a token at: https://github.com/settings/tokens`

	prompt := "Access token (optional):"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewConfirmation renders the configuration review and confirmation screen.
// Displays different information based on the Azure and library choices made.
func (m *SetupModel) viewConfirmation() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "✅ Confirm Configuration",
		Subtitle: "Please review your settings:",
		HelpText: "Press y to confirm • n to go back • q to cancel",
	})

	var azure string
	if m.Endpoint == "" {
		azure = `Azure OpenAI: not configured
(assessments stay disabled until the AZURE_OPENAI_* variables are set or setup is re-run)`
	} else {
		apiVersion := m.APIVersion
		if apiVersion == "" {
			apiVersion = config.DefaultAPIVersion + " (default)"
		}
		apiKey := "[unchanged - keyring or AZURE_OPENAI_API_KEY]"
		if m.APIKey != "" {
			apiKey = "[securely stored in OS keyring]"
		}
		azure = fmt.Sprintf(`Azure OpenAI Endpoint: %s
Deployment: %s
API Version: %s
API Key: %s`, m.Endpoint, m.Deployment, apiVersion, apiKey)
	}

	var library string
	switch m.libraryType {
	case LibraryTypeBuiltin:
		library = fmt.Sprintf(`Standards Library: Built-in Defaults
Library Directory: %s`, m.LibraryDir)
	case LibraryTypeLocal:
		library = fmt.Sprintf(`Standards Library: Local Directory
Library Directory: %s`, m.LibraryDir)
	case LibraryTypeGit:
		branch := m.LibraryBranch
		if branch == "" {
			branch = "(default branch)"
		}
		token := "none (public repository)"
		if m.LibraryPAT != "" {
			token = "[securely stored in OS keyring]"
		}
		library = fmt.Sprintf(`Standards Library: Git Repository
Repository URL: %s
Branch: %s
Local Clone Path: %s
Access Token: %s`, m.LibraryURL, branch, m.LibraryDir, token)
	}

	prompt := "Is this correct? (Y/n)"
	content := fmt.Sprintf("%s\n\n%s\n\n%s", azure, library, prompt)

	return m.layout.Render(content)
}

// viewComplete renders the success screen after configuration is created.
func (m *SetupModel) viewComplete() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🎉 Setup Complete!",
		Subtitle: "Stanchion has been configured successfully.",
		HelpText: "Press any key to continue",
	})

	var content string
	switch m.libraryType {
	case LibraryTypeGit:
		branch := m.LibraryBranch
		if branch == "" {
			branch = "(default branch)"
		}
		content = fmt.Sprintf(`Configuration saved successfully!

Standards Library: Git Repository
Repository URL: %s
Branch: %s
Local Clone Path: %s

Run a library sync (main menu or 'stanchion standards sync') to fetch the standards. Assessments through the TUI, CLI, and MCP server will all use this configuration.`, m.LibraryURL, branch, m.LibraryDir)
	case LibraryTypeBuiltin:
		content = fmt.Sprintf(`Configuration saved successfully!

Standards Library: Built-in Defaults
Library Directory: %s

The bundled security standards have been written to the library directory. Edit them or add your own markdown documents; assessments pick up changes automatically.`, m.LibraryDir)
	default:
		content = fmt.Sprintf(`Configuration saved successfully!

Standards Library: Local Directory
Library Directory: %s

Assessments through the TUI, CLI, and MCP server will use the standards documents in this directory.`, m.LibraryDir)
	}

	return m.layout.Render(content)
}

// viewCancelled renders the cancellation screen when setup is aborted.
func (m *SetupModel) viewCancelled() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "❌ Setup Cancelled",
		Subtitle: "Stanchion will not be configured.",
		HelpText: "Press any key to continue",
	})

	content := `Setup was cancelled. Stanchion has not been configured and will need to be set up before assessments can run.`

	return m.layout.Render(content)
}

// Helper functions

// resetTextInputForState is a helper function that resets the text input and transitions to a new state.
// This reduces code duplication across state transition logic.
//
// Parameters:
//   - state: The target state to transition to
//   - value: The initial value for the text input
//   - placeholder: The placeholder text to display
//   - echoMode: The echo mode (Normal or Password) for the input
//
// Returns a Bubble Tea command for the text input blink animation.
func (m *SetupModel) resetTextInputForState(state SetupState, value, placeholder string, echoMode textinput.EchoMode) tea.Cmd {
	m.state = state
	m.textInput.Reset()
	m.textInput.SetValue(value)
	m.textInput.Placeholder = placeholder
	m.textInput.EchoMode = echoMode
	m.textInput.Focus()
	m.layout = m.layout.ClearError()
	return textinput.Blink
}

// deriveClonePathPlaceholder returns a smart default clone path based on the repository URL.
// It extracts the repository name from the URL and derives a path in the application data
// directory. If URL parsing fails, it returns the default library directory.
func (m *SetupModel) deriveClonePathPlaceholder() string {
	if m.LibraryURL != "" {
		if info, err := repository.ParseGitURL(m.LibraryURL); err == nil && info.Repo != "" {
			return repository.GetDefaultGitClonePath(info.Repo)
		}
	}
	return repository.GetDefaultLibraryDir()
}

// Prefill helpers surface existing configuration values as input defaults when
// the wizard is re-run.

func (m *SetupModel) prefillEndpoint() string {
	if m.prefill != nil && m.prefill.Azure.EndpointConfigured() {
		return m.prefill.Azure.Endpoint
	}
	return ""
}

func (m *SetupModel) prefillDeployment() string {
	if m.prefill != nil {
		return m.prefill.Azure.Deployment
	}
	return ""
}

func (m *SetupModel) prefillAPIVersion() string {
	if m.prefill != nil && m.prefill.Azure.APIVersion != config.DefaultAPIVersion {
		return m.prefill.Azure.APIVersion
	}
	return ""
}

func (m *SetupModel) prefillLibraryDir() string {
	if m.prefill != nil {
		return m.prefill.LibraryDir
	}
	return ""
}

func (m *SetupModel) prefillLibraryURL() string {
	if m.prefill != nil {
		return m.prefill.LibraryURL
	}
	return ""
}

func (m *SetupModel) prefillLibraryBranch() string {
	if m.prefill != nil {
		return m.prefill.LibraryBranch
	}
	return ""
}
