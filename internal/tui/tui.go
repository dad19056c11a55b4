// Package tui provides the interactive terminal interface for stanchion.
//
// The interface is built on the Bubble Tea framework with Lipgloss styling.
// A list-based main menu routes to feature models, each owning one workflow:
//
//   - Assess: pick an infrastructure code file and review it against the
//     enterprise standards library with Azure OpenAI
//   - Browse: inspect the standards documents assessments are based on
//   - Sync: update a git-backed standards library from its remote
//   - Settings: re-run the configuration wizard
//
// The TUI follows a state-based architecture: MainModel owns the menu and
// delegates to the active feature model, which signals completion through
// helpers.NavigateToMainMenuMsg. Errors bubble up as ErrorMsg and render on a
// shared error screen.
package tui

import (
	"fmt"

	"stanchion/internal/config"
	"stanchion/internal/logging"
	"stanchion/internal/tui/assessmenu"
	"stanchion/internal/tui/browsemenu"
	"stanchion/internal/tui/components"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/setupmenu"
	"stanchion/internal/tui/syncmenu"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// AppState represents the current state of the TUI application.
// Each state corresponds to a different view or mode of operation.
type AppState int

const (
	// StateMenu represents the main navigation menu
	StateMenu AppState = iota
	StateError
	StateQuitting

	StateAssess
	StateBrowse
	StateSync
	StateSettings
)

// Custom messages for internal state transitions
type (
	NavigateMsg struct {
		State AppState
	}

	ErrorMsg struct {
		Err error
	}
)

// MenuItemModel interface for menu item models.
// Any model that can be displayed as a menu item must implement this interface,
// which requires implementing the tea.Model interface for Bubble Tea compatibility.
type MenuItemModel interface {
	tea.Model
}

// Enhanced item struct with model reference
type item struct {
	title       string
	description string
	state       AppState
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.description }
func (i item) FilterValue() string { return i.title }

// MainModel is the root model for the TUI application.
//
// It coordinates the main menu, state transitions, window sizing, and the
// currently active feature model. Feature models are created fresh on every
// selection so they always see the latest configuration.
type MainModel struct {
	config    *config.Config
	logger    *logging.AppLogger
	state     AppState
	prevState AppState // For returning from error states

	// Main menu list
	menu list.Model

	// Current active model (always fresh, no caching)
	activeModel MenuItemModel

	// Layout for consistent UI
	layout components.LayoutModel

	// Window dimensions for creating submodels
	windowWidth  int
	windowHeight int

	// UI state
	err error
}

func NewMainModel(cfg *config.Config, logger *logging.AppLogger) *MainModel {
	// Create menu items with model references
	items := []list.Item{
		item{
			title:       "🔍  Assess infrastructure code",
			description: "Pick a Bicep, ARM, Terraform or YAML file from the current directory and\nreview it against your enterprise security standards with Azure OpenAI.",
			state:       StateAssess,
		},
		item{
			title:       "📚  Browse standards library",
			description: "Inspect the standards documents that assessments are based on.",
			state:       StateBrowse,
		},
		item{
			title:       "🔄  Sync standards library",
			description: "Fetch the latest standards from the configured git remote.\nLibraries without a remote are skipped.",
			state:       StateSync,
		},
		item{
			title:       "⚙️  Update settings",
			description: "Re-run the configuration wizard: Azure OpenAI connection and\nstandards library source.",
			state:       StateSettings,
		},
	}

	// Create list with items
	menuList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menuList.Title = "" // We'll use the layout for titles
	menuList.SetShowTitle(false)
	menuList.SetShowStatusBar(false)
	menuList.SetFilteringEnabled(true)
	menuList.SetShowHelp(false) // We'll use the layout for help

	// Create layout
	layout := components.NewLayout(components.LayoutConfig{
		MarginX:  2,
		MarginY:  1,
		MaxWidth: 100,
	})

	return &MainModel{
		config:    cfg,
		logger:    logger,
		state:     StateMenu,
		prevState: StateMenu,
		menu:      menuList,
		layout:    layout,
	}
}

func (m *MainModel) Init() tea.Cmd {
	m.logger.Info("MainModel initialized")
	return nil
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	// log only strategic events
	if wm, ok := msg.(tea.WindowSizeMsg); ok {
		m.logger.Debug("window resize", "width", wm.Width, "height", wm.Height)
	}

	// Update layout first for size changes
	m.layout, _ = m.layout.Update(msg)

	// Single comprehensive switch statement handling all message types and states
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Store window dimensions for creating submodels
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

		// Handle window resize with validation
		if msg.Width > 0 && msg.Height > 0 {
			v := 14 // footer margins
			m.menu.SetSize(msg.Width-4, msg.Height-v)

			// Propagate size to active model if present
			if m.activeModel != nil {
				updatedModel, modelCmd := m.activeModel.Update(msg)
				m.activeModel = updatedModel.(MenuItemModel)
				if modelCmd != nil {
					cmds = append(cmds, modelCmd)
				}
			}
		} else {
			m.logger.Warn("Invalid window dimensions received", "width", msg.Width, "height", msg.Height)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:

		if msg.String() == "ctrl+c" {
			// Handle global quit commands
			m.state = StateQuitting
			return m, tea.Quit
		}

		// Handle keyboard input based on current state
		switch m.state {
		case StateMenu:
			switch msg.String() {
			case "q":
				// Handle quit only when not filtering
				if m.menu.FilterState() != list.Filtering {
					m.state = StateQuitting
					return m, tea.Quit
				}
				// When filtering, pass "q" to the menu for filtering
				m.menu, cmd = m.menu.Update(msg)
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
			case "enter":
				// Handle menu selection only when not filtering
				if m.menu.FilterState() != list.Filtering {
					if selectedItem, ok := m.menu.SelectedItem().(item); ok {
						m.logger.LogUserAction("menu_selection", selectedItem.title)
						return m.handleMenuSelection(selectedItem)
					}
				}
				// When filtering, pass enter to the menu
				m.menu, cmd = m.menu.Update(msg)
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
			default:
				// Update the menu list for navigation/filtering
				m.menu, cmd = m.menu.Update(msg)
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
			}

		case StateError:
			switch msg.String() {
			case "esc":
				m.logger.LogStateTransition("MainModel", "StateError", "StateMenu")
				m.state = StateMenu
				m.err = nil
				m.layout = m.layout.ClearError()
				return m, nil
			}

		case StateAssess, StateBrowse, StateSync, StateSettings:
			// Delegate all messages to active model - they handle their own navigation
			if m.activeModel != nil {
				updatedModel, modelCmd := m.activeModel.Update(msg)
				m.activeModel = updatedModel.(MenuItemModel)
				if modelCmd != nil {
					cmds = append(cmds, modelCmd)
				}
			}
		}

	case list.FilterMatchesMsg:
		// update the menu with filter matches for menu state only
		switch m.state {
		case StateMenu:
			m.menu, cmd = m.menu.Update(msg)
			if cmd != nil {
				return m, nil
			}
		}

	case NavigateMsg:
		// Handle navigation between states
		m.prevState = m.state
		m.state = msg.State
		m.err = nil
		m.layout = m.layout.ClearError()
		return m, nil

	case ErrorMsg:
		// Handle error display
		m.logger.Error("Application error occurred", "error", msg.Err)
		m.err = msg.Err
		m.prevState = m.state
		m.state = StateError
		m.layout = m.layout.SetError(msg.Err)
		return m, nil

	case helpers.NavigateToMainMenuMsg:
		// Handle navigation back to main menu from any submodel
		m.logger.LogStateTransition("MainModel", "FeatureState", "StateMenu")
		return m.returnToMenu(), nil

	case config.ReloadConfigMsg:
		// Handle config reload after the settings wizard saves
		if msg.Error != nil {
			m.logger.Error("Failed to reload configuration", "error", msg.Error)
			return m, func() tea.Msg { return ErrorMsg{Err: msg.Error} }
		}
		if msg.Config != nil {
			m.logger.Info("Configuration reloaded successfully")
			m.config = msg.Config
		}
		return m, nil

	default:
		// Handle any unrecognized message types
		// Delegate to active model if present
		if m.activeModel != nil {
			updatedModel, modelCmd := m.activeModel.Update(msg)
			if menuModel, ok := updatedModel.(MenuItemModel); ok {
				m.activeModel = menuModel
				if modelCmd != nil {
					cmds = append(cmds, modelCmd)
				}
			} else {
				m.logger.Error("Active model returned invalid type, returning to menu")
				return m.returnToMenu(), nil
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// handleMenuSelection processes menu item selections using model-based approach
func (m *MainModel) handleMenuSelection(selectedItem item) (tea.Model, tea.Cmd) {
	// Get or initialize the model for this menu item
	model := m.getOrInitializeModel(selectedItem.state)

	if model == nil {
		return m, func() tea.Msg {
			return ErrorMsg{Err: fmt.Errorf("cannot open %q before the terminal reports its size", selectedItem.title)}
		}
	}

	// Set the active model and navigate to its state
	m.activeModel = model

	var cmds []tea.Cmd
	// Call the model's Init() method to start any commands
	modelInitCmd := model.Init()
	if modelInitCmd != nil {
		cmds = append(cmds, modelInitCmd)
	}

	// Send window size if layout has dimensions
	if m.layout.ContentWidth() > 0 && m.layout.ContentHeight() > 0 {
		windowMsg := tea.WindowSizeMsg{Width: m.layout.ContentWidth(), Height: m.layout.ContentHeight()}
		updatedModel, windowCmd := model.Update(windowMsg)
		m.activeModel = updatedModel.(MenuItemModel)
		if windowCmd != nil {
			cmds = append(cmds, windowCmd)
		}
	}

	cmds = append(cmds, NavigateTo(selectedItem.state))
	return m, tea.Batch(cmds...)
}

// GetUIContext creates a UI context with current dimensions and app state
func (m *MainModel) GetUIContext() helpers.UIContext {
	return helpers.NewUIContext(m.windowWidth, m.windowHeight, m.config, m.logger)
}

// getOrInitializeModel always creates a fresh model to ensure up-to-date settings
func (m *MainModel) getOrInitializeModel(state AppState) MenuItemModel {
	// Validate that we have valid dimensions before creating models
	if !m.hasValidDimensions() {
		m.logger.Warn("Cannot initialize model without valid window dimensions", "state", state)
		return nil
	}

	ctx := m.GetUIContext()

	switch state {
	case StateAssess:
		m.logger.Debug("Creating fresh assess model")
		return assessmenu.NewAssessModel(ctx)

	case StateBrowse:
		m.logger.Debug("Creating fresh browse model")
		return browsemenu.NewBrowseModel(ctx)

	case StateSync:
		m.logger.Debug("Creating fresh sync model")
		return syncmenu.NewSyncModel(ctx)

	case StateSettings:
		m.logger.Debug("Creating fresh settings wizard")
		return setupmenu.NewEmbeddedSetupModel(ctx)

	default:
		m.logger.Warn("Unknown state requested for model initialization", "state", state)
		return nil
	}
}

func (m *MainModel) View() string {
	if m.state == StateQuitting {
		m.layout = m.layout.SetConfig(components.LayoutConfig{
			Title: "👋 Goodbye!",
		})
		return m.layout.Render("Thank you for using Stanchion!")
	}

	// Configure layout based on current state
	switch m.state {
	case StateMenu:
		return m.viewMenu()
	case StateError:
		return m.viewError()
	default:
		// Use active model's view if available
		if m.activeModel != nil {
			return m.activeModel.View()
		}
		return m.viewError()
	}
}

func (m *MainModel) viewMenu() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🛡️ Stanchion - Enterprise Standards Assessment",
		Subtitle: "Keep your Azure infrastructure code aligned with your security standards",
		HelpText: "↑/↓ to navigate • Enter to select • / to filter • q to quit • Ctrl+C to force quit",
	})

	// Get the menu content
	menuContent := m.menu.View()

	return m.layout.Render(menuContent)
}

// hasValidDimensions checks if window dimensions are valid for model creation
func (m *MainModel) hasValidDimensions() bool {
	return m.windowWidth > 0 && m.windowHeight > 0
}

// returnToMenu safely returns to the main menu and cleans up state
func (m *MainModel) returnToMenu() tea.Model {
	m.state = StateMenu
	m.activeModel = nil
	m.err = nil
	m.layout = m.layout.ClearError()
	return m
}

func (m *MainModel) viewError() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "❌ Error",
		Subtitle: "Something went wrong",
		HelpText: "Press Esc to return • Ctrl+C to quit",
	})

	errorContent := ""
	if m.err != nil {
		errorContent = m.err.Error()
	}

	return m.layout.Render(errorContent)
}

// Helper functions for creating navigation commands
func NavigateTo(state AppState) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{State: state}
	}
}
