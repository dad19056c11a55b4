// Package syncmenu runs a standards library sync from the TUI. The actual
// work happens in repository.SyncLibrary; this model shows a spinner while it
// runs and presents the outcome, including the skip reasons the sync
// machinery reports (no remote configured, uncommitted changes).
package syncmenu

import (
	"fmt"

	"stanchion/internal/config"
	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/internal/tui/components"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type SyncModelState int

const (
	StateSyncing SyncModelState = iota // Sync in progress
	StateDone                          // Result screen (success, failure or skip)
)

// SyncFinishedMsg delivers the sync outcome to the model.
type SyncFinishedMsg struct {
	Result repository.SyncResult
}

type SyncModel struct {
	logger *logging.AppLogger
	state  SyncModelState

	layout  components.LayoutModel
	spinner spinner.Model

	// Library settings captured at construction
	remoteURL string
	branch    string
	localPath string

	result repository.SyncResult
}

func NewSyncModel(ctx helpers.UIContext) SyncModel {
	layout := components.NewLayout(components.LayoutConfig{
		MarginX:  2,
		MarginY:  1,
		MaxWidth: 100,
	})

	if ctx.HasValidDimensions() {
		windowMsg := tea.WindowSizeMsg{Width: ctx.Width, Height: ctx.Height}
		layout, _ = layout.Update(windowMsg)
	}

	s := spinner.New()
	s.Style = styles.SpinnerStyle
	s.Spinner = spinner.Pulse

	cfg := ctx.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	return SyncModel{
		logger:    ctx.Logger,
		state:     StateSyncing,
		layout:    layout,
		spinner:   s,
		remoteURL: cfg.LibraryURL,
		branch:    cfg.LibraryBranch,
		localPath: cfg.LibraryDir,
	}
}

func (m SyncModel) Init() tea.Cmd {
	return tea.Batch(
		m.syncCmd(),
		m.spinner.Tick,
	)
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.layout, _ = m.layout.Update(msg)

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case SyncFinishedMsg:
		m.logger.Info("Library sync finished", "status", msg.Result.Status.String(), "message", msg.Result.Message())
		m.result = msg.Result
		m.state = StateDone
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSyncing {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.state != StateDone {
			return m, nil
		}
		switch msg.String() {
		case "r":
			// Retry is only meaningful when the sync actually ran
			if m.result.Status == repository.SyncStatusFailed {
				m.state = StateSyncing
				return m, tea.Batch(m.syncCmd(), m.spinner.Tick)
			}
			return m, nil
		default:
			return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
		}
	}

	return m, nil
}

func (m SyncModel) View() string {
	switch m.state {
	case StateSyncing:
		return m.viewSyncing()
	default:
		return m.viewDone()
	}
}

func (m SyncModel) viewSyncing() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔄 Sync Standards Library",
		Subtitle: "Fetching the latest standards...",
		HelpText: "Please wait while the library syncs",
	})

	content := fmt.Sprintf("Remote: %s\n\n", m.remoteOrNone())
	content += fmt.Sprintf("%s %s", m.spinner.View(), styles.SpinnerStyle.Render("Syncing..."))
	return m.layout.Render(content)
}

func (m SyncModel) viewDone() string {
	var title, help string
	switch m.result.Status {
	case repository.SyncStatusSuccess:
		title = "🔄 Sync Standards Library - Success"
		help = "Press any key to return to the main menu"
	case repository.SyncStatusFailed:
		title = "🔄 Sync Standards Library - Failed"
		help = "r to retry • any other key to return to the main menu"
	default:
		title = "🔄 Sync Standards Library - Skipped"
		help = "Press any key to return to the main menu"
	}

	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    title,
		Subtitle: m.result.Message(),
		HelpText: help,
	})

	content := fmt.Sprintf("Remote: %s\n", m.remoteOrNone())
	content += fmt.Sprintf("Library: %s\n", m.localPath)
	if m.result.Status == repository.SyncStatusSkipped && m.result.SkipReason == "no remote configured" {
		content += "\nThis library is local-only. Configure a git-backed library through\nSettings to share standards across your team."
	}
	if m.result.Info.Dirty {
		content += "\nThe library has uncommitted local edits. Commit or revert them to\nresume syncing from the remote."
	}
	return m.layout.Render(content)
}

func (m SyncModel) remoteOrNone() string {
	if m.remoteURL == "" {
		return "(none configured)"
	}
	return m.remoteURL
}

// syncCmd runs the sync asynchronously so the spinner stays live.
func (m SyncModel) syncCmd() tea.Cmd {
	remoteURL, branch, localPath := m.remoteURL, m.branch, m.localPath
	logger := m.logger
	return func() tea.Msg {
		return SyncFinishedMsg{Result: repository.SyncLibrary(remoteURL, branch, localPath, logger)}
	}
}
