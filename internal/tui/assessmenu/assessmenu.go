// Package assessmenu implements the interactive assessment workflow: scan the
// working directory for infrastructure code, preview and pick a file, send it
// to the configured Azure OpenAI deployment together with the standards
// library, and display the rendered verdict.
package assessmenu

import (
	"context"
	"fmt"
	"strings"

	"stanchion/internal/config"
	"stanchion/internal/filemanager"
	"stanchion/internal/llm"
	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/internal/standards"
	"stanchion/internal/tui/components"
	"stanchion/internal/tui/components/filepicker"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/styles"
	"stanchion/pkg/fileops"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

type AssessModelState int

const (
	StateLoading       AssessModelState = iota // Scanning filesystem for infrastructure code
	StateFileSelection                         // Showing file picker with preview
	StateAssessing                             // Waiting for the model's verdict
	StateVerdict                               // Displaying the rendered verdict
	StateError                                 // Any error state
)

// Custom messages (internal domain-specific) for async operations and transitions.
type (
	FileScanCompleteMsg struct {
		Files []filemanager.FileItem
	}

	FileScanErrorMsg struct {
		Err error
	}

	AssessCompleteMsg struct {
		Verdict  string // raw markdown from the model
		Rendered string // glamour-rendered for the viewport
	}

	AssessErrorMsg struct {
		Err error
	}
)

type AssessModel struct {
	logger *logging.AppLogger
	state  AssessModelState

	// Layout (used for all states except the file selection which delegates to FilePicker's own layout)
	layout  components.LayoutModel
	spinner spinner.Model

	// Filepicker instance
	filePicker *filepicker.FilePicker

	// Verdict display
	viewport viewport.Model

	// Data
	iacFiles     []filemanager.FileItem
	selectedFile filemanager.FileItem
	verdict      string
	err          error

	// Assessment pipeline
	assessor *standards.Assessor

	windowWidth  int
	windowHeight int
}

func NewAssessModel(ctx helpers.UIContext) AssessModel {
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

	vp := viewport.New(ctx.Width, ctx.Height)
	vp.MouseWheelEnabled = true

	cfg := ctx.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	model := AssessModel{
		logger:       ctx.Logger,
		state:        StateLoading,
		layout:       layout,
		spinner:      s,
		viewport:     vp,
		windowWidth:  ctx.Width,
		windowHeight: ctx.Height,
	}

	lib, err := standards.Load(cfg.LibraryDir, ctx.Logger)
	if err != nil {
		ctx.Logger.Error("Failed to load standards library", "error", err)
		model.state = StateError
		model.err = fmt.Errorf("standards library unavailable: %w", err)
		return model
	}

	// A missing completer is tolerated here so the user can still browse and
	// pick files; the assessment step reports what is unconfigured.
	var completer llm.ChatCompleter
	settings := llm.ResolveSettings(cfg, repository.NewCredentialManager())
	if client, err := llm.New(settings, llm.WithLogger(ctx.Logger)); err == nil {
		completer = client
	} else {
		ctx.Logger.Warn("Azure OpenAI client unavailable", "error", err)
	}

	model.assessor = standards.NewAssessor(lib, completer)
	return model
}

// Init starts asynchronous scanning for infrastructure code files.
func (m AssessModel) Init() tea.Cmd {
	if m.state == StateError {
		return nil
	}
	return tea.Batch(
		m.scanForFilesCmd(),
		m.spinner.Tick,
	)
}

func (m AssessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	// Update layout
	m.layout, _ = m.layout.Update(msg)

	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = message.Width
		m.windowHeight = message.Height
		m.viewport.Width = message.Width - 4
		m.viewport.Height = max(message.Height-10, 5)

		// Propagate window sizing to FilePicker if it exists.
		if m.filePicker != nil {
			updated, fpCmd := m.filePicker.Update(message)
			if fpCmd != nil {
				cmds = append(cmds, fpCmd)
			}
			if fp, ok := updated.(*filepicker.FilePicker); ok {
				m.filePicker = fp
			}
		}
		return m, tea.Batch(cmds...)

	case FileScanCompleteMsg:
		m.logger.Debug("Assess model - file scan completed", "files_count", len(message.Files))
		m.iacFiles = message.Files
		m.state = StateFileSelection
		m.err = nil

		// Build FilePicker once files are available. Reasonable defaults are
		// used until the next WindowSizeMsg arrives.
		ctx := helpers.NewUIContext(100, 30, nil, m.logger)
		fp := filepicker.NewFilePicker(
			"🔍 Assess Infrastructure Code",
			"Select a file to assess against your enterprise standards (press Enter). \nUse / to filter, arrows to navigate, g to toggle formatting.",
			m.iacFiles,
			ctx,
		)
		m.filePicker = &fp

		fpInit := m.filePicker.Init()
		if fpInit != nil {
			cmds = append(cmds, fpInit)
		}
		return m, tea.Batch(cmds...)

	case FileScanErrorMsg:
		m.logger.Error("Assess model - file scan failed", "error", message.Err)
		m.err = message.Err
		m.state = StateError
		return m, nil

	case filepicker.FileSelectedMsg:
		m.logger.Debug("Assess model - file selected from picker", "path", message.File.Path)
		m.selectedFile = message.File
		m.state = StateAssessing
		m.err = nil
		return m, tea.Batch(
			m.assessFileCmd(message.File.Path),
			m.spinner.Tick,
		)

	case AssessCompleteMsg:
		m.logger.Info("Assessment completed", "file", m.selectedFile.Path, "verdict_bytes", len(message.Verdict))
		m.verdict = message.Verdict
		m.viewport.SetContent(message.Rendered)
		m.viewport.GotoTop()
		m.state = StateVerdict
		m.err = nil
		return m, nil

	case AssessErrorMsg:
		m.logger.Error("Assessment failed", "error", message.Err, "file", m.selectedFile.Path)
		m.err = message.Err
		m.state = StateError
		return m, nil

	case spinner.TickMsg:
		if m.state == StateLoading || m.state == StateAssessing {
			m.spinner, cmd = m.spinner.Update(message)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateFileSelection:
			// Intercept 'q' and 'esc' to return to main menu instead of quitting
			if message.String() == "q" || message.String() == "esc" {
				return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
			}

			// Delegate everything else to FilePicker
			if m.filePicker != nil {
				updated, fpCmd := m.filePicker.Update(message)
				if fpCmd != nil {
					cmds = append(cmds, fpCmd)
				}
				if fp, ok := updated.(*filepicker.FilePicker); ok {
					m.filePicker = fp
				}
			}
			return m, tea.Batch(cmds...)

		case StateVerdict:
			switch message.String() {
			case "m", "q", "esc":
				return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
			case "a":
				// Assess another file; keep the scanned list to avoid a re-scan
				m.selectedFile = filemanager.FileItem{}
				m.verdict = ""
				m.state = StateFileSelection
				return m, nil
			default:
				m.viewport, cmd = m.viewport.Update(message)
				return m, cmd
			}

		case StateError:
			switch message.String() {
			case "r":
				m.state = StateLoading
				m.err = nil
				return m, tea.Batch(
					m.scanForFilesCmd(),
					m.spinner.Tick,
				)
			case "esc":
				return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
			}
		}

	default:
		// Delegate unhandled messages in selection state to FilePicker
		if m.state == StateFileSelection && m.filePicker != nil {
			updated, fpCmd := m.filePicker.Update(msg)
			if fpCmd != nil {
				cmds = append(cmds, fpCmd)
			}
			if fp, ok := updated.(*filepicker.FilePicker); ok {
				m.filePicker = fp
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m AssessModel) View() string {
	switch m.state {
	case StateLoading:
		return m.viewLoading()
	case StateFileSelection:
		// FilePicker renders its own header/layout styling
		if m.filePicker == nil {
			return m.layout.Render("Initializing file picker...")
		}
		return m.filePicker.View()
	case StateAssessing:
		return m.viewAssessing()
	case StateVerdict:
		return m.viewVerdict()
	case StateError:
		return m.viewError()
	}

	return m.viewError()
}

// VIEWS

func (m AssessModel) viewLoading() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔍 Assess Infrastructure Code",
		Subtitle: "Scanning for infrastructure code files...",
		HelpText: "Please wait while we scan your directory",
	})
	content := fmt.Sprintf("\n %s %s\n\n", m.spinner.View(), styles.SpinnerStyle.Render("Scanning..."))
	return m.layout.Render(content)
}

func (m AssessModel) viewAssessing() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔍 Assess Infrastructure Code",
		Subtitle: fmt.Sprintf("Assessing: %s", m.selectedFile.Name),
		HelpText: "Please wait while the model reviews your code",
	})
	content := fmt.Sprintf("Sending '%s' and your standards library to Azure OpenAI...\n\n", m.selectedFile.Name)
	content += fmt.Sprintf("%s %s", m.spinner.View(), styles.SpinnerStyle.Render("Assessing..."))
	return m.layout.Render(content)
}

func (m AssessModel) viewVerdict() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔍 Assessment Verdict",
		Subtitle: fmt.Sprintf("File: %s", m.selectedFile.Name),
		HelpText: "↑/↓ to scroll • a to assess another file • m/Esc to return to main menu",
	})
	return m.layout.Render(m.viewport.View())
}

func (m AssessModel) viewError() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔍 Assess Infrastructure Code - Error",
		Subtitle: "Operation failed",
		HelpText: "r to retry • Esc to return to main menu",
	})
	errorText := "An error occurred"
	if m.err != nil {
		errorText = m.err.Error()
	}
	if m.err != nil && strings.Contains(m.err.Error(), llm.ErrNotConfigured.Error()) {
		errorText += "\n\nRun 'stanchion setup' (or the Settings menu) to connect an Azure OpenAI deployment."
	}
	return m.layout.Render(errorText)
}

// COMMANDS

// scanForFilesCmd asynchronously scans the current directory tree for
// infrastructure code files.
func (m AssessModel) scanForFilesCmd() tea.Cmd {
	m.logger.Debug("Infrastructure code scan started")
	return func() tea.Msg {
		files, err := filemanager.ScanIaCFiles("")
		if err != nil {
			return FileScanErrorMsg{Err: err}
		}
		if len(files) == 0 {
			return FileScanErrorMsg{Err: fmt.Errorf("no infrastructure code files found in the current directory")}
		}
		return FileScanCompleteMsg{Files: files}
	}
}

// assessFileCmd reads the selected file and runs the assessment. The verdict
// markdown is rendered for the viewport inside the command so the UI thread
// never blocks on glamour.
func (m AssessModel) assessFileCmd(path string) tea.Cmd {
	assessor := m.assessor
	width := m.viewport.Width
	return func() tea.Msg {
		if assessor == nil {
			return AssessErrorMsg{Err: fmt.Errorf("assessment pipeline not initialized")}
		}

		code, err := fileops.ReadTextFile(path, fileops.MaxPromptFileSize)
		if err != nil {
			return AssessErrorMsg{Err: fmt.Errorf("read %s: %w", path, err)}
		}

		verdict, err := assessor.Assess(context.Background(), code)
		if err != nil {
			return AssessErrorMsg{Err: err}
		}

		return AssessCompleteMsg{
			Verdict:  verdict,
			Rendered: renderVerdict(verdict, width),
		}
	}
}

// renderVerdict renders the verdict markdown for terminal display, falling
// back to the raw text when rendering fails.
func renderVerdict(verdict string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return verdict
	}
	out, err := r.Render(verdict)
	if err != nil {
		return verdict
	}
	return out
}
