// Package browsemenu lets the user read through the standards documents that
// assessments are based on. Documents come from the resolved library, so the
// view shows exactly what the assessment prompt will contain, whether a
// document is an embedded default or an operator override.
package browsemenu

import (
	"fmt"

	"stanchion/internal/config"
	"stanchion/internal/logging"
	"stanchion/internal/standards"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/styles"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Quit       key.Binding
	FocusLeft  key.Binding
	FocusRight key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q/esc", "back")),
		FocusLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "focus list")),
		FocusRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "focus preview")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.FocusRight, k.FocusLeft, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.FocusRight, k.FocusLeft, k.Quit},
	}
}

// docItem adapts a standards document to the bubbles list model.
type docItem struct {
	doc standards.Document
}

func (i docItem) Title() string { return i.doc.Name }

func (i docItem) Description() string {
	desc := i.doc.Description
	if desc == "" {
		desc = i.doc.FileName
	}
	if i.doc.Embedded {
		return desc + " (built-in)"
	}
	return desc
}

func (i docItem) FilterValue() string { return i.doc.Name }

// focusedPane identifies which pane has keyboard focus
type focusedPane int

const (
	focusList focusedPane = iota
	focusPreview
)

type BrowseModel struct {
	logger *logging.AppLogger

	docList  list.Model
	viewport viewport.Model
	keys     KeyMap
	help     help.Model

	// rendered holds glamour output per document name so switching back and
	// forth does not re-render.
	rendered map[string]string

	err       error
	focusPane focusedPane

	windowWidth  int
	windowHeight int
}

func NewBrowseModel(ctx helpers.UIContext) BrowseModel {
	cfg := ctx.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	model := BrowseModel{
		logger:    ctx.Logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		rendered:  make(map[string]string),
		focusPane: focusList,
	}

	lib, err := standards.Load(cfg.LibraryDir, ctx.Logger)
	if err != nil {
		ctx.Logger.Error("Failed to load standards library", "error", err)
		model.err = fmt.Errorf("standards library unavailable: %w", err)
		return model
	}

	docs := lib.Documents()
	items := make([]list.Item, 0, len(docs)+1)
	for _, doc := range docs {
		items = append(items, docItem{doc: doc})
	}
	// The prompt template is browsable too; it shows how documents are
	// assembled into the system prompt.
	items = append(items, docItem{doc: lib.PromptTemplate()})

	docList := list.New(items, list.NewDefaultDelegate(), ctx.Width, ctx.Height)
	docList.Title = "Standards"
	docList.SetShowStatusBar(false)
	docList.SetFilteringEnabled(true)
	docList.SetShowHelp(false)

	vp := viewport.New(ctx.Width, ctx.Height)
	vp.MouseWheelEnabled = true

	model.docList = docList
	model.viewport = vp
	model.windowWidth = ctx.Width
	model.windowHeight = ctx.Height

	if ctx.HasValidDimensions() {
		model = model.resize(tea.WindowSizeMsg{Width: ctx.Width, Height: ctx.Height})
	}

	model.refreshPreview()
	return model
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg)
		m.refreshPreview()
		return m, nil

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case list.FilterMatchesMsg:
		m.docList, cmd = m.docList.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.err != nil {
			// Error screen: any quit-ish key returns to the menu
			if msg.String() == "q" || msg.String() == "esc" || msg.String() == "enter" {
				return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
			}
			return m, nil
		}

		// If filtering is active, ESC only exits the filter
		if msg.String() == "esc" && m.docList.FilterState() == list.Filtering {
			m.docList, cmd = m.docList.Update(msg)
			return m, cmd
		}

		if key.Matches(msg, m.keys.FocusRight) {
			m.focusPane = focusPreview
			return m, nil
		}
		if key.Matches(msg, m.keys.FocusLeft) {
			m.focusPane = focusList
			return m, nil
		}

		if key.Matches(msg, m.keys.Quit) && m.docList.FilterState() != list.Filtering {
			return m, func() tea.Msg { return helpers.NavigateToMainMenuMsg{} }
		}

		// When preview has focus, route scroll keys to viewport
		if m.focusPane == focusPreview {
			switch msg.String() {
			case "up", "down", "pgup", "pgdown", "ctrl+u", "ctrl+d", "home", "end", "k", "j":
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		}

		// Everything else drives the list; refresh the preview when the
		// selection changes.
		var oldSelected string
		if item, ok := m.docList.SelectedItem().(docItem); ok {
			oldSelected = item.doc.Name
		}

		m.docList, cmd = m.docList.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

		if item, ok := m.docList.SelectedItem().(docItem); ok && item.doc.Name != oldSelected {
			m.refreshPreview()
		}
		return m, tea.Batch(cmds...)
	}

	return m, tea.Batch(cmds...)
}

func (m BrowseModel) View() string {
	title := styles.TitleStyle.Render("📚 Standards Library")
	sub := styles.SubtitleStyle.Render("These documents form the system prompt for every assessment.")
	header := styles.HeaderContainerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, sub))

	if m.err != nil {
		body := styles.ErrorStyle.Render(m.err.Error())
		hint := styles.HelpStyle.Render("Press Esc to return to the main menu")
		return lipgloss.JoinVertical(lipgloss.Left, header, body, hint)
	}

	listStyle := styles.PaneStyle
	vpStyle := styles.PaneStyle
	switch m.focusPane {
	case focusList:
		listStyle = styles.PaneFocusedStyle
	case focusPreview:
		vpStyle = styles.PaneFocusedStyle
	}

	listStyle = listStyle.Width(m.docList.Width()).Height(m.docList.Height())
	vpStyle = vpStyle.Width(m.viewport.Width).Height(m.viewport.Height)

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		listStyle.Render(m.docList.View()),
		vpStyle.Render(m.viewport.View()),
	)
	panes = styles.MainContainerStyle.Render(panes)

	helpView := styles.HelpContainerStyle.Render(styles.HelpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, header, panes, helpView)
}

// resize recomputes pane dimensions the same way the file picker does.
func (m BrowseModel) resize(msg tea.WindowSizeMsg) BrowseModel {
	m.windowWidth = msg.Width
	m.windowHeight = msg.Height
	m.help.Width = msg.Width

	frameW, frameH := styles.PaneStyle.GetFrameSize()
	avail := max(msg.Width-frameW*2-1, 0)

	listWidth := avail / 3
	vpWidth := avail - listWidth
	if listWidth < 20 {
		listWidth = 20
	}
	if vpWidth < 30 {
		vpWidth = 30
	}

	contentHeight := max(msg.Height-8-frameH, 5)

	m.docList.SetSize(listWidth, contentHeight)
	m.viewport.Width = vpWidth
	m.viewport.Height = contentHeight
	return m
}

// refreshPreview renders the selected document into the viewport, caching
// renders per document. Documents are small enough to render inline.
func (m *BrowseModel) refreshPreview() {
	item, ok := m.docList.SelectedItem().(docItem)
	if !ok {
		return
	}

	if cached, ok := m.rendered[item.doc.Name]; ok {
		m.viewport.SetContent(cached)
		m.viewport.GotoTop()
		return
	}

	width := m.viewport.Width - 2
	if width <= 0 {
		width = 80
	}

	content := item.doc.Body
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if out, rerr := r.Render(item.doc.Body); rerr == nil {
			content = out
		}
	}

	m.rendered[item.doc.Name] = content
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}
