package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/tui-layers/internal/registry"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

// Run board layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show scene list sidebar
	sidebarWidth       = 20  // Width of scene list sidebar
	maxRuns            = 100 // Max runs to load
)

// allScenes is the sidebar entry that lists runs of every scene.
const allScenes = ""

// RunboardKeyMap defines the key bindings for the run board.
type RunboardKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextScene key.Binding
	PrevScene key.Binding
	Delete    key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextScene, k.PrevScene, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RunboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextScene, k.PrevScene},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultRunboardKeyMap returns default key bindings.
func DefaultRunboardKeyMap() RunboardKeyMap {
	return RunboardKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		NextScene: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next scene")),
		PrevScene: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev scene")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete run")),
		Back:      key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// RunboardModel is the Bubble Tea model for browsing recorded runs.
type RunboardModel struct {
	scenes      []string // scene IDs, allScenes first
	sceneCursor int
	store       *storage.Store
	runs        []storage.Run
	stats       map[string]*storage.SceneStats
	table       table.Model
	help        help.Model
	keys        RunboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
	err         error
}

// NewRunboardModel creates a new run board.
func NewRunboardModel(store *storage.Store, width, height int) RunboardModel {
	scenes := []string{allScenes}
	for _, s := range registry.List() {
		scenes = append(scenes, s.ID)
	}

	m := RunboardModel{
		scenes:      scenes,
		store:       store,
		keys:        DefaultRunboardKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.reload()
	return m
}

// createTable creates a new table with columns sized to the window.
func (m *RunboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 8},
		{Title: "Scene", Width: 10},
		{Title: "Ticks", Width: 7},
		{Title: "Contacts", Width: 9},
		{Title: "Took", Width: 8},
		{Title: "Via", Width: 6},
		{Title: "When", Width: 14},
	}

	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	// Drop the scene column when it is implied by the sidebar or space is short.
	if m.currentScene() != allScenes || tableWidth < 70 {
		columns = append(columns[:1], columns[2:]...)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m RunboardModel) currentScene() string {
	if len(m.scenes) == 0 {
		return allScenes
	}
	return m.scenes[m.sceneCursor]
}

// reload fetches runs for the current scene plus the aggregate stats.
func (m *RunboardModel) reload() {
	m.runs, m.stats, m.err = nil, nil, nil
	if m.store != nil {
		m.runs, m.err = m.store.RecentRuns(m.currentScene(), maxRuns)
		if m.err == nil {
			m.stats, m.err = m.store.SceneStats()
		}
	}
	m.table = m.createTable()
	m.updateTableRows()
}

// updateTableRows fills the table from the loaded runs.
func (m *RunboardModel) updateTableRows() {
	withScene := len(m.table.Columns()) == 7
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		row := table.Row{shortID(r.ID)}
		if withScene {
			row = append(row, r.SceneID)
		}
		ticks := humanize.Comma(int64(r.Ticks))
		if r.Interrupted {
			ticks += "*"
		}
		row = append(row,
			ticks,
			humanize.Comma(int64(r.Collisions)),
			r.Elapsed.Round(100*time.Millisecond).String(),
			r.Source,
			humanize.Time(r.CreatedAt),
		)
		rows[i] = row
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Init initializes the run board.
func (m RunboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run board.
func (m RunboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextScene):
			m.sceneCursor = (m.sceneCursor + 1) % len(m.scenes)
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.PrevScene):
			m.sceneCursor = (m.sceneCursor - 1 + len(m.scenes)) % len(m.scenes)
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			m.deleteSelected()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.updateTableRows()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *RunboardModel) deleteSelected() {
	if m.store == nil || len(m.runs) == 0 {
		return
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return
	}
	if err := m.store.DeleteRun(m.runs[i].ID); err != nil {
		m.err = err
		return
	}
	m.reload()
}

// View renders the run board.
func (m RunboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.MarginBottom(1).Render(centerText("RUN HISTORY - "+sceneLabel(m.currentScene()), m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.summary()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func sceneLabel(id string) string {
	if id == allScenes {
		return "all scenes"
	}
	return id
}

// summary aggregates the stats of the current selection.
func (m RunboardModel) summary() string {
	if m.err != nil {
		return "error: " + m.err.Error()
	}
	var runs int
	var ticks, contacts int64
	for id, st := range m.stats {
		if m.currentScene() != allScenes && id != m.currentScene() {
			continue
		}
		runs += st.Runs
		ticks += st.TotalTicks
		contacts += st.TotalCollisions
	}
	return fmt.Sprintf("%s runs, %s ticks, %s contacts (* = stopped early)",
		humanize.Comma(int64(runs)), humanize.Comma(ticks), humanize.Comma(contacts))
}

// renderWideLayout renders the board with a sidebar for scene selection.
func (m RunboardModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Scenes\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")
	for i, id := range m.scenes {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.sceneCursor {
			cursor = "> "
			style = selectedStyle
		}
		name := sceneLabel(id)
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout shows the current scene with arrows above the table.
func (m RunboardModel) renderNarrowLayout() string {
	var b strings.Builder
	b.WriteString(centerText(fmt.Sprintf("< %s >", sceneLabel(m.currentScene())), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))
	return b.String()
}

// renderTableContent renders the table or empty message.
func (m RunboardModel) renderTableContent() string {
	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No runs recorded yet.\nOpen a scene to record one!")
	}
	return m.table.View()
}

// Runs returns the runs currently listed.
func (m RunboardModel) Runs() []storage.Run {
	return m.runs
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RunboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m RunboardModel) IsQuitting() bool {
	return m.quitting
}

// RunRunboard runs the run board screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunRunboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewRunboardModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(RunboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
