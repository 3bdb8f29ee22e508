package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

const maxScores = 100 // Max rows to load per tab

// scoreTab is one page of the scoreboard.
type scoreTab int

const (
	tabLocal scoreTab = iota
	tabLobby
	tabCount
)

func (t scoreTab) String() string {
	switch t {
	case tabLocal:
		return "Local"
	case tabLobby:
		return "Lobby results"
	default:
		return ""
	}
}

// newTable creates a table with the shared styles.
func newTable(columns []table.Column, height int, focused bool) table.Model {
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(focused),
		table.WithHeight(height),
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
	if !focused {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)
	return t
}

func localScoreColumns() []table.Column {
	return []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Name", Width: 16},
		{Title: "Score", Width: 8},
		{Title: "Preset", Width: 7},
		{Title: "Date", Width: 13},
	}
}

func localScoreRows(scores []storage.ScoreEntry) []table.Row {
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.Name,
			fmt.Sprintf("%d", s.Score),
			s.Preset,
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

func lobbyResultColumns() []table.Column {
	return []table.Column{
		{Title: "Room", Width: 9},
		{Title: "Player", Width: 16},
		{Title: "Score", Width: 8},
		{Title: "Lives", Width: 5},
		{Title: "Time", Width: 6},
		{Title: "Date", Width: 13},
	}
}

func lobbyResultRows(results []storage.MatchResult) []table.Row {
	rows := make([]table.Row, len(results))
	for i, r := range results {
		lives := fmt.Sprintf("%d", r.Lives)
		if r.Eliminated {
			lives = "DEAD"
		}
		room := r.MatchID
		if len(room) > 8 {
			room = room[:8]
		}
		rows[i] = table.Row{
			room,
			r.Player,
			fmt.Sprintf("%d", r.Score),
			lives,
			fmt.Sprintf("%ds", r.Duration),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

func leaderboardColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Player", Width: 16},
		{Title: "Score", Width: 8},
		{Title: "Lives", Width: 5},
	}
}

func leaderboardRows(records []multiplayer.PlayerRecord, self string) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		name := r.Name
		if r.Name == self {
			name = "> " + name
		}
		lives := fmt.Sprintf("%d", r.Lives)
		if r.Dead {
			lives = "DEAD"
		}
		rows[i] = table.Row{fmt.Sprintf("%d", i+1), name, fmt.Sprintf("%d", r.Score), lives}
	}
	return rows
}

func highScoreColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Player", Width: 16},
		{Title: "Score", Width: 8},
	}
}

func highScoreRows(scores []multiplayer.HighScore) []table.Row {
	rows := make([]table.Row, len(scores))
	for i, h := range scores {
		rows[i] = table.Row{fmt.Sprintf("%d", i+1), h.Name, fmt.Sprintf("%d", h.Score)}
	}
	return rows
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next table"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev table"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for browsing stored scores.
type ScoreboardModel struct {
	store    *storage.Store
	tab      scoreTab
	local    []storage.ScoreEntry
	results  []storage.MatchResult
	loadErr  error
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.load()
	m.table = m.createTable()
	return m
}

// load reads both tabs from the store.
func (m *ScoreboardModel) load() {
	if m.store == nil {
		return
	}
	local, err := m.store.TopScores(maxScores)
	if err != nil {
		m.loadErr = err
		return
	}
	results, err := m.store.RecentMatchResults(maxScores)
	if err != nil {
		m.loadErr = err
		return
	}
	m.local, m.results = local, results
}

// createTable builds the table for the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	height := m.height - 8 // Leave room for header, help, and margins
	if m.tab == tabLobby {
		t := newTable(lobbyResultColumns(), height, true)
		t.SetRows(lobbyResultRows(m.results))
		return t
	}
	t := newTable(localScoreColumns(), height, true)
	t.SetRows(localScoreRows(m.local))
	return t
}

func (m *ScoreboardModel) rowCount() int {
	if m.tab == tabLobby {
		return len(m.results)
	}
	return len(m.local)
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
			m.table = m.createTable()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
			m.table = m.createTable()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.MarginBottom(1).Render(centerText("HIGH SCORES - "+m.tab.String(), m.width)))
	b.WriteString("\n\n")

	tabs := make([]string, tabCount)
	for i := range tabCount {
		if i == m.tab {
			tabs[i] = cursorStyle.Padding(0, 1).Render(i.String())
		} else {
			tabs[i] = labelStyle.Render(" " + i.String() + " ")
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(m.renderTableContent()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return empty.Render("No scores database.")
	case m.loadErr != nil:
		return empty.Render("Could not load scores:\n" + m.loadErr.Error())
	case m.rowCount() == 0 && m.tab == tabLobby:
		return empty.Render("No lobby rooms recorded yet.\nRun 'blocks lobby' and play online!")
	case m.rowCount() == 0:
		return empty.Render("No scores recorded yet.\nPlay a match to set a high score!")
	}
	return m.table.View()
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
