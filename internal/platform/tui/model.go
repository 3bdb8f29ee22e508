package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
	"github.com/vovakirdan/tui-blocks/internal/storage"
)

const (
	flashDuration = 300 * time.Millisecond
	topScoreRows  = 10

	waitingStatus = "Waiting for the lobby…"
)

// Options configures a match model.
type Options struct {
	Config  config.Config
	Runtime core.RuntimeConfig
	Name    string

	// Store keeps local high scores. Nil disables saving.
	Store *storage.Store

	// Lobby, when set, supplies pieces and mirrors state to a lobby server.
	Lobby *multiplayer.Client

	// Clock drives the countdown. Nil uses the system clock.
	Clock blocks.Clock

	Logger *log.Logger
}

// Messages produced by the model's commands.
type (
	eventMsg       struct{ event blocks.Event }
	eventsClosed   struct{}
	placedMsg      struct{ ok bool }
	matchDoneMsg   struct{ err error }
	lobbyUpdateMsg struct{}
	lobbyClosedMsg struct{}
)

// Model is the Bubble Tea model for one player's matches.
type Model struct {
	opts   Options
	match  *blocks.Match
	events <-chan blocks.Event
	run    func() error
	cancel context.CancelFunc
	gen    int // bumped per match; ticks from older matches are ignored

	snap       blocks.Snapshot
	cursor     core.Cursor
	flash      []blocks.Coord
	flashUntil time.Time
	status     string

	keys   KeyMap
	help   help.Model
	bar    progress.Model
	board  table.Model // lobby leaderboard
	scores table.Model // shown after the match

	width    int
	height   int
	ended    bool
	result   blocks.MatchEndedEvent
	saved    bool
	quitting bool
}

// NewModel creates a model with a fresh match ready to run.
func NewModel(opts Options) (Model, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Name == "" {
		opts.Name = "player"
	}

	h := help.New()
	h.ShowAll = false

	m := Model{
		opts:   opts,
		keys:   DefaultKeyMap(),
		help:   h,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(opts.Config.Grid.Cols*2+4)),
		board:  newTable(leaderboardColumns(), 6, false),
		scores: newTable(localScoreColumns(), topScoreRows+1, false),
		width:  opts.Runtime.ScreenW,
		height: opts.Runtime.ScreenH,
	}
	if err := m.newMatch(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// newMatch replaces the current match with a fresh one.
func (m *Model) newMatch() error {
	cfg := blocks.MatchConfig{
		Cols:   m.opts.Config.Grid.Cols,
		Rows:   m.opts.Config.Grid.Rows,
		Rules:  m.opts.Config.EngineRules(),
		Seed:   m.opts.Runtime.Seed,
		Clock:  m.opts.Clock,
		Logger: m.opts.Logger.WithPrefix("match"),
	}
	if m.opts.Lobby != nil {
		adapter := m.opts.Lobby.Adapter()
		cfg.Source = adapter
		cfg.Mirror = adapter
	}

	match, err := blocks.NewMatch(cfg)
	if err != nil {
		return err
	}
	if m.opts.Lobby != nil {
		m.opts.Lobby.Adapter().Attach(match)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.match = match
	m.events = match.Subscribe(128)
	m.run = func() error { return match.Run(ctx) }
	m.cancel = cancel
	m.gen++
	m.snap = match.Snapshot()
	m.cursor = core.NewCursor(cfg.Cols, cfg.Rows)
	m.flash = nil
	m.status = ""
	m.ended = false
	m.saved = false
	m.result = blocks.MatchEndedEvent{}
	return nil
}

// Init starts the match loop and the redraw tick.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.runMatch(), m.waitForEvent(), tickCmd(m.opts.Runtime.TickInterval(), m.gen)}
	if m.opts.Lobby != nil {
		cmds = append(cmds, m.waitForLobby())
	}
	return tea.Batch(cmds...)
}

// runMatch runs the match loop until it ends.
func (m Model) runMatch() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		return matchDoneMsg{err: run()}
	}
}

// waitForEvent returns a command that waits for the next match event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return eventsClosed{}
		}
		return eventMsg{event: evt}
	}
}

// waitForLobby returns a command that waits for leaderboard updates.
func (m Model) waitForLobby() tea.Cmd {
	client := m.opts.Lobby
	return func() tea.Msg {
		select {
		case <-client.Adapter().Updates():
			return lobbyUpdateMsg{}
		case <-client.Done():
			return lobbyClosedMsg{}
		}
	}
}

func placeCmd(match *blocks.Match, x, y int) tea.Cmd {
	return func() tea.Msg {
		return placedMsg{ok: match.Place(x, y)}
	}
}

// stopMatch ends the match and waits briefly for the loop to finish so the
// lobby hears about it before the connection closes.
func stopMatch(match *blocks.Match, cancel context.CancelFunc) tea.Cmd {
	return func() tea.Msg {
		match.Stop()
		select {
		case <-match.Done():
		case <-time.After(time.Second):
			if cancel != nil {
				cancel()
			}
		}
		return nil
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleTick(msg.Time)

	case eventMsg:
		return m.handleEvent(msg.event)

	case eventsClosed:
		m.snap = m.match.Snapshot()
		return m, nil

	case placedMsg:
		if !msg.ok && !m.ended {
			m.status = "Does not fit there"
		}
		return m, nil

	case matchDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) && !errors.Is(msg.err, blocks.ErrMatchEnded) {
			m.opts.Logger.Error("match loop failed", "error", msg.err)
		}
		return m, nil

	case lobbyUpdateMsg:
		m.refreshLobby()
		return m, m.waitForLobby()

	case lobbyClosedMsg:
		if err := m.opts.Lobby.Err(); err != nil {
			m.status = "Lobby connection lost: " + err.Error()
		} else {
			m.status = "Lobby connection closed"
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Action(msg)

	switch action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Sequence(stopMatch(m.match, m.cancel), tea.Quit)
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.ended {
		if action == core.ActionRestart && m.opts.Lobby == nil {
			return m.restart()
		}
		return m, nil
	}

	switch {
	case action.IsMove():
		m.cursor = m.cursor.Apply(action)
		m.status = ""
	case action == core.ActionPlace:
		m.status = ""
		return m, placeCmd(m.match, m.cursor.X, m.cursor.Y)
	case action == core.ActionRotate:
		m.match.Rotate(true)
	case action == core.ActionRotateBack:
		m.match.Rotate(false)
	case action == core.ActionSwap:
		m.match.Swap()
	}
	return m, nil
}

// restart begins a new local match after game over.
func (m Model) restart() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	if m.opts.Runtime.Seed != 0 {
		m.opts.Runtime.Seed++
	}
	if err := m.newMatch(); err != nil {
		m.status = "Cannot start match: " + err.Error()
		return m, nil
	}
	return m, tea.Batch(m.runMatch(), m.waitForEvent(), tickCmd(m.opts.Runtime.TickInterval(), m.gen))
}

// handleTick refreshes the countdown.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.snap = m.match.Snapshot()
	if len(m.flash) > 0 && now.After(m.flashUntil) {
		m.flash = nil
	}
	m.syncWaiting()
	if m.ended {
		return m, nil
	}
	return m, tickCmd(m.opts.Runtime.TickInterval(), m.gen)
}

// handleEvent applies one engine event to the view state.
func (m Model) handleEvent(evt blocks.Event) (tea.Model, tea.Cmd) {
	m.snap = m.match.Snapshot()

	switch e := evt.(type) {
	case blocks.LinesClearedEvent:
		m.flash = e.Cells
		m.flashUntil = time.Now().Add(flashDuration)
		if e.Lines > 1 {
			m.status = "Cleared " + plural(e.Lines, "line")
		}
	case blocks.LevelUpEvent:
		m.status = "Level up!"
	case blocks.LifeLostEvent:
		m.status = "Time up! Lost a life"
	case blocks.MatchEndedEvent:
		m.handleEnded(e)
		return m, nil
	}

	m.syncWaiting()
	return m, m.waitForEvent()
}

// syncWaiting shows or clears the waiting status from the latest snapshot.
// Entering SpawnPending emits no event, so ticks call it too.
func (m *Model) syncWaiting() {
	switch {
	case m.ended:
	case m.snap.State == blocks.StateSpawnPending:
		m.status = waitingStatus
	case m.status == waitingStatus:
		m.status = ""
	}
}

// handleEnded records the final score once.
func (m *Model) handleEnded(e blocks.MatchEndedEvent) {
	m.ended = true
	m.result = e
	m.flash = nil

	if m.saved {
		return
	}
	m.saved = true

	ranked := m.snap.Ranked
	if m.opts.Store != nil && ranked && e.Score > 0 {
		if _, err := m.opts.Store.SaveScore(m.opts.Name, e.Score, string(m.opts.Config.Preset)); err != nil {
			m.opts.Logger.Warn("could not save score", "error", err)
		}
	}
	if m.opts.Lobby != nil {
		adapter := m.opts.Lobby.Adapter()
		if ranked && e.Score > 0 {
			adapter.SubmitHighScore(e.Score)
		}
		adapter.RequestHighScores()
		adapter.RequestScores()
	}
	m.loadScores()
}

// loadScores fills the post-match table.
func (m *Model) loadScores() {
	if m.opts.Lobby != nil {
		m.scores = newTable(highScoreColumns(), topScoreRows+1, false)
		m.scores.SetRows(highScoreRows(m.opts.Lobby.Adapter().HighScores()))
		return
	}
	if m.opts.Store == nil {
		return
	}
	top, err := m.opts.Store.TopScores(topScoreRows)
	if err != nil {
		m.opts.Logger.Warn("could not load scores", "error", err)
		return
	}
	m.scores.SetRows(localScoreRows(top))
}

// refreshLobby redraws the leaderboard and, after the match, the online
// high scores.
func (m *Model) refreshLobby() {
	adapter := m.opts.Lobby.Adapter()
	m.board.SetRows(leaderboardRows(adapter.Leaderboard().Entries(), adapter.Name()))
	if m.ended {
		m.scores.SetRows(highScoreRows(adapter.HighScores()))
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "BLOCKS"
	if m.opts.Lobby != nil {
		title += " · online as " + m.opts.Lobby.Adapter().Name()
	} else {
		title += " · " + m.opts.Name
	}
	if m.opts.Config.Preset != "" {
		title += " · " + string(m.opts.Config.Preset)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(renderStats(m.snap))
	b.WriteString("\n\n")

	board := renderBoard(boardView{
		snap:   m.snap,
		cursor: m.cursor,
		flash:  m.flash,
		ghost:  !m.ended && m.snap.State == blocks.StateAwaitingPlacement,
	})
	side := lipgloss.JoinVertical(lipgloss.Left,
		renderPiece("Current", m.snap.Current, m.snap.HasCurrent),
		renderPiece("Next", m.snap.Following, m.snap.HasFollowing),
	)
	panels := []string{board, "  ", side}
	if m.opts.Lobby != nil {
		panels = append(panels, "  ", boxStyle.Render(labelStyle.Render("Room")+"\n"+m.board.View()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	if m.ended {
		b.WriteString(m.renderGameOver())
	} else {
		remaining := m.snap.Remaining(time.Now())
		b.WriteString(m.bar.ViewAs(countdownRatio(m.snap, time.Now())))
		b.WriteString(" " + valueStyle.Render(formatRemaining(remaining)))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderGameOver() string {
	var b strings.Builder
	b.WriteString(gameOverStyle.Render("GAME OVER"))
	b.WriteString(labelStyle.Render(" (" + m.result.Reason.String() + ")  "))
	b.WriteString(renderStats(m.snap))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	heading := "Top scores"
	if m.opts.Lobby != nil {
		heading = "Online high scores"
	}
	b.WriteString(boxStyle.Render(labelStyle.Render(heading) + "\n" + m.scores.View()))
	b.WriteString("\n")
	if m.opts.Lobby == nil {
		b.WriteString(labelStyle.Render("n: new match · esc: quit"))
	} else {
		b.WriteString(labelStyle.Render("esc: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// Ended reports whether the current match is over.
func (m Model) Ended() bool {
	return m.ended
}

// Result returns the final event of the last finished match.
func (m Model) Result() blocks.MatchEndedEvent {
	return m.result
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Run starts the Bubble Tea program for a match and blocks until the player quits.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
