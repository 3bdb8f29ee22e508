package multiplayer

import (
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
)

// Sender queues outbound protocol messages without blocking.
type Sender interface {
	Send(msg Message)
}

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	Prefetch int   // pieces requested before the match starts
	Seed     int64 // seeds the local rotation generator; zero uses the time
}

// Adapter ties a match to a remote lobby. It is the match's PieceSource
// and Mirror, and it interprets inbound messages.
type Adapter struct {
	sender   Sender
	prefetch int
	logger   *log.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	match   *blocks.Match
	early   []blocks.Piece // pieces that arrived before Attach
	name    string
	last    string // command a continuation line extends
	scores  []HighScore
	pending []HighScore // HISCORES snapshot being received

	board   Leaderboard
	updates chan struct{}
}

// NewAdapter creates an adapter writing to sender.
func NewAdapter(sender Sender, cfg AdapterConfig, logger *log.Logger) *Adapter {
	if cfg.Prefetch < 0 {
		cfg.Prefetch = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "net"})
	}
	return &Adapter{
		sender:   sender,
		prefetch: cfg.Prefetch,
		logger:   logger,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		updates:  make(chan struct{}, 1),
	}
}

// Prefetch requests the configured number of pieces ahead of play.
func (a *Adapter) Prefetch() {
	for range a.prefetch {
		a.sender.Send(Msg(CmdPiece))
	}
}

// Attach routes received pieces to m. Pieces received earlier are
// preloaded into m ahead of its first spawn, in arrival order. Attach
// never blocks on the match.
func (a *Adapter) Attach(m *blocks.Match) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := m.Preload(a.early...); err != nil {
		for _, p := range a.early {
			m.Deliver(p)
		}
	}
	a.early = nil
	a.match = m
}

// Abort ends the attached match with blocks.EndAborted. The client calls
// it once the connection is gone.
func (a *Adapter) Abort() {
	a.mu.Lock()
	m := a.match
	a.mu.Unlock()
	if m != nil {
		m.Abort()
	}
}

// Draw implements blocks.PieceSource. Every spawn requests one piece from
// the server and is served from the delivered queue.
func (a *Adapter) Draw() (blocks.Piece, bool) {
	a.sender.Send(Msg(CmdPiece))
	return blocks.Piece{}, false
}

// ScoreChanged implements blocks.Mirror.
func (a *Adapter) ScoreChanged(score int) {
	a.sender.Send(IntMsg(CmdScore, score))
}

// LivesChanged implements blocks.Mirror.
func (a *Adapter) LivesChanged(lives int) {
	a.sender.Send(IntMsg(CmdLives, lives))
}

// Eliminated implements blocks.Mirror.
func (a *Adapter) Eliminated() {
	a.sender.Send(Msg(CmdDie))
}

// RequestScores asks for a leaderboard snapshot.
func (a *Adapter) RequestScores() {
	a.sender.Send(Msg(CmdScores))
}

// RequestHighScores asks for the online high score table.
func (a *Adapter) RequestHighScores() {
	a.sender.Send(Msg(CmdHiScores))
}

// SubmitHighScore offers a score for the online table.
func (a *Adapter) SubmitHighScore(score int) {
	a.sender.Send(Msg(CmdHiScore, FormatHighScore(HighScore{Name: a.Name(), Score: score})))
}

// SetName asks the server for a display name.
func (a *Adapter) SetName(name string) {
	if name = sanitizeName(name); name != "" {
		a.sender.Send(Msg(CmdNick, name))
	}
}

// Name returns the name the server assigned.
func (a *Adapter) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

// Leaderboard returns the view of the other players.
func (a *Adapter) Leaderboard() *Leaderboard {
	return &a.board
}

// HighScores returns the last online high score table received.
func (a *Adapter) HighScores() []HighScore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]HighScore(nil), a.scores...)
}

// Updates signals after an inbound message changed the leaderboard, the
// high scores or the name.
func (a *Adapter) Updates() <-chan struct{} {
	return a.updates
}

func (a *Adapter) notify() {
	select {
	case a.updates <- struct{}{}:
	default:
	}
}

// HandleMessage applies one inbound message. Malformed messages are
// logged and dropped.
func (a *Adapter) HandleMessage(msg Message) {
	if msg.IsContinuation() {
		a.handleContinuation(msg.Payload)
		return
	}

	a.mu.Lock()
	a.last = ""
	a.mu.Unlock()

	switch msg.Command {
	case CmdPiece:
		a.handlePiece(msg)

	case CmdScores:
		records := a.parseRecords(msg.Payload)
		a.board.Replace(records)
		a.mu.Lock()
		a.last = CmdScores
		a.mu.Unlock()
		a.notify()

	case CmdHiScores:
		a.mu.Lock()
		a.pending = a.parseHighScores(msg.Payload)
		a.scores = append([]HighScore(nil), a.pending...)
		a.last = CmdHiScores
		a.mu.Unlock()
		a.notify()

	case CmdNick:
		a.mu.Lock()
		a.name = msg.Payload
		a.mu.Unlock()
		a.notify()

	case CmdNewScore:
		h, err := ParseHighScore(msg.Payload)
		if err != nil {
			a.logger.Warn("dropping message", "error", err)
			return
		}
		a.logger.Info("online high score accepted", "name", h.Name, "score", h.Score)

	case CmdError:
		a.logger.Warn("server error", "message", msg.Payload)

	default:
		a.logger.Debug("ignoring message", "command", msg.Command)
	}
}

func (a *Adapter) handlePiece(msg Message) {
	idx, err := msg.Int()
	if err != nil {
		a.logger.Warn("dropping message", "error", err)
		return
	}

	a.mu.Lock()
	p, err := blocks.NewPiece(idx, a.rng.Intn(4))
	if err != nil {
		a.mu.Unlock()
		a.logger.Warn("dropping message", "error", err)
		return
	}
	defer a.mu.Unlock()

	// Delivery stays under the lock so pieces reach the match in
	// arrival order even while Attach is flushing.
	if a.match == nil {
		a.early = append(a.early, p)
		return
	}
	// Before Run the command queue is not drained, so fill the match
	// directly.
	if err := a.match.Preload(p); err == nil {
		return
	}
	a.match.Deliver(p)
}

func (a *Adapter) handleContinuation(payload string) {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()

	switch last {
	case CmdScores:
		r, err := ParseRecord(payload)
		if err != nil {
			a.logger.Warn("dropping record", "error", err)
			return
		}
		a.board.Add(r)
		a.notify()
	case CmdHiScores:
		h, err := ParseHighScore(payload)
		if err != nil {
			a.logger.Warn("dropping record", "error", err)
			return
		}
		a.mu.Lock()
		a.pending = append(a.pending, h)
		a.scores = append([]HighScore(nil), a.pending...)
		a.mu.Unlock()
		a.notify()
	default:
		a.logger.Debug("ignoring stray record", "payload", payload)
	}
}

// parseRecords reads the space separated records of a SCORES header.
func (a *Adapter) parseRecords(payload string) []PlayerRecord {
	var out []PlayerRecord
	for _, field := range strings.Fields(payload) {
		r, err := ParseRecord(field)
		if err != nil {
			a.logger.Warn("dropping record", "error", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (a *Adapter) parseHighScores(payload string) []HighScore {
	var out []HighScore
	for _, field := range strings.Fields(payload) {
		h, err := ParseHighScore(field)
		if err != nil {
			a.logger.Warn("dropping record", "error", err)
			continue
		}
		out = append(out, h)
	}
	return out
}
