package blocks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrMatchEnded is returned by Run when called on a finished match.
	ErrMatchEnded = errors.New("blocks: match already ended")

	// ErrMatchStarted is returned by Preload once Run has begun.
	ErrMatchStarted = errors.New("blocks: match already started")
)

// State is the phase of a match.
type State int

const (
	StateIdle              State = iota // not started
	StateAwaitingPlacement              // countdown running, current piece playable
	StateSpawnPending                   // waiting for the source to supply the current piece
	StateResolving                      // a placement or timeout is being applied
	StateEnded                          // terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPlacement:
		return "awaiting-placement"
	case StateSpawnPending:
		return "spawn-pending"
	case StateResolving:
		return "resolving"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MatchConfig configures a match.
type MatchConfig struct {
	Cols  int
	Rows  int
	Rules Rules

	// Source supplies pieces. Nil uses a LocalSource seeded with Seed.
	Source PieceSource
	Seed   int64

	// Mirror, when set, is told about score, lives and elimination.
	Mirror Mirror

	// Clock schedules the countdown. Nil uses SystemClock.
	Clock Clock

	Logger *log.Logger

	// CommandBuffer is the size of the command queue (default 64).
	CommandBuffer int
}

// Snapshot is a read-only copy of match state for presentation.
type Snapshot struct {
	State        State
	Cols, Rows   int
	Cells        [][]int // [x][y]
	Score        int
	Level        int
	Lives        int
	Multiplier   int
	NextLevelAt  int
	Current      Piece
	Following    Piece
	HasCurrent   bool
	HasFollowing bool
	Turn         time.Duration
	Deadline     time.Time
	Ranked       bool
}

// Remaining returns the countdown time left at now.
func (s Snapshot) Remaining(now time.Time) time.Duration {
	if s.State != StateAwaitingPlacement {
		return 0
	}
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Fits reports whether the current piece would fit centred on (x, y).
func (s Snapshot) Fits(x, y int) bool {
	if !s.HasCurrent || s.Cols <= 0 || s.Rows <= 0 {
		return false
	}
	g := NewGrid(s.Cols, s.Rows)
	for cx, col := range s.Cells {
		for cy, v := range col {
			g.Set(cx, cy, v)
		}
	}
	return CanPlay(g, s.Current, x, y)
}

// Match is one game. All state is owned by the goroutine running Run;
// every other method only queues a command for it.
type Match struct {
	rules  Rules
	source PieceSource
	mirror Mirror
	clock  Clock
	logger *log.Logger

	grid      *Grid
	progress  Progress
	lives     int
	state     State
	current   Piece
	following Piece
	hasCur    bool
	hasFol    bool

	pending []slot  // slots waiting for Deliver, in request order
	queue   []Piece // delivered pieces not yet consumed

	timer    Timer
	gen      uint64
	turn     time.Duration
	deadline time.Time

	cmds     chan matchCommand
	done     chan struct{}
	doneOnce sync.Once
	started  atomic.Bool
	preMu    sync.Mutex // guards queue until Run starts

	subsMu     sync.Mutex
	subs       []chan Event
	subsClosed bool

	snap atomic.Pointer[Snapshot]
}

// NewMatch creates a match in StateIdle. Call Run to play it.
func NewMatch(cfg MatchConfig) (*Match, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("blocks: invalid grid size %dx%d", cfg.Cols, cfg.Rows)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source == nil {
		cfg.Source = NewLocalSource(cfg.Seed)
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "match"})
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 64
	}

	m := &Match{
		rules:    cfg.Rules,
		source:   cfg.Source,
		mirror:   cfg.Mirror,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		grid:     NewGrid(cfg.Cols, cfg.Rows),
		progress: NewProgress(cfg.Rules),
		lives:    cfg.Rules.Lives,
		state:    StateIdle,
		cmds:     make(chan matchCommand, cfg.CommandBuffer),
		done:     make(chan struct{}),
	}
	m.publish()
	return m, nil
}

// Run starts the match and processes commands until it ends or ctx is
// cancelled. Cancellation ends the match with EndAborted and returns
// ctx.Err().
func (m *Match) Run(ctx context.Context) error {
	m.preMu.Lock()
	ok := m.started.CompareAndSwap(false, true)
	m.preMu.Unlock()
	if !ok {
		return ErrMatchEnded
	}
	defer m.shutdown()

	m.start()
	m.publish()

	for m.state != StateEnded {
		select {
		case cmd := <-m.cmds:
			m.handle(cmd)
			m.publish()
		case <-ctx.Done():
			m.end(EndAborted)
			m.publish()
			return ctx.Err()
		}
	}
	return nil
}

// shutdown releases waiters and closes subscriber channels.
func (m *Match) shutdown() {
	m.doneOnce.Do(func() {
		close(m.done)
	})

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	m.subsClosed = true
}

// Done is closed once the match loop has exited.
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// Place tries to play the current piece centred on (x, y).
// It blocks until the match loop has resolved the placement and reports
// whether the piece was placed.
func (m *Match) Place(x, y int) bool {
	reply := make(chan bool, 1)
	if !m.send(placeCmd{x: x, y: y, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-m.done:
		select {
		case ok := <-reply:
			return ok
		default:
			return false
		}
	}
}

// Rotate turns the current piece clockwise or anticlockwise.
func (m *Match) Rotate(clockwise bool) {
	m.send(rotateCmd{clockwise: clockwise})
}

// Swap exchanges the current and following pieces.
func (m *Match) Swap() {
	m.send(swapCmd{})
}

// Deliver hands a piece from a remote source to the match. Pieces are
// consumed in the order delivered. Deliveries after the match ended are
// dropped.
func (m *Match) Deliver(p Piece) {
	m.send(deliverCmd{piece: p})
}

// Preload queues pieces ahead of Run without going through the command
// queue, so any number may be added. Once Run has started it returns
// ErrMatchStarted and the caller must use Deliver.
func (m *Match) Preload(pieces ...Piece) error {
	m.preMu.Lock()
	defer m.preMu.Unlock()
	if m.started.Load() {
		return ErrMatchStarted
	}
	m.queue = append(m.queue, pieces...)
	return nil
}

// Stop ends the match as a manual exit.
func (m *Match) Stop() {
	m.send(stopCmd{reason: EndQuit})
}

// Abort ends the match because a resource it depends on went away.
func (m *Match) Abort() {
	m.send(stopCmd{reason: EndAborted})
}

// Snapshot returns the state as of the last processed command.
func (m *Match) Snapshot() Snapshot {
	return *m.snap.Load()
}

// Remaining returns the countdown time left.
func (m *Match) Remaining() time.Duration {
	return m.Snapshot().Remaining(m.clock.Now())
}

// Subscribe returns a channel receiving every event from now on.
// When the buffer is full the oldest pending event is dropped. The channel
// is closed when the match loop exits.
func (m *Match) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if m.subsClosed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// send queues a command. It reports false once the loop has exited.
func (m *Match) send(cmd matchCommand) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	select {
	case m.cmds <- cmd:
		return true
	case <-m.done:
		return false
	}
}

// emit fans an event out to subscribers without blocking the loop. The
// snapshot is refreshed first so readers see the state the event reports.
func (m *Match) emit(e Event) {
	m.publish()

	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- e:
			continue
		default:
		}
		// Buffer full: drop oldest and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// publish stores a fresh snapshot for readers on other goroutines.
func (m *Match) publish() {
	s := Snapshot{
		State:        m.state,
		Cols:         m.grid.Cols(),
		Rows:         m.grid.Rows(),
		Cells:        m.grid.Snapshot(),
		Score:        m.progress.Score,
		Level:        m.progress.Level,
		Lives:        m.lives,
		Multiplier:   m.progress.Multiplier,
		NextLevelAt:  m.progress.NextLevelAt(),
		Current:      m.current,
		Following:    m.following,
		HasCurrent:   m.hasCur,
		HasFollowing: m.hasFol,
		Turn:         m.turn,
		Deadline:     m.deadline,
		Ranked:       m.rules.Ranked,
	}
	m.snap.Store(&s)
}
