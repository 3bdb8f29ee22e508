package blocks

import "time"

// slot names one of the two piece positions a spawn can fill.
type slot int

const (
	slotCurrent slot = iota
	slotFollowing
)

// matchCommand is processed by the match loop.
type matchCommand interface {
	matchCommand()
}

type placeCmd struct {
	x, y  int
	reply chan bool
}

type rotateCmd struct {
	clockwise bool
}

type swapCmd struct{}

type timeoutCmd struct {
	gen uint64
}

type deliverCmd struct {
	piece Piece
}

type stopCmd struct {
	reason EndReason
}

func (placeCmd) matchCommand()   {}
func (rotateCmd) matchCommand()  {}
func (swapCmd) matchCommand()    {}
func (timeoutCmd) matchCommand() {}
func (deliverCmd) matchCommand() {}
func (stopCmd) matchCommand()    {}

func (m *Match) handle(cmd matchCommand) {
	switch c := cmd.(type) {
	case placeCmd:
		ok := m.place(c.x, c.y)
		if c.reply != nil {
			c.reply <- ok
		}
	case rotateCmd:
		m.rotate(c.clockwise)
	case swapCmd:
		m.swap()
	case timeoutCmd:
		m.timeout(c.gen)
	case deliverCmd:
		m.deliver(c.piece)
	case stopCmd:
		m.end(c.reason)
	}
}

// start spawns both pieces and opens the first turn.
func (m *Match) start() {
	if m.state != StateIdle {
		return
	}
	m.logger.Debug("match started", "cols", m.grid.Cols(), "rows", m.grid.Rows(), "lives", m.lives, "ranked", m.rules.Ranked)

	m.spawn(slotCurrent)
	m.spawn(slotFollowing)
	m.beginTurn()
}

// place resolves a placement request. It returns false and changes nothing
// when the piece does not fit or no turn is open.
func (m *Match) place(x, y int) bool {
	if m.state != StateAwaitingPlacement || !m.hasCur {
		return false
	}
	if !CanPlay(m.grid, m.current, x, y) {
		return false
	}

	m.state = StateResolving
	m.stopTimer()

	Play(m.grid, m.current, x, y)
	clr := Sweep(m.grid)
	delta, levels := m.progress.ApplyClear(clr.Lines, clr.Blocks)

	m.logger.Debug("piece placed", "piece", m.current, "x", x, "y", y, "lines", clr.Lines, "blocks", clr.Blocks, "delta", delta)

	if clr.Lines > 0 {
		m.emit(LinesClearedEvent{Lines: clr.Lines, Cells: clr.Cells.Sorted()})
	}
	if delta > 0 {
		m.emit(ScoreChangedEvent{Score: m.progress.Score, Delta: delta, Multiplier: m.progress.Multiplier})
		if m.mirror != nil {
			m.mirror.ScoreChanged(m.progress.Score)
		}
	}
	for i := levels - 1; i >= 0; i-- {
		m.emit(LevelUpEvent{Level: m.progress.Level - i})
	}

	m.advance()
	m.beginTurn()
	return true
}

// timeout applies a countdown expiry. Expiries from an earlier countdown
// are ignored.
func (m *Match) timeout(gen uint64) {
	if gen != m.gen || m.state != StateAwaitingPlacement {
		return
	}

	m.state = StateResolving
	m.timer = nil
	m.lives--
	m.logger.Debug("turn expired", "lives", m.lives)

	m.emit(LifeLostEvent{Lives: m.lives})
	if m.mirror != nil {
		m.mirror.LivesChanged(m.lives)
	}

	if m.lives <= 0 {
		m.end(EndEliminated)
		return
	}

	m.hasCur = false
	m.spawn(slotCurrent)
	m.progress.ResetMultiplier()
	m.beginTurn()
}

func (m *Match) rotate(clockwise bool) {
	if m.state != StateAwaitingPlacement || !m.hasCur {
		return
	}
	if clockwise {
		m.current = m.current.Rotate()
	} else {
		m.current = m.current.RotateBack()
	}
	m.emit(PieceChangedEvent{Piece: m.current, Role: RoleCurrentRotated})
}

func (m *Match) swap() {
	if m.state != StateAwaitingPlacement || !m.hasCur || !m.hasFol {
		return
	}
	m.current, m.following = m.following, m.current
	m.emit(PieceChangedEvent{Piece: m.current, Role: RoleCurrentSwappedIn})
	m.emit(PieceChangedEvent{Piece: m.following, Role: RoleFollowingSwappedIn})
}

// deliver fills the oldest pending slot with a remotely supplied piece.
func (m *Match) deliver(p Piece) {
	if m.state == StateEnded {
		m.logger.Debug("late piece dropped", "piece", p)
		return
	}
	if len(m.pending) == 0 {
		m.queue = append(m.queue, p)
		return
	}

	s := m.pending[0]
	m.pending = m.pending[1:]
	m.fill(s, p)

	if s == slotCurrent && m.state == StateSpawnPending {
		m.beginTurn()
	}
}

// spawn asks the source for a piece for slot s. A source that cannot
// answer at once is served from the delivered queue; when that is empty
// the slot joins the pending list.
func (m *Match) spawn(s slot) {
	if p, ok := m.source.Draw(); ok {
		m.fill(s, p)
		return
	}
	if len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		m.fill(s, p)
		return
	}
	m.pending = append(m.pending, s)
}

func (m *Match) fill(s slot, p Piece) {
	switch s {
	case slotCurrent:
		m.current, m.hasCur = p, true
		m.emit(PieceChangedEvent{Piece: p, Role: RoleCurrentSpawned})
	case slotFollowing:
		m.following, m.hasFol = p, true
		m.emit(PieceChangedEvent{Piece: p, Role: RoleFollowingSpawned})
	}
}

// advance moves the following piece into the current slot and spawns a
// new following piece.
func (m *Match) advance() {
	m.hasCur = false
	if m.hasFol {
		m.hasFol = false
		m.fill(slotCurrent, m.following)
	} else {
		for i, s := range m.pending {
			if s == slotFollowing {
				m.pending[i] = slotCurrent
				break
			}
		}
	}
	m.spawn(slotFollowing)
}

// beginTurn opens a turn for the current piece, or waits for one.
func (m *Match) beginTurn() {
	if m.state == StateEnded {
		return
	}
	if !m.hasCur {
		m.state = StateSpawnPending
		m.deadline = time.Time{}
		return
	}
	m.state = StateAwaitingPlacement
	m.restartCountdown()
}

func (m *Match) restartCountdown() {
	m.stopTimer()

	d := m.rules.TurnDuration(m.progress.Level)
	gen := m.gen
	t := m.clock.AfterFunc(d, func() {
		m.send(timeoutCmd{gen: gen})
	})
	if t == nil {
		m.logger.Error("countdown unavailable, ending match")
		m.end(EndAborted)
		return
	}

	m.timer = t
	m.turn = d
	m.deadline = m.clock.Now().Add(d)
	m.emit(TurnDurationChangedEvent{Duration: d, Deadline: m.deadline})
}

// stopTimer cancels the running countdown and invalidates any expiry
// already in the queue.
func (m *Match) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

// end moves the match to StateEnded. Only the first call has any effect.
func (m *Match) end(reason EndReason) {
	if m.state == StateEnded {
		return
	}
	m.stopTimer()
	m.state = StateEnded
	m.pending = nil
	m.queue = nil
	m.deadline = time.Time{}

	m.logger.Info("match ended", "reason", reason, "score", m.progress.Score, "level", m.progress.Level)

	if m.mirror != nil {
		m.mirror.Eliminated()
	}
	m.emit(MatchEndedEvent{Reason: reason, Score: m.progress.Score, Level: m.progress.Level})
}
