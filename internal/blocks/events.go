package blocks

import "time"

// Event is published by a Match to its subscribers.
type Event interface {
	matchEvent()
}

// PieceRole says why a piece slot changed.
type PieceRole int

const (
	RoleCurrentSpawned     PieceRole = iota // a new current piece
	RoleFollowingSpawned                    // a new following (preview) piece
	RoleCurrentRotated                      // the current piece was rotated
	RoleCurrentSwappedIn                    // the old following piece became current
	RoleFollowingSwappedIn                  // the old current piece became following
)

func (r PieceRole) String() string {
	switch r {
	case RoleCurrentSpawned:
		return "current-spawned"
	case RoleFollowingSpawned:
		return "following-spawned"
	case RoleCurrentRotated:
		return "current-rotated"
	case RoleCurrentSwappedIn:
		return "current-swapped-in"
	case RoleFollowingSwappedIn:
		return "following-swapped-in"
	default:
		return "unknown"
	}
}

// IsCurrent reports whether the role refers to the current piece slot.
func (r PieceRole) IsCurrent() bool {
	return r == RoleCurrentSpawned || r == RoleCurrentRotated || r == RoleCurrentSwappedIn
}

// EndReason describes why a match ended.
type EndReason int

const (
	EndEliminated EndReason = iota // lives reached zero
	EndQuit                        // the player left
	EndAborted                     // the match loop was cancelled
)

func (r EndReason) String() string {
	switch r {
	case EndEliminated:
		return "eliminated"
	case EndQuit:
		return "quit"
	case EndAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// PieceChangedEvent is sent whenever the current or following piece changes.
type PieceChangedEvent struct {
	Piece Piece
	Role  PieceRole
}

func (PieceChangedEvent) matchEvent() {}

// LinesClearedEvent is sent after a sweep that cleared at least one line.
type LinesClearedEvent struct {
	Lines int
	Cells []Coord // sorted by column, then row
}

func (LinesClearedEvent) matchEvent() {}

// TurnDurationChangedEvent is sent on every countdown restart.
type TurnDurationChangedEvent struct {
	Duration time.Duration
	Deadline time.Time
}

func (TurnDurationChangedEvent) matchEvent() {}

// ScoreChangedEvent is sent after a placement that scored.
type ScoreChangedEvent struct {
	Score      int
	Delta      int
	Multiplier int // multiplier for the next clear
}

func (ScoreChangedEvent) matchEvent() {}

// LevelUpEvent is sent once per level gained.
type LevelUpEvent struct {
	Level int
}

func (LevelUpEvent) matchEvent() {}

// LifeLostEvent is sent when the countdown expires.
type LifeLostEvent struct {
	Lives int // lives remaining
}

func (LifeLostEvent) matchEvent() {}

// MatchEndedEvent is sent exactly once, as the last event of a match.
type MatchEndedEvent struct {
	Reason EndReason
	Score  int
	Level  int
}

func (MatchEndedEvent) matchEvent() {}
