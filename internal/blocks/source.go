package blocks

import (
	"math/rand"
	"time"
)

// PieceSource supplies pieces to a match. Draw is called on the match
// goroutine each time a slot needs a piece. A source that cannot supply one
// immediately returns ok=false and later hands the piece to Match.Deliver;
// the spawn stays pending until then.
type PieceSource interface {
	Draw() (p Piece, ok bool)
}

// Mirror receives the outward-visible changes of a match. Calls happen on
// the match goroutine and must not block.
type Mirror interface {
	ScoreChanged(score int)
	LivesChanged(lives int)
	Eliminated()
}

// LocalSource draws uniformly random pieces from a seeded generator.
type LocalSource struct {
	rng *rand.Rand
}

// NewLocalSource creates a local source. A zero seed uses the current time.
func NewLocalSource(seed int64) *LocalSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LocalSource{rng: rand.New(rand.NewSource(seed))}
}

// Draw implements PieceSource.
func (s *LocalSource) Draw() (Piece, bool) {
	return RandomPiece(s.rng), true
}

// Clock schedules countdowns. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
