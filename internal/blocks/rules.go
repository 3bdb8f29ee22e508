package blocks

import (
	"errors"
	"fmt"
	"time"
)

// Rules holds the constants of a ruleset.
type Rules struct {
	Lives      int           // lives at match start
	BaseTurn   time.Duration // countdown at level 0
	TurnStep   time.Duration // countdown reduction per level
	MinTurn    time.Duration // countdown floor
	LevelStep  int           // score needed per level
	BlockScore int           // points per cleared block per line, before the multiplier
	Ranked     bool          // whether scores from this ruleset count toward leaderboards
}

// BaselineRules returns the standard ruleset.
func BaselineRules() Rules {
	return Rules{
		Lives:      3,
		BaseTurn:   12000 * time.Millisecond,
		TurnStep:   500 * time.Millisecond,
		MinTurn:    2500 * time.Millisecond,
		LevelStep:  1000,
		BlockScore: 10,
		Ranked:     true,
	}
}

// HardRules is the baseline with a shorter starting countdown.
func HardRules() Rules {
	r := BaselineRules()
	r.BaseTurn = 4500 * time.Millisecond
	return r
}

// TurnDuration returns the countdown for a level:
// max(MinTurn, BaseTurn - TurnStep*level).
func (r Rules) TurnDuration(level int) time.Duration {
	d := r.BaseTurn - time.Duration(level)*r.TurnStep
	if d < r.MinTurn {
		return r.MinTurn
	}
	return d
}

// Validate checks that the ruleset can run a match.
func (r Rules) Validate() error {
	var errs []error
	if r.Lives <= 0 {
		errs = append(errs, fmt.Errorf("lives must be positive, got %d", r.Lives))
	}
	if r.MinTurn <= 0 {
		errs = append(errs, fmt.Errorf("minimum turn must be positive, got %s", r.MinTurn))
	}
	if r.BaseTurn < r.MinTurn {
		errs = append(errs, fmt.Errorf("base turn %s below minimum %s", r.BaseTurn, r.MinTurn))
	}
	if r.TurnStep < 0 {
		errs = append(errs, fmt.Errorf("turn step must not be negative, got %s", r.TurnStep))
	}
	if r.LevelStep <= 0 {
		errs = append(errs, fmt.Errorf("level step must be positive, got %d", r.LevelStep))
	}
	if r.BlockScore <= 0 {
		errs = append(errs, fmt.Errorf("block score must be positive, got %d", r.BlockScore))
	}
	if len(errs) > 0 {
		return fmt.Errorf("blocks: invalid rules: %w", errors.Join(errs...))
	}
	return nil
}
