package core

import "time"

// RuntimeConfig contains the terminal parameters a front end starts with.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Countdown redraws per second
	Seed     int64 // RNG seed; 0 means use the current time
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 10,
		Seed:     0,
	}
}

// TickInterval returns the redraw interval for the configured tick rate.
func (c RuntimeConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 10
	}
	return time.Second / time.Duration(c.TickRate)
}
