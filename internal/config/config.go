// Package config loads the YAML configuration for blocks: grid size,
// ruleset, multiplayer client settings and the lobby and SSH servers.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
)

// MaxPrefetch bounds multiplayer.prefetch.
const MaxPrefetch = 32

// Config is the full configuration.
type Config struct {
	Preset      DifficultyPreset  `yaml:"preset"`
	Grid        GridConfig        `yaml:"grid"`
	Rules       RulesConfig       `yaml:"rules"`
	Multiplayer MultiplayerConfig `yaml:"multiplayer"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
}

// GridConfig sets the board size.
type GridConfig struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// RulesConfig holds the ruleset constants. Durations are in milliseconds.
type RulesConfig struct {
	Lives      int  `yaml:"lives"`
	BaseTurnMS int  `yaml:"base_turn_ms"`
	TurnStepMS int  `yaml:"turn_step_ms"`
	MinTurnMS  int  `yaml:"min_turn_ms"`
	LevelStep  int  `yaml:"level_step"`
	BlockScore int  `yaml:"block_score"`
	Ranked     bool `yaml:"ranked"`
}

// MultiplayerConfig configures the lobby client.
type MultiplayerConfig struct {
	Server         string `yaml:"server"` // host:port; empty plays locally
	Name           string `yaml:"name"`
	Prefetch       int    `yaml:"prefetch"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

// ServerConfig configures the lobby and SSH servers.
type ServerConfig struct {
	LobbyAddress   string `yaml:"lobby_address"`
	MaxPlayers     int    `yaml:"max_players"`
	HighScoreLimit int    `yaml:"high_score_limit"`
	LobbyIdleSecs  int    `yaml:"lobby_idle_secs"`
	SSHAddress     string `yaml:"ssh_address"`
	HostKeyPath    string `yaml:"host_key_path"`
	SSHIdleMinutes int    `yaml:"ssh_idle_minutes"`
}

// StorageConfig locates the score database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EngineRules converts the ruleset for the engine.
func (c Config) EngineRules() blocks.Rules {
	return blocks.Rules{
		Lives:      c.Rules.Lives,
		BaseTurn:   time.Duration(c.Rules.BaseTurnMS) * time.Millisecond,
		TurnStep:   time.Duration(c.Rules.TurnStepMS) * time.Millisecond,
		MinTurn:    time.Duration(c.Rules.MinTurnMS) * time.Millisecond,
		LevelStep:  c.Rules.LevelStep,
		BlockScore: c.Rules.BlockScore,
		Ranked:     c.Rules.Ranked,
	}
}

// PollInterval returns the leaderboard poll period.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Multiplayer.PollIntervalMS) * time.Millisecond
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.Cols <= 0 || c.Grid.Rows <= 0 {
		errs = append(errs, fmt.Errorf("grid size must be positive, got %dx%d", c.Grid.Cols, c.Grid.Rows))
	}
	if err := c.EngineRules().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Multiplayer.Prefetch < 0 || c.Multiplayer.Prefetch > MaxPrefetch {
		errs = append(errs, fmt.Errorf("prefetch must be between 0 and %d, got %d", MaxPrefetch, c.Multiplayer.Prefetch))
	}
	if c.Server.MaxPlayers < 0 {
		errs = append(errs, fmt.Errorf("max players must not be negative, got %d", c.Server.MaxPlayers))
	}
	if c.Preset != "" {
		if _, err := ParsePreset(string(c.Preset)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
