package config

import (
	_ "embed"
)

//go:embed defaults/blocks.yaml
var defaultYAML []byte

// Default returns the built-in configuration, used when no file and no
// embedded default can be read.
func Default() Config {
	return Config{
		Preset: DifficultyNormal,
		Grid: GridConfig{
			Cols: 5,
			Rows: 5,
		},
		Rules: RulesConfig{
			Lives:      3,
			BaseTurnMS: 12000,
			TurnStepMS: 500,
			MinTurnMS:  2500,
			LevelStep:  1000,
			BlockScore: 10,
			Ranked:     true,
		},
		Multiplayer: MultiplayerConfig{
			Prefetch:       6,
			PollIntervalMS: 1000,
		},
		Server: ServerConfig{
			LobbyAddress:   ":9700",
			HighScoreLimit: 10,
			LobbyIdleSecs:  300,
			SSHAddress:     ":23234",
			SSHIdleMinutes: 30,
		},
		Storage: StorageConfig{
			Path: "~/.blocks/scores.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
