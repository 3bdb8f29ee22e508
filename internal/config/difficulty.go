package config

import (
	"fmt"
	"strings"
)

// DifficultyPreset names a ruleset variant.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the presets in menu order.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}

// ParsePreset parses a preset name, ignoring case.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	case "":
		return DifficultyNormal, nil
	default:
		return "", fmt.Errorf("config: unknown preset %q (want easy, normal or hard)", s)
	}
}

// ApplyPreset adjusts the ruleset for a preset.
// Easy gives four lives and keeps scores off leaderboards; hard starts the
// countdown at 4.5 seconds. Normal leaves the configured values alone.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	cfg.Preset = preset
	switch preset {
	case DifficultyEasy:
		cfg.Rules.Lives = 4
		cfg.Rules.Ranked = false
	case DifficultyHard:
		cfg.Rules.BaseTurnMS = 4500
		cfg.Rules.Ranked = true
	case DifficultyNormal:
		cfg.Rules.Ranked = true
	}
}

// Description returns a short label for menus.
func (p DifficultyPreset) Description() string {
	switch p {
	case DifficultyEasy:
		return "4 lives, unranked"
	case DifficultyNormal:
		return "3 lives, 12s turns"
	case DifficultyHard:
		return "3 lives, 4.5s turns"
	default:
		return ""
	}
}
