package blocks

import (
	"testing"
	"time"
)

func TestApplyClearMultiplier(t *testing.T) {
	p := NewProgress(BaselineRules())

	delta, _ := p.ApplyClear(1, 4)
	if delta != 40 {
		t.Errorf("first clear delta = %d, want 40", delta)
	}
	if p.Multiplier != 2 {
		t.Errorf("multiplier = %d, want 2", p.Multiplier)
	}

	delta, _ = p.ApplyClear(1, 4)
	if delta != 80 {
		t.Errorf("second clear delta = %d, want 80", delta)
	}
	if p.Score != 120 {
		t.Errorf("score = %d, want 120", p.Score)
	}

	delta, _ = p.ApplyClear(0, 0)
	if delta != 0 || p.Multiplier != 1 {
		t.Errorf("empty clear: delta = %d, multiplier = %d; want 0, 1", delta, p.Multiplier)
	}
	if p.Score != 120 {
		t.Errorf("score changed on empty clear: %d", p.Score)
	}
}

func TestApplyClearLevels(t *testing.T) {
	tests := []struct {
		name       string
		lines      int
		blocks     int
		wantLevels int
		wantLevel  int
	}{
		{"below threshold", 1, 5, 0, 0},
		{"exactly 1000", 2, 50, 1, 1},
		{"skips two levels", 5, 50, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress(BaselineRules())
			_, levels := p.ApplyClear(tt.lines, tt.blocks)
			if levels != tt.wantLevels {
				t.Errorf("levels = %d, want %d", levels, tt.wantLevels)
			}
			if p.Level != tt.wantLevel {
				t.Errorf("level = %d, want %d", p.Level, tt.wantLevel)
			}
			if p.NextLevelAt() != 1000*(p.Level+1) {
				t.Errorf("NextLevelAt = %d, want %d", p.NextLevelAt(), 1000*(p.Level+1))
			}
		})
	}
}

func TestTurnDuration(t *testing.T) {
	base := BaselineRules()
	hard := HardRules()

	tests := []struct {
		name  string
		rules Rules
		level int
		want  time.Duration
	}{
		{"baseline level 0", base, 0, 12000 * time.Millisecond},
		{"baseline level 1", base, 1, 11500 * time.Millisecond},
		{"baseline level 19", base, 19, 2500 * time.Millisecond},
		{"baseline level 20 floored", base, 20, 2500 * time.Millisecond},
		{"hard level 0", hard, 0, 4500 * time.Millisecond},
		{"hard level 4 floored", hard, 4, 2500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.TurnDuration(tt.level); got != tt.want {
				t.Errorf("TurnDuration(%d) = %s, want %s", tt.level, got, tt.want)
			}
		})
	}
}

func TestRulesValidate(t *testing.T) {
	if err := BaselineRules().Validate(); err != nil {
		t.Errorf("baseline rules invalid: %v", err)
	}

	r := BaselineRules()
	r.Lives = 0
	r.LevelStep = 0
	if err := r.Validate(); err == nil {
		t.Error("expected error for zero lives and level step")
	}
}
