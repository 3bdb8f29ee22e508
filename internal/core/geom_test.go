package core

import (
	"testing"
	"time"
)

func TestCursorMove(t *testing.T) {
	tests := []struct {
		name   string
		start  Cursor
		dx, dy int
		wantX  int
		wantY  int
	}{
		{"right", Cursor{X: 1, Y: 1, Cols: 5, Rows: 5}, 1, 0, 2, 1},
		{"up", Cursor{X: 1, Y: 1, Cols: 5, Rows: 5}, 0, -1, 1, 0},
		{"stops at left edge", Cursor{X: 0, Y: 2, Cols: 5, Rows: 5}, -1, 0, 0, 2},
		{"stops at bottom edge", Cursor{X: 2, Y: 4, Cols: 5, Rows: 5}, 0, 1, 2, 4},
		{"large jump clamps", Cursor{X: 2, Y: 2, Cols: 5, Rows: 3}, 10, 10, 4, 2},
		{"empty grid", Cursor{Cols: 0, Rows: 0}, 1, 1, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.start.Move(tc.dx, tc.dy)
			if got.X != tc.wantX || got.Y != tc.wantY {
				t.Errorf("Move(%d, %d) = (%d, %d), expected (%d, %d)", tc.dx, tc.dy, got.X, got.Y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestNewCursorCentred(t *testing.T) {
	c := NewCursor(5, 5)
	if !c.At(2, 2) {
		t.Errorf("NewCursor(5, 5) at (%d, %d), expected (2, 2)", c.X, c.Y)
	}
}

func TestCursorApply(t *testing.T) {
	c := NewCursor(5, 5)
	for _, a := range []Action{ActionLeft, ActionLeft, ActionUp} {
		c = c.Apply(a)
	}
	if !c.At(0, 1) {
		t.Errorf("after left, left, up cursor at (%d, %d), expected (0, 1)", c.X, c.Y)
	}

	before := c
	c = c.Apply(ActionPlace)
	if c != before {
		t.Error("non-move action should not move the cursor")
	}
}

func TestActionIsMove(t *testing.T) {
	moves := map[Action]bool{
		ActionLeft:   true,
		ActionRight:  true,
		ActionUp:     true,
		ActionDown:   true,
		ActionPlace:  false,
		ActionRotate: false,
		ActionSwap:   false,
		ActionNone:   false,
	}
	for a, want := range moves {
		if got := a.IsMove(); got != want {
			t.Errorf("%s.IsMove() = %v, expected %v", a, got, want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(1.5, 0, 1); got != 1 {
		t.Errorf("ClampF(1.5, 0, 1) = %v, expected 1", got)
	}
	if got := ClampF(-0.1, 0, 1); got != 0 {
		t.Errorf("ClampF(-0.1, 0, 1) = %v, expected 0", got)
	}
}

func TestTickInterval(t *testing.T) {
	if got := (RuntimeConfig{TickRate: 20}).TickInterval(); got != 50*time.Millisecond {
		t.Errorf("TickInterval() = %v, expected 50ms", got)
	}
	if got := (RuntimeConfig{}).TickInterval(); got != 100*time.Millisecond {
		t.Errorf("TickInterval() with zero rate = %v, expected 100ms", got)
	}
}
