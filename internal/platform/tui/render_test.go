package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
	"github.com/vovakirdan/tui-blocks/internal/core"
)

func testSnapshot() blocks.Snapshot {
	g := blocks.NewGrid(3, 3)
	g.Set(0, 0, 1)
	return blocks.Snapshot{
		State:      blocks.StateAwaitingPlacement,
		Cols:       3,
		Rows:       3,
		Cells:      g.Snapshot(),
		Current:    blocks.MustPiece(3, 0), // dot
		HasCurrent: true,
		Lives:      2,
		Ranked:     true,
	}
}

func TestRenderBoardCells(t *testing.T) {
	s := testSnapshot()

	out := renderBoard(boardView{snap: s, cursor: core.Cursor{X: 2, Y: 2, Cols: 3, Rows: 3}})
	if got := strings.Count(out, cellFilled); got != 1 {
		t.Errorf("filled cells = %d, want 1", got)
	}
	if strings.Contains(out, cellGhost) {
		t.Error("ghost drawn without ghost flag")
	}
	if got := len(strings.Split(out, "\n")); got != 5 {
		t.Errorf("board has %d lines, want 5 (3 rows plus border)", got)
	}
}

func TestRenderBoardGhostAndFlash(t *testing.T) {
	s := testSnapshot()

	out := renderBoard(boardView{
		snap:   s,
		cursor: core.Cursor{X: 2, Y: 2, Cols: 3, Rows: 3},
		flash:  []blocks.Coord{{X: 1, Y: 0}},
		ghost:  true,
	})
	if got := strings.Count(out, cellGhost); got != 1 {
		t.Errorf("ghost cells = %d, want 1", got)
	}
	if got := strings.Count(out, cellFlash); got != 1 {
		t.Errorf("flash cells = %d, want 1", got)
	}

	// Ghost over an occupied cell is still drawn, as blocked.
	out = renderBoard(boardView{snap: s, cursor: core.Cursor{X: 0, Y: 0, Cols: 3, Rows: 3}, ghost: true})
	if got := strings.Count(out, cellGhost); got != 1 {
		t.Errorf("blocked ghost cells = %d, want 1", got)
	}
}

func TestRenderPieceWaiting(t *testing.T) {
	out := renderPiece("Next", blocks.Piece{}, false)
	if !strings.Contains(out, "waiting") {
		t.Errorf("missing piece should render as waiting, got %q", out)
	}

	out = renderPiece("Current", blocks.MustPiece(2, 0), true)
	if got := strings.Count(out, cellFilled); got != 5 {
		t.Errorf("plus preview has %d cells, want 5", got)
	}
	if !strings.Contains(out, "Plus") {
		t.Errorf("preview should name the piece, got %q", out)
	}
}

func TestRenderStats(t *testing.T) {
	s := testSnapshot()
	s.Score = 120
	s.Multiplier = 3

	out := renderStats(s)
	for _, want := range []string{"120", "x3", "♥♥"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "unranked") {
		t.Error("ranked match shown as unranked")
	}

	s.Ranked = false
	if !strings.Contains(renderStats(s), "unranked") {
		t.Error("unranked match not marked")
	}
}

func TestCountdownRatio(t *testing.T) {
	now := time.Unix(1000, 0)
	s := blocks.Snapshot{
		State:    blocks.StateAwaitingPlacement,
		Turn:     10 * time.Second,
		Deadline: now.Add(2500 * time.Millisecond),
	}

	if got := countdownRatio(s, now); got != 0.25 {
		t.Errorf("countdownRatio = %v, want 0.25", got)
	}
	if got := countdownRatio(s, now.Add(time.Minute)); got != 0 {
		t.Errorf("countdownRatio after deadline = %v, want 0", got)
	}

	s.State = blocks.StateSpawnPending
	if got := countdownRatio(s, now); got != 0 {
		t.Errorf("countdownRatio while pending = %v, want 0", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	if got := formatRemaining(2500 * time.Millisecond); got != " 2.5s" {
		t.Errorf("formatRemaining = %q, want %q", got, " 2.5s")
	}
}
