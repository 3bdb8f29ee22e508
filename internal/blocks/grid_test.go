package blocks

import "testing"

func TestGridGetOutOfBounds(t *testing.T) {
	g := NewGrid(5, 4)

	tests := []struct {
		name string
		x, y int
		want int
	}{
		{"origin", 0, 0, 0},
		{"last cell", 4, 3, 0},
		{"negative x", -1, 0, Invalid},
		{"negative y", 0, -1, Invalid},
		{"x past edge", 5, 0, Invalid},
		{"y past edge", 0, 4, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Get(tt.x, tt.y); got != tt.want {
				t.Errorf("Get(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGridSetOutOfBoundsPanics(t *testing.T) {
	g := NewGrid(3, 3)
	defer func() {
		if recover() == nil {
			t.Error("Set outside the grid should panic")
		}
	}()
	g.Set(3, 0, 1)
}

func TestGridResetAndSnapshot(t *testing.T) {
	g := NewGrid(3, 2)
	g.Set(2, 1, 7)

	snap := g.Snapshot()
	if snap[2][1] != 7 {
		t.Fatalf("snapshot[2][1] = %d, want 7", snap[2][1])
	}

	snap[0][0] = 9
	if g.Get(0, 0) != 0 {
		t.Error("mutating a snapshot changed the grid")
	}

	g.Reset()
	if g.Get(2, 1) != 0 {
		t.Error("Reset left a non-zero cell")
	}
}
