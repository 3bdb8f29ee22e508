package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-blocks/internal/config"
	"github.com/vovakirdan/tui-blocks/internal/core"
	"github.com/vovakirdan/tui-blocks/internal/multiplayer"
)

func menuUpdate(t *testing.T, m MenuModel, msg tea.Msg) MenuModel {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(MenuModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func TestMenuSelectsPreset(t *testing.T) {
	m := NewMenuModel(core.DefaultConfig(), config.DifficultyNormal)
	if m.items[m.cursor].Preset != config.DifficultyNormal {
		t.Fatalf("cursor starts on %q, want normal", m.items[m.cursor].Preset)
	}

	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	res := m.Result()
	if res.Quit || res.WantsScoreboard || res.Preset != config.DifficultyHard {
		t.Errorf("Result() = %+v, want hard", res)
	}
}

func TestMenuScoreboardAndQuit(t *testing.T) {
	m := NewMenuModel(core.DefaultConfig(), "")
	m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.Result().WantsScoreboard {
		t.Error("tab should open the scoreboard")
	}

	m = NewMenuModel(core.DefaultConfig(), "")
	for range 10 {
		m = menuUpdate(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
	m = menuUpdate(t, m, runeKey("q"))
	if !m.Result().Quit {
		t.Error("q should quit")
	}
}

func TestLeaderboardRows(t *testing.T) {
	rows := leaderboardRows([]multiplayer.PlayerRecord{
		{Name: "bob", Score: 90, Lives: 2},
		{Name: "ada", Score: 40, Dead: true},
	}, "ada")

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][1] != "bob" || rows[0][3] != "2" {
		t.Errorf("first row = %v", rows[0])
	}
	if rows[1][1] != "> ada" || rows[1][3] != "DEAD" {
		t.Errorf("second row = %v", rows[1])
	}
}
