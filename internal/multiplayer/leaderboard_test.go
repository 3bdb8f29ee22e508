package multiplayer

import "testing"

func TestLeaderboardReplaceAndAdd(t *testing.T) {
	var l Leaderboard

	l.Replace([]PlayerRecord{{Name: "alice", Score: 10, Lives: 3}})
	l.Add(PlayerRecord{Name: "bob", Score: 50, Lives: 1})
	l.Add(PlayerRecord{Name: "carol", Score: 50, Dead: true})

	got := l.Entries()
	want := []string{"bob", "carol", "alice"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("entry %d = %s, want %s", i, got[i].Name, name)
		}
	}

	v := l.Version()
	l.Replace([]PlayerRecord{{Name: "dave", Score: 1}})
	if l.Len() != 1 {
		t.Errorf("Len after Replace = %d, want 1", l.Len())
	}
	if l.Version() <= v {
		t.Error("Version did not increase")
	}
}

func TestLeaderboardAddUpdatesExisting(t *testing.T) {
	var l Leaderboard
	l.Add(PlayerRecord{Name: "alice", Score: 10, Lives: 3})
	l.Add(PlayerRecord{Name: "alice", Score: 20, Lives: 2})

	got := l.Entries()
	if len(got) != 1 || got[0].Score != 20 || got[0].Lives != 2 {
		t.Errorf("Entries = %+v, want one updated record", got)
	}
}
