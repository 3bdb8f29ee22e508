package multiplayer

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
)

type recordSender struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *recordSender) Send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordSender) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.String()
	}
	return out
}

func (s *recordSender) count(line string) int {
	n := 0
	for _, l := range s.lines() {
		if l == line {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func newTestAdapter() (*Adapter, *recordSender) {
	s := &recordSender{}
	return NewAdapter(s, AdapterConfig{Prefetch: 6, Seed: 1}, log.New(io.Discard)), s
}

func startMatch(t *testing.T, a *Adapter) *blocks.Match {
	t.Helper()
	m, err := blocks.NewMatch(blocks.MatchConfig{
		Cols:   5,
		Rows:   5,
		Rules:  blocks.BaselineRules(),
		Source: a,
		Mirror: a,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewMatch() failed: %v", err)
	}
	a.Attach(m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})
	go m.Run(ctx)
	return m
}

func TestAdapterPrefetch(t *testing.T) {
	a, s := newTestAdapter()
	a.Prefetch()
	if n := s.count("PIECE"); n != 6 {
		t.Errorf("prefetch sent %d PIECE requests, want 6", n)
	}
}

func TestAdapterSpawnWaitsForPiece(t *testing.T) {
	a, s := newTestAdapter()
	m := startMatch(t, a)

	waitFor(t, "spawn pending", func() bool {
		return m.Snapshot().State == blocks.StateSpawnPending
	})
	if n := s.count("PIECE"); n != 2 {
		t.Errorf("sent %d PIECE requests, want 2", n)
	}

	a.HandleMessage(ParseLine("PIECE 7"))

	waitFor(t, "turn to open", func() bool {
		return m.Snapshot().State == blocks.StateAwaitingPlacement
	})
	snap := m.Snapshot()
	if !snap.HasCurrent || snap.Current.Index() != 7 {
		t.Errorf("current = %v, want piece 7", snap.Current)
	}
	if snap.HasFollowing {
		t.Error("following filled without a second PIECE")
	}
	want, _ := blocks.NewPiece(7, snap.Current.Rotation())
	if snap.Current != want {
		t.Errorf("current %v does not match catalog piece 7", snap.Current)
	}
}

func TestAdapterEarlyPiecesKeepOrder(t *testing.T) {
	a, _ := newTestAdapter()
	for _, line := range []string{"PIECE 1", "PIECE 2", "PIECE 3"} {
		a.HandleMessage(ParseLine(line))
	}
	m := startMatch(t, a)

	waitFor(t, "turn to open", func() bool {
		s := m.Snapshot()
		return s.State == blocks.StateAwaitingPlacement && s.HasFollowing
	})
	snap := m.Snapshot()
	if snap.Current.Index() != 1 || snap.Following.Index() != 2 {
		t.Errorf("current/following = %v/%v, want pieces 1/2", snap.Current, snap.Following)
	}
}

func TestAdapterManyEarlyPiecesDoNotBlock(t *testing.T) {
	a, _ := newTestAdapter()
	// More pieces than the match command queue holds.
	for i := range 100 {
		a.HandleMessage(IntMsg(CmdPiece, i%blocks.CatalogSize))
	}

	m, err := blocks.NewMatch(blocks.MatchConfig{
		Cols:   5,
		Rows:   5,
		Rules:  blocks.BaselineRules(),
		Source: a,
		Mirror: a,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewMatch() failed: %v", err)
	}

	attached := make(chan struct{})
	go func() {
		a.Attach(m)
		// Pieces arriving between Attach and Run must not block either.
		for range 100 {
			a.HandleMessage(ParseLine("PIECE 3"))
		}
		close(attached)
	}()
	select {
	case <-attached:
	case <-time.After(time.Second):
		t.Fatal("Attach or HandleMessage blocked before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})
	go m.Run(ctx)

	waitFor(t, "turn to open", func() bool {
		s := m.Snapshot()
		return s.State == blocks.StateAwaitingPlacement && s.HasFollowing
	})
	snap := m.Snapshot()
	if snap.Current.Index() != 0 || snap.Following.Index() != 1 {
		t.Errorf("current/following = %v/%v, want pieces 0/1", snap.Current, snap.Following)
	}
}

func TestAdapterMirrorsScoreLivesAndDeath(t *testing.T) {
	a, s := newTestAdapter()
	a.ScoreChanged(40)
	a.LivesChanged(2)
	a.Eliminated()

	got := s.lines()
	want := []string{"SCORE 40", "LIVES 2", "DIE"}
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAdapterManualExitSendsDie(t *testing.T) {
	a, s := newTestAdapter()
	m := startMatch(t, a)
	a.HandleMessage(ParseLine("PIECE 3"))
	a.HandleMessage(ParseLine("PIECE 3"))

	waitFor(t, "turn to open", func() bool {
		return m.Snapshot().State == blocks.StateAwaitingPlacement
	})
	m.Stop()
	<-m.Done()

	if s.count("DIE") != 1 {
		t.Errorf("sent %v, want one DIE", s.lines())
	}
}

func TestAdapterScoresSnapshot(t *testing.T) {
	a, _ := newTestAdapter()

	a.HandleMessage(ParseLine("SCORES alice:100:2"))
	a.HandleMessage(ParseLine("bob:300:DEAD"))
	a.HandleMessage(ParseLine("broken"))
	a.HandleMessage(ParseLine("carol:x:1"))

	got := a.Leaderboard().Entries()
	if len(got) != 2 {
		t.Fatalf("entries = %+v, want 2", got)
	}
	if got[0].Name != "bob" || !got[0].Dead || got[1].Name != "alice" || got[1].Lives != 2 {
		t.Errorf("entries = %+v", got)
	}

	a.HandleMessage(ParseLine("SCORES"))
	if a.Leaderboard().Len() != 0 {
		t.Error("empty SCORES did not clear the leaderboard")
	}
}

func TestAdapterContinuationAfterOtherCommandIgnored(t *testing.T) {
	a, _ := newTestAdapter()
	a.HandleMessage(ParseLine("SCORES alice:1:1"))
	a.HandleMessage(ParseLine("NICK alice"))
	a.HandleMessage(ParseLine("bob:2:2"))

	if a.Leaderboard().Len() != 1 {
		t.Errorf("stray record applied: %+v", a.Leaderboard().Entries())
	}
	if a.Name() != "alice" {
		t.Errorf("Name = %q, want alice", a.Name())
	}
}

func TestAdapterHighScores(t *testing.T) {
	a, s := newTestAdapter()
	a.HandleMessage(ParseLine("NICK zed"))
	a.HandleMessage(ParseLine("HISCORES ann:900"))
	a.HandleMessage(ParseLine("ben:500"))

	hs := a.HighScores()
	if len(hs) != 2 || hs[0] != (HighScore{Name: "ann", Score: 900}) || hs[1].Name != "ben" {
		t.Errorf("HighScores = %+v", hs)
	}

	a.SubmitHighScore(750)
	if s.count("HISCORE zed:750") != 1 {
		t.Errorf("sent %v, want HISCORE zed:750", s.lines())
	}
}

func TestAdapterDropsMalformedPiece(t *testing.T) {
	a, _ := newTestAdapter()
	a.HandleMessage(ParseLine("PIECE banana"))
	a.HandleMessage(ParseLine("PIECE 99"))
	a.HandleMessage(ParseLine("WHATEVER 1 2 3"))

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.early) != 0 {
		t.Errorf("malformed pieces queued: %v", a.early)
	}
}

func TestAdapterUpdatesSignal(t *testing.T) {
	a, _ := newTestAdapter()
	a.HandleMessage(ParseLine("SCORES a:1:1"))
	select {
	case <-a.Updates():
	default:
		t.Error("no update signalled")
	}
}
