package multiplayer

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeSession struct {
	id   SessionID
	mu   sync.Mutex
	msgs []Message
	done chan struct{}
	shut sync.Once
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: SessionID(id), done: make(chan struct{})}
}

func (s *fakeSession) ID() SessionID         { return s.id }
func (s *fakeSession) Done() <-chan struct{} { return s.done }
func (s *fakeSession) Close()                { s.shut.Do(func() { close(s.done) }) }

func (s *fakeSession) Send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *fakeSession) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.msgs))
	for i, m := range s.msgs {
		out[i] = m.String()
	}
	s.msgs = nil
	return out
}

type memSaver struct {
	mu      sync.Mutex
	results []MatchResultData
	err     error
}

func (s *memSaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return s.err
}

type memHighScores struct {
	scores []HighScore
}

func (m *memHighScores) OnlineHighScores(limit int) ([]HighScore, error) {
	if len(m.scores) > limit {
		return m.scores[:limit], nil
	}
	return m.scores, nil
}

func (m *memHighScores) SaveOnlineHighScore(h HighScore) error {
	m.scores = append(m.scores, h)
	return nil
}

func newTestCoordinator(t *testing.T) (*Coordinator, *SessionRegistry) {
	t.Helper()
	reg := NewSessionRegistry()
	cfg := DefaultCoordinatorConfig()
	cfg.Seed = 99
	return NewCoordinator(cfg, reg, log.New(io.Discard)), reg
}

func join(c *Coordinator, reg *SessionRegistry, id string) *fakeSession {
	s := newFakeSession(id)
	reg.Register(s)
	c.handleMessage(SessionJoinedMsg{SessionID: s.id})
	return s
}

func command(c *Coordinator, s *fakeSession, line string) []string {
	c.handleMessage(CommandMsg{SessionID: s.id, Message: ParseLine(line)})
	return s.take()
}

func TestCoordinatorJoinAssignsName(t *testing.T) {
	c, reg := newTestCoordinator(t)
	a := join(c, reg, "a")
	b := join(c, reg, "b")

	if got := a.take(); len(got) != 1 || got[0] != "NICK player1" {
		t.Errorf("a got %v, want NICK player1", got)
	}
	b.take()

	if got := command(c, a, "NICK alice"); len(got) != 1 || got[0] != "NICK alice" {
		t.Errorf("NICK reply = %v", got)
	}
	if got := command(c, b, "NICK alice"); len(got) != 1 || got[0] != "NICK alice2" {
		t.Errorf("duplicate NICK reply = %v, want alice2", got)
	}
	if got := command(c, b, "NICK   "); len(got) != 1 || got[0] != "ERROR empty name" {
		t.Errorf("empty NICK reply = %v", got)
	}
}

func TestCoordinatorSharedPieceSequence(t *testing.T) {
	c, reg := newTestCoordinator(t)
	a := join(c, reg, "a")
	b := join(c, reg, "b")
	a.take()
	b.take()

	var seqA, seqB []string
	for range 10 {
		seqA = append(seqA, command(c, a, "PIECE")...)
	}
	for range 10 {
		seqB = append(seqB, command(c, b, "PIECE")...)
	}

	if len(seqA) != 10 || len(seqB) != 10 {
		t.Fatalf("got %d and %d pieces, want 10 each", len(seqA), len(seqB))
	}
	for i := range seqA {
		if seqA[i] != seqB[i] {
			t.Errorf("piece %d differs: %s vs %s", i, seqA[i], seqB[i])
		}
		n, err := ParseLine(seqA[i]).Int()
		if err != nil || n < 0 || n >= 15 {
			t.Errorf("piece %d = %q, want an index in [0,15)", i, seqA[i])
		}
	}
}

func TestCoordinatorScores(t *testing.T) {
	c, reg := newTestCoordinator(t)
	a := join(c, reg, "a")
	b := join(c, reg, "b")
	command(c, a, "NICK alice")
	command(c, b, "NICK bob")

	command(c, a, "SCORE 120")
	command(c, a, "LIVES 2")
	command(c, b, "SCORE 40")
	command(c, b, "DIE")

	got := command(c, a, "SCORES")
	want := []string{"SCORES alice:120:2", "bob:40:DEAD"}
	if len(got) != len(want) {
		t.Fatalf("SCORES reply = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCoordinatorRejectsBadInput(t *testing.T) {
	c, reg := newTestCoordinator(t)
	a := join(c, reg, "a")
	a.take()

	if got := command(c, a, "SCORE lots"); len(got) != 1 || got[0] != "ERROR malformed message" {
		t.Errorf("bad SCORE reply = %v", got)
	}
	if got := command(c, a, "JUMP"); len(got) != 1 || got[0] != "ERROR unknown command JUMP" {
		t.Errorf("unknown command reply = %v", got)
	}
	if got := command(c, a, "x:1:2"); len(got) != 0 {
		t.Errorf("continuation reply = %v, want none", got)
	}

	// The session still works afterwards.
	if got := command(c, a, "PIECE"); len(got) != 1 {
		t.Errorf("PIECE after errors = %v", got)
	}
}

func TestCoordinatorRoomFinishSavesResults(t *testing.T) {
	c, reg := newTestCoordinator(t)
	saver := &memSaver{err: errors.New("disk full")}
	c.SetResultSaver(saver)

	a := join(c, reg, "a")
	b := join(c, reg, "b")
	command(c, a, "NICK alice")
	command(c, b, "NICK bob")
	command(c, a, "SCORE 300")
	command(c, a, "DIE")

	if c.room == nil {
		t.Fatal("room finished while bob still plays")
	}

	command(c, b, "SCORE 90")
	command(c, b, "LIVES 1")
	c.handleMessage(SessionDisconnectedMsg{SessionID: b.id})

	if c.room != nil {
		t.Fatal("room still open after everyone left or died")
	}
	c.saveWG.Wait()

	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.results) != 2 {
		t.Fatalf("saved %d results, want 2", len(saver.results))
	}
	alice, bob := saver.results[0], saver.results[1]
	if alice.Player != "alice" || alice.Score != 300 || !alice.Eliminated {
		t.Errorf("alice result = %+v", alice)
	}
	if bob.Player != "bob" || bob.Score != 90 || bob.Eliminated || bob.Lives != 1 {
		t.Errorf("bob result = %+v", bob)
	}
	if alice.MatchID == "" || alice.MatchID != bob.MatchID {
		t.Errorf("match ids = %q, %q", alice.MatchID, bob.MatchID)
	}

	// A new join opens a fresh room.
	d := join(c, reg, "d")
	d.take()
	if c.room == nil || MatchID(alice.MatchID) == c.room.id {
		t.Error("new session did not get a new room")
	}
}

func TestCoordinatorHighScores(t *testing.T) {
	c, reg := newTestCoordinator(t)
	a := join(c, reg, "a")
	a.take()

	if got := command(c, a, "HISCORES"); len(got) != 1 || got[0] != "HISCORES" {
		t.Errorf("empty HISCORES reply = %v", got)
	}

	command(c, a, "HISCORE low:10")
	if got := command(c, a, "HISCORE high:500"); len(got) != 1 || got[0] != "NEWSCORE high:500" {
		t.Errorf("HISCORE reply = %v", got)
	}
	got := command(c, a, "HISCORES")
	want := []string{"HISCORES high:500", "low:10"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("HISCORES reply = %v, want %v", got, want)
	}

	store := &memHighScores{}
	c.SetHighScoreStore(store)
	command(c, a, "HISCORE kept:42")
	if len(store.scores) != 1 || store.scores[0].Name != "kept" {
		t.Errorf("store = %+v", store.scores)
	}
	if got := command(c, a, "HISCORES"); len(got) != 1 || got[0] != "HISCORES kept:42" {
		t.Errorf("stored HISCORES reply = %v", got)
	}
}

func TestCoordinatorMaxPlayers(t *testing.T) {
	reg := NewSessionRegistry()
	cfg := DefaultCoordinatorConfig()
	cfg.MaxPlayers = 1
	c := NewCoordinator(cfg, reg, log.New(io.Discard))

	join(c, reg, "a").take()
	b := join(c, reg, "b")
	if got := b.take(); len(got) != 1 || got[0] != "ERROR room is full" {
		t.Errorf("second join reply = %v", got)
	}
	select {
	case <-b.Done():
	default:
		t.Error("rejected session was left open")
	}
	if got := command(c, b, "PIECE"); len(got) != 0 {
		t.Errorf("rejected session got %v", got)
	}
}

func TestCoordinatorStartStop(t *testing.T) {
	c, reg := newTestCoordinator(t)
	c.Start()
	s := newFakeSession("a")
	reg.Register(s)
	c.Send(SessionJoinedMsg{SessionID: s.id})

	waitFor(t, "stats", func() bool {
		return c.Stats().Players == 1
	})
	c.Stop()
	c.Stop()
	c.Send(SessionDisconnectedMsg{SessionID: s.id})
}
