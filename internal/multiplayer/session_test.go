package multiplayer

import "testing"

func TestChannelSessionOverflow(t *testing.T) {
	s := NewChannelSession("a", 2)
	var dropped []string
	s.OnOverflow(func(m Message) {
		dropped = append(dropped, m.String())
	})

	s.Send(Msg(CmdPiece))
	s.Send(IntMsg(CmdScore, 10))
	if len(dropped) != 0 {
		t.Fatalf("dropped %v with room in the outbox", dropped)
	}

	s.Send(Msg(CmdDie))
	if len(dropped) != 1 || dropped[0] != "PIECE" {
		t.Fatalf("dropped = %v, want [PIECE]", dropped)
	}

	var queued []string
	for len(s.Outbox()) > 0 {
		queued = append(queued, (<-s.Outbox()).String())
	}
	if len(queued) != 2 || queued[0] != "SCORE 10" || queued[1] != "DIE" {
		t.Errorf("queued = %v, want [SCORE 10 DIE]", queued)
	}

	s.Close()
	s.Close()
	for range 5 {
		s.Send(Msg(CmdPiece))
	}
	if len(dropped) != 1 || len(s.Outbox()) != 0 {
		t.Errorf("closed session queued %d and dropped %v", len(s.Outbox()), dropped)
	}
}
