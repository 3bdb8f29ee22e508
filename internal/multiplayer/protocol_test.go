package multiplayer

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		command string
		payload string
		cont    bool
	}{
		{"PIECE", "PIECE", "", false},
		{"PIECE 7", "PIECE", "7", false},
		{"  SCORE   120 \r", "SCORE", "120", false},
		{"SCORES alice:10:3", "SCORES", "alice:10:3", false},
		{"bob:20:DEAD", "", "bob:20:DEAD", true},
		{"FOO bar baz", "FOO", "bar baz", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := ParseLine(tt.line)
			if m.Command != tt.command || m.Payload != tt.payload {
				t.Errorf("ParseLine(%q) = %+v, want {%s %s}", tt.line, m, tt.command, tt.payload)
			}
			if m.IsContinuation() != tt.cont {
				t.Errorf("IsContinuation = %v, want %v", m.IsContinuation(), tt.cont)
			}
		})
	}
}

func TestMessageString(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Msg(CmdPiece), "PIECE"},
		{IntMsg(CmdScore, 40), "SCORE 40"},
		{Msg(CmdDie), "DIE"},
		{Message{Payload: "a:1:2"}, "a:1:2"},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMessageInt(t *testing.T) {
	if n, err := ParseLine("LIVES 2").Int(); err != nil || n != 2 {
		t.Errorf("Int() = %d, %v; want 2, nil", n, err)
	}
	if _, err := ParseLine("LIVES two").Int(); !errors.Is(err, ErrMalformed) {
		t.Errorf("Int() error = %v, want ErrMalformed", err)
	}
	if _, err := ParseLine("PIECE").Int(); !errors.Is(err, ErrMalformed) {
		t.Errorf("Int() on empty payload error = %v, want ErrMalformed", err)
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		in      string
		want    PlayerRecord
		wantErr bool
	}{
		{"alice:120:2", PlayerRecord{Name: "alice", Score: 120, Lives: 2}, false},
		{"bob:30:DEAD", PlayerRecord{Name: "bob", Score: 30, Dead: true}, false},
		{"carol:10", PlayerRecord{}, true},
		{":10:2", PlayerRecord{}, true},
		{"dave:x:2", PlayerRecord{}, true},
		{"erin:5:many", PlayerRecord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRecord(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("ParseRecord(%q) error = %v, want ErrMalformed", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRecord(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if FormatRecord(got) != tt.in {
				t.Errorf("FormatRecord = %q, want %q", FormatRecord(got), tt.in)
			}
		})
	}
}

func TestParseHighScore(t *testing.T) {
	h, err := ParseHighScore("alice:900")
	if err != nil || h != (HighScore{Name: "alice", Score: 900}) {
		t.Errorf("ParseHighScore = %+v, %v", h, err)
	}
	for _, bad := range []string{"alice", "alice:", ":5", "alice:x"} {
		if _, err := ParseHighScore(bad); err == nil {
			t.Errorf("ParseHighScore(%q) should fail", bad)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"alice":                    "alice",
		" bob smith ":              "bob_smith",
		"c:d":                      "c_d",
		"averyveryverylongnickname": "averyveryverylon",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
