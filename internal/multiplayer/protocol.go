package multiplayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Protocol commands. Each message is one line: the command, a space, and
// an optional payload.
const (
	CmdPiece    = "PIECE"
	CmdScore    = "SCORE"
	CmdLives    = "LIVES"
	CmdDie      = "DIE"
	CmdScores   = "SCORES"
	CmdNick     = "NICK"
	CmdHiScores = "HISCORES"
	CmdHiScore  = "HISCORE"
	CmdNewScore = "NEWSCORE"
	CmdError    = "ERROR"
)

// deadMarker replaces the lives field of an eliminated player.
const deadMarker = "DEAD"

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("multiplayer: malformed message")

// Message is one protocol line.
// A continuation line (a bare record such as "alice:120:2") has an empty
// Command and the record in Payload.
type Message struct {
	Command string
	Payload string
}

// ParseLine splits a line into command and payload. Leading and trailing
// whitespace is ignored. A first token containing ':' marks a continuation
// line.
func ParseLine(line string) Message {
	line = strings.TrimSpace(line)
	cmd, payload, _ := strings.Cut(line, " ")
	if strings.Contains(cmd, ":") {
		return Message{Payload: line}
	}
	return Message{Command: cmd, Payload: strings.TrimSpace(payload)}
}

// IsContinuation reports whether m extends the previous multi-record message.
func (m Message) IsContinuation() bool {
	return m.Command == "" && m.Payload != ""
}

// Int parses the payload as a single integer.
func (m Message) Int() (int, error) {
	n, err := strconv.Atoi(m.Payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrMalformed, m.Command, m.Payload, err)
	}
	return n, nil
}

// String renders the message as a line without the trailing newline.
func (m Message) String() string {
	switch {
	case m.Command == "":
		return m.Payload
	case m.Payload == "":
		return m.Command
	default:
		return m.Command + " " + m.Payload
	}
}

// Msg builds a message from a command and optional payload fields joined
// by spaces.
func Msg(cmd string, fields ...string) Message {
	return Message{Command: cmd, Payload: strings.Join(fields, " ")}
}

// IntMsg builds a message with a single integer payload.
func IntMsg(cmd string, n int) Message {
	return Message{Command: cmd, Payload: strconv.Itoa(n)}
}

// FormatRecord renders a leaderboard record as name:score:lives, or
// name:score:DEAD for an eliminated player.
func FormatRecord(r PlayerRecord) string {
	lives := strconv.Itoa(r.Lives)
	if r.Dead {
		lives = deadMarker
	}
	return fmt.Sprintf("%s:%d:%s", r.Name, r.Score, lives)
}

// ParseRecord parses a name:score:lives record.
func ParseRecord(s string) (PlayerRecord, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 || parts[0] == "" {
		return PlayerRecord{}, fmt.Errorf("%w: record %q", ErrMalformed, s)
	}

	score, err := strconv.Atoi(parts[1])
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("%w: record %q: bad score", ErrMalformed, s)
	}

	r := PlayerRecord{Name: parts[0], Score: score}
	if parts[2] == deadMarker {
		r.Dead = true
		return r, nil
	}
	lives, err := strconv.Atoi(parts[2])
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("%w: record %q: bad lives", ErrMalformed, s)
	}
	r.Lives = lives
	return r, nil
}

// FormatHighScore renders a name:score pair.
func FormatHighScore(h HighScore) string {
	return fmt.Sprintf("%s:%d", h.Name, h.Score)
}

// ParseHighScore parses a name:score pair.
func ParseHighScore(s string) (HighScore, error) {
	name, score, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || name == "" {
		return HighScore{}, fmt.Errorf("%w: high score %q", ErrMalformed, s)
	}
	n, err := strconv.Atoi(score)
	if err != nil {
		return HighScore{}, fmt.Errorf("%w: high score %q: bad score", ErrMalformed, s)
	}
	return HighScore{Name: name, Score: n}, nil
}

// sanitizeName makes a display name safe for the record format.
func sanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if len(name) > 16 {
		name = name[:16]
	}
	return name
}
