// Package multiplayer connects blocks matches over a line-oriented TCP
// protocol. The client side supplies a match with remotely chosen pieces and
// mirrors its score and lives; the server side runs a lobby room in which
// every player draws from the same piece sequence.
package multiplayer

import "github.com/google/uuid"

// SessionID uniquely identifies one connection to the lobby server.
type SessionID string

// MatchID uniquely identifies one room round on the lobby server.
type MatchID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// NewMatchID returns a random match identifier.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// PlayerRecord is one row of a leaderboard snapshot.
type PlayerRecord struct {
	Name  string
	Score int
	Lives int
	Dead  bool
}

// HighScore is one entry of the online high score table.
type HighScore struct {
	Name  string
	Score int
}
