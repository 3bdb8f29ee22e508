package multiplayer

// CoordinatorMessage is processed by the lobby coordinator goroutine.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// SessionJoinedMsg registers a new connection with the current room.
type SessionJoinedMsg struct {
	SessionID SessionID
}

func (SessionJoinedMsg) coordinatorMessage() {}

// CommandMsg carries one protocol line received from a session.
type CommandMsg struct {
	SessionID SessionID
	Message   Message
}

func (CommandMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a connection closes.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}

// MatchResultSaver persists the outcome of a finished room.
// Implemented by the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData is one player's result in a finished room.
type MatchResultData struct {
	MatchID      string
	Player       string
	Score        int
	Lives        int
	Eliminated   bool
	DurationSecs int
}

// HighScoreStore keeps the online high score table.
// Implemented by the storage package.
type HighScoreStore interface {
	OnlineHighScores(limit int) ([]HighScore, error)
	SaveOnlineHighScore(h HighScore) error
}
