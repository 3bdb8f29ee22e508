package multiplayer

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
)

// CoordinatorConfig holds configuration for the lobby coordinator.
type CoordinatorConfig struct {
	Seed           int64 // piece sequence seed; zero uses the current time
	StartLives     int   // lives shown for a player before their first LIVES
	HighScoreLimit int   // entries returned by HISCORES
	MaxPlayers     int   // players per room; zero means no limit
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		StartLives:     3,
		HighScoreLimit: 10,
	}
}

// player is one participant of a room.
type player struct {
	session SessionHandle
	name    string
	score   int
	lives   int
	dead    bool
	gone    bool
	cursor  int // next index into the room's piece sequence
}

// room is one round of play. Every player draws from the same sequence.
type room struct {
	id      MatchID
	started time.Time
	rng     *rand.Rand
	pieces  []int
	players map[SessionID]*player
	order   []SessionID
}

func newRoom(seed int64) *room {
	return &room{
		id:      NewMatchID(),
		started: time.Now(),
		rng:     rand.New(rand.NewSource(seed)),
		players: make(map[SessionID]*player),
	}
}

// pieceAt returns the i-th identifier of the sequence, extending it as
// needed.
func (r *room) pieceAt(i int) int {
	for len(r.pieces) <= i {
		r.pieces = append(r.pieces, r.rng.Intn(blocks.CatalogSize))
	}
	return r.pieces[i]
}

// finished reports whether everyone who joined is dead or gone.
func (r *room) finished() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.dead && !p.gone {
			return false
		}
	}
	return true
}

func (r *room) records() []PlayerRecord {
	out := make([]PlayerRecord, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		if p.gone && !p.dead {
			continue
		}
		out = append(out, PlayerRecord{Name: p.name, Score: p.score, Lives: p.lives, Dead: p.dead})
	}
	return out
}

// Coordinator owns lobby state. All state changes happen on the goroutine
// started by Start; sessions talk to it through Send.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // optional
	highScores  HighScoreStore   // optional; nil keeps scores in memory
	memScores   []HighScore
	logger      *log.Logger

	room    *room
	seq     int64 // rooms created; offsets the seed so rounds differ
	joined  int   // sessions ever joined; used for default names
	saveWG  sync.WaitGroup
	statsMu sync.RWMutex
	stats   CoordinatorStats

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// CoordinatorStats is a point-in-time summary for logging and tests.
type CoordinatorStats struct {
	MatchID       MatchID
	Players       int
	RoomsFinished int
}

// NewCoordinator creates a coordinator. Call Start before sending messages.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.StartLives <= 0 {
		cfg.StartLives = 3
	}
	if cfg.HighScoreLimit <= 0 {
		cfg.HighScoreLimit = 10
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "lobby"})
	}
	return &Coordinator{
		config:   cfg,
		sessions: sessions,
		logger:   logger,
		msgChan:  make(chan CoordinatorMessage, 256),
		done:     make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetHighScoreStore sets the optional persistent high score table.
func (c *Coordinator) SetHighScoreStore(store HighScoreStore) {
	c.highScores = store
}

// Start begins background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
}

// Stop shuts the coordinator down and waits for pending result saves.
// Safe to call multiple times.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	c.saveWG.Wait()
}

// Send queues a message for the coordinator.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// Stats returns a summary of the current room.
func (c *Coordinator) Stats() CoordinatorStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
			c.updateStats()
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case SessionJoinedMsg:
		c.handleJoined(m)
	case CommandMsg:
		c.handleCommand(m)
	case SessionDisconnectedMsg:
		c.handleDisconnected(m)
	}
}

func (c *Coordinator) currentRoom() *room {
	if c.room == nil {
		c.seq++
		c.room = newRoom(c.config.Seed + c.seq - 1)
		c.logger.Info("room opened", "match", c.room.id)
	}
	return c.room
}

func (c *Coordinator) handleJoined(msg SessionJoinedMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	r := c.currentRoom()
	if c.config.MaxPlayers > 0 && len(r.order) >= c.config.MaxPlayers {
		c.logger.Info("room full, rejecting session", "match", r.id, "session", msg.SessionID)
		session.Send(Msg(CmdError, "room is full"))
		session.Close()
		return
	}

	c.joined++
	p := &player{
		session: session,
		name:    c.uniqueName(r, fmt.Sprintf("player%d", c.joined)),
		lives:   c.config.StartLives,
	}
	r.players[msg.SessionID] = p
	r.order = append(r.order, msg.SessionID)

	c.logger.Info("player joined", "match", r.id, "session", msg.SessionID, "name", p.name)
	session.Send(Msg(CmdNick, p.name))
}

func (c *Coordinator) handleCommand(msg CommandMsg) {
	if c.room == nil {
		return
	}
	p, ok := c.room.players[msg.SessionID]
	if !ok {
		return
	}

	m := msg.Message
	switch m.Command {
	case CmdNick:
		name := sanitizeName(m.Payload)
		if name == "" {
			p.session.Send(Msg(CmdError, "empty name"))
			return
		}
		if name != p.name {
			p.name = c.uniqueName(c.room, name)
		}
		p.session.Send(Msg(CmdNick, p.name))

	case CmdPiece:
		if p.dead {
			return
		}
		p.session.Send(IntMsg(CmdPiece, c.room.pieceAt(p.cursor)))
		p.cursor++

	case CmdScore:
		n, err := m.Int()
		if err != nil {
			c.reject(p, err)
			return
		}
		p.score = n

	case CmdLives:
		n, err := m.Int()
		if err != nil {
			c.reject(p, err)
			return
		}
		p.lives = n

	case CmdDie:
		if !p.dead {
			p.dead = true
			p.lives = 0
			c.logger.Info("player eliminated", "match", c.room.id, "name", p.name, "score", p.score)
		}
		c.finishIfDone()

	case CmdScores:
		c.sendRecords(p.session, CmdScores, recordStrings(c.room.records()))

	case CmdHiScores:
		c.sendRecords(p.session, CmdHiScores, highScoreStrings(c.onlineHighScores()))

	case CmdHiScore:
		h, err := ParseHighScore(m.Payload)
		if err != nil {
			c.reject(p, err)
			return
		}
		h.Name = sanitizeName(h.Name)
		c.saveHighScore(h)
		p.session.Send(Msg(CmdNewScore, FormatHighScore(h)))

	case "":
		// Continuation lines are only sent by the server.

	default:
		p.session.Send(Msg(CmdError, "unknown command "+m.Command))
	}
}

func (c *Coordinator) reject(p *player, err error) {
	c.logger.Warn("malformed message", "name", p.name, "error", err)
	p.session.Send(Msg(CmdError, "malformed message"))
}

func (c *Coordinator) handleDisconnected(msg SessionDisconnectedMsg) {
	if c.room == nil {
		return
	}
	p, ok := c.room.players[msg.SessionID]
	if !ok {
		return
	}
	p.gone = true
	c.logger.Info("player left", "match", c.room.id, "name", p.name, "dead", p.dead)
	c.finishIfDone()
}

// finishIfDone closes the room once nobody is left playing and saves the
// results.
func (c *Coordinator) finishIfDone() {
	r := c.room
	if r == nil || !r.finished() {
		return
	}
	c.room = nil

	c.statsMu.Lock()
	c.stats.RoomsFinished++
	c.statsMu.Unlock()

	duration := int(time.Since(r.started).Seconds())
	c.logger.Info("room finished", "match", r.id, "players", len(r.order), "duration", duration)

	for _, id := range r.order {
		p := r.players[id]
		if !p.gone {
			c.sendRecords(p.session, CmdScores, recordStrings(r.records()))
		}
	}

	if c.resultSaver == nil {
		return
	}
	results := make([]MatchResultData, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		results = append(results, MatchResultData{
			MatchID:      string(r.id),
			Player:       p.name,
			Score:        p.score,
			Lives:        p.lives,
			Eliminated:   p.dead,
			DurationSecs: duration,
		})
	}

	// Best effort; the coordinator loop never waits on storage.
	c.saveWG.Add(1)
	go func() {
		defer c.saveWG.Done()
		for _, res := range results {
			if err := c.resultSaver.SaveMatchResult(res); err != nil {
				c.logger.Error("cannot save match result", "match", res.MatchID, "player", res.Player, "error", err)
			}
		}
	}()
}

func (c *Coordinator) onlineHighScores() []HighScore {
	if c.highScores != nil {
		scores, err := c.highScores.OnlineHighScores(c.config.HighScoreLimit)
		if err == nil {
			return scores
		}
		c.logger.Error("cannot load high scores", "error", err)
	}
	out := append([]HighScore(nil), c.memScores...)
	if len(out) > c.config.HighScoreLimit {
		out = out[:c.config.HighScoreLimit]
	}
	return out
}

func (c *Coordinator) saveHighScore(h HighScore) {
	if c.highScores != nil {
		if err := c.highScores.SaveOnlineHighScore(h); err != nil {
			c.logger.Error("cannot save high score", "name", h.Name, "error", err)
		}
		return
	}
	c.memScores = append(c.memScores, h)
	sort.SliceStable(c.memScores, func(i, j int) bool {
		return c.memScores[i].Score > c.memScores[j].Score
	})
}

// sendRecords writes a multi-record reply: the command with the first
// record, then one continuation line per remaining record.
func (c *Coordinator) sendRecords(s SessionHandle, cmd string, records []string) {
	if len(records) == 0 {
		s.Send(Msg(cmd))
		return
	}
	s.Send(Msg(cmd, records[0]))
	for _, rec := range records[1:] {
		s.Send(Message{Payload: rec})
	}
}

func (c *Coordinator) uniqueName(r *room, name string) string {
	taken := func(n string) bool {
		for _, p := range r.players {
			if p.name == n && !p.gone {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func (c *Coordinator) updateStats() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if c.room == nil {
		c.stats.MatchID = ""
		c.stats.Players = 0
		return
	}
	c.stats.MatchID = c.room.id
	c.stats.Players = len(c.room.order)
}

func recordStrings(records []PlayerRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = FormatRecord(r)
	}
	return out
}

func highScoreStrings(scores []HighScore) []string {
	out := make([]string, len(scores))
	for i, h := range scores {
		out[i] = FormatHighScore(h)
	}
	return out
}
