package multiplayer

import "sync"

// SessionHandle is the transport-neutral side of a connection.
// The coordinator writes protocol messages to it without knowing about
// sockets.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send queues a message for delivery. It must not block.
	Send(msg Message)

	// Done is closed when the session ends.
	Done() <-chan struct{}

	// Close ends the session. Messages already queued are still written.
	Close()
}

// ChannelSession is a SessionHandle backed by a buffered channel.
// A write loop drains Outbox onto the wire.
type ChannelSession struct {
	id       SessionID
	outbox   chan Message
	done     chan struct{}
	doneOnce sync.Once
	overflow func(dropped Message)
}

// NewChannelSession creates a session whose outbox holds bufferSize
// messages before the oldest are dropped.
func NewChannelSession(id SessionID, bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelSession{
		id:     id,
		outbox: make(chan Message, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// OnOverflow sets a function called with every message dropped from a
// full outbox. Set it before the session is used.
func (s *ChannelSession) OnOverflow(f func(dropped Message)) {
	s.overflow = f
}

// Send queues msg. If the outbox is full the oldest message is dropped
// and reported to the overflow function.
func (s *ChannelSession) Send(msg Message) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.outbox <- msg:
		return
	default:
	}

	var dropped Message
	lost := false
	select {
	case dropped = <-s.outbox:
		lost = true
	default:
	}
	select {
	case s.outbox <- msg:
	default:
		dropped, lost = msg, true
	}
	if lost && s.overflow != nil {
		s.overflow(dropped)
	}
}

// Outbox returns the channel of queued messages.
func (s *ChannelSession) Outbox() <-chan Message {
	return s.outbox
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks active sessions. Safe for concurrent use.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get looks a session up by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
