package multiplayer

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// maxLineSize bounds a single protocol line.
const maxLineSize = 64 * 1024

// lineConn moves protocol lines between a socket and a ChannelSession.
type lineConn struct {
	conn        net.Conn
	session     *ChannelSession
	idleTimeout time.Duration

	closeOnce sync.Once
	closed    atomic.Bool
	err       error
	errMu     sync.Mutex
	written   chan struct{} // closed when writeLoop returns
}

func newLineConn(conn net.Conn, session *ChannelSession, idleTimeout time.Duration) *lineConn {
	return &lineConn{conn: conn, session: session, idleTimeout: idleTimeout, written: make(chan struct{})}
}

// Close closes the socket and the session once.
func (c *lineConn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.session.Close()
		c.conn.Close()
	})
}

// Shutdown ends the session, gives writeLoop up to timeout to write what
// is queued, then closes the socket.
func (c *lineConn) Shutdown(timeout time.Duration) {
	c.session.Close()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.written:
	case <-t.C:
	}
	c.Close()
}

// setErr records the first I/O error. Errors caused by Close are ignored.
func (c *lineConn) setErr(err error) {
	if c.closed.Load() {
		return
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first I/O error seen, if any.
func (c *lineConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// readLoop calls handle for every line until the connection fails.
func (c *lineConn) readLoop(handle func(Message)) {
	defer c.Close()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for {
		if c.idleTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.setErr(err)
			}
			return
		}
		msg := ParseLine(scanner.Text())
		if msg.Command == "" && msg.Payload == "" {
			continue
		}
		handle(msg)
	}
}

// writeLoop drains the session outbox onto the socket, flushing whenever
// the outbox runs empty. When the session ends, messages still queued are
// written before the socket is closed.
func (c *lineConn) writeLoop() {
	defer close(c.written)
	defer c.Close()

	w := bufio.NewWriter(c.conn)
	for {
		select {
		case <-c.session.Done():
			c.drain(w)
			return
		case msg := <-c.session.Outbox():
			if _, err := w.WriteString(msg.String() + "\n"); err != nil {
				c.setErr(err)
				return
			}
			if len(c.session.Outbox()) > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				c.setErr(err)
				return
			}
		}
	}
}

func (c *lineConn) drain(w *bufio.Writer) {
	if c.closed.Load() {
		return
	}
	for {
		select {
		case msg := <-c.session.Outbox():
			if _, err := w.WriteString(msg.String() + "\n"); err != nil {
				c.setErr(err)
				return
			}
		default:
			if err := w.Flush(); err != nil {
				c.setErr(err)
			}
			return
		}
	}
}
