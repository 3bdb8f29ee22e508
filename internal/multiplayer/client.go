package multiplayer

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// closeTimeout bounds how long Close waits for queued messages.
const closeTimeout = 200 * time.Millisecond

// ClientConfig configures a lobby connection.
type ClientConfig struct {
	Address      string
	Name         string
	Prefetch     int           // pieces requested up front (default 6)
	PollInterval time.Duration // SCORES poll period (default 1s); negative disables
	SendBuffer   int
	Seed         int64 // local rotation seed
}

// DefaultClientConfig returns a config with the standard prefetch and
// poll period.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:      "localhost:9700",
		Prefetch:     6,
		PollInterval: time.Second,
		SendBuffer:   256,
	}
}

// Client is a live connection to a lobby server.
type Client struct {
	config  ClientConfig
	conn    *lineConn
	session *ChannelSession
	adapter *Adapter
	logger  *log.Logger

	closing atomic.Bool
	wg      sync.WaitGroup
}

// Dial connects to a lobby server, sends the nickname, prefetches pieces
// and starts the read, write and poll loops. Pieces that arrive before a
// match is attached to the adapter are held for it.
func Dial(ctx context.Context, cfg ClientConfig, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "net"})
	}
	if cfg.Prefetch == 0 {
		cfg.Prefetch = 6
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: cannot connect to %s: %w", cfg.Address, err)
	}
	return newClient(conn, cfg, logger), nil
}

func newClient(conn net.Conn, cfg ClientConfig, logger *log.Logger) *Client {
	session := NewChannelSession(SessionID(conn.LocalAddr().String()), cfg.SendBuffer)
	c := &Client{
		config:  cfg,
		conn:    newLineConn(conn, session, 0),
		session: session,
		logger:  logger,
	}
	c.adapter = NewAdapter(session, AdapterConfig{Prefetch: cfg.Prefetch, Seed: cfg.Seed}, logger)

	// A lost request would leave the match waiting for a piece that never
	// comes, so a full outbox ends the connection instead.
	session.OnOverflow(func(dropped Message) {
		logger.Warn("lobby outbox full, closing connection", "dropped", dropped.Command)
		c.conn.Close()
	})

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.conn.writeLoop()
	}()
	go func() {
		defer c.wg.Done()
		c.conn.readLoop(c.adapter.HandleMessage)
		c.adapter.Abort()
		if c.closing.Load() {
			return
		}
		if err := c.conn.Err(); err != nil {
			logger.Error("lobby connection lost", "error", err)
		} else {
			logger.Info("lobby connection closed")
		}
	}()

	if cfg.Name != "" {
		c.adapter.SetName(cfg.Name)
	}
	c.adapter.Prefetch()
	if cfg.PollInterval > 0 {
		c.wg.Add(1)
		go c.pollLoop()
	}
	return c
}

// Adapter returns the match-facing side of the connection.
func (c *Client) Adapter() *Adapter {
	return c.adapter
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.session.Done()
}

// Err returns the I/O error that ended the connection, if any.
// A connection ended by Close reports nil.
func (c *Client) Err() error {
	if c.closing.Load() {
		return nil
	}
	return c.conn.Err()
}

// Close writes what is still queued, waiting at most closeTimeout, and
// closes the connection. A match attached to the adapter is aborted.
func (c *Client) Close() error {
	c.closing.Store(true)
	c.conn.Shutdown(closeTimeout)
	c.wg.Wait()
	return nil
}

func (c *Client) pollLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	c.adapter.RequestScores()
	for {
		select {
		case <-ticker.C:
			c.adapter.RequestScores()
		case <-c.session.Done():
			return
		}
	}
}
