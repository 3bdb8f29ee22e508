package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ServerConfig holds configuration for the lobby server.
type ServerConfig struct {
	Address     string        // host:port to listen on
	SendBuffer  int           // outbound messages queued per connection
	IdleTimeout time.Duration // close connections silent for this long; zero disables
	Coordinator CoordinatorConfig
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:     ":9700",
		SendBuffer:  256,
		IdleTimeout: 5 * time.Minute,
		Coordinator: DefaultCoordinatorConfig(),
	}
}

// Server accepts TCP connections and feeds them to a Coordinator.
type Server struct {
	config      ServerConfig
	sessions    *SessionRegistry
	coordinator *Coordinator
	logger      *log.Logger

	mu    sync.Mutex
	ln    net.Listener
	ready chan struct{}
	wg    sync.WaitGroup
}

// NewServer creates a lobby server.
func NewServer(cfg ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "lobby"})
	}
	sessions := NewSessionRegistry()
	return &Server{
		config:      cfg,
		sessions:    sessions,
		coordinator: NewCoordinator(cfg.Coordinator, sessions, logger),
		logger:      logger,
		ready:       make(chan struct{}),
	}
}

// Coordinator returns the server's coordinator.
func (s *Server) Coordinator() *Coordinator {
	return s.coordinator
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("multiplayer: cannot listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It closes ln
// and every open connection before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)

	s.coordinator.Start()
	defer s.coordinator.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info("lobby listening", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				s.logger.Info("lobby stopped")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			cancel()
			s.wg.Wait()
			return fmt.Errorf("multiplayer: accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Addr returns the listener address once Serve has started.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln.Addr()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	id := NewSessionID()
	session := NewChannelSession(id, s.config.SendBuffer)
	lc := newLineConn(conn, session, s.config.IdleTimeout)

	remote := conn.RemoteAddr().String()
	session.OnOverflow(func(dropped Message) {
		s.logger.Warn("outbox full, closing connection", "session", id, "remote", remote, "dropped", dropped.Command)
		lc.Close()
	})
	s.logger.Debug("connection opened", "session", id, "remote", remote)

	s.sessions.Register(session)
	s.coordinator.Send(SessionJoinedMsg{SessionID: id})

	go lc.writeLoop()

	stop := context.AfterFunc(ctx, lc.Close)
	defer stop()

	lc.readLoop(func(msg Message) {
		s.coordinator.Send(CommandMsg{SessionID: id, Message: msg})
	})

	s.sessions.Unregister(id)
	s.coordinator.Send(SessionDisconnectedMsg{SessionID: id})

	if err := lc.Err(); err != nil {
		s.logger.Debug("connection closed", "session", id, "remote", remote, "error", err)
	} else {
		s.logger.Debug("connection closed", "session", id, "remote", remote)
	}
}
