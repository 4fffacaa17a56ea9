package tcp

import (
	"chat-relay/contract"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server accepts TCP connections and hands each of them to a
// ConnectionSupervisor running in its own goroutine. There is no bound on the
// number of concurrent connections.
//
// Server is a contract.Worker: when Run fails on a broken listener, the
// supervisor restarts it and Run binds the address again.
type Server struct {
	log     *slog.Logger
	config  Config
	handler *ConnectionSupervisor

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

func NewServer(log *slog.Logger, router contract.IRouter, config Config) *Server {
	config = config.withDefaults()
	return &Server{
		log:      log,
		config:   config,
		handler:  NewConnectionSupervisor(log, router, config),
		sessions: make(map[*Session]struct{}),
	}
}

// Listen binds the configured address if the server is not listening yet.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener
	s.log.Info("Relay listening", "address", listener.Addr().String())
	return nil
}

// Addr returns the bound address, nil when not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run accepts connections until ctx is canceled. On cancellation the listener
// and, best-effort, every open connection are closed, and Run waits for the
// connection goroutines to finish their teardown.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.closeListener)
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.shutdown()
				return nil
			}
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				s.log.Warn("Temporary accept failure", "error", err)
				continue
			}
			s.closeListener()
			return fmt.Errorf("accept failed: %w", err)
		}
		s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	session := NewSession(conn, s.config.OutboundQueueSize, s.config.WriteTimeout, s.log)
	s.log.Debug("Connection accepted", "session", session.ID.String(), "remote", conn.RemoteAddr().String())

	s.mu.Lock()
	s.sessions[session] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, session)
			s.mu.Unlock()
		}()
		s.handler.Serve(session)
	}()
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return
	}
	if err := s.listener.Close(); err != nil && !isClosedConnError(err) {
		s.log.Warn("Error closing listener", "error", err)
	}
	s.listener = nil
}

func (s *Server) shutdown() {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for session := range s.sessions {
		open = append(open, session)
	}
	s.mu.Unlock()

	s.log.Info("Closing open connections", "count", len(open))
	for _, session := range open {
		session.Abort()
	}
	s.wg.Wait()
	s.log.Info("Relay stopped")
}
