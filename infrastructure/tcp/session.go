package tcp

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session owns the outbound path of one connection.
// Deliver only enqueues; a single writer goroutine performs every socket
// write, so two routing paths never write to the same socket concurrently.
type Session struct {
	ID           uuid.UUID
	conn         net.Conn
	log          *slog.Logger
	writeTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	outbound chan []byte

	closeOnce sync.Once
	written   chan struct{}
}

func NewSession(conn net.Conn, queueSize int, writeTimeout time.Duration, log *slog.Logger) *Session {
	id := uuid.New()
	s := &Session{
		ID:           id,
		conn:         conn,
		log:          log.With("session", id.String(), "remote", conn.RemoteAddr().String()),
		writeTimeout: writeTimeout,
		outbound:     make(chan []byte, queueSize),
		written:      make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// Deliver encodes msg and queues it without blocking.
func (s *Session) Deliver(msg domain.Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}
	select {
	case s.outbound <- frame:
		return nil
	default:
		return errors.ErrQueueFull
	}
}

// Close stops accepting messages, flushes what is already queued and
// releases the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.outbound)
		s.mu.Unlock()

		<-s.written
		if err := s.conn.Close(); err != nil && !isClosedConnError(err) {
			s.log.Debug("Error closing connection", "error", err)
		}
	})
}

// Abort closes the socket right away, which unblocks the receive loop.
func (s *Session) Abort() {
	_ = s.conn.Close()
}

func (s *Session) writeLoop() {
	defer close(s.written)

	failed := false
	for frame := range s.outbound {
		if failed {
			continue
		}
		if s.writeTimeout > 0 {
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if _, err := s.conn.Write(frame); err != nil {
			failed = true
			if !isClosedConnError(err) {
				s.log.Warn("Write failed, dropping connection", "error", err)
			}
			_ = s.conn.Close()
		}
	}
}
