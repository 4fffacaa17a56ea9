package tcp

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	stderrors "errors"
	"io"
	"log/slog"
)

const (
	usernameTakenText = "Username already taken. Please try another."
	invalidNameText   = "Invalid username"
	invalidFormatText = "Invalid message format"
)

// ConnectionSupervisor drives one connection from handshake to teardown.
type ConnectionSupervisor struct {
	log    *slog.Logger
	router contract.IRouter
	config Config
}

func NewConnectionSupervisor(log *slog.Logger, router contract.IRouter, config Config) *ConnectionSupervisor {
	return &ConnectionSupervisor{log: log, router: router, config: config.withDefaults()}
}

// Serve performs the registration handshake, then routes every inbound frame
// until the peer closes, a read fails or the user quits.
// Once registered, the user is always disconnected from the router before the
// session is released, whatever the exit path.
func (c *ConnectionSupervisor) Serve(session *Session) {
	defer session.Close()
	log := c.log.With("session", session.ID.String())

	framer := NewFramer(session.conn, c.config.MaxFrameBytes)
	username, ok := c.handshake(log, session, framer)
	if !ok {
		return
	}

	log = log.With("username", username)
	defer c.router.Disconnect(username)

	c.receive(log, framer, username)
}

func (c *ConnectionSupervisor) handshake(log *slog.Logger, session *Session, framer *Framer) (string, bool) {
	raw, err := framer.ReadFrame()
	if err != nil {
		c.logReadError(log, "Connection closed before registration", err)
		return "", false
	}

	username := domain.NormalizeUsername(raw)
	if username == "" {
		log.Debug("Empty username, closing connection")
		return "", false
	}

	if err = domain.ValidateUsername(username, c.config.MaxUsernameLength); err != nil {
		log.Info("Registration refused", "username", username, "error", err)
		c.reply(log, session, domain.NewError(username, invalidNameText))
		return "", false
	}

	if err = c.router.Register(username, session); err != nil {
		if stderrors.Is(err, errors.ErrUsernameTaken) {
			log.Info("Registration refused", "username", username, "error", err)
			c.reply(log, session, domain.NewError(username, usernameTakenText))
		} else {
			log.Error("Registration failed", "username", username, "error", err)
		}
		return "", false
	}
	return username, true
}

func (c *ConnectionSupervisor) receive(log *slog.Logger, framer *Framer, username string) {
	for {
		frame, err := framer.Next()
		if err != nil {
			c.logReadError(log, "Receive loop ended", err)
			return
		}

		msg, err := Decode(frame)
		if err != nil {
			log.Debug("Undecodable frame", "error", err)
			c.router.Reject(username, invalidFormatText)
			continue
		}

		if c.router.Route(username, msg) {
			log.Info("User quit")
			return
		}
	}
}

// reply is used before registration, when the router does not know the session yet.
func (c *ConnectionSupervisor) reply(log *slog.Logger, session *Session, msg domain.Message) {
	if err := session.Deliver(msg); err != nil {
		log.Warn("Reply dropped", "status", msg.Status, "error", err)
	}
}

func (c *ConnectionSupervisor) logReadError(log *slog.Logger, text string, err error) {
	switch {
	case stderrors.Is(err, io.EOF), isClosedConnError(err):
		log.Debug(text, "reason", "peer closed")
	case stderrors.Is(err, errors.ErrFrameTooLarge):
		log.Warn(text, "error", err)
	default:
		log.Info(text, "error", err)
	}
}
