// Package runtime holds the shared state of the relay and the routing rules applied to it.
// It knows nothing about sockets: sessions are reached through contract.Outbox.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/moderation"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// Stats is a point-in-time view used by telemetry.
type Stats struct {
	Sessions  int
	Rooms     int
	Usernames []string
}

// Router dispatches inbound messages by status.
//
// Every registration, routed message and teardown runs under mu, covering the
// decision, the registry mutation and the resulting deliveries. The registries
// keep their own locks but are only mutated from inside mu, always one at a
// time, so the lock order is fixed (router, then one registry).
//
// Delivery is best-effort: a recipient whose outbox refuses a message is
// logged and skipped, it never aborts a fan-out nor errors the sender.
type Router struct {
	mu          sync.Mutex
	log         *slog.Logger
	clients     *ClientRegistry
	rooms       *RoomRegistry
	moderator   *moderation.Moderator
	welcomeName string
}

func NewRouter(log *slog.Logger, clients *ClientRegistry, rooms *RoomRegistry) *Router {
	return &Router{log: log, clients: clients, rooms: rooms, welcomeName: DefaultWelcomeName}
}

// DefaultWelcomeName is the server name used in the registration greeting.
const DefaultWelcomeName = "ClassChat"

func (r *Router) WithWelcomeName(name string) *Router {
	r.welcomeName = name
	return r
}

// WithModerator enables censoring of relayed private and group texts.
func (r *Router) WithModerator(moderator *moderation.Moderator) *Router {
	r.moderator = moderator
	return r
}

// Register binds username to outbox and greets the new session. The greeting
// is queued before the lock is released, so it is always the first message
// the client receives.
func (r *Router) Register(username string, outbox contract.Outbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.clients.Register(username, outbox); err != nil {
		return err
	}
	r.send(username, domain.Welcome(username, r.welcomeName))
	r.log.Info("User registered", "username", username, "online", r.clients.Len())
	return nil
}

// Route applies the routing table to msg. The sender is the authenticated
// session username; msg.Sender is ignored. It returns true when the session
// asked to disconnect.
func (r *Router) Route(sender string, msg domain.Message) (disconnect bool) {
	if msg.Status == domain.StatusQuit {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Status {
	case domain.StatusPrivate:
		r.handlePrivate(sender, msg)
	case domain.StatusGroup:
		r.handleGroup(sender, msg)
	case domain.StatusCreate:
		r.handleCreate(sender, domain.RoomName(msg.Receiver))
	case domain.StatusJoin:
		r.handleJoin(sender, domain.RoomName(msg.Receiver))
	default:
		r.log.Debug("Unknown message type", "username", sender, "status", msg.Status)
		r.send(sender, domain.NewError(sender, "Unknown message type"))
	}
	return false
}

// Reject answers a protocol error to the sender without touching any state.
func (r *Router) Reject(sender, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send(sender, domain.NewError(sender, text))
}

// Disconnect removes the user from the registry and from every room, then
// notifies the remaining members of each room exactly once.
func (r *Router) Disconnect(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients.Remove(username)
	departures := r.rooms.LeaveAll(username)
	for _, d := range departures {
		r.broadcast(d.Remaining, domain.LeftNotice(string(d.Room), username))
	}
	r.log.Info("User disconnected", "username", username,
		"rooms_left", len(departures), "online", r.clients.Len())
}

func (r *Router) Stats() Stats {
	return Stats{Sessions: r.clients.Len(), Rooms: r.rooms.Len(), Usernames: r.clients.Usernames()}
}

func (r *Router) handlePrivate(sender string, msg domain.Message) {
	if _, err := r.clients.Lookup(msg.Receiver); err != nil {
		r.send(sender, domain.NewError(sender, fmt.Sprintf("User '%s' not found or offline", msg.Receiver)))
		return
	}
	r.send(msg.Receiver, domain.Message{
		Status:   domain.StatusPrivate,
		Sender:   sender,
		Receiver: msg.Receiver,
		Text:     r.censor(sender, msg.Text),
	})
	r.log.Debug("Private message relayed", "from", sender, "to", msg.Receiver)
}

func (r *Router) handleGroup(sender string, msg domain.Message) {
	room := domain.RoomName(msg.Receiver)
	members, err := r.rooms.MembersOf(room)
	if err != nil {
		r.send(sender, domain.NewError(sender, fmt.Sprintf("Chat room '%s' does not exist", room)))
		return
	}
	if !r.rooms.IsMember(room, sender) {
		r.send(sender, domain.NewError(sender, fmt.Sprintf("You are not a member of '%s'", room)))
		return
	}
	// The sender is part of the fan-out: clients see their own message echoed.
	r.broadcast(members, domain.Message{
		Status:   domain.StatusGroup,
		Sender:   sender,
		Receiver: string(room),
		Text:     r.censor(sender, msg.Text),
	})
	r.log.Debug("Group message relayed", "from", sender, "room", room, "members", len(members))
}

func (r *Router) handleCreate(sender string, room domain.RoomName) {
	if err := r.rooms.Create(room, sender); err != nil {
		r.send(sender, domain.NewError(sender, fmt.Sprintf("Chat room '%s' already exists", room)))
		return
	}
	r.send(sender, domain.NewSuccess(sender, fmt.Sprintf("Chat room '%s' created successfully", room)))
	r.log.Info("Chat room created", "room", room, "username", sender)
}

func (r *Router) handleJoin(sender string, room domain.RoomName) {
	err := r.rooms.Join(room, sender)
	switch {
	case stderrors.Is(err, errors.ErrNoSuchRoom):
		r.send(sender, domain.NewError(sender, fmt.Sprintf("Chat room '%s' does not exist", room)))
		return
	case stderrors.Is(err, errors.ErrAlreadyMember):
		r.send(sender, domain.NewError(sender, fmt.Sprintf("You are already a member of '%s'", room)))
		return
	case err != nil:
		r.log.Error("Unexpected join failure", "room", room, "username", sender, "error", err)
		return
	}

	r.send(sender, domain.NewSuccess(sender, fmt.Sprintf("You have joined '%s'", room)))

	members, _ := r.rooms.MembersOf(room)
	others := lo.Without(members, sender)
	r.broadcast(others, domain.JoinedNotice(string(room), sender))
	r.log.Info("User joined chat room", "room", room, "username", sender)
}

func (r *Router) broadcast(recipients []string, msg domain.Message) {
	for _, member := range recipients {
		r.send(member, msg)
	}
}

func (r *Router) send(username string, msg domain.Message) {
	err := r.clients.SendTo(username, msg)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrUserNotFound), stderrors.Is(err, errors.ErrSessionClosed):
		r.log.Debug("Recipient gone, message skipped", "username", username, "status", msg.Status)
	default:
		r.log.Warn("Delivery failed", "username", username, "status", msg.Status, "error", err)
	}
}

func (r *Router) censor(sender, text string) string {
	if r.moderator == nil {
		return text
	}
	censored, words := r.moderator.Censor(text)
	if len(words) > 0 {
		r.log.Info("Message censored", "username", sender, "words", len(words), "lang", detectLanguage(text))
	}
	return censored
}

// detectLanguage returns the ISO 639-1 code of text, empty when unknown.
func detectLanguage(text string) string {
	return whatlanggo.Detect(text).Lang.Iso6391()
}
