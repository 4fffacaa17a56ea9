package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ClientRegistry maps usernames to the outbound half of their session.
// It is the single source of truth for "is this user online".
type ClientRegistry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Outbox // map username -> Outbox
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{sessions: make(map[string]contract.Outbox)}
}

// Register performs an atomic check-and-insert.
// It fails with ErrUsernameTaken when the username is already bound to a live session.
func (r *ClientRegistry) Register(username string, outbox contract.Outbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[username]; ok {
		return errors.ErrUsernameTaken
	}
	r.sessions[username] = outbox
	return nil
}

func (r *ClientRegistry) Lookup(username string) (contract.Outbox, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	outbox, ok := r.sessions[username]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return outbox, nil
}

// Remove is idempotent.
func (r *ClientRegistry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

// SendTo looks the recipient up and hands it the message.
// A failing outbox is reported as ErrSendFailed; callers decide whether to swallow it.
func (r *ClientRegistry) SendTo(username string, msg domain.Message) error {
	outbox, err := r.Lookup(username)
	if err != nil {
		return err
	}
	if err = outbox.Deliver(msg); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrSendFailed, username, err)
	}
	return nil
}

func (r *ClientRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Usernames returns the online usernames sorted alphabetically.
func (r *ClientRegistry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.sessions)
	slices.Sort(names)
	return names
}
