// Package domain contains core concepts of the chat system.
// This file defines the username rules a participant must satisfy to register.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"chat-relay/errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NormalizeUsername trims the raw handshake frame. An empty result means
// the client sent no username at all.
func NormalizeUsername(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateUsername checks a normalized, non-empty username.
// A maxLength of 0 means the length is not limited.
func ValidateUsername(username string, maxLength int) error {
	rules := "required"
	if maxLength > 0 {
		rules = fmt.Sprintf("required,max=%d", maxLength)
	}
	if err := validate.Var(username, rules); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidName, err)
	}
	if strings.ContainsFunc(username, unicode.IsControl) {
		return errors.ErrInvalidName
	}
	if username == ServerName {
		return errors.ErrInvalidName
	}
	return nil
}
