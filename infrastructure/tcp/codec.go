package tcp

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"strings"
)

// Decode parses a frame into a Message. Any frame that is not a JSON object
// fails with errors.ErrDecode. An unknown status is not a decoding concern.
func Decode(frame string) (domain.Message, error) {
	if !strings.HasPrefix(strings.TrimLeft(frame, " \t\r\n"), "{") {
		return domain.Message{}, fmt.Errorf("%w: not a JSON object", errors.ErrDecode)
	}
	var msg domain.Message
	if err := json.Unmarshal([]byte(frame), &msg); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrDecode, err)
	}
	return msg, nil
}

// Encode serializes msg into a frame, newline included.
func Encode(msg domain.Message) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
