package tcp

import (
	"bufio"
	"bytes"
	"chat-relay/errors"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

// Framer turns a byte stream into newline-delimited text frames.
// Bytes of an incomplete frame stay buffered until the rest arrives;
// an incomplete frame still pending when the peer closes is discarded.
type Framer struct {
	scanner       *bufio.Scanner
	maxFrameBytes int
}

// NewFramer accepts frames of up to maxFrameBytes, delimiter excluded.
func NewFramer(r io.Reader, maxFrameBytes int) *Framer {
	// Room for a \r\n delimiter on top of the largest frame
	bufferSize := maxFrameBytes + 2
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(4096, bufferSize)), bufferSize)
	scanner.Split(splitFrames)
	return &Framer{scanner: scanner, maxFrameBytes: maxFrameBytes}
}

// ReadFrame returns the next frame as is, blank or not.
// It returns io.EOF once the peer closed the stream.
func (f *Framer) ReadFrame() (string, error) {
	if f.scanner.Scan() {
		frame := f.scanner.Text()
		if len(frame) > f.maxFrameBytes {
			return "", fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, len(frame))
		}
		return frame, nil
	}
	err := f.scanner.Err()
	switch {
	case err == nil:
		return "", io.EOF
	case stderrors.Is(err, bufio.ErrTooLong):
		return "", fmt.Errorf("%w: %w", errors.ErrFrameTooLarge, err)
	default:
		return "", err
	}
}

// Next returns the next non-blank frame.
func (f *Framer) Next() (string, error) {
	for {
		frame, err := f.ReadFrame()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(frame) != "" {
			return frame, nil
		}
	}
}

// splitFrames only emits complete frames. A trailing \r is dropped so that
// clients sending \r\n are understood.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[:i], []byte{'\r'}), nil
	}
	return 0, nil, nil
}
