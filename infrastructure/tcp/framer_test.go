package tcp

import (
	"chat-relay/errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, framer *Framer) []string {
	var frames []string
	for {
		frame, err := framer.Next()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, frame)
	}
}

func TestFramer_SeveralFramesInOneRead(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader("alice\n{\"status\":\"quit\"}\nbob\n"), DefaultMaxFrameBytes)

	req.Equal([]string{"alice", `{"status":"quit"}`, "bob"}, readAll(t, framer))
}

func TestFramer_FrameSplitAcrossReads(t *testing.T) {
	req := require.New(t)
	// Every Read returns a single byte
	framer := NewFramer(iotest.OneByteReader(strings.NewReader("hello world\nbye\n")), DefaultMaxFrameBytes)

	req.Equal([]string{"hello world", "bye"}, readAll(t, framer))
}

func TestFramer_CarriageReturnAndBlankFrames(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader("alice\r\n\n   \r\nbob\n"), DefaultMaxFrameBytes)

	req.Equal([]string{"alice", "bob"}, readAll(t, framer))
}

func TestFramer_ReadFrameKeepsBlankFrames(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader("\nalice\n"), DefaultMaxFrameBytes)

	frame, err := framer.ReadFrame()
	req.NoError(err)
	req.Equal("", frame)
	frame, err = framer.ReadFrame()
	req.NoError(err)
	req.Equal("alice", frame)
}

func TestFramer_PartialFrameAtEOFIsDiscarded(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader("alice\nunfinished"), DefaultMaxFrameBytes)

	req.Equal([]string{"alice"}, readAll(t, framer))
}

func TestFramer_FrameAtMaxSize(t *testing.T) {
	req := require.New(t)
	frame := strings.Repeat("x", 64)
	framer := NewFramer(strings.NewReader(frame+"\n"+frame+"\r\n"), 64)

	req.Equal([]string{frame, frame}, readAll(t, framer))
}

func TestFramer_FrameOneByteOverMaxSize(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader(strings.Repeat("x", 65)+"\n"), 64)

	_, err := framer.Next()

	req.ErrorIs(err, errors.ErrFrameTooLarge)
}

func TestFramer_FrameTooLarge(t *testing.T) {
	req := require.New(t)
	framer := NewFramer(strings.NewReader(strings.Repeat("x", 200)+"\n"), 64)

	_, err := framer.Next()

	req.ErrorIs(err, errors.ErrFrameTooLarge)
}
