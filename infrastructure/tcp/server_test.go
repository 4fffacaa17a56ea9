package tcp

import (
	"bufio"
	"chat-relay/domain"
	"chat-relay/runtime"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Server, context.CancelFunc, chan error) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	router := runtime.NewRouter(log, runtime.NewClientRegistry(), runtime.NewRoomRegistry())
	server := NewServer(log, router, Config{Address: "127.0.0.1:0"})
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- server.Run(ctx) }()
	t.Cleanup(cancel)
	return server, cancel, stopped
}

func TestServer_RegistersAndShutsDown(t *testing.T) {
	req := require.New(t)
	server, cancel, stopped := startServer(t)

	// Given a registered client
	conn, err := net.Dial("tcp", server.Addr().String())
	req.NoError(err)
	defer conn.Close()
	_, err = conn.Write([]byte("alice\n"))
	req.NoError(err)

	reader := bufio.NewReader(conn)
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	line, err := reader.ReadString('\n')
	req.NoError(err)
	msg, err := Decode(line)
	req.NoError(err)
	req.Equal(domain.Welcome("alice", runtime.DefaultWelcomeName), msg)

	// When the server is stopped
	cancel()

	// Then Run returns cleanly and open connections are closed
	select {
	case err = <-stopped:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("server did not stop")
	}
	_, err = reader.ReadString('\n')
	req.ErrorIs(err, io.EOF)
}

func TestServer_ListenFailsOnBusyAddress(t *testing.T) {
	req := require.New(t)
	server, _, _ := startServer(t)

	other := NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), nil, Config{Address: server.Addr().String()})

	req.Error(other.Listen())
	req.Nil(other.Addr())
}
