package e2e

import (
	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/infrastructure/tcp"
	"chat-relay/runtime"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseTCPSuite starts a fresh in-process relay on a loopback port for every
// test, so room names never leak from one test to another.
type BaseTCPSuite struct {
	suite.Suite
	Config  Config
	Address string

	cancel  context.CancelFunc
	stopped chan struct{}
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseTCPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseTCPSuite) SetupTest() {
	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	router := runtime.NewRouter(log, runtime.NewClientRegistry(), runtime.NewRoomRegistry())
	server := tcp.NewServer(log, router, tcp.Config{Address: "127.0.0.1:0"})
	s.Require().NoError(server.Listen())
	s.Address = server.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})
	go func() {
		defer close(s.stopped)
		_ = server.Run(ctx)
	}()
}

func (s *BaseTCPSuite) TearDownTest() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case <-s.stopped:
	case <-time.After(5 * time.Second):
		s.Fail("relay did not stop in time")
	}
	s.cancel = nil
}

// Step prints a colorized header for a scenario step in logs
func (s *BaseTCPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dial connects without registering.
func (s *BaseTCPSuite) Dial() *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, s.Address)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// Connect dials and registers username, failing the test if the server refuses it.
func (s *BaseTCPSuite) Connect(username string) *client.Client {
	c := s.Dial()
	welcome, err := c.Register(username, s.Config.ReceiveTimeout)
	s.Require().NoError(err)
	s.Require().Equal(domain.StatusSuccess, welcome.Status, "registration of %s refused: %s", username, welcome.Text)
	return c
}

// Expect reads the next message of c and compares it to want.
func (s *BaseTCPSuite) Expect(c *client.Client, want domain.Message) {
	got, err := c.Receive(s.Config.ReceiveTimeout)
	s.Require().NoError(err, "waiting for %+v", want)
	if s.Config.DebugJSON {
		s.T().Logf("received %+v", got)
	}
	s.Require().Equal(want, got)
}

// ExpectSilence asserts nothing is received for a short while.
func (s *BaseTCPSuite) ExpectSilence(c *client.Client) {
	got, err := c.Receive(s.Config.SilenceTimeout)
	var netErr net.Error
	s.Require().True(stderrors.As(err, &netErr) && netErr.Timeout(), "unexpected message %+v (err=%v)", got, err)
}
