// Package client speaks the relay wire protocol. It has no UI: it only
// frames, encodes and decodes, and is used to drive the server in tests.
package client

import (
	"bufio"
	"chat-relay/domain"
	"chat-relay/infrastructure/tcp"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client keeps the bytes of a frame interrupted by a read timeout, so a
// timed out Receive can be retried without losing data.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	pending strings.Builder
}

// Dial opens a connection to the relay at address.
func Dial(ctx context.Context, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to relay at %s: %w", address, err)
	}
	return New(conn), nil
}

// New wraps an already established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn)}
}

// Register sends the handshake frame and waits for the server answer.
func (c *Client) Register(username string, timeout time.Duration) (domain.Message, error) {
	if err := c.SendRaw(username); err != nil {
		return domain.Message{}, err
	}
	return c.Receive(timeout)
}

func (c *Client) Send(msg domain.Message) error {
	frame, err := tcp.Encode(msg)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(frame)
	return err
}

// SendRaw writes frame followed by the delimiter, without any encoding.
func (c *Client) SendRaw(frame string) error {
	_, err := c.conn.Write([]byte(frame + "\n"))
	return err
}

func (c *Client) Private(to, text string) error {
	return c.Send(domain.Message{Status: domain.StatusPrivate, Receiver: to, Text: text})
}

func (c *Client) Group(room, text string) error {
	return c.Send(domain.Message{Status: domain.StatusGroup, Receiver: room, Text: text})
}

func (c *Client) Create(room string) error {
	return c.Send(domain.Message{Status: domain.StatusCreate, Receiver: room})
}

func (c *Client) Join(room string) error {
	return c.Send(domain.Message{Status: domain.StatusJoin, Receiver: room})
}

func (c *Client) Quit() error {
	return c.Send(domain.Message{Status: domain.StatusQuit})
}

// Receive waits at most timeout for the next message.
// It returns io.EOF once the server closed the connection.
func (c *Client) Receive(timeout time.Duration) (domain.Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return domain.Message{}, err
	}
	for {
		line, err := c.reader.ReadString('\n')
		c.pending.WriteString(line)
		if err != nil {
			return domain.Message{}, err
		}
		frame := strings.TrimRight(c.pending.String(), "\r\n")
		c.pending.Reset()
		if strings.TrimSpace(frame) == "" {
			continue
		}
		return tcp.Decode(frame)
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
