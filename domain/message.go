// Package domain contains core concepts of the chat system.
// This file defines Message records and the system messages built from them.
// Messages are plain values: the server never mutates one after routing it.
package domain

import "fmt"

// ServerName is the sender of every system-originated message.
const ServerName = "SERVER"

type Status string

const (
	StatusPrivate Status = "private"
	StatusGroup   Status = "group"
	StatusCreate  Status = "create"
	StatusJoin    Status = "join"
	StatusQuit    Status = "quit"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Message is the structured unit exchanged after the handshake.
type Message struct {
	Status   Status `json:"status"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

func NewError(receiver, text string) Message {
	return Message{Status: StatusError, Sender: ServerName, Receiver: receiver, Text: text}
}

func NewSuccess(receiver, text string) Message {
	return Message{Status: StatusSuccess, Sender: ServerName, Receiver: receiver, Text: text}
}

// NewRoomNotice builds a server broadcast addressed to every member of room.
func NewRoomNotice(room, text string) Message {
	return Message{Status: StatusGroup, Sender: ServerName, Receiver: room, Text: text}
}

func Welcome(username, serverName string) Message {
	return NewSuccess(username, fmt.Sprintf("Welcome to %s, %s!", serverName, username))
}

func JoinedNotice(room, username string) Message {
	return NewRoomNotice(room, fmt.Sprintf("%s has joined the chat room", username))
}

func LeftNotice(room, username string) Message {
	return NewRoomNotice(room, fmt.Sprintf("%s has left the chat room", username))
}
