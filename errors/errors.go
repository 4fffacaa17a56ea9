package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrUsernameTaken = fmt.Errorf("username already taken")
	ErrInvalidName   = fmt.Errorf("invalid username")
	ErrUserNotFound  = fmt.Errorf("user not found or offline")
	ErrRoomExists    = fmt.Errorf("chat room already exists")
	ErrNoSuchRoom    = fmt.Errorf("chat room does not exist")
	ErrAlreadyMember = fmt.Errorf("already a member of the chat room")

	ErrDecode        = fmt.Errorf("invalid message format")
	ErrFrameTooLarge = fmt.Errorf("frame exceeds maximum size")
	ErrSendFailed    = fmt.Errorf("send failed")
	ErrSessionClosed = fmt.Errorf("session closed")
	ErrQueueFull     = fmt.Errorf("outbound queue full")
)
