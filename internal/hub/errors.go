/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package hub

import (
	"errors"

	"github.com/Seednode/pokerbox/internal/room"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrNotHost           = errors.New("not host")
	ErrReplaced          = errors.New("replaced by a newer connection")
)

// NotHostError is returned when a host-only action is attempted by someone
// else. It matches ErrNotHost.
type NotHostError struct {
	Action string
}

func (e *NotHostError) Error() string {
	return "only the host can " + e.Action
}

func (e *NotHostError) Is(target error) bool {
	return target == ErrNotHost
}

// newErrorMessage maps err onto the message sent back to the caller. The
// text never echoes the room secret.
func newErrorMessage(err error) ErrorMessage {
	msg := ErrorMessage{
		Type:    TypeError,
		Code:    "internal",
		Message: "Something went wrong",
	}

	var notHost *NotHostError

	switch {
	case errors.Is(err, ErrRoomNotFound):
		msg.Code, msg.Message = "room_not_found", "Room not found"
	case errors.Is(err, ErrInvalidAccessCode):
		msg.Code, msg.Message = "invalid_access_code", "Invalid access code"
	case errors.As(err, &notHost):
		msg.Code, msg.Message = "not_host", "Only the host can "+notHost.Action
	case errors.Is(err, ErrNotHost):
		msg.Code, msg.Message = "not_host", "Only the host can do that"
	case errors.Is(err, ErrReplaced):
		msg.Code, msg.Message = "replaced", "You joined this room from another connection"
	case errors.Is(err, room.ErrNotAMember):
		msg.Code, msg.Message = "not_a_member", "User not found in room"
	}

	return msg
}
