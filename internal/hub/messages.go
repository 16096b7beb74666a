/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package hub

import "github.com/Seednode/pokerbox/internal/room"

// Inbound message types
const (
	TypeJoinRoom     = "join-room"
	TypeVote         = "vote"
	TypeClearVote    = "clear-vote"
	TypeRevealVotes  = "reveal-votes"
	TypeResetVotes   = "reset-votes"
	TypeSetStory     = "set-story"
	TypeTransferHost = "transfer-host"
	TypeSendEmoji    = "send-emoji"
	TypeUpdateStatus = "update-status"
	TypeUpdateName   = "update-name"
)

// Outbound message types
const (
	TypeRoomJoined    = "room-joined"
	TypeRoomUpdate    = "room-update"
	TypeUserJoined    = "user-joined"
	TypeUserLeft      = "user-left"
	TypeEmojiReceived = "emoji-received"
	TypeError         = "error"
)

// ClientMessage is anything a connection sends us.
type ClientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"room_id,omitempty"`     // join-room
	Name       string `json:"name,omitempty"`        // join-room / update-name
	AccessCode string `json:"access_code,omitempty"` // join-room
	Value      string `json:"value,omitempty"`       // vote
	Story      string `json:"story,omitempty"`       // set-story
	NewHostID  string `json:"new_host_id,omitempty"` // transfer-host
	Emoji      string `json:"emoji,omitempty"`       // send-emoji
	Status     string `json:"status,omitempty"`      // update-status
}

// RoomMessage carries a projection built for its recipient.
type RoomMessage struct {
	Type string `json:"type"` // "room-joined" or "room-update"
	room.View
}

type UserJoinedMessage struct {
	Type   string `json:"type"` // "user-joined"
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type UserLeftMessage struct {
	Type      string `json:"type"` // "user-left"
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	WasHost   bool   `json:"was_host"`
	NewHostID string `json:"new_host_id,omitempty"`
}

// EmojiMessage is the same for every recipient.
type EmojiMessage struct {
	Type string `json:"type"` // "emoji-received"
	room.Reaction
}

// ErrorMessage goes only to the connection whose request failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}
