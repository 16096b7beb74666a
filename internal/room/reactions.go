/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

import (
	"time"

	"github.com/google/uuid"
)

// MaxReactions is how many reactions a room remembers.
const MaxReactions = 50

// Reaction is a cosmetic emoji event broadcast to everyone in a room.
type Reaction struct {
	ID        string    `json:"id"`
	Emoji     string    `json:"emoji"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

type reactionLog struct {
	limit  int
	events []Reaction
}

func newReactionLog(limit int) reactionLog {
	return reactionLog{limit: limit}
}

func (l *reactionLog) push(ev Reaction) {
	l.events = append(l.events, ev)
	if over := len(l.events) - l.limit; over > 0 {
		l.events = append(l.events[:0], l.events[over:]...)
	}
}

// AddReaction records emoji from connID and returns the event to broadcast.
func (r *Room) AddReaction(emoji, connID, name string) Reaction {
	ev := Reaction{
		ID:        uuid.NewString(),
		Emoji:     emoji,
		UserID:    connID,
		UserName:  name,
		Timestamp: time.Now(),
	}
	r.reactions.push(ev)
	return ev
}

// Reactions returns the remembered reactions, oldest first.
func (r *Room) Reactions() []Reaction {
	return append([]Reaction(nil), r.reactions.events...)
}
