/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package room holds the canonical state of a single estimation session and
// the rules for turning it into per-viewer snapshots.
//
// Nothing in this package locks or performs I/O; callers serialize access
// to a Room themselves.
package room

import (
	"crypto/subtle"
	"errors"
	"time"
)

// ErrNotAMember is returned when an operation targets a connection that is
// not currently in the room.
var ErrNotAMember = errors.New("user not found in room")

// Status is a cosmetic presence indicator.
type Status string

const (
	StatusActive    Status = "active"
	StatusCoffee    Status = "coffee"
	StatusWatch     Status = "watch"
	StatusRightBack Status = "right-back"
)

// ParseStatus reports whether s names a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusActive, StatusCoffee, StatusWatch, StatusRightBack:
		return st, true
	}
	return "", false
}

// Member is a participant keyed by its connection id.
type Member struct {
	ConnID     string
	Name       string
	IsObserver bool
	Status     Status
}

type Room struct {
	id         string
	name       string
	accessCode string
	createdAt  time.Time

	members map[string]*Member
	order   []string // connection ids in join order
	votes   map[string]string

	revealed bool
	story    string

	hostID       string
	originalHost string

	reactions reactionLog
}

func New(id, name, accessCode string) *Room {
	return &Room{
		id:         id,
		name:       name,
		accessCode: accessCode,
		createdAt:  time.Now(),
		members:    make(map[string]*Member),
		votes:      make(map[string]string),
		reactions:  newReactionLog(MaxReactions),
	}
}

func (r *Room) ID() string               { return r.id }
func (r *Room) Name() string             { return r.name }
func (r *Room) AccessCode() string       { return r.accessCode }
func (r *Room) CreatedAt() time.Time     { return r.createdAt }
func (r *Room) Revealed() bool           { return r.revealed }
func (r *Room) Story() string            { return r.story }
func (r *Room) HostID() string           { return r.hostID }
func (r *Room) OriginalHostName() string { return r.originalHost }
func (r *Room) MemberCount() int         { return len(r.order) }

// CheckAccessCode compares code against the room secret in constant time.
func (r *Room) CheckAccessCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(code), []byte(r.accessCode)) == 1
}

// IsMember reports whether connID is currently in the room.
func (r *Room) IsMember(connID string) bool {
	_, ok := r.members[connID]
	return ok
}

// Member returns a copy of the member record for connID.
func (r *Room) Member(connID string) (Member, bool) {
	m, ok := r.members[connID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Members returns copies of all members in join order.
func (r *Room) Members() []Member {
	out := make([]Member, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.members[id])
	}
	return out
}

// Vote returns the vote cast by connID, if any.
func (r *Room) Vote(connID string) (string, bool) {
	v, ok := r.votes[connID]
	return v, ok
}

// Votes returns a copy of the vote map.
func (r *Room) Votes() map[string]string {
	out := make(map[string]string, len(r.votes))
	for k, v := range r.votes {
		out[k] = v
	}
	return out
}

// AddMember inserts connID under name and applies the host policy. If
// another connection was using name it is evicted and its pending vote moves
// to connID; the evicted connection id is returned so the caller can stop
// delivering to it.
//
// Joining again on a connection that is already a member only updates the
// name; its vote and position are kept.
func (r *Room) AddMember(connID, name string) (evicted string) {
	evicted = r.evictNamesake(connID, name)

	if m, ok := r.members[connID]; ok {
		m.Name = name
	} else {
		r.members[connID] = &Member{
			ConnID: connID,
			Name:   name,
			Status: StatusActive,
		}
		r.order = append(r.order, connID)
	}

	r.assignHost(connID, name)

	return evicted
}

// RemoveMember deletes connID and its vote. A departing host hands the role
// to the earliest remaining member; the original host name is kept so the
// role can be reclaimed later. It reports whether connID was a member.
func (r *Room) RemoveMember(connID string) bool {
	if !r.drop(connID) {
		return false
	}

	if r.hostID == connID {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
		}
	}

	return true
}

// drop removes connID from members, join order and votes without touching
// host state.
func (r *Room) drop(connID string) bool {
	if _, ok := r.members[connID]; !ok {
		return false
	}

	delete(r.members, connID)
	delete(r.votes, connID)

	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return true
}

// CastVote records value for connID. Votes are ignored once revealed and
// from connections that are not members.
func (r *Room) CastVote(connID, value string) {
	if r.revealed || !r.IsMember(connID) {
		return
	}
	r.votes[connID] = value
}

func (r *Room) ClearVote(connID string) {
	delete(r.votes, connID)
}

// Reveal exposes all votes. Host authority is checked by the caller.
func (r *Room) Reveal() {
	r.revealed = true
}

func (r *Room) Reset() {
	clear(r.votes)
	r.revealed = false
}

// SetStory changes the current story and starts a fresh round.
func (r *Room) SetStory(text string) {
	r.story = text
	r.Reset()
}

// SetStatus updates the presence indicator of connID.
func (r *Room) SetStatus(connID string, status Status) bool {
	m, ok := r.members[connID]
	if !ok {
		return false
	}
	m.Status = status
	return true
}

// TransferHost hands the host role to connID. The original host name is
// left alone, so the original host still reclaims the role on reconnect.
func (r *Room) TransferHost(connID string) error {
	if !r.IsMember(connID) {
		return ErrNotAMember
	}
	r.hostID = connID
	return nil
}
