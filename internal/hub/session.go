/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package hub

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Seednode/pokerbox/internal/room"
)

// Session is the server side of one connection: which room it is in and
// under what name. A Session is driven by a single goroutine, the one
// reading from its connection.
//
// Requests that make no sense in the current context (no room yet, blank
// names, unknown statuses) are ignored rather than reported.
type Session struct {
	reg *Registry
	sub Subscriber
	log logrus.FieldLogger

	roomID string
	name   string
}

func (r *Registry) NewSession(sub Subscriber) *Session {
	return &Session{
		reg: r,
		sub: sub,
		log: r.log.WithField("conn_id", sub.ConnID()),
	}
}

// RoomID returns the room this session is in, or "".
func (s *Session) RoomID() string {
	return s.roomID
}

// Dispatch routes msg to the matching operation and reports any failure to
// this connection only.
func (s *Session) Dispatch(msg ClientMessage) {
	var err error

	switch msg.Type {
	case TypeJoinRoom:
		err = s.Join(msg.RoomID, msg.Name, msg.AccessCode)
	case TypeVote:
		s.Vote(msg.Value)
	case TypeClearVote:
		s.ClearVote()
	case TypeRevealVotes:
		err = s.Reveal()
	case TypeResetVotes:
		err = s.Reset()
	case TypeSetStory:
		err = s.SetStory(msg.Story)
	case TypeTransferHost:
		err = s.TransferHost(msg.NewHostID)
	case TypeSendEmoji:
		s.SendEmoji(msg.Emoji)
	case TypeUpdateStatus:
		s.UpdateStatus(msg.Status)
	case TypeUpdateName:
		s.UpdateName(msg.Name)
	default:
		// ignore unknown types
	}

	if err != nil {
		s.log.WithError(err).WithField("type", msg.Type).Info("request rejected")
		s.sub.Deliver(newErrorMessage(err))
	}
}

// Join enters roomID as name. A connection already in a different room
// leaves it first.
func (s *Session) Join(roomID, name, accessCode string) error {
	roomID = strings.TrimSpace(roomID)
	name = strings.TrimSpace(name)
	if roomID == "" || name == "" {
		return nil
	}

	e, ok := s.reg.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	closed, valid := e.closed, e.room.CheckAccessCode(strings.TrimSpace(accessCode))
	e.mu.Unlock()

	switch {
	case closed:
		return ErrRoomNotFound
	case !valid:
		return ErrInvalidAccessCode
	}

	if s.roomID != "" && s.roomID != roomID {
		s.Leave()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrRoomNotFound
	}

	id := s.sub.ConnID()

	s.reg.cancelCleanupLocked(e)

	if evicted := e.room.AddMember(id, name); evicted != "" {
		if stale, ok := e.subs[evicted]; ok {
			stale.Deliver(newErrorMessage(ErrReplaced))
			delete(e.subs, evicted)
		}
		s.log.WithFields(logrus.Fields{"room_id": roomID, "evicted": evicted}).Info("replaced stale connection")
	}
	e.subs[id] = s.sub
	e.touch(s.reg.clock.Now())

	s.roomID = roomID
	s.name = name

	s.log.WithFields(logrus.Fields{"room_id": roomID, "name": name}).Info("member joined")

	s.sub.Deliver(RoomMessage{
		Type: TypeRoomJoined,
		View: room.Project(e.room, id),
	})
	e.sendOthersLocked(id, UserJoinedMessage{
		Type:   TypeUserJoined,
		UserID: id,
		Name:   name,
	})
	e.broadcastLocked()

	return nil
}

// Leave removes this connection from its room. It runs on disconnect.
func (s *Session) Leave() {
	if s.roomID == "" {
		return
	}

	roomID := s.roomID
	s.roomID = ""

	e, ok := s.reg.lookup(roomID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	id := s.sub.ConnID()
	delete(e.subs, id)

	wasHost := e.room.HostID() == id
	if !e.room.RemoveMember(id) {
		return
	}
	e.touch(s.reg.clock.Now())

	s.log.WithFields(logrus.Fields{"room_id": roomID, "was_host": wasHost}).Info("member left")

	e.sendOthersLocked(id, UserLeftMessage{
		Type:      TypeUserLeft,
		UserID:    id,
		Name:      s.name,
		WasHost:   wasHost,
		NewHostID: e.room.HostID(),
	})
	e.broadcastLocked()

	if e.room.MemberCount() == 0 {
		s.reg.scheduleCleanupLocked(e)
	}
}

// Close is called once the connection is gone.
func (s *Session) Close() {
	s.Leave()
}

// apply runs fn on the current room under its lock and pushes fresh
// projections afterwards. Without a room it does nothing.
func (s *Session) apply(fn func(r *room.Room) error) error {
	if s.roomID == "" {
		return nil
	}

	e, ok := s.reg.lookup(s.roomID)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || s.detachedLocked(e) {
		return nil
	}

	if err := fn(e.room); err != nil {
		return err
	}

	e.touch(s.reg.clock.Now())
	e.broadcastLocked()

	return nil
}

// detachedLocked reports whether a newer connection took this session's
// place in e, and forgets the room if so.
func (s *Session) detachedLocked(e *entry) bool {
	if e.room.IsMember(s.sub.ConnID()) {
		return false
	}

	s.roomID = ""
	return true
}

// hostOnly is apply for actions reserved to the current host.
func (s *Session) hostOnly(action string, fn func(r *room.Room) error) error {
	return s.apply(func(r *room.Room) error {
		if r.HostID() != s.sub.ConnID() {
			return &NotHostError{Action: action}
		}
		return fn(r)
	})
}

func (s *Session) Vote(value string) {
	_ = s.apply(func(r *room.Room) error {
		r.CastVote(s.sub.ConnID(), value)
		return nil
	})
}

func (s *Session) ClearVote() {
	_ = s.apply(func(r *room.Room) error {
		r.ClearVote(s.sub.ConnID())
		return nil
	})
}

func (s *Session) Reveal() error {
	return s.hostOnly("reveal votes", func(r *room.Room) error {
		r.Reveal()
		return nil
	})
}

func (s *Session) Reset() error {
	return s.hostOnly("reset votes", func(r *room.Room) error {
		r.Reset()
		return nil
	})
}

func (s *Session) SetStory(text string) error {
	return s.hostOnly("set the story", func(r *room.Room) error {
		r.SetStory(text)
		return nil
	})
}

func (s *Session) TransferHost(connID string) error {
	return s.hostOnly("transfer host role", func(r *room.Room) error {
		return r.TransferHost(connID)
	})
}

// SendEmoji broadcasts a reaction. Unlike room updates the event is the
// same for every recipient.
func (s *Session) SendEmoji(emoji string) {
	if s.roomID == "" || s.name == "" || strings.TrimSpace(emoji) == "" {
		return
	}

	e, ok := s.reg.lookup(s.roomID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || s.detachedLocked(e) {
		return
	}

	ev := e.room.AddReaction(emoji, s.sub.ConnID(), s.name)
	msg := EmojiMessage{
		Type:     TypeEmojiReceived,
		Reaction: ev,
	}

	s.sub.Deliver(msg)
	e.sendOthersLocked(s.sub.ConnID(), msg)
}

func (s *Session) UpdateStatus(status string) {
	st, ok := room.ParseStatus(status)
	if !ok {
		return
	}

	_ = s.apply(func(r *room.Room) error {
		r.SetStatus(s.sub.ConnID(), st)
		return nil
	})
}

func (s *Session) UpdateName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	_ = s.apply(func(r *room.Room) error {
		if r.Rename(s.sub.ConnID(), name) {
			s.name = name
		}
		return nil
	})
}
