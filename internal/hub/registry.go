/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package hub owns every live room in the process, serializes the work done
// on each one, and fans the results out to the connections watching it.
package hub

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Seednode/pokerbox/internal/room"
)

const (
	DefaultCleanupDelay = 60 * time.Second

	accessCodeMin   = 100000
	accessCodeRange = 900000
)

// Subscriber is a connection that receives room messages. Deliver must not
// block; it reports false if the message was dropped.
type Subscriber interface {
	ConnID() string
	Deliver(msg any) bool
}

type stopper interface {
	Stop() bool
}

type clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) stopper
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// entry guards one room together with the connections subscribed to it and
// its pending cleanup timer.
type entry struct {
	mu sync.Mutex

	room *room.Room
	subs map[string]Subscriber

	cleanup    stopper
	cleanupGen uint64
	closed     bool
	lastActive time.Time
}

// Summary is what room discovery exposes.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"user_count"`
}

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	cleanupDelay time.Duration
	idleTimeout  time.Duration

	log   logrus.FieldLogger
	clock clock
}

type Option func(*Registry)

// WithCleanupDelay sets how long an empty room survives before deletion.
func WithCleanupDelay(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.cleanupDelay = d
		}
	}
}

// WithIdleTimeout enables Sweep for rooms that sat empty and untouched for d.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.idleTimeout = d
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func withClock(c clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

func NewRegistry(opts ...Option) *Registry {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Registry{
		rooms:        make(map[string]*entry),
		cleanupDelay: DefaultCleanupDelay,
		log:          discard,
		clock:        wallClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(accessCodeRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+accessCodeMin), nil
}

// Create stores a new empty room and returns its id and access code.
func (r *Registry) Create(name string) (id, accessCode string, err error) {
	accessCode, err = newAccessCode()
	if err != nil {
		return "", "", fmt.Errorf("generate access code: %w", err)
	}

	r.mu.Lock()
	for {
		id = uuid.NewString()
		if _, exists := r.rooms[id]; !exists {
			break
		}
	}
	r.rooms[id] = &entry{
		room:       room.New(id, name, accessCode),
		subs:       make(map[string]Subscriber),
		lastActive: r.clock.Now(),
	}
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"room_id": id, "name": name}).Info("room created")

	return id, accessCode, nil
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rooms[id]
	return e, ok
}

func (r *Registry) entries() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, e)
	}
	return out
}

// remove deletes e from the map unless the id has been reused meanwhile.
func (r *Registry) remove(e *entry) {
	id := e.room.ID()

	r.mu.Lock()
	if r.rooms[id] == e {
		delete(r.rooms, id)
	}
	r.mu.Unlock()
}

// List returns every live room, oldest first.
func (r *Registry) List() []Summary {
	type row struct {
		Summary
		created time.Time
	}

	rows := make([]row, 0)
	for _, e := range r.entries() {
		e.mu.Lock()
		if !e.closed {
			rows = append(rows, row{
				Summary: Summary{
					ID:          e.room.ID(),
					Name:        e.room.Name(),
					MemberCount: e.room.MemberCount(),
				},
				created: e.room.CreatedAt(),
			})
		}
		e.mu.Unlock()
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].created.Equal(rows[j].created) {
			return rows[i].created.Before(rows[j].created)
		}
		return rows[i].ID < rows[j].ID
	})

	out := make([]Summary, len(rows))
	for i := range rows {
		out[i] = rows[i].Summary
	}
	return out
}

// Do runs fn against the room with the given id while holding its lock.
func (r *Registry) Do(id string, fn func(*room.Room)) error {
	e, ok := r.lookup(id)
	if !ok {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrRoomNotFound
	}
	fn(e.room)
	return nil
}

// ScheduleCleanup starts, or restarts, the countdown to deleting an empty
// room.
func (r *Registry) ScheduleCleanup(id string) {
	e, ok := r.lookup(id)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		r.scheduleCleanupLocked(e)
	}
}

// CancelCleanup stops a pending deletion.
func (r *Registry) CancelCleanup(id string) {
	e, ok := r.lookup(id)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r.cancelCleanupLocked(e)
}

func (r *Registry) scheduleCleanupLocked(e *entry) {
	if e.cleanup != nil {
		e.cleanup.Stop()
	}

	e.cleanupGen++
	gen := e.cleanupGen

	e.cleanup = r.clock.AfterFunc(r.cleanupDelay, func() {
		r.expire(e, gen)
	})

	r.log.WithFields(logrus.Fields{
		"room_id": e.room.ID(),
		"delay":   r.cleanupDelay,
	}).Info("room empty, cleanup scheduled")
}

func (r *Registry) cancelCleanupLocked(e *entry) {
	if e.cleanup == nil {
		return
	}

	e.cleanup.Stop()
	e.cleanup = nil
	e.cleanupGen++

	r.log.WithField("room_id", e.room.ID()).Info("cleanup cancelled")
}

// expire deletes the room if timer gen is still current and nobody came
// back in the meantime.
func (r *Registry) expire(e *entry, gen uint64) {
	e.mu.Lock()
	if e.closed || e.cleanupGen != gen || e.room.MemberCount() > 0 {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cleanup = nil
	e.mu.Unlock()

	r.remove(e)

	r.log.WithField("room_id", e.room.ID()).Info("room closed")
}

// Sweep deletes rooms that have no members, no pending cleanup and no
// activity within the idle timeout. It returns how many were removed.
func (r *Registry) Sweep() int {
	if r.idleTimeout <= 0 {
		return 0
	}

	cutoff := r.clock.Now().Add(-r.idleTimeout)
	removed := 0

	for _, e := range r.entries() {
		e.mu.Lock()
		idle := !e.closed &&
			e.cleanup == nil &&
			e.room.MemberCount() == 0 &&
			e.lastActive.Before(cutoff)
		if idle {
			e.closed = true
		}
		e.mu.Unlock()

		if idle {
			r.remove(e)
			removed++
			r.log.WithField("room_id", e.room.ID()).Info("idle room swept")
		}
	}

	return removed
}

// Close stops every pending cleanup timer.
func (r *Registry) Close() {
	for _, e := range r.entries() {
		e.mu.Lock()
		if e.cleanup != nil {
			e.cleanup.Stop()
			e.cleanup = nil
			e.cleanupGen++
		}
		e.mu.Unlock()
	}
}

func (e *entry) touch(now time.Time) {
	e.lastActive = now
}

// broadcastLocked sends every subscribed member its own projection.
func (e *entry) broadcastLocked() {
	for _, m := range e.room.Members() {
		sub, ok := e.subs[m.ConnID]
		if !ok {
			continue
		}
		sub.Deliver(RoomMessage{
			Type: TypeRoomUpdate,
			View: room.Project(e.room, m.ConnID),
		})
	}
}

// sendOthersLocked delivers msg unchanged to every subscriber but skip.
func (e *entry) sendOthersLocked(skip string, msg any) {
	for _, m := range e.room.Members() {
		if m.ConnID == skip {
			continue
		}
		if sub, ok := e.subs[m.ConnID]; ok {
			sub.Deliver(msg)
		}
	}
}
