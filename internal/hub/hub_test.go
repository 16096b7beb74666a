/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package hub

import (
	"sync"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock hands out timers that only fire when told to.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires timers whose deadline passed.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.fired {
			continue
		}
		t.d -= d
		if t.d <= 0 {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recorder is a Subscriber that keeps everything it is sent.
type recorder struct {
	id string

	mu   sync.Mutex
	msgs []any
}

func newRecorder(id string) *recorder {
	return &recorder{id: id}
}

func (r *recorder) ConnID() string { return r.id }

func (r *recorder) Deliver(msg any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.msgs...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

// lastRoom returns the most recent projection delivered.
func (r *recorder) lastRoom() (RoomMessage, bool) {
	msgs := r.all()
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(RoomMessage); ok {
			return m, true
		}
	}
	return RoomMessage{}, false
}

func (r *recorder) errors() []ErrorMessage {
	var out []ErrorMessage
	for _, m := range r.all() {
		if e, ok := m.(ErrorMessage); ok {
			out = append(out, e)
		}
	}
	return out
}

func ofType[T any](r *recorder) []T {
	var out []T
	for _, m := range r.all() {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func newTestRegistry(opts ...Option) (*Registry, *fakeClock) {
	clk := newFakeClock()
	reg := NewRegistry(append([]Option{withClock(clk)}, opts...)...)
	return reg, clk
}

// connect creates a subscriber and session joined to roomID.
func connect(reg *Registry, connID, roomID, name, code string) (*Session, *recorder, error) {
	rec := newRecorder(connID)
	s := reg.NewSession(rec)
	err := s.Join(roomID, name, code)
	return s, rec, err
}
