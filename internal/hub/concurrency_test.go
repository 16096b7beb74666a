/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package hub

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/pokerbox/internal/room"
)

func assertRoomConsistent(t *testing.T, r *room.Room) {
	t.Helper()

	for id := range r.Votes() {
		assert.True(t, r.IsMember(id), "vote from non-member %s", id)
	}
	if host := r.HostID(); host != "" {
		assert.True(t, r.IsMember(host), "host %s is not a member", host)
	}
}

func TestConcurrentSessions(t *testing.T) {
	reg := NewRegistry(WithCleanupDelay(time.Hour))
	t.Cleanup(reg.Close)

	id, code, err := reg.Create("busy")
	require.NoError(t, err)

	const (
		workers = 8
		rounds  = 50
	)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Pairs of workers share a name so namesake eviction races too.
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()

			s := reg.NewSession(newRecorder(fmt.Sprintf("conn-%d", w)))
			name := fmt.Sprintf("player-%d", w%(workers/2))

			for i := 0; i < rounds; i++ {
				_ = s.Join(id, name, code)
				s.Vote(fmt.Sprint(i % 8))
				_ = s.Reveal()
				_ = s.SetStory(fmt.Sprintf("story %d", i))
				s.UpdateStatus(string(room.StatusCoffee))
				s.SendEmoji("🎉")
				s.ClearVote()
				_ = s.Reset()
				if i%5 == 0 {
					s.Leave()
				}
			}

			s.Close()
		}()
	}

	var checker sync.WaitGroup
	checker.Add(1)
	go func() {
		defer checker.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = reg.Do(id, func(r *room.Room) {
				assertRoomConsistent(t, r)
			})
		}
	}()

	wg.Wait()
	close(stop)
	checker.Wait()

	err = reg.Do(id, func(r *room.Room) {
		assertRoomConsistent(t, r)
		assert.Zero(t, r.MemberCount())
		assert.Empty(t, r.HostID())
		assert.Empty(t, r.Votes())
	})
	assert.NoError(t, err)
}

func TestJoinRacesCleanup(t *testing.T) {
	reg := NewRegistry(WithCleanupDelay(time.Millisecond))
	t.Cleanup(reg.Close)

	joined, missed := 0, 0

	for i := 0; i < 100; i++ {
		id, code, err := reg.Create("flaky")
		require.NoError(t, err)

		first := reg.NewSession(newRecorder("first"))
		require.NoError(t, first.Join(id, "alice", code))
		first.Close()

		time.Sleep(time.Duration(i%4) * 400 * time.Microsecond)

		second := reg.NewSession(newRecorder("second"))
		err = second.Join(id, "alice", code)

		// Give any timer still in flight a chance to fire.
		time.Sleep(3 * time.Millisecond)

		switch {
		case err == nil:
			joined++

			e, ok := reg.lookup(id)
			require.True(t, ok, "joined room %s was deleted", id)

			e.mu.Lock()
			assert.False(t, e.closed)
			assert.True(t, e.room.IsMember("second"))
			e.mu.Unlock()

			second.Close()
		case errors.Is(err, ErrRoomNotFound):
			missed++

			_, ok := reg.lookup(id)
			assert.False(t, ok, "closed room %s still registered", id)
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}

	assert.Equal(t, 100, joined+missed)
}
