/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room_test

import (
	"testing"

	"github.com/Seednode/pokerbox/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voteOf(v room.View, connID string) (room.VoteView, bool) {
	for _, vote := range v.Votes {
		if vote.UserID == connID {
			return vote, true
		}
	}
	return room.VoteView{}, false
}

func TestProjectMasking(t *testing.T) {
	r := newRoom()
	r.AddMember("a", "alice")
	r.AddMember("b", "bob")
	r.CastVote("a", "3")
	r.CastVote("b", "8")

	va := room.Project(r, "a")
	vb := room.Project(r, "b")

	own, _ := voteOf(va, "a")
	other, _ := voteOf(va, "b")
	assert.Equal(t, "3", own.Value)
	assert.True(t, own.IsOwnVote)
	assert.Equal(t, room.Hidden, other.Value)
	assert.False(t, other.IsOwnVote)
	assert.True(t, other.HasVoted)

	own, _ = voteOf(vb, "b")
	other, _ = voteOf(vb, "a")
	assert.Equal(t, "8", own.Value)
	assert.Equal(t, room.Hidden, other.Value)

	assert.Nil(t, va.Stats)
	assert.False(t, va.Revealed)
}

func TestProjectRevealed(t *testing.T) {
	r := newRoom()
	r.AddMember("a", "alice")
	r.AddMember("b", "bob")
	r.CastVote("a", "3")
	r.CastVote("b", "8")
	r.Reveal()

	v := room.Project(r, "a")

	other, _ := voteOf(v, "b")
	assert.Equal(t, "8", other.Value)
	require.NotNil(t, v.Stats)
}

func TestProjectOutsider(t *testing.T) {
	r := newRoom()
	r.AddMember("a", "alice")
	r.CastVote("a", "3")

	v := room.Project(r, "")

	vote, _ := voteOf(v, "a")
	assert.Equal(t, room.Hidden, vote.Value)
	assert.False(t, v.IsHost)
}

func TestProjectHostFlags(t *testing.T) {
	r := newRoom()
	r.AddMember("a", "alice")
	r.AddMember("b", "bob")

	va := room.Project(r, "a")
	vb := room.Project(r, "b")

	assert.True(t, va.IsHost)
	assert.False(t, vb.IsHost)
	assert.Equal(t, "a", vb.HostID)

	require.Len(t, vb.Members, 2)
	assert.True(t, vb.Members[0].IsHost)
	assert.False(t, vb.Members[1].IsHost)
	assert.Equal(t, room.StatusActive, vb.Members[1].Status)
}

func TestProjectCounts(t *testing.T) {
	r := newRoom()
	r.AddMember("a", "alice")
	r.AddMember("b", "bob")
	r.AddMember("c", "carol")
	r.CastVote("b", "5")

	v := room.Project(r, "a")

	assert.Equal(t, 3, v.VoterCount)
	assert.Equal(t, 1, v.VotedCount)
}

func TestProjectVoteOrderFollowsJoinOrder(t *testing.T) {
	r := newRoom()
	r.AddMember("z", "zed")
	r.AddMember("a", "amy")
	r.AddMember("m", "max")
	r.CastVote("m", "1")
	r.CastVote("z", "2")
	r.CastVote("a", "3")

	v := room.Project(r, "z")

	require.Len(t, v.Votes, 3)
	assert.Equal(t, "z", v.Votes[0].UserID)
	assert.Equal(t, "a", v.Votes[1].UserID)
	assert.Equal(t, "m", v.Votes[2].UserID)
}

func TestProjectStats(t *testing.T) {
	r := newRoom()
	for _, id := range []string{"a", "b", "c", "d"} {
		r.AddMember(id, "user-"+id)
	}
	r.CastVote("a", "3")
	r.CastVote("b", "5")
	r.CastVote("c", "5")
	r.CastVote("d", "?")
	r.Reveal()

	s := room.Project(r, "a").Stats

	require.NotNil(t, s)
	assert.Equal(t, "4.3", s.Avg)
	assert.Equal(t, 3.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, map[string]int{"3": 1, "5": 2, "?": 1}, s.Distribution)
}

func TestProjectStatsEdgeCases(t *testing.T) {
	t.Run("no numeric votes", func(t *testing.T) {
		r := newRoom()
		r.AddMember("a", "alice")
		r.AddMember("b", "bob")
		r.CastVote("a", "?")
		r.CastVote("b", "XL")
		r.Reveal()

		assert.Nil(t, room.Project(r, "a").Stats)
	})

	t.Run("no votes at all", func(t *testing.T) {
		r := newRoom()
		r.AddMember("a", "alice")
		r.Reveal()

		assert.Nil(t, room.Project(r, "a").Stats)
	})

	t.Run("fractional and non-finite values", func(t *testing.T) {
		r := newRoom()
		r.AddMember("a", "alice")
		r.AddMember("b", "bob")
		r.AddMember("c", "carol")
		r.AddMember("d", "dave")
		r.CastVote("a", "0.5")
		r.CastVote("b", "13")
		r.CastVote("c", "2")
		r.CastVote("d", "NaN")
		r.Reveal()

		s := room.Project(r, "a").Stats

		require.NotNil(t, s)
		assert.Equal(t, 3, s.Count)
		assert.Equal(t, "5.2", s.Avg)
		assert.Equal(t, 0.5, s.Min)
		assert.Equal(t, 13.0, s.Max)
		assert.Equal(t, 1, s.Distribution["NaN"])
	})

	t.Run("average ties round up", func(t *testing.T) {
		for want, votes := range map[string][]string{
			"1.3": {"1", "1", "1", "2"},
			"0.3": {"0", "0.5"},
			"3.3": {"0", "0", "0", "13"},
		} {
			r := newRoom()
			for i, v := range votes {
				id := string(rune('a' + i))
				r.AddMember(id, "member-"+id)
				r.CastVote(id, v)
			}
			r.Reveal()

			s := room.Project(r, "a").Stats

			require.NotNil(t, s)
			assert.Equal(t, want, s.Avg, "votes %v", votes)
		}
	})
}
