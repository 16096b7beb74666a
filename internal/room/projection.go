/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

import (
	"math"
	"strconv"
	"strings"
)

// Hidden is shown in place of votes the viewer may not see yet.
const Hidden = "?"

// View is the snapshot of a room as seen by one connection.
type View struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AccessCode   string       `json:"access_code"`
	Members      []MemberView `json:"users"`
	Votes        []VoteView   `json:"votes"`
	Revealed     bool         `json:"revealed"`
	CurrentStory string       `json:"current_story"`
	Stats        *Stats       `json:"stats"`
	HostID       string       `json:"host_id,omitempty"`
	IsHost       bool         `json:"is_host"`
	VoterCount   int          `json:"voter_count"`
	VotedCount   int          `json:"voted_count"`
}

type MemberView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsObserver bool   `json:"is_observer"`
	IsHost     bool   `json:"is_host"`
	Status     Status `json:"status"`
}

type VoteView struct {
	UserID    string `json:"user_id"`
	Value     string `json:"value"`
	HasVoted  bool   `json:"has_voted"`
	IsOwnVote bool   `json:"is_own_vote"`
}

// Stats summarises revealed votes. Avg is rounded to one decimal place.
type Stats struct {
	Avg          string         `json:"avg"`
	Min          float64        `json:"min"`
	Max          float64        `json:"max"`
	Count        int            `json:"count"`
	Distribution map[string]int `json:"distribution"`
}

// Project renders r for viewer. Other members' votes stay masked until the
// room is revealed; the viewer always sees their own.
func Project(r *Room, viewer string) View {
	v := View{
		ID:           r.id,
		Name:         r.name,
		AccessCode:   r.accessCode,
		Members:      make([]MemberView, 0, len(r.order)),
		Votes:        make([]VoteView, 0, len(r.votes)),
		Revealed:     r.revealed,
		CurrentStory: r.story,
		HostID:       r.hostID,
		IsHost:       viewer != "" && viewer == r.hostID,
	}

	for _, id := range r.order {
		m := r.members[id]

		v.Members = append(v.Members, MemberView{
			ID:         m.ConnID,
			Name:       m.Name,
			IsObserver: m.IsObserver,
			IsHost:     m.ConnID == r.hostID,
			Status:     m.Status,
		})
		if !m.IsObserver {
			v.VoterCount++
		}

		value, ok := r.votes[id]
		if !ok {
			continue
		}

		own := id == viewer
		if !r.revealed && !own {
			value = Hidden
		}
		v.Votes = append(v.Votes, VoteView{
			UserID:    id,
			Value:     value,
			HasVoted:  true,
			IsOwnVote: own,
		})
	}
	v.VotedCount = len(v.Votes)

	if r.revealed {
		v.Stats = computeStats(r.votesInOrder())
	}

	return v
}

func (r *Room) votesInOrder() []string {
	out := make([]string, 0, len(r.votes))
	for _, id := range r.order {
		if value, ok := r.votes[id]; ok {
			out = append(out, value)
		}
	}
	return out
}

// parseNumeric accepts finite decimal numbers such as "3", "0.5" or " 8 ".
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// computeStats returns nil when no vote is numeric. The distribution counts
// every vote, numeric or not.
func computeStats(votes []string) *Stats {
	var (
		sum      float64
		min, max float64
		count    int
	)

	for _, value := range votes {
		f, ok := parseNumeric(value)
		if !ok {
			continue
		}
		if count == 0 || f < min {
			min = f
		}
		if count == 0 || f > max {
			max = f
		}
		sum += f
		count++
	}

	if count == 0 {
		return nil
	}

	dist := make(map[string]int, len(votes))
	for _, value := range votes {
		dist[value]++
	}

	return &Stats{
		Avg:          formatAverage(sum / float64(count)),
		Min:          min,
		Max:          max,
		Count:        count,
		Distribution: dist,
	}
}

// formatAverage renders avg to one decimal, rounding ties away from zero.
func formatAverage(avg float64) string {
	return strconv.FormatFloat(math.Round(avg*10)/10, 'f', 1, 64)
}
