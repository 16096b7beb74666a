/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package room

// Connection ids change every time a browser reconnects, so a person is
// recognised by display name. The helpers below keep one member per name
// and let the original host get the role back under a new connection.

// evictNamesake removes any other member already using name. Its vote, if
// any, moves to connID, and if it held host the role moves too.
func (r *Room) evictNamesake(connID, name string) string {
	var old string
	for _, id := range r.order {
		if id != connID && r.members[id].Name == name {
			old = id
			break
		}
	}
	if old == "" {
		return ""
	}

	vote, voted := r.votes[old]
	wasHost := r.hostID == old

	r.drop(old)

	if voted {
		r.votes[connID] = vote
	}
	if wasHost {
		r.hostID = connID
	}

	return old
}

// assignHost applies the host policy for a member that just joined.
func (r *Room) assignHost(connID, name string) {
	switch {
	case r.originalHost == "":
		r.originalHost = name
		r.hostID = connID
	case name == r.originalHost:
		r.hostID = connID
	case r.hostID == "" && len(r.order) == 1:
		r.hostID = connID
	}
}

// Rename changes the display name of connID. A host that holds the role
// under the original host name carries that claim over to the new name.
func (r *Room) Rename(connID, name string) bool {
	m, ok := r.members[connID]
	if !ok {
		return false
	}

	if r.hostID == connID && m.Name == r.originalHost {
		r.originalHost = name
	}
	m.Name = name

	return true
}
