package chat

import (
	"path"
	"sort"
	"strings"
)

// Subscriptions holds both directions of the room membership relation.
type Subscriptions struct {
	UserRooms map[string]map[string]bool // nick -> set(room)
	RoomUsers map[string]map[string]bool // room -> set(nick)
}

// normalizeRoom trims whitespace, collapses slashes and strips the
// leading one, so "  /a//b " and "a/b" name the same room.
func normalizeRoom(room string) string {
	r := strings.TrimSpace(room)
	if r == "" {
		return ""
	}
	r = path.Clean("/" + r)
	return strings.TrimPrefix(r, "/")
}

// CreateRoom creates a room owned by owner and subscribes the owner to
// it. Reports false if the name is invalid or the room already exists.
func (m *Manager) CreateRoom(owner, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := normalizeRoom(room)
	if r == "" || m.rooms[r] {
		return false
	}
	m.rooms[r] = true
	m.roomOwner[r] = owner
	m.subscribeLocked(owner, r)
	return true
}

// subscribeLocked records the membership in both directions. Callers hold
// m.mu.
func (m *Manager) subscribeLocked(nick, room string) {
	if _, ok := m.subs.UserRooms[nick]; !ok {
		m.subs.UserRooms[nick] = map[string]bool{}
	}
	m.subs.UserRooms[nick][room] = true

	if _, ok := m.subs.RoomUsers[room]; !ok {
		m.subs.RoomUsers[room] = map[string]bool{}
	}
	m.subs.RoomUsers[room][nick] = true
}

// DeleteRoom removes a room, all of its subscriptions and every
// subscriber's preview of it. Only the owner may delete; the failure
// reason is one of "invalid_room", "not_found", "no_owner", "not_owner".
func (m *Manager) DeleteRoom(owner, room string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := normalizeRoom(room)
	if r == "" {
		return false, "invalid_room"
	}
	if !m.rooms[r] {
		return false, "not_found"
	}
	realOwner := m.roomOwner[r]
	if realOwner == "" {
		return false, "no_owner"
	}
	if !strings.EqualFold(realOwner, owner) {
		return false, "not_owner"
	}

	affected := make([]string, 0, len(m.subs.RoomUsers[r]))
	for nick := range m.subs.RoomUsers[r] {
		if ur, ok := m.subs.UserRooms[nick]; ok {
			delete(ur, r)
			if len(ur) == 0 {
				delete(m.subs.UserRooms, nick)
			}
		}
		if ib, ok := m.inbox[nick]; ok {
			delete(ib, "g:"+r)
		}
		affected = append(affected, nick)
	}
	delete(m.subs.RoomUsers, r)
	delete(m.rooms, r)
	delete(m.roomOwner, r)

	if m.st != nil {
		go func() {
			for _, nick := range affected {
				_ = m.st.DeletePreview(nick, "g:"+r)
			}
		}()
	}
	return true, ""
}

// Subscribe adds nick to an existing room. Reports false for invalid or
// unknown rooms.
func (m *Manager) Subscribe(nick, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := normalizeRoom(room)
	if r == "" || !m.rooms[r] {
		return false
	}
	m.subscribeLocked(nick, r)
	return true
}

// Unsubscribe removes nick from a room and drops the room's preview from
// their inbox. Owners can't unsubscribe from their own room, only delete
// it.
func (m *Manager) Unsubscribe(nick, room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := normalizeRoom(room)
	if r == "" {
		return false
	}
	if m.roomOwner[r] == nick {
		return false
	}

	if ur, ok := m.subs.UserRooms[nick]; ok {
		delete(ur, r)
		if len(ur) == 0 {
			delete(m.subs.UserRooms, nick)
		}
	}
	if ru, ok := m.subs.RoomUsers[r]; ok {
		delete(ru, nick)
	}

	m.ensureInbox(nick)
	delete(m.inbox[nick], "g:"+r)
	if m.st != nil {
		go func() { _ = m.st.DeletePreview(nick, "g:"+r) }()
	}
	return true
}

// ListRooms returns the room directory with nick's subscription status,
// sorted by room name.
func (m *Manager) ListRooms(nick string) []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]RoomInfo, 0, len(m.rooms))
	for room := range m.rooms {
		owner := m.roomOwner[room]
		res = append(res, RoomInfo{
			Room:       room,
			Subscribed: m.subs.UserRooms[nick][room],
			Owner:      owner,
			IsOwner:    owner != "" && owner == nick,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Room < res[j].Room })
	return res
}
