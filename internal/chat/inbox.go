package chat

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/pelusa-v/chatline/internal/store"
	"github.com/pelusa-v/chatline/internal/timeago"
)

// ensureInbox makes sure a user's inbox map exists. Callers hold m.mu.
func (m *Manager) ensureInbox(nick string) {
	if _, ok := m.inbox[nick]; !ok {
		m.inbox[nick] = map[string]*ThreadPreview{}
	}
}

// GetInbox returns a user's thread previews sorted newest first, with the
// relative age of each last message filled in.
func (m *Manager) GetInbox(nick string) []*ThreadPreview {
	now := m.now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*ThreadPreview, 0, len(m.inbox[nick]))
	for _, p := range m.inbox[nick] {
		cp := *p
		cp.Age = timeago.Format(time.Unix(cp.LastTs, 0), now)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LastTs > list[j].LastTs })
	return list
}

// UnreadTotal returns the total unread count across a user's threads; the
// number shown on the inbox tab badge.
func (m *Manager) UnreadTotal(nick string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, p := range m.inbox[nick] {
		total += p.Unread
	}
	return total
}

// MarkRead zeroes the unread counter of one thread.
func (m *Manager) MarkRead(nick, threadID string) {
	m.mu.Lock()
	m.ensureInbox(nick)
	p, ok := m.inbox[nick][threadID]
	if ok {
		p.Unread = 0
	}
	m.mu.Unlock()
	if ok && m.st != nil {
		go func() {
			if err := m.st.MarkRead(nick, threadID); err != nil && !errors.Is(err, store.ErrNotReady) {
				m.log.Warn().Err(err).Str("nick", nick).Msg("persist mark read")
			}
		}()
	}
}

// DeleteThread removes one thread from a user's inbox. Reports whether
// the thread existed.
func (m *Manager) DeleteThread(nick, threadID string) bool {
	m.mu.Lock()
	m.ensureInbox(nick)
	_, ok := m.inbox[nick][threadID]
	delete(m.inbox[nick], threadID)
	m.mu.Unlock()
	if ok && m.st != nil {
		go func() {
			if err := m.st.DeletePreview(nick, threadID); err != nil && !errors.Is(err, store.ErrNotReady) {
				m.log.Warn().Err(err).Str("nick", nick).Msg("persist thread delete")
			}
		}()
	}
	return ok
}

// SetMuted flips a user's inbox mute toggle. Muted users keep accruing
// unread counts but receive no inbox_update pushes.
func (m *Manager) SetMuted(nick string, muted bool) {
	m.mu.Lock()
	m.muted[nick] = muted
	m.mu.Unlock()
	if m.st != nil {
		go func() {
			if err := m.st.SetMuted(nick, muted); err != nil && !errors.Is(err, store.ErrNotReady) {
				m.log.Warn().Err(err).Str("nick", nick).Msg("persist mute toggle")
			}
		}()
	}
}

// GetSettings returns a user's inbox settings.
func (m *Manager) GetSettings(nick string) Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Settings{Muted: m.muted[nick]}
}

// Hydrate loads persisted previews and settings into the in-memory inbox.
// Called once, after the readiness gate opens. Threads already updated by
// live traffic win over their persisted copies.
func (m *Manager) Hydrate() error {
	if m.st == nil {
		return nil
	}
	all, err := m.st.AllPreviews()
	if err != nil {
		return err
	}
	muted, err := m.st.Muted()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	loaded := 0
	for nick, previews := range all {
		m.ensureInbox(nick)
		for _, p := range previews {
			if _, ok := m.inbox[nick][p.ThreadID]; ok {
				continue
			}
			m.inbox[nick][p.ThreadID] = &ThreadPreview{
				ThreadID: p.ThreadID,
				Kind:     ThreadKind(p.Kind),
				Title:    p.Title,
				LastBody: p.LastBody,
				LastTs:   p.LastTs,
				Unread:   p.Unread,
			}
			loaded++
		}
	}
	for nick := range muted {
		m.muted[nick] = true
	}
	m.log.Info().Int("threads", loaded).Msg("inbox hydrated")
	return nil
}

// pushInboxSignal nudges an online, unmuted user to refresh their inbox.
func (m *Manager) pushInboxSignal(nick string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.muted[nick] {
		return
	}
	if c, ok := m.clientsByName[nick]; ok && c != nil {
		b, _ := json.Marshal(&InboxSignal{Kind: "inbox_update"})
		select {
		case c.Send <- b:
		default:
		}
	}
}

// persistPreview writes one preview through to the chat database,
// best-effort. A store that is still initializing is not an error.
func (m *Manager) persistPreview(nick string, p ThreadPreview) {
	if m.st == nil {
		return
	}
	err := m.st.UpsertPreview(nick, store.Preview{
		ThreadID: p.ThreadID,
		Kind:     string(p.Kind),
		Title:    p.Title,
		LastBody: p.LastBody,
		LastTs:   p.LastTs,
		Unread:   p.Unread,
	})
	if err != nil && !errors.Is(err, store.ErrNotReady) {
		m.log.Warn().Err(err).Str("nick", nick).Str("thread", p.ThreadID).Msg("persist preview")
	}
}

// onPrivateMessage updates both participants' inboxes.
func (m *Manager) onPrivateMessage(fromNick, toNick, body string, ts int64) {
	m.mu.Lock()
	m.ensureInbox(fromNick)
	m.ensureInbox(toNick)

	sent := &ThreadPreview{
		ThreadID: "u:" + toNick, Kind: ThreadPrivate, Title: toNick,
		LastBody: body, LastTs: ts, Unread: 0,
	}
	m.inbox[fromNick][sent.ThreadID] = sent

	var received ThreadPreview
	if prev, ok := m.inbox[toNick]["u:"+fromNick]; ok {
		prev.LastBody, prev.LastTs = body, ts
		prev.Unread += 1
		received = *prev
	} else {
		p := &ThreadPreview{
			ThreadID: "u:" + fromNick, Kind: ThreadPrivate, Title: fromNick,
			LastBody: body, LastTs: ts, Unread: 1,
		}
		m.inbox[toNick][p.ThreadID] = p
		received = *p
	}
	sentCopy := *sent
	m.mu.Unlock()

	go m.persistPreview(fromNick, sentCopy)
	go m.persistPreview(toNick, received)
	go m.pushInboxSignal(fromNick)
	go m.pushInboxSignal(toNick)
}

// onGroupMessage updates the inbox of every subscriber of the room.
func (m *Manager) onGroupMessage(room, fromNick, body string, ts int64) {
	m.mu.Lock()

	r := normalizeRoom(room)
	if r == "" {
		m.mu.Unlock()
		return
	}
	m.rooms[r] = true

	users := m.subs.RoomUsers[r]
	if users == nil {
		m.mu.Unlock()
		return
	}

	key := "g:" + r
	updated := make(map[string]ThreadPreview, len(users))
	for nick := range users {
		m.ensureInbox(nick)
		unread := 0
		if nick != fromNick {
			unread = 1
		}
		if prev, ok := m.inbox[nick][key]; ok {
			prev.LastBody, prev.LastTs = body, ts
			prev.Unread += unread
			updated[nick] = *prev
		} else {
			p := &ThreadPreview{
				ThreadID: key, Kind: ThreadGroup, Title: r,
				LastBody: body, LastTs: ts, Unread: unread,
			}
			m.inbox[nick][key] = p
			updated[nick] = *p
		}
	}
	m.mu.Unlock()

	for nick, p := range updated {
		go m.persistPreview(nick, p)
		go m.pushInboxSignal(nick)
	}
}
