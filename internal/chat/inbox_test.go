package chat

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/chatline/internal/store"
)

func newManager() *Manager {
	return NewManager(nil, zerolog.Nop(), nil)
}

func TestPrivateMessageUpdatesBothInboxes(t *testing.T) {
	m := newManager()

	m.onPrivateMessage("ana", "bob", "hi", 100)

	ana := m.GetInbox("ana")
	require.Len(t, ana, 1)
	require.Equal(t, "u:bob", ana[0].ThreadID)
	require.Equal(t, ThreadPrivate, ana[0].Kind)
	require.Equal(t, "hi", ana[0].LastBody)
	require.Equal(t, 0, ana[0].Unread) // own messages are read

	bob := m.GetInbox("bob")
	require.Len(t, bob, 1)
	require.Equal(t, "u:ana", bob[0].ThreadID)
	require.Equal(t, 1, bob[0].Unread)

	m.onPrivateMessage("ana", "bob", "there?", 200)
	bob = m.GetInbox("bob")
	require.Equal(t, 2, bob[0].Unread)
	require.Equal(t, "there?", bob[0].LastBody)
}

func TestGroupMessageUpdatesSubscribersOnly(t *testing.T) {
	m := newManager()
	require.True(t, m.CreateRoom("ana", "dev"))
	require.True(t, m.Subscribe("bob", "dev"))

	m.onGroupMessage("dev", "ana", "ship it", 100)

	require.Equal(t, 0, m.GetInbox("ana")[0].Unread) // sender stays read
	require.Equal(t, 1, m.GetInbox("bob")[0].Unread)
	require.Empty(t, m.GetInbox("carl"))

	require.Equal(t, "g:dev", m.GetInbox("bob")[0].ThreadID)
	require.Equal(t, ThreadGroup, m.GetInbox("bob")[0].Kind)
}

func TestInboxSortedNewestFirstWithAges(t *testing.T) {
	m := newManager()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.onPrivateMessage("ana", "bob", "old", now.Unix()-3600)
	m.onPrivateMessage("ana", "carl", "new", now.Unix()-120)

	ana := m.GetInbox("ana")
	require.Len(t, ana, 2)
	require.Equal(t, "u:carl", ana[0].ThreadID)
	require.Equal(t, "2m", ana[0].Age)
	require.Equal(t, "u:bob", ana[1].ThreadID)
	require.Equal(t, "1h", ana[1].Age)
}

func TestMarkReadAndUnreadTotal(t *testing.T) {
	m := newManager()

	m.onPrivateMessage("ana", "bob", "one", 100)
	m.onPrivateMessage("carl", "bob", "two", 200)
	m.onPrivateMessage("carl", "bob", "three", 300)

	require.Equal(t, 3, m.UnreadTotal("bob"))

	m.MarkRead("bob", "u:carl")
	require.Equal(t, 1, m.UnreadTotal("bob"))
	m.MarkRead("bob", "u:ana")
	require.Equal(t, 0, m.UnreadTotal("bob"))

	// Unknown threads are a no-op.
	m.MarkRead("bob", "u:nobody")
}

func TestDeleteThread(t *testing.T) {
	m := newManager()

	m.onPrivateMessage("ana", "bob", "hi", 100)
	require.True(t, m.DeleteThread("bob", "u:ana"))
	require.Empty(t, m.GetInbox("bob"))
	require.False(t, m.DeleteThread("bob", "u:ana"))

	// Ana's side is untouched.
	require.Len(t, m.GetInbox("ana"), 1)
}

func TestMutedSuppressesInboxSignal(t *testing.T) {
	m := newManager()
	bob := m.NewClient("id-bob", "bob", nil)
	m.clients[bob.ID] = bob
	m.clientsByName[bob.Name] = bob

	m.pushInboxSignal("bob")
	require.Len(t, bob.Send, 1)
	<-bob.Send

	m.SetMuted("bob", true)
	require.True(t, m.GetSettings("bob").Muted)
	m.pushInboxSignal("bob")
	require.Empty(t, bob.Send)

	m.SetMuted("bob", false)
	require.False(t, m.GetSettings("bob").Muted)
	m.pushInboxSignal("bob")
	require.Len(t, bob.Send, 1)
}

func TestHydrate(t *testing.T) {
	st := store.New()
	st.Initialize()
	require.Eventually(t, st.Ready, 5*time.Second, 10*time.Millisecond)
	defer st.Close()

	require.NoError(t, st.UpsertPreview("ana", store.Preview{
		ThreadID: "u:bob", Kind: "private", Title: "bob",
		LastBody: "persisted", LastTs: 100, Unread: 2,
	}))
	require.NoError(t, st.SetMuted("ana", true))

	m := NewManager(st, zerolog.Nop(), nil)
	// Live traffic before hydration wins over the persisted copy.
	m.onPrivateMessage("carl", "ana", "live", 200)

	require.NoError(t, m.Hydrate())

	ana := m.GetInbox("ana")
	require.Len(t, ana, 2)
	require.Equal(t, "u:carl", ana[0].ThreadID)
	require.Equal(t, "persisted", ana[1].LastBody)
	require.Equal(t, 2, ana[1].Unread)
	require.True(t, m.GetSettings("ana").Muted)
}
