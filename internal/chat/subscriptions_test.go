package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRoom(t *testing.T) {
	require.Equal(t, "dev", normalizeRoom("  dev "))
	require.Equal(t, "a/b", normalizeRoom("/a//b"))
	require.Equal(t, "", normalizeRoom("   "))
	require.Equal(t, "", normalizeRoom("/"))
}

func TestCreateRoom(t *testing.T) {
	m := newManager()

	require.True(t, m.CreateRoom("ana", "dev"))
	require.False(t, m.CreateRoom("bob", "dev"))    // already exists
	require.False(t, m.CreateRoom("bob", "  /dev")) // same room after normalization
	require.False(t, m.CreateRoom("bob", " "))

	rooms := m.ListRooms("ana")
	require.Len(t, rooms, 2) // dev + default general
	require.Equal(t, "dev", rooms[0].Room)
	require.True(t, rooms[0].IsOwner)
	require.True(t, rooms[0].Subscribed) // creator is auto-subscribed
	require.Equal(t, "general", rooms[1].Room)
	require.False(t, rooms[1].IsOwner)
}

func TestDeleteRoomRules(t *testing.T) {
	m := newManager()
	require.True(t, m.CreateRoom("ana", "dev"))
	require.True(t, m.Subscribe("bob", "dev"))
	m.onGroupMessage("dev", "ana", "hello", 100)

	ok, reason := m.DeleteRoom("bob", "dev")
	require.False(t, ok)
	require.Equal(t, "not_owner", reason)

	ok, reason = m.DeleteRoom("ana", "nope")
	require.False(t, ok)
	require.Equal(t, "not_found", reason)

	ok, reason = m.DeleteRoom("ana", " ")
	require.False(t, ok)
	require.Equal(t, "invalid_room", reason)

	// The default room has no owner and can't be deleted.
	ok, reason = m.DeleteRoom("ana", "general")
	require.False(t, ok)
	require.Equal(t, "no_owner", reason)

	// Owner match is case-insensitive.
	ok, reason = m.DeleteRoom("ANA", "dev")
	require.True(t, ok)
	require.Empty(t, reason)

	// Subscriptions and previews are gone.
	require.Empty(t, m.GetInbox("bob"))
	rooms := m.ListRooms("bob")
	require.Len(t, rooms, 1)
	require.Equal(t, "general", rooms[0].Room)
}

func TestSubscribeRules(t *testing.T) {
	m := newManager()

	require.False(t, m.Subscribe("bob", "nope")) // unknown room
	require.False(t, m.Subscribe("bob", " "))

	require.True(t, m.CreateRoom("ana", "dev"))
	require.True(t, m.Subscribe("bob", "dev"))
	require.True(t, m.ListRooms("bob")[0].Subscribed)
}

func TestUnsubscribeRules(t *testing.T) {
	m := newManager()
	require.True(t, m.CreateRoom("ana", "dev"))
	require.True(t, m.Subscribe("bob", "dev"))
	m.onGroupMessage("dev", "ana", "hello", 100)
	require.Len(t, m.GetInbox("bob"), 1)

	// Owners can't unsubscribe from their own room.
	require.False(t, m.Unsubscribe("ana", "dev"))

	require.True(t, m.Unsubscribe("bob", "dev"))
	require.False(t, m.ListRooms("bob")[0].Subscribed)
	require.Empty(t, m.GetInbox("bob"))

	// Unsubscribed users no longer receive group updates.
	m.onGroupMessage("dev", "ana", "again", 200)
	require.Empty(t, m.GetInbox("bob"))
}
