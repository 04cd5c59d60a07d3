package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/chatline/internal/store"
)

func newReady(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	s.Initialize()
	require.Eventually(t, s.Ready, 5*time.Second, 10*time.Millisecond)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNotReady(t *testing.T) {
	s := store.New()
	require.False(t, s.Ready())

	_, err := s.Previews("ana")
	require.ErrorIs(t, err, store.ErrNotReady)
	err = s.UpsertPreview("ana", store.Preview{ThreadID: "u:bob"})
	require.ErrorIs(t, err, store.ErrNotReady)
}

func TestInitializeIdempotent(t *testing.T) {
	s := store.New()
	s.Initialize()
	s.Initialize()
	s.Initialize()
	require.Eventually(t, s.Ready, 5*time.Second, 10*time.Millisecond)
	defer s.Close()

	require.NoError(t, s.UpsertPreview("ana", store.Preview{ThreadID: "u:bob", Kind: "private", Title: "bob"}))
}

func TestPreviewRoundTrip(t *testing.T) {
	s := newReady(t)

	require.NoError(t, s.UpsertPreview("ana", store.Preview{
		ThreadID: "u:bob", Kind: "private", Title: "bob",
		LastBody: "hi", LastTs: 100, Unread: 2,
	}))
	require.NoError(t, s.UpsertPreview("ana", store.Preview{
		ThreadID: "g:general", Kind: "group", Title: "general",
		LastBody: "yo", LastTs: 200, Unread: 0,
	}))

	got, err := s.Previews("ana")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	require.Equal(t, "g:general", got[0].ThreadID)
	require.Equal(t, "u:bob", got[1].ThreadID)
	require.Equal(t, 2, got[1].Unread)

	// Upsert replaces, never duplicates.
	require.NoError(t, s.UpsertPreview("ana", store.Preview{
		ThreadID: "u:bob", Kind: "private", Title: "bob",
		LastBody: "again", LastTs: 300, Unread: 3,
	}))
	got, err = s.Previews("ana")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "u:bob", got[0].ThreadID)
	require.Equal(t, "again", got[0].LastBody)
}

func TestMarkReadAndDelete(t *testing.T) {
	s := newReady(t)

	require.NoError(t, s.UpsertPreview("ana", store.Preview{
		ThreadID: "u:bob", Kind: "private", Title: "bob", LastTs: 1, Unread: 5,
	}))

	require.NoError(t, s.MarkRead("ana", "u:bob"))
	got, err := s.Previews("ana")
	require.NoError(t, err)
	require.Equal(t, 0, got[0].Unread)

	require.NoError(t, s.DeletePreview("ana", "u:bob"))
	got, err = s.Previews("ana")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAllPreviews(t *testing.T) {
	s := newReady(t)

	require.NoError(t, s.UpsertPreview("ana", store.Preview{ThreadID: "u:bob", Kind: "private", Title: "bob", LastTs: 1}))
	require.NoError(t, s.UpsertPreview("bob", store.Preview{ThreadID: "u:ana", Kind: "private", Title: "ana", LastTs: 1}))
	require.NoError(t, s.UpsertPreview("bob", store.Preview{ThreadID: "g:general", Kind: "group", Title: "general", LastTs: 2}))

	all, err := s.AllPreviews()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Len(t, all["ana"], 1)
	require.Len(t, all["bob"], 2)
}

func TestMutedSettings(t *testing.T) {
	s := newReady(t)

	muted, err := s.Muted()
	require.NoError(t, err)
	require.Empty(t, muted)

	require.NoError(t, s.SetMuted("ana", true))
	require.NoError(t, s.SetMuted("bob", false))
	muted, err = s.Muted()
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"ana": true}, muted)

	require.NoError(t, s.SetMuted("ana", false))
	muted, err = s.Muted()
	require.NoError(t, err)
	require.Empty(t, muted)
}
