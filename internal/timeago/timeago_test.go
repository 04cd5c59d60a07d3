package timeago_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/chatline/internal/timeago"
)

func TestFormat(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "now"},
		{4 * time.Second, "now"},
		{4900 * time.Millisecond, "now"},
		{5 * time.Second, "5s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m"},
		{119 * time.Second, "1m"},
		{120 * time.Second, "2m"},
		{3599 * time.Second, "59m"},
		{3600 * time.Second, "1h"},
		{2 * time.Hour, "2h"},
		{86399 * time.Second, "23h"},
		{86400 * time.Second, "1d"},
		{3 * 24 * time.Hour, "3d"},
		{604799 * time.Second, "6d"},
		{604800 * time.Second, "1w"},
		{2591999 * time.Second, "4w"},
		{2592000 * time.Second, "1mo"},
		{11 * 2592000 * time.Second, "11mo"},
		{31535999 * time.Second, "12mo"},
		{31536000 * time.Second, "1y"},
		{3 * 31536000 * time.Second, "3y"},
	}

	for _, c := range cases {
		got := timeago.Format(now.Add(-c.elapsed), now)
		require.Equal(t, c.want, got, "elapsed %s", c.elapsed)
	}
}
