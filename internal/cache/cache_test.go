package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoadsOnceWithinTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[[]string](time.Hour, func() time.Time { return now })

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"parquet", "loge"}, nil
	}

	v, err := c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, []string{"parquet", "loge"}, v)
	assert.Equal(t, 1, calls)

	now = now.Add(59 * time.Minute)
	v, err = c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, []string{"parquet", "loge"}, v)
	assert.Equal(t, 1, calls, "a live entry must not hit the loader")
}

func TestGetReloadsAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[int](time.Hour, func() time.Time { return now })

	calls := 0
	load := func() (int, error) { calls++; return calls, nil }

	v, err := c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Exactly at the expiry instant the entry counts as stale.
	now = now.Add(time.Hour)
	v, err = c.Get(load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestGetFailingLoadReturnsError(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[int](time.Minute, func() time.Time { return now })

	boom := errors.New("storage down")
	_, err := c.Get(func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	// A later successful load fills the slot as usual.
	v, err := c.Get(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestPutInstallsValue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[string](time.Hour, func() time.Time { return now })

	c.Put("warm")
	v, err := c.Get(func() (string, error) {
		t.Fatal("loader must not run while the entry is live")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "warm", v)
}
