package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/James2022-rgb/gpmf-tools/internal/gps9"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_MissThenPutThenGet(t *testing.T) {
	s := openTestStore(t)
	key := Key{Path: "/videos/a.mp4", Size: 1024, MTime: time.Unix(1_700_000_000, 0)}

	_, err := s.Get(key)
	require.ErrorIs(t, err, ErrCacheMiss)

	fixes := []gps9.Fix{
		{Fix: 3, Latitude: 33.4055, Longitude: -118.2943},
		{Fix: 3, Latitude: 33.4056, Longitude: -118.2944},
	}
	require.NoError(t, s.Put(key, fixes))

	got, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, fixes, got)
}

func TestStore_DifferentKeyIsSeparateEntry(t *testing.T) {
	s := openTestStore(t)
	key1 := Key{Path: "/videos/a.mp4", Size: 1024, MTime: time.Unix(1_700_000_000, 0)}
	key2 := Key{Path: "/videos/a.mp4", Size: 2048, MTime: time.Unix(1_700_000_000, 0)} // size changed

	require.NoError(t, s.Put(key1, []gps9.Fix{{Fix: 3, Latitude: 1}}))

	_, err := s.Get(key2)
	require.ErrorIs(t, err, ErrCacheMiss)

	stat, err := s.Stat()
	require.NoError(t, err)
	require.Equal(t, 1, stat.Entries)
}

func TestStore_PutOverwritesSameKey(t *testing.T) {
	s := openTestStore(t)
	key := Key{Path: "/videos/a.mp4", Size: 1024, MTime: time.Unix(1_700_000_000, 0)}

	require.NoError(t, s.Put(key, []gps9.Fix{{Fix: 3, Latitude: 1}}))
	require.NoError(t, s.Put(key, []gps9.Fix{{Fix: 3, Latitude: 2}}))

	got, err := s.Get(key)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, float32(2), got[0].Latitude)

	stat, err := s.Stat()
	require.NoError(t, err)
	require.Equal(t, 1, stat.Entries)
}

func TestStore_Clear(t *testing.T) {
	s := openTestStore(t)
	key := Key{Path: "/videos/a.mp4", Size: 1024, MTime: time.Unix(1_700_000_000, 0)}
	require.NoError(t, s.Put(key, []gps9.Fix{{Fix: 3}}))

	require.NoError(t, s.Clear())

	stat, err := s.Stat()
	require.NoError(t, err)
	require.Equal(t, 0, stat.Entries)

	_, err = s.Get(key)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_GetOrSetRunID_FirstCallAdoptsCandidate(t *testing.T) {
	s := openTestStore(t)

	id, err := s.GetOrSetRunID("candidate-1")
	require.NoError(t, err)
	require.Equal(t, "candidate-1", id)
}

func TestStore_GetOrSetRunID_LaterCallsReuseRecordedID(t *testing.T) {
	s := openTestStore(t)

	first, err := s.GetOrSetRunID("candidate-1")
	require.NoError(t, err)

	second, err := s.GetOrSetRunID("candidate-2")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
