package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

func sessionTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New([]dataset.Column{
		dataset.NewTextColumn("Producto", []string{"A"}, []bool{false}),
	})
	require.NoError(t, err)
	return tbl
}

func TestSessionStoreAddGetDelete(t *testing.T) {
	store := NewSessionStore(10)
	tbl := sessionTable(t)

	s := store.Add("file.csv", tbl, analysis.RoleMapping{})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.True(t, store.Delete(s.ID))
	assert.False(t, store.Delete(s.ID))
	assert.Equal(t, 0, store.Len())
}

func TestSessionStoreEvictsOldest(t *testing.T) {
	store := NewSessionStore(2)
	tbl := sessionTable(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := store.Add("a.csv", tbl, nil)
	second := store.Add("b.csv", tbl, nil)
	third := store.Add("c.csv", tbl, nil)

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(first.ID)
	assert.False(t, ok, "oldest session should be evicted")
	_, ok = store.Get(second.ID)
	assert.True(t, ok)
	_, ok = store.Get(third.ID)
	assert.True(t, ok)
}

func TestSessionStoreListNewestFirst(t *testing.T) {
	store := NewSessionStore(10)
	tbl := sessionTable(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	a := store.Add("a.csv", tbl, nil)
	b := store.Add("b.csv", tbl, nil)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestSessionResultCache(t *testing.T) {
	store := NewSessionStore(10)
	s := store.Add("a.csv", sessionTable(t), nil)

	cfg := analysis.DefaultConfig()
	_, ok := s.CachedResult(cfg)
	assert.False(t, ok)

	res := &analysis.Result{}
	s.StoreResult(cfg, res)

	got, ok := s.CachedResult(cfg)
	require.True(t, ok)
	assert.Same(t, res, got)

	// A different configuration misses the cache.
	cfg.TopN = 5
	_, ok = s.CachedResult(cfg)
	assert.False(t, ok)
}
