package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotEmpty(t *testing.T) {
	var s Snapshot[string]
	v, ok := s.Load()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestSnapshotStoreLoad(t *testing.T) {
	var s Snapshot[int]
	s.Store(42)
	v, ok := s.Load()
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	s.Store(7)
	v, _ = s.Load()
	assert.Equal(t, 7, v)
}

func TestSnapshotSwap(t *testing.T) {
	var s Snapshot[string]

	prev, ok := s.Swap("first")
	assert.False(t, ok)
	assert.Equal(t, "", prev)

	prev, ok = s.Swap("second")
	assert.True(t, ok)
	assert.Equal(t, "first", prev)

	v, _ := s.Load()
	assert.Equal(t, "second", v)
}
