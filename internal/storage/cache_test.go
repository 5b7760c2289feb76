package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tap-redirect-engine/internal/engine"
)

func TestProfileCache(t *testing.T) {
	c := NewProfileCache()

	_, ok := c.Get("prof-1")
	assert.False(t, ok)

	c.Put(engine.Profile{ID: "prof-1", DefaultURL: "https://a.example", Strategy: engine.StrategyStatic})
	c.Put(engine.Profile{ID: "prof-2", DefaultURL: "https://b.example", Strategy: engine.StrategyGeo})
	assert.Equal(t, 2, c.Len())

	p, ok := c.Get("prof-1")
	assert.True(t, ok)
	assert.Equal(t, "https://a.example", p.DefaultURL)

	c.Flush()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("prof-1")
	assert.False(t, ok)
}
