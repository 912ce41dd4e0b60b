package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMissThenHit(t *testing.T) {
	c := newResultCache()

	_, listGen, ok := c.List()
	assert.False(t, ok)
	_, sumGen, ok := c.Summary()
	assert.False(t, ok)

	c.SetList([]FileRecord{{Name: "a.jpg", SizeBytes: 3}}, listGen)
	c.SetSummary(Summary{TotalFiles: 1, TotalStorage: 3}, sumGen)

	list, _, ok := c.List()
	require.True(t, ok)
	assert.Equal(t, "a.jpg", list[0].Name)

	summary, _, ok := c.Summary()
	require.True(t, ok)
	assert.Equal(t, int64(1), summary.TotalFiles)
}

func TestInvalidateDropsBothEntries(t *testing.T) {
	c := newResultCache()

	_, listGen, _ := c.List()
	c.SetList([]FileRecord{{Name: "a.jpg"}}, listGen)
	_, sumGen, _ := c.Summary()
	c.SetSummary(Summary{TotalFiles: 1}, sumGen)

	c.Invalidate()

	_, _, ok := c.List()
	assert.False(t, ok)
	_, _, ok = c.Summary()
	assert.False(t, ok)
}

func TestSetDiscardedAfterInvalidate(t *testing.T) {
	c := newResultCache()

	// Capture the generation as a cache miss would, then invalidate
	// before storing back: the stale write must not stick.
	_, listGen, ok := c.List()
	require.False(t, ok)
	_, sumGen, ok := c.Summary()
	require.False(t, ok)

	c.Invalidate()

	c.SetList([]FileRecord{{Name: "stale.jpg"}}, listGen)
	c.SetSummary(Summary{TotalFiles: 99}, sumGen)

	_, _, ok = c.List()
	assert.False(t, ok, "stale list write must be discarded")
	_, _, ok = c.Summary()
	assert.False(t, ok, "stale summary write must be discarded")
}

func TestCachedListIsACopy(t *testing.T) {
	c := newResultCache()

	_, gen, _ := c.List()
	c.SetList([]FileRecord{{Name: "a.jpg"}}, gen)

	list, _, ok := c.List()
	require.True(t, ok)
	list[0].Name = "mutated.jpg"

	again, _, ok := c.List()
	require.True(t, ok)
	assert.Equal(t, "a.jpg", again[0].Name)
}
