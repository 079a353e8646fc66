package nego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentCachePutGet(t *testing.T) {
	sched := &fakeScheduler{}
	cache := newRecentCache(sched)

	o := makeOffer(1, 10, 100, 200)
	cache.Put(&o)

	got, ok := cache.Get(o.Key())
	require.True(t, ok)
	assert.Equal(t, &o, got)
	assert.Equal(t, 1, cache.Len())

	// Expiry scheduled at the TTL.
	require.Len(t, sched.timers, 1)
	assert.Equal(t, recentTTL, sched.timers[0].d)
}

func TestRecentCacheExpiry(t *testing.T) {
	sched := &fakeScheduler{}
	cache := newRecentCache(sched)

	o := makeOffer(1, 10, 100, 200)
	cache.Put(&o)
	sched.fireNext(t)

	_, ok := cache.Get(o.Key())
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestRecentCacheReplaceResetsExpiry(t *testing.T) {
	sched := &fakeScheduler{}
	cache := newRecentCache(sched)

	o1 := makeOffer(1, 10, 100, 200)
	o2 := makeOffer(1, 10, 150, 200)
	cache.Put(&o1)
	cache.Put(&o2)

	assert.True(t, sched.timers[0].cancelled, "first expiry must be cancelled on replace")

	got, ok := cache.Get(o1.Key())
	require.True(t, ok)
	assert.Equal(t, &o2, got)

	// A first expiry that was already in flight when the replacement
	// landed must not evict the replacement.
	sched.timers[0].fn()
	_, ok = cache.Get(o1.Key())
	assert.True(t, ok)

	// The replacement's own expiry does evict it.
	sched.fireLast(t)
	_, ok = cache.Get(o1.Key())
	assert.False(t, ok)
}

func TestRecentCacheGetLeavesEntry(t *testing.T) {
	sched := &fakeScheduler{}
	cache := newRecentCache(sched)

	o := makeOffer(1, 10, 100, 200)
	cache.Put(&o)

	_, ok := cache.Get(o.Key())
	require.True(t, ok)
	_, ok = cache.Get(o.Key())
	assert.True(t, ok, "Get must not consume the entry")
}
