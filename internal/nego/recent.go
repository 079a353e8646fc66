package nego

import (
	"time"

	"github.com/caydia/brokerbot/internal/domain"
)

// recentTTL is how long a neutrally-priced offer stays adoptable by a
// manually triggered contract request.
const recentTTL = 30 * time.Second

type recentEntry struct {
	offer  *domain.Offer
	cancel CancelFunc
}

// recentCache remembers recently seen offers that neither threshold decided,
// keyed by deal identity. Entries self-expire after recentTTL; re-inserting
// a key cancels and replaces the prior expiry. Loop-confined.
type recentCache struct {
	sched   Scheduler
	entries map[domain.DealKey]recentEntry
}

func newRecentCache(sched Scheduler) *recentCache {
	return &recentCache{
		sched:   sched,
		entries: make(map[domain.DealKey]recentEntry),
	}
}

// Put stores the offer, resetting the expiry of any prior entry for the
// same identity.
func (c *recentCache) Put(o *domain.Offer) {
	key := o.Key()
	if prev, ok := c.entries[key]; ok {
		prev.cancel()
	}

	cancel := c.sched.Schedule(recentTTL, func() {
		// Only remove if this offer is still the resident entry; a
		// replacement racing the expiry must survive.
		if cur, ok := c.entries[key]; ok && cur.offer == o {
			delete(c.entries, key)
		}
	})
	c.entries[key] = recentEntry{offer: o, cancel: cancel}
}

// Get returns the cached offer for the identity, if any. The entry is left
// in place; its expiry timer keeps running.
func (c *recentCache) Get(key domain.DealKey) (*domain.Offer, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.offer, true
}

// Len returns the number of live entries.
func (c *recentCache) Len() int {
	return len(c.entries)
}
