package nego

import "github.com/caydia/brokerbot/internal/domain"

// dealQueue is the FIFO backlog of pending offers. Identities are unique: a
// newer offer for the same (party, listing) replaces the old one in place,
// keeping its queue position rather than moving to the tail.
type dealQueue struct {
	items []*domain.Offer
}

// Upsert inserts the offer, replacing an existing entry with the same
// identity in place, otherwise appending at the tail.
func (q *dealQueue) Upsert(o *domain.Offer) {
	key := o.Key()
	for i, item := range q.items {
		if item.Key() == key {
			q.items[i] = o
			return
		}
	}
	q.items = append(q.items, o)
}

// Remove drops the entry with the given identity, if present.
func (q *dealQueue) Remove(key domain.DealKey) {
	for i, item := range q.items {
		if item.Key() == key {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Pop removes and returns the head of the queue, or nil when empty.
func (q *dealQueue) Pop() *domain.Offer {
	if len(q.items) == 0 {
		return nil
	}
	head := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return head
}

// Len returns the number of queued offers.
func (q *dealQueue) Len() int {
	return len(q.items)
}
