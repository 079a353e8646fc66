package nego

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueUpsertReplacesInPlace(t *testing.T) {
	var q dealQueue

	a := makeOffer(1, 10, 100, 200)
	b := makeOffer(2, 20, 100, 200)
	c := makeOffer(3, 30, 100, 200)
	q.Upsert(&a)
	q.Upsert(&b)
	q.Upsert(&c)
	require.Equal(t, 3, q.Len())

	// A fresher offer for b's identity replaces it without moving it to
	// the tail.
	b2 := makeOffer(2, 20, 150, 200)
	q.Upsert(&b2)
	require.Equal(t, 3, q.Len())

	assert.Equal(t, &a, q.Pop())
	got := q.Pop()
	assert.Equal(t, &b2, got)
	assert.Equal(t, 0, big.NewInt(150).Cmp(got.OfferedPrice))
	assert.Equal(t, &c, q.Pop())
}

func TestQueuePopFIFO(t *testing.T) {
	var q dealQueue

	a := makeOffer(1, 10, 100, 200)
	b := makeOffer(1, 11, 100, 200)
	q.Upsert(&a)
	q.Upsert(&b)

	assert.Equal(t, &a, q.Pop())
	assert.Equal(t, &b, q.Pop())
	assert.Nil(t, q.Pop())
	assert.Equal(t, 0, q.Len())
}

func TestQueueRemove(t *testing.T) {
	var q dealQueue

	a := makeOffer(1, 10, 100, 200)
	b := makeOffer(2, 20, 100, 200)
	q.Upsert(&a)
	q.Upsert(&b)

	q.Remove(a.Key())
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, &b, q.Pop())

	// Removing an absent key is a no-op.
	q.Remove(a.Key())
	assert.Equal(t, 0, q.Len())
}

func TestQueueIdentityIgnoresPrice(t *testing.T) {
	var q dealQueue

	// Same party bidding on two listings: two distinct entries.
	a := makeOffer(7, 10, 100, 200)
	b := makeOffer(7, 11, 100, 200)
	q.Upsert(&a)
	q.Upsert(&b)
	assert.Equal(t, 2, q.Len())

	// Same identity at a different price: still one entry.
	a2 := makeOffer(7, 10, 999, 200)
	q.Upsert(&a2)
	assert.Equal(t, 2, q.Len())
}
