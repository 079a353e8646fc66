package nego

import (
	"math/rand"
	"time"
)

// Slot addresses one of the two supervised timers.
type Slot int

const (
	// SlotPacing delays queue advancement so automated actions don't look
	// mechanical.
	SlotPacing Slot = iota
	// SlotEnd bounds how long the active negotiation may sit without
	// progress before it is abandoned.
	SlotEnd

	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotPacing:
		return "pacing"
	case SlotEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Pacing delay ranges. The long range applies to a fresh, previously-unseen
// suggestion; the short range to every other advance.
var (
	delayLong  = [2]time.Duration{1800 * time.Millisecond, 2800 * time.Millisecond}
	delayShort = [2]time.Duration{600 * time.Millisecond, 1000 * time.Millisecond}
)

// randDelay draws uniformly from [r[0], r[1]] at millisecond granularity.
func randDelay(r [2]time.Duration) time.Duration {
	return r[0] + time.Duration(rand.Int63n(int64(r[1]-r[0]+time.Millisecond)))
}

// Timers owns the two cancellable timer slots. Arming a slot silently
// cancels any timer already in it, and a slot is cleared before its callback
// runs, so the callback may re-arm the same slot without interference.
//
// Timers is loop-confined: Arm and Cancel must only be called from the event
// loop, and scheduled callbacks arrive back on the same loop. A generation
// counter guards against a firing that was cancelled after its timer already
// posted to the loop.
type Timers struct {
	sched   Scheduler
	cancels [slotCount]CancelFunc
	gens    [slotCount]uint64
}

// NewTimers creates a supervisor over the given scheduler.
func NewTimers(sched Scheduler) *Timers {
	return &Timers{sched: sched}
}

// Arm replaces any timer in the slot with a new one firing after d.
func (t *Timers) Arm(slot Slot, d time.Duration, fn func()) {
	t.Cancel(slot)

	t.gens[slot]++
	gen := t.gens[slot]
	t.cancels[slot] = t.sched.Schedule(d, func() {
		if t.gens[slot] != gen {
			return // superseded or cancelled while in flight
		}
		t.cancels[slot] = nil
		fn()
	})
}

// Cancel stops the slot's timer if one is outstanding. Idempotent.
func (t *Timers) Cancel(slot Slot) {
	if c := t.cancels[slot]; c != nil {
		c()
		t.cancels[slot] = nil
		t.gens[slot]++
	}
}

// Armed reports whether the slot holds an outstanding timer.
func (t *Timers) Armed(slot Slot) bool {
	return t.cancels[slot] != nil
}
