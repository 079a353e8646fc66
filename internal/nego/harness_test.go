package nego

import (
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/caydia/brokerbot/internal/domain"
	"github.com/caydia/brokerbot/internal/sysmsg"
)

// fakeTimer is one scheduled callback captured by fakeScheduler.
type fakeTimer struct {
	d         time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (t *fakeTimer) live() bool {
	return !t.cancelled && !t.fired
}

// fakeScheduler records callbacks instead of running real timers, so tests
// fire them deterministically in whatever order the scenario needs.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) CancelFunc {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

// live returns all timers that are neither fired nor cancelled, in
// scheduling order.
func (s *fakeScheduler) live() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if t.live() {
			out = append(out, t)
		}
	}
	return out
}

// fireNext fires the oldest live timer.
func (s *fakeScheduler) fireNext(t *testing.T) *fakeTimer {
	t.Helper()
	for _, ft := range s.timers {
		if ft.live() {
			ft.fired = true
			ft.fn()
			return ft
		}
	}
	t.Fatal("no live timer to fire")
	return nil
}

// fireLast fires the most recently scheduled live timer.
func (s *fakeScheduler) fireLast(t *testing.T) *fakeTimer {
	t.Helper()
	for i := len(s.timers) - 1; i >= 0; i-- {
		if s.timers[i].live() {
			s.timers[i].fired = true
			s.timers[i].fn()
			return s.timers[i]
		}
	}
	t.Fatal("no live timer to fire")
	return nil
}

// fakeSink records every outbound command and chat message.
type fakeSink struct {
	commands []domain.Command
	messages []string
	sendErr  error
}

func (s *fakeSink) Send(cmd domain.Command) error {
	s.commands = append(s.commands, cmd)
	return s.sendErr
}

func (s *fakeSink) Message(text string) error {
	s.messages = append(s.messages, text)
	return nil
}

// staticItems resolves every item to a fixed name.
type staticItems struct{}

func (staticItems) Name(uint32) string { return "Velik's Banner" }

func newTestNegotiator(v SettingsValues) (*Negotiator, *fakeScheduler, *fakeSink, *[]Record) {
	sched := &fakeScheduler{}
	sink := &fakeSink{}
	records := new([]Record)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := New(NewSettings(v), sink, sched, staticItems{}, sysmsg.Parse, nil,
		func(rec Record) { *records = append(*records, rec) }, logger)
	return n, sched, sink, records
}

func makeOffer(party, listing uint32, offered, seller int64) domain.Offer {
	return domain.Offer{
		PartyID:      party,
		ListingID:    listing,
		OfferedPrice: big.NewInt(offered),
		SellerPrice:  big.NewInt(seller),
		ItemID:       90210,
		Quantity:     1,
		Name:         "Counterpart",
		ReceivedAt:   time.Now(),
	}
}

// suggest delivers a suggestion event for the offer.
func suggest(n *Negotiator, o domain.Offer) bool {
	return n.HandleEvent(&domain.DealSuggested{Offer: o})
}

// inRange reports min <= d <= max.
func inRange(d, min, max time.Duration) bool {
	return d >= min && d <= max
}
