package nego

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/caydia/brokerbot/internal/domain"
	"github.com/caydia/brokerbot/internal/protocol"
	"github.com/caydia/brokerbot/internal/sysmsg"
)

// End-of-negotiation timeouts, picked by queue length at arm time.
const (
	endTimeoutIdle = 30 * time.Second
	endTimeoutBusy = 15 * time.Second
)

// State is the negotiator's per-deal lifecycle position.
type State int

const (
	// StateIdle means no negotiation is in flight.
	StateIdle State = iota
	// StateEvaluating means an offer was just activated and is being priced.
	StateEvaluating
	// StateRequestSent means the contract request went out.
	StateRequestSent
	// StateContractOpen means the server acknowledged the contract.
	StateContractOpen
	// StateAwaitingConfirm means a stage-confirm reconciliation is pending.
	StateAwaitingConfirm
	// StateRejecting means a decline is being sent.
	StateRejecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateRequestSent:
		return "request_sent"
	case StateContractOpen:
		return "contract_open"
	case StateAwaitingConfirm:
		return "awaiting_confirm"
	case StateRejecting:
		return "rejecting"
	default:
		return "unknown"
	}
}

// Sink carries outbound traffic back to the transport host: protocol
// commands and chat messages for the local user.
type Sink interface {
	Send(cmd domain.Command) error
	Message(text string) error
}

// NameLookup resolves item IDs to display names.
type NameLookup interface {
	Name(id uint32) string
}

// Notifier delivers operator notifications. Implementations must tolerate
// being called from short-lived goroutines.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Record summarizes a concluded negotiation for the history ledger.
type Record struct {
	DealID       uuid.UUID
	PartyID      uint32
	ListingID    uint32
	PartyName    string
	ItemID       uint32
	ItemName     string
	Quantity     uint32
	OfferedPrice *big.Int
	SellerPrice  *big.Int
	Outcome      domain.Outcome
	FinalStage   int
	StartedAt    time.Time
	EndedAt      time.Time
}

// OutcomeHandler receives the record of every concluded negotiation. It runs
// on the event loop and must not block.
type OutcomeHandler func(rec Record)

// Negotiator is the orchestrator. All of its mutable state (queue, active
// offer, contract, timers, recent cache) is confined to the event loop:
// HandleEvent and every timer callback execute there, so a second
// negotiation structurally cannot run while one is in flight.
type Negotiator struct {
	settings  *Settings
	sink      Sink
	sched     Scheduler
	timers    *Timers
	items     NameLookup
	parse     func(string) (sysmsg.Message, error)
	notifier  Notifier
	onOutcome OutcomeHandler
	logger    *slog.Logger
	now       func() time.Time

	queue    dealQueue
	recent   *recentCache
	current  *domain.Offer
	contract *domain.Contract
	state    State

	dealID     uuid.UUID
	outcome    domain.Outcome
	finalStage int
	startedAt  time.Time
}

// New creates a Negotiator. parse is the host's system-message parser;
// notifier and onOutcome may be nil.
func New(
	settings *Settings,
	sink Sink,
	sched Scheduler,
	items NameLookup,
	parse func(string) (sysmsg.Message, error),
	notifier Notifier,
	onOutcome OutcomeHandler,
	logger *slog.Logger,
) *Negotiator {
	return &Negotiator{
		settings:  settings,
		sink:      sink,
		sched:     sched,
		timers:    NewTimers(sched),
		items:     items,
		parse:     parse,
		notifier:  notifier,
		onOutcome: onOutcome,
		logger:    logger.With(slog.String("component", "negotiator")),
		now:       time.Now,
		recent:    newRecentCache(sched),
	}
}

// HandleEvent consumes one inbound protocol event. It must run on the event
// loop. The return value tells the host whether the event was intercepted:
// false means the event is not ours and should be forwarded untouched.
func (n *Negotiator) HandleEvent(ev domain.Event) bool {
	switch e := ev.(type) {
	case *domain.DealSuggested:
		return n.onDealSuggested(e)
	case *domain.DealResult:
		return n.onDealResult(e)
	case *domain.DealInfoUpdate:
		return n.onDealInfoUpdate(e)
	case *domain.ContractRequested:
		return n.onContractRequested(e)
	case *domain.ContractReplied:
		return n.onPendingKeepAlive(e.Type)
	case *domain.ContractAccepted:
		return n.onPendingKeepAlive(e.Type)
	case *domain.ContractRejected:
		return n.onContractRejected(e)
	case *domain.ContractCancelled:
		return n.onContractCancelled(e)
	case *domain.SystemMessage:
		return n.onSystemMessage(e)
	case *domain.LocalContractRequest:
		return n.onLocalContractRequest(e)
	}
	return false
}

func (n *Negotiator) onDealSuggested(e *domain.DealSuggested) bool {
	offer := e.Offer
	s := n.settings.Snapshot()

	dec := Decide(offer.OfferedPrice, offer.SellerPrice, s.AcceptThresholdPct, s.RejectThresholdPct)
	if dec == domain.DecisionManual {
		// Neither threshold decided. Drop any stale queued copy; in
		// unattended mode remember the offer so a manual accept within the
		// TTL can be completed automatically.
		n.queue.Remove(offer.Key())
		if s.Unattended {
			n.recent.Put(&offer)
		}
		return false
	}

	n.queue.Upsert(&offer)
	n.queueNext(true)
	return true
}

func (n *Negotiator) onDealResult(e *domain.DealResult) bool {
	if n.current == nil {
		return false
	}
	if !e.OK {
		n.setOutcome(domain.OutcomeFailed)
		n.endDeal()
	}
	return true
}

func (n *Negotiator) onDealInfoUpdate(e *domain.DealInfoUpdate) bool {
	if n.current == nil {
		return false
	}

	if e.BuyerStage == 2 && e.SellerStage < 2 {
		partyID, listingID := e.PartyID, e.ListingID
		price := e.Price
		sellerStage := e.SellerStage

		var delay time.Duration
		if sellerStage == 0 {
			delay = randDelay(delayShort)
		}
		n.state = StateAwaitingConfirm
		n.sched.Schedule(delay, func() {
			n.reconcile(partyID, listingID, price, sellerStage)
		})
	}
	return true
}

// reconcile runs after the deal-info delay. The negotiation may have moved
// on since the update arrived, so it re-validates identity and price at fire
// time: the update must still describe the active deal and the confirmed
// counter-price must not undercut what was originally offered. Anything else
// is treated as stale and aborts the negotiation rather than confirming an
// unverified price.
//
// The match is by (party, listing) only, not contract ID, mirroring the
// deal-info update itself.
func (n *Negotiator) reconcile(partyID, listingID uint32, price *big.Int, sellerStage int) {
	if n.current == nil {
		return
	}

	if partyID == n.current.PartyID &&
		listingID == n.current.ListingID &&
		price.Cmp(n.current.OfferedPrice) >= 0 {
		n.send(domain.ConfirmDeal{ListingID: n.current.ListingID, Stage: sellerStage + 1})
		n.finalStage = sellerStage + 1
		n.state = StateContractOpen
		return
	}

	n.logger.Warn("stale or mismatched deal update, aborting",
		slog.String("deal_id", n.dealID.String()),
		slog.Uint64("party_id", uint64(n.current.PartyID)),
		slog.Uint64("listing_id", uint64(n.current.ListingID)),
	)
	n.endDeal()
}

func (n *Negotiator) onContractRequested(e *domain.ContractRequested) bool {
	if n.current == nil || !e.Type.Recognized() {
		return false
	}
	n.contract = &domain.Contract{Type: e.Type, ID: e.ID}
	n.state = StateContractOpen
	n.armEndTimer()
	return true
}

func (n *Negotiator) onPendingKeepAlive(typ domain.ContractType) bool {
	if n.current == nil || typ != domain.ContractNegotiationPending {
		return false
	}
	n.armEndTimer()
	return true
}

func (n *Negotiator) onContractRejected(e *domain.ContractRejected) bool {
	if n.current == nil || !e.Type.Recognized() {
		return false
	}

	n.message(n.current.Name + " aborted negotiation")
	n.narrate("counterpart aborted negotiation")

	// A pending-stage abort leaves the listing stuck un-negotiable on the
	// server unless we also send an explicit reject.
	if e.Type == domain.ContractNegotiationPending {
		n.send(domain.RejectSuggestion{
			PartyID:   n.current.PartyID,
			ListingID: n.current.ListingID,
		})
	}

	n.contract = nil
	n.setOutcome(domain.OutcomeAborted)
	n.endDeal()
	return true
}

func (n *Negotiator) onContractCancelled(e *domain.ContractCancelled) bool {
	if n.current == nil || !e.Type.Recognized() {
		return false
	}
	n.contract = nil
	n.setOutcome(domain.OutcomeCancelled)
	n.endDeal()
	return true
}

func (n *Negotiator) onSystemMessage(e *domain.SystemMessage) bool {
	if n.current == nil {
		return false
	}

	msg, err := n.parse(e.Message)
	if err != nil {
		return false
	}

	switch msg.ID {
	case sysmsg.MsgOpponentCancelled:
		n.message(n.current.Name + " cancelled negotiation")
		n.narrate("counterpart cancelled negotiation")
		n.setOutcome(domain.OutcomeCancelled)
		return true
	case sysmsg.MsgSaleSucceeded:
		n.message("Negotiation with " + n.current.Name + " successful")
		n.narrate("negotiation successful")
		n.setOutcome(domain.OutcomeSold)
		return true
	}
	return false
}

func (n *Negotiator) onLocalContractRequest(e *domain.LocalContractRequest) bool {
	if !n.settings.Snapshot().Unattended || e.Type != domain.ContractNegotiationPending {
		return false
	}

	key, err := protocol.ParseContractPayload(e.Payload)
	if err != nil {
		return false
	}

	offer, ok := n.recent.Get(key)
	if !ok {
		return false
	}

	n.current = offer
	n.dealID = uuid.New()
	n.outcome = ""
	n.finalStage = 0
	n.startedAt = n.now()
	n.state = StateRequestSent

	n.message("Handling negotiation with " + offer.Name + "...")
	n.narrate("handling manual negotiation")

	// Complete the host's own pending request on the next tick rather than
	// synchronously from inside the event handler.
	typ := e.Type
	n.sched.Schedule(0, func() {
		n.send(domain.ReplyRequestContract{Type: typ})
	})

	// The user's request still goes to the server; never intercepted.
	return false
}

// queueNext arms the pacing timer when the backlog can advance: a non-empty
// queue, no negotiation in flight, no pacing timer already outstanding.
func (n *Negotiator) queueNext(slow bool) {
	if n.current != nil || n.timers.Armed(SlotPacing) || n.queue.Len() == 0 {
		return
	}

	var d time.Duration
	if n.settings.Snapshot().DelayActions {
		if slow {
			d = randDelay(delayLong)
		} else {
			d = randDelay(delayShort)
		}
	}
	n.timers.Arm(SlotPacing, d, n.activateNext)
}

// activateNext pops the head of the queue and starts negotiating it.
func (n *Negotiator) activateNext() {
	offer := n.queue.Pop()
	if offer == nil {
		return
	}
	n.begin(offer)
}

func (n *Negotiator) begin(offer *domain.Offer) {
	n.current = offer
	n.contract = nil
	n.dealID = uuid.New()
	n.outcome = ""
	n.finalStage = 0
	n.startedAt = n.now()
	n.state = StateEvaluating

	s := n.settings.Snapshot()
	itemName := n.items.Name(offer.ItemID)

	if Decide(offer.OfferedPrice, offer.SellerPrice, s.AcceptThresholdPct, s.RejectThresholdPct) == domain.DecisionAccept {
		n.message(fmt.Sprintf("Attempting to negotiate with %s for %s(%d)...", offer.Name, itemName, offer.Quantity))
		n.message("Price: " + domain.FormatCoinsMarkup(offer.SellerPrice) + " - Offered: " + domain.FormatCoinsMarkup(offer.OfferedPrice))
		n.narrate("attempting negotiation",
			slog.String("counterpart", offer.Name),
			slog.String("item", itemName),
			slog.Uint64("quantity", uint64(offer.Quantity)),
			slog.String("price", domain.FormatCoins(offer.SellerPrice)),
			slog.String("offered", domain.FormatCoins(offer.OfferedPrice)),
		)
		n.notifyAsync("started", "Negotiation started",
			fmt.Sprintf("%s offered %s for %s(%d)", offer.Name, domain.FormatCoins(offer.OfferedPrice), itemName, offer.Quantity))

		n.send(domain.RequestNegotiation{PartyID: offer.PartyID, ListingID: offer.ListingID})
		n.state = StateRequestSent
		n.armEndTimer()
		return
	}

	// Reject, or a threshold change made the offer neutral since it was
	// queued: decline and move on.
	n.state = StateRejecting
	n.send(domain.RejectSuggestion{PartyID: offer.PartyID, ListingID: offer.ListingID})

	n.message(fmt.Sprintf("Declined negotiation from %s for %s(%d)", offer.Name, itemName, offer.Quantity))
	n.message("Price: " + domain.FormatCoinsMarkup(offer.SellerPrice) + " - Offered: " + domain.FormatCoinsMarkup(offer.OfferedPrice))
	n.narrate("declined negotiation",
		slog.String("counterpart", offer.Name),
		slog.String("item", itemName),
		slog.String("price", domain.FormatCoins(offer.SellerPrice)),
		slog.String("offered", domain.FormatCoins(offer.OfferedPrice)),
	)

	n.setOutcome(domain.OutcomeDeclined)
	n.finish()
}

// armEndTimer (re)arms the end-of-negotiation timer. Duration is recomputed
// from the current queue length every time: a non-empty backlog shortens the
// patience for the deal in flight.
func (n *Negotiator) armEndTimer() {
	d := endTimeoutIdle
	if n.queue.Len() > 0 {
		d = endTimeoutBusy
	}
	n.timers.Arm(SlotEnd, d, n.endDeal)
}

// endDeal terminates the active negotiation. While a contract is still open
// it sends a best-effort cancel and re-arms the end timer to bound the wait
// for the cancel's own acknowledgment; the deal only fully ends once no
// contract remains.
func (n *Negotiator) endDeal() {
	n.timers.Cancel(SlotEnd)

	if n.contract != nil {
		n.message("Negotiation timed out")
		n.narrate("negotiation timed out")
		n.setOutcome(domain.OutcomeTimedOut)

		n.send(domain.CancelContract{Type: n.contract.Type, ContractID: n.contract.ID})
		n.contract = nil
		n.armEndTimer()
		return
	}

	n.finish()
}

// finish emits the outcome record, clears the active slot, and hands control
// back to the queue with a short pacing delay.
func (n *Negotiator) finish() {
	if n.current != nil {
		outcome := n.outcome
		if outcome == "" {
			outcome = domain.OutcomeEnded
		}

		rec := Record{
			DealID:       n.dealID,
			PartyID:      n.current.PartyID,
			ListingID:    n.current.ListingID,
			PartyName:    n.current.Name,
			ItemID:       n.current.ItemID,
			ItemName:     n.items.Name(n.current.ItemID),
			Quantity:     n.current.Quantity,
			OfferedPrice: n.current.OfferedPrice,
			SellerPrice:  n.current.SellerPrice,
			Outcome:      outcome,
			FinalStage:   n.finalStage,
			StartedAt:    n.startedAt,
			EndedAt:      n.now(),
		}
		if n.onOutcome != nil {
			n.onOutcome(rec)
		}
		n.narrate("negotiation concluded",
			slog.String("deal_id", rec.DealID.String()),
			slog.String("outcome", string(rec.Outcome)),
		)
		if outcome != domain.OutcomeDeclined {
			n.notifyAsync(string(outcome), "Negotiation "+string(outcome),
				fmt.Sprintf("%s, %s offered %s", rec.ItemName, rec.PartyName, domain.FormatCoins(rec.OfferedPrice)))
		}
	}

	n.current = nil
	n.contract = nil
	n.outcome = ""
	n.state = StateIdle
	n.queueNext(false)
}

// setOutcome records the first definitive conclusion signal; later, weaker
// signals (like the cancel acknowledgment after a timeout) don't overwrite
// it.
func (n *Negotiator) setOutcome(o domain.Outcome) {
	if n.outcome == "" {
		n.outcome = o
	}
}

func (n *Negotiator) send(cmd domain.Command) {
	if err := n.sink.Send(cmd); err != nil {
		n.logger.Error("send command failed",
			slog.String("command", fmt.Sprintf("%T", cmd)),
			slog.String("error", err.Error()),
		)
	}
}

func (n *Negotiator) message(text string) {
	if err := n.sink.Message(text); err != nil {
		n.logger.Debug("chat message failed", slog.String("error", err.Error()))
	}
}

// narrate logs deal progress, at info level when console logging is on.
func (n *Negotiator) narrate(msg string, attrs ...any) {
	if n.settings.Snapshot().ConsoleLog {
		n.logger.Info(msg, attrs...)
		return
	}
	n.logger.Debug(msg, attrs...)
}

// notifyAsync fires an operator notification without blocking the loop.
func (n *Negotiator) notifyAsync(event, title, message string) {
	if n.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.notifier.Notify(ctx, event, title, message); err != nil {
			n.logger.Warn("notification failed",
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// State returns the lifecycle state. Loop-confined.
func (n *Negotiator) State() State {
	return n.state
}

// Active returns the offer being negotiated, or nil. Loop-confined.
func (n *Negotiator) Active() *domain.Offer {
	return n.current
}

// Contract returns the open contract, or nil. Loop-confined.
func (n *Negotiator) Contract() *domain.Contract {
	return n.contract
}

// QueueLen returns the backlog size. Loop-confined.
func (n *Negotiator) QueueLen() int {
	return n.queue.Len()
}

// PacingArmed reports whether the pacing timer is outstanding. Loop-confined.
func (n *Negotiator) PacingArmed() bool {
	return n.timers.Armed(SlotPacing)
}
