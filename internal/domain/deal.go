// Package domain defines the core types of the broker negotiation bot:
// offers, contracts, decisions, protocol events, and outbound commands.
package domain

import (
	"fmt"
	"math/big"
	"time"
)

// DealKey identifies a negotiation: one counterparty bidding on one listing.
type DealKey struct {
	PartyID   uint32
	ListingID uint32
}

// String renders the key in "party-listing" form, matching the cache key
// layout used by the unattended confirmation path.
func (k DealKey) String() string {
	return fmt.Sprintf("%d-%d", k.PartyID, k.ListingID)
}

// Offer is a counterparty's proposed price for one of our broker listings.
// Prices are exact integer coin amounts; they are never represented as
// floating point anywhere in the pipeline.
type Offer struct {
	PartyID      uint32
	ListingID    uint32
	OfferedPrice *big.Int
	SellerPrice  *big.Int
	ItemID       uint32
	Quantity     uint32
	Name         string // counterparty display name
	ReceivedAt   time.Time
}

// Key returns the identity of the offer.
func (o *Offer) Key() DealKey {
	return DealKey{PartyID: o.PartyID, ListingID: o.ListingID}
}

// ContractType is the server's contract type code. Only the two negotiation
// codes are ever acted on; everything else passes through untouched.
type ContractType int

const (
	// ContractNegotiationPending is the suggestion-stage contract type.
	ContractNegotiationPending ContractType = 35
	// ContractNegotiation is the in-progress negotiation contract type.
	ContractNegotiation ContractType = 36
)

// Recognized reports whether the type code belongs to the negotiation flow.
func (t ContractType) Recognized() bool {
	return t == ContractNegotiationPending || t == ContractNegotiation
}

// Contract is the server-acknowledged handshake object for the active
// negotiation. It exists only while an active offer exists.
type Contract struct {
	Type ContractType
	ID   uint64
}

// Decision is the outcome of evaluating an offer against the configured
// accept/reject thresholds.
type Decision int

const (
	// DecisionManual means neither threshold was satisfied; no automatic
	// action is taken.
	DecisionManual Decision = iota
	// DecisionAccept means the offer clears the accept threshold.
	DecisionAccept
	// DecisionReject means the offer falls below the reject threshold.
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionReject:
		return "reject"
	default:
		return "manual"
	}
}

// Outcome classifies how a negotiation concluded. Used for the history
// ledger and operator notifications.
type Outcome string

const (
	OutcomeDeclined  Outcome = "declined"  // we auto-rejected the suggestion
	OutcomeFailed    Outcome = "failed"    // server reported deal request not-ok
	OutcomeAborted   Outcome = "aborted"   // counterpart rejected the contract
	OutcomeCancelled Outcome = "cancelled" // counterpart cancelled mid-handshake
	OutcomeTimedOut  Outcome = "timed_out" // end timer expired
	OutcomeSold      Outcome = "sold"      // server confirmed the sale
	OutcomeEnded     Outcome = "ended"     // concluded without a specific signal
)
