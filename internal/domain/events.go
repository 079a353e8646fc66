package domain

import "math/big"

// Event is an inbound protocol event delivered by the transport host. The
// negotiator type-switches on the concrete event structs below.
type Event interface {
	isEvent()
}

// DealSuggested carries a counterparty's new or updated price offer.
type DealSuggested struct {
	Offer Offer
}

// DealResult is the server's verdict on our contract request.
type DealResult struct {
	OK bool
}

// DealInfoUpdate reports the server-side (buyerStage, sellerStage) pair for
// the negotiation, together with the counter-price the buyer confirmed at.
type DealInfoUpdate struct {
	PartyID     uint32
	ListingID   uint32
	BuyerStage  int
	SellerStage int
	Price       *big.Int
}

// ContractRequested acknowledges that the server opened a contract.
type ContractRequested struct {
	Type ContractType
	ID   uint64
}

// ContractReplied is a keep-alive acknowledgment during the pending stage.
type ContractReplied struct {
	Type ContractType
}

// ContractAccepted is a keep-alive acknowledgment during the pending stage.
type ContractAccepted struct {
	Type ContractType
}

// ContractRejected signals the counterpart abandoned the contract.
type ContractRejected struct {
	Type ContractType
}

// ContractCancelled signals the contract was torn down.
type ContractCancelled struct {
	Type ContractType
	ID   uint64
}

// SystemMessage carries a raw server system-message string.
type SystemMessage struct {
	Message string
}

// LocalContractRequest is the echo of the local user's own contract request,
// seen only in unattended mode. Payload carries partyID and listingID
// little-endian at offsets 0 and 4.
type LocalContractRequest struct {
	Type    ContractType
	Payload []byte
}

func (DealSuggested) isEvent()        {}
func (DealResult) isEvent()           {}
func (DealInfoUpdate) isEvent()       {}
func (ContractRequested) isEvent()    {}
func (ContractReplied) isEvent()      {}
func (ContractAccepted) isEvent()     {}
func (ContractRejected) isEvent()     {}
func (ContractCancelled) isEvent()    {}
func (SystemMessage) isEvent()        {}
func (LocalContractRequest) isEvent() {}
