package domain

// Command is an outbound protocol command produced by the negotiator and
// encoded by the transport layer.
type Command interface {
	isCommand()
}

// RequestNegotiation opens a contract with the counterparty. The transport
// encodes it as a type-35 contract request whose 30-byte payload carries
// partyID and listingID little-endian at offsets 0 and 4.
type RequestNegotiation struct {
	PartyID   uint32
	ListingID uint32
}

// RejectSuggestion declines a counterparty's price offer.
type RejectSuggestion struct {
	PartyID   uint32
	ListingID uint32
}

// ConfirmDeal advances the seller stage of the active negotiation.
type ConfirmDeal struct {
	ListingID uint32
	Stage     int
}

// CancelContract tears down an open contract.
type CancelContract struct {
	Type       ContractType
	ContractID uint64
}

// ReplyRequestContract is the client-bound acknowledgment synthesized in
// unattended mode to complete the host's own pending request.
type ReplyRequestContract struct {
	Type ContractType
}

func (RequestNegotiation) isCommand()   {}
func (RejectSuggestion) isCommand()     {}
func (ConfirmDeal) isCommand()          {}
func (CancelContract) isCommand()       {}
func (ReplyRequestContract) isCommand() {}
