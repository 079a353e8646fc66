package protocol

import (
	"encoding/binary"

	"github.com/caydia/brokerbot/internal/domain"
)

// contractPayloadSize is the fixed body size of a negotiation contract
// request; bytes past the two identifiers stay zero.
const contractPayloadSize = 30

// ContractPayload builds the contract-request body: partyID little-endian at
// offset 0, listingID at offset 4, remainder zero.
func ContractPayload(partyID, listingID uint32) []byte {
	b := make([]byte, contractPayloadSize)
	binary.LittleEndian.PutUint32(b[0:4], partyID)
	binary.LittleEndian.PutUint32(b[4:8], listingID)
	return b
}

// ParseContractPayload extracts the (partyID, listingID) pair from a
// contract-request body. The buffer must be at least 8 bytes.
func ParseContractPayload(b []byte) (domain.DealKey, error) {
	if len(b) < 8 {
		return domain.DealKey{}, domain.ErrShortPayload
	}
	return domain.DealKey{
		PartyID:   binary.LittleEndian.Uint32(b[0:4]),
		ListingID: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}
