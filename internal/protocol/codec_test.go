package protocol

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caydia/brokerbot/internal/domain"
)

func frame(t *testing.T, op string, data string) Frame {
	t.Helper()
	return Frame{Op: op, Data: json.RawMessage(data)}
}

func TestParsePrice(t *testing.T) {
	v, err := ParsePrice("123456789012345678901")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901", v.String())

	_, err = ParsePrice("-1")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = ParsePrice("12.5")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = ParsePrice("")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestDecodeDealSuggested(t *testing.T) {
	// Prices arrive as decimal strings so values past 2^53 survive intact.
	ev, err := DecodeEvent(frame(t, OpDealSuggested, `{
		"playerId": 17,
		"listing": 912,
		"offeredPrice": "90071992547409930000",
		"sellerPrice": "100000000000000000000",
		"item": 90210,
		"amount": 3,
		"name": "Sylva"
	}`))
	require.NoError(t, err)

	sug, ok := ev.(*domain.DealSuggested)
	require.True(t, ok, "expected *DealSuggested, got %T", ev)
	assert.Equal(t, uint32(17), sug.Offer.PartyID)
	assert.Equal(t, uint32(912), sug.Offer.ListingID)
	assert.Equal(t, "90071992547409930000", sug.Offer.OfferedPrice.String())
	assert.Equal(t, "100000000000000000000", sug.Offer.SellerPrice.String())
	assert.Equal(t, uint32(90210), sug.Offer.ItemID)
	assert.Equal(t, uint32(3), sug.Offer.Quantity)
	assert.Equal(t, "Sylva", sug.Offer.Name)
	assert.False(t, sug.Offer.ReceivedAt.IsZero())
}

func TestDecodeDealSuggestedBadPrice(t *testing.T) {
	_, err := DecodeEvent(frame(t, OpDealSuggested, `{
		"playerId": 1, "listing": 1,
		"offeredPrice": "-5", "sellerPrice": "100",
		"item": 1, "amount": 1, "name": "x"
	}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestDecodeDealInfoUpdate(t *testing.T) {
	ev, err := DecodeEvent(frame(t, OpDealInfoUpdate, `{
		"playerId": 17,
		"listing": 912,
		"buyerStage": 2,
		"sellerStage": 1,
		"price": "5000000"
	}`))
	require.NoError(t, err)

	upd, ok := ev.(*domain.DealInfoUpdate)
	require.True(t, ok)
	assert.Equal(t, uint32(17), upd.PartyID)
	assert.Equal(t, 2, upd.BuyerStage)
	assert.Equal(t, 1, upd.SellerStage)
	assert.Equal(t, 0, big.NewInt(5_000_000).Cmp(upd.Price))
}

func TestDecodeContractLifecycle(t *testing.T) {
	ev, err := DecodeEvent(frame(t, OpRequestContract, `{"type": 36, "id": 7001}`))
	require.NoError(t, err)
	req, ok := ev.(*domain.ContractRequested)
	require.True(t, ok)
	assert.Equal(t, domain.ContractNegotiation, req.Type)
	assert.Equal(t, uint64(7001), req.ID)

	ev, err = DecodeEvent(frame(t, OpCancelContract, `{"type": 35, "id": 7001}`))
	require.NoError(t, err)
	cancel, ok := ev.(*domain.ContractCancelled)
	require.True(t, ok)
	assert.Equal(t, domain.ContractNegotiationPending, cancel.Type)
}

func TestDecodeUnknownOpPassesThrough(t *testing.T) {
	_, err := DecodeEvent(frame(t, "S_SOMETHING_ELSE", `{}`))
	assert.ErrorIs(t, err, domain.ErrUnknownOp)
}

func TestContractPayloadRoundTrip(t *testing.T) {
	b := ContractPayload(0x01020304, 0xAABBCCDD)
	require.Len(t, b, 30)

	// Little-endian identifiers at offsets 0 and 4; the rest stays zero.
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b[0:4])
	assert.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA}, b[4:8])
	for i := 8; i < len(b); i++ {
		assert.Zero(t, b[i], "byte %d", i)
	}

	key, err := ParseContractPayload(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), key.PartyID)
	assert.Equal(t, uint32(0xAABBCCDD), key.ListingID)
}

func TestParseContractPayloadShort(t *testing.T) {
	_, err := ParseContractPayload([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.ErrorIs(t, err, domain.ErrShortPayload)

	// Exactly 8 bytes is enough; trailing data beyond it is ignored.
	key, err := ParseContractPayload([]byte{9, 0, 0, 0, 4, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, domain.DealKey{PartyID: 9, ListingID: 4}, key)
}

func TestEncodeRequestNegotiation(t *testing.T) {
	f, err := EncodeCommand(domain.RequestNegotiation{PartyID: 9, ListingID: 4})
	require.NoError(t, err)
	assert.Equal(t, OpClientRequestContract, f.Op)

	var d requestContractData
	require.NoError(t, json.Unmarshal(f.Data, &d))
	assert.Equal(t, int(domain.ContractNegotiationPending), d.Type)

	key, err := ParseContractPayload(d.Data)
	require.NoError(t, err)
	assert.Equal(t, domain.DealKey{PartyID: 9, ListingID: 4}, key)
}

func TestEncodeConfirmDeal(t *testing.T) {
	f, err := EncodeCommand(domain.ConfirmDeal{ListingID: 912, Stage: 2})
	require.NoError(t, err)
	assert.Equal(t, OpClientConfirmDeal, f.Op)

	var d dealConfirmData
	require.NoError(t, json.Unmarshal(f.Data, &d))
	assert.Equal(t, uint32(912), d.Listing)
	assert.Equal(t, 2, d.Stage)
}

func TestEncodeCancelContract(t *testing.T) {
	f, err := EncodeCommand(domain.CancelContract{Type: domain.ContractNegotiation, ContractID: 7001})
	require.NoError(t, err)
	assert.Equal(t, OpClientCancelContract, f.Op)

	var d contractData
	require.NoError(t, json.Unmarshal(f.Data, &d))
	assert.Equal(t, 36, d.Type)
	assert.Equal(t, uint64(7001), d.ID)
}
