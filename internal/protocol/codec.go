package protocol

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/caydia/brokerbot/internal/domain"
)

// Frame is the JSON envelope the host writes onto the wire.
type Frame struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// Command invocations relayed by the host (see OpProxyCommand).
type CommandInvocation struct {
	Command string `json:"command"`
	Value   string `json:"value"`
}

type dealSuggestedData struct {
	PlayerID     uint32 `json:"playerId"`
	Listing      uint32 `json:"listing"`
	OfferedPrice string `json:"offeredPrice"`
	SellerPrice  string `json:"sellerPrice"`
	Item         uint32 `json:"item"`
	Amount       uint32 `json:"amount"`
	Name         string `json:"name"`
}

type dealResultData struct {
	OK bool `json:"ok"`
}

type dealInfoUpdateData struct {
	PlayerID    uint32 `json:"playerId"`
	Listing     uint32 `json:"listing"`
	BuyerStage  int    `json:"buyerStage"`
	SellerStage int    `json:"sellerStage"`
	Price       string `json:"price"`
}

type contractData struct {
	Type int    `json:"type"`
	ID   uint64 `json:"id,omitempty"`
	Data []byte `json:"data,omitempty"`
}

type requestContractData struct {
	Type int    `json:"type"`
	Unk2 int    `json:"unk2"`
	Unk3 int    `json:"unk3"`
	Unk4 int    `json:"unk4"`
	Name string `json:"name"`
	Data []byte `json:"data"`
}

type systemMessageData struct {
	Message string `json:"message"`
}

type rejectSuggestData struct {
	PlayerID uint32 `json:"playerId"`
	Listing  uint32 `json:"listing"`
}

type dealConfirmData struct {
	Listing uint32 `json:"listing"`
	Stage   int    `json:"stage"`
}

type chatMessageData struct {
	Message string `json:"message"`
}

// ParsePrice converts a decimal string into an exact non-negative integer.
func ParsePrice(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("protocol: price %q: %w", s, domain.ErrInvalidPrice)
	}
	return v, nil
}

// DecodeEvent turns an inbound frame into a domain event. Frames whose op is
// not part of the negotiation flow return domain.ErrUnknownOp so the caller
// can let them pass through untouched.
func DecodeEvent(f Frame) (domain.Event, error) {
	switch f.Op {
	case OpDealSuggested:
		var d dealSuggestedData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		offered, err := ParsePrice(d.OfferedPrice)
		if err != nil {
			return nil, err
		}
		seller, err := ParsePrice(d.SellerPrice)
		if err != nil {
			return nil, err
		}
		return &domain.DealSuggested{Offer: domain.Offer{
			PartyID:      d.PlayerID,
			ListingID:    d.Listing,
			OfferedPrice: offered,
			SellerPrice:  seller,
			ItemID:       d.Item,
			Quantity:     d.Amount,
			Name:         d.Name,
			ReceivedAt:   time.Now().UTC(),
		}}, nil

	case OpDealResult:
		var d dealResultData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.DealResult{OK: d.OK}, nil

	case OpDealInfoUpdate:
		var d dealInfoUpdateData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		price, err := ParsePrice(d.Price)
		if err != nil {
			return nil, err
		}
		return &domain.DealInfoUpdate{
			PartyID:     d.PlayerID,
			ListingID:   d.Listing,
			BuyerStage:  d.BuyerStage,
			SellerStage: d.SellerStage,
			Price:       price,
		}, nil

	case OpRequestContract:
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.ContractRequested{Type: domain.ContractType(d.Type), ID: d.ID}, nil

	case OpReplyRequestContract:
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.ContractReplied{Type: domain.ContractType(d.Type)}, nil

	case OpAcceptContract:
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.ContractAccepted{Type: domain.ContractType(d.Type)}, nil

	case OpRejectContract:
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.ContractRejected{Type: domain.ContractType(d.Type)}, nil

	case OpCancelContract:
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.ContractCancelled{Type: domain.ContractType(d.Type), ID: d.ID}, nil

	case OpSystemMessage:
		var d systemMessageData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.SystemMessage{Message: d.Message}, nil

	case OpClientRequestContract:
		// The host echoes the local user's own request in unattended mode.
		var d contractData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("protocol: decode %s: %w", f.Op, err)
		}
		return &domain.LocalContractRequest{Type: domain.ContractType(d.Type), Payload: d.Data}, nil
	}

	return nil, fmt.Errorf("protocol: op %s: %w", f.Op, domain.ErrUnknownOp)
}

// EncodeCommand turns an outbound command into a wire frame.
func EncodeCommand(cmd domain.Command) (Frame, error) {
	switch c := cmd.(type) {
	case domain.RequestNegotiation:
		return marshalFrame(OpClientRequestContract, requestContractData{
			Type: int(domain.ContractNegotiationPending),
			Data: ContractPayload(c.PartyID, c.ListingID),
		})
	case domain.RejectSuggestion:
		return marshalFrame(OpClientRejectSuggestion, rejectSuggestData{
			PlayerID: c.PartyID,
			Listing:  c.ListingID,
		})
	case domain.ConfirmDeal:
		return marshalFrame(OpClientConfirmDeal, dealConfirmData{
			Listing: c.ListingID,
			Stage:   c.Stage,
		})
	case domain.CancelContract:
		return marshalFrame(OpClientCancelContract, contractData{
			Type: int(c.Type),
			ID:   c.ContractID,
		})
	case domain.ReplyRequestContract:
		return marshalFrame(OpReplyRequestContract, contractData{Type: int(c.Type)})
	}
	return Frame{}, fmt.Errorf("protocol: encode: unsupported command %T", cmd)
}

// EncodeChatMessage wraps chat text destined for the proxy message channel.
func EncodeChatMessage(text string) (Frame, error) {
	return marshalFrame(OpProxyChatMessage, chatMessageData{Message: text})
}

func marshalFrame(op string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("protocol: encode %s: %w", op, err)
	}
	return Frame{Op: op, Data: raw}, nil
}
