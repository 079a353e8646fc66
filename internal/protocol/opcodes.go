// Package protocol encodes and decodes the broker protocol frames exchanged
// with the transport host. Frames are JSON envelopes keyed by the host's
// packet op name; prices always travel as decimal strings.
package protocol

// Server-originated event ops.
const (
	OpDealSuggested        = "S_TRADE_BROKER_DEAL_SUGGESTED"
	OpDealResult           = "S_TRADE_BROKER_REQUEST_DEAL_RESULT"
	OpDealInfoUpdate       = "S_TRADE_BROKER_DEAL_INFO_UPDATE"
	OpRequestContract      = "S_REQUEST_CONTRACT"
	OpReplyRequestContract = "S_REPLY_REQUEST_CONTRACT"
	OpAcceptContract       = "S_ACCEPT_CONTRACT"
	OpRejectContract       = "S_REJECT_CONTRACT"
	OpCancelContract       = "S_CANCEL_CONTRACT"
	OpSystemMessage        = "S_SYSTEM_MESSAGE"
)

// Client-originated command ops.
const (
	OpClientRequestContract  = "C_REQUEST_CONTRACT"
	OpClientRejectSuggestion = "C_TRADE_BROKER_REJECT_SUGGEST"
	OpClientConfirmDeal      = "C_TRADE_BROKER_DEAL_CONFIRM"
	OpClientCancelContract   = "C_CANCEL_CONTRACT"
)

// Host-defined ops that never reach the game server: chat output written to
// the proxy's message channel and operator commands relayed to us.
const (
	OpProxyChatMessage = "PROXY_CHAT_MESSAGE"
	OpProxyCommand     = "PROXY_COMMAND"
)
