// Package sysmsg parses the server's system-message strings. A message looks
// like "@SMT_SOME_ID\vtoken\vvalue\v..." with vertical tabs separating the
// identifier from alternating token name/value pairs.
package sysmsg

import (
	"errors"
	"strings"
)

// Message identifiers the negotiator reacts to.
const (
	MsgOpponentCancelled = "SMT_MEDIATE_TRADE_CANCEL_OPPONENT"
	MsgSaleSucceeded     = "SMT_MEDIATE_SUCCESS_SELL"
)

var (
	ErrNotSystemMessage = errors.New("sysmsg: not a system message")
	ErrMalformed        = errors.New("sysmsg: malformed token list")
)

// Message is a parsed system message.
type Message struct {
	ID     string
	Tokens map[string]string
}

// Parse decodes a raw system-message string. It returns an error rather than
// panicking on malformed input; callers treat a parse failure as a no-op.
func Parse(raw string) (Message, error) {
	if !strings.HasPrefix(raw, "@") {
		return Message{}, ErrNotSystemMessage
	}

	parts := strings.Split(raw[1:], "\v")
	if parts[0] == "" {
		return Message{}, ErrNotSystemMessage
	}

	msg := Message{ID: parts[0]}
	rest := parts[1:]
	if len(rest)%2 != 0 {
		return Message{}, ErrMalformed
	}
	if len(rest) > 0 {
		msg.Tokens = make(map[string]string, len(rest)/2)
		for i := 0; i < len(rest); i += 2 {
			msg.Tokens[rest[i]] = rest[i+1]
		}
	}
	return msg, nil
}
