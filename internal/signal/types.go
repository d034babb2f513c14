// Package signal tracks internally produced trade recommendations and their
// links to broker-side orders as the lifecycle advances.
package signal

import (
	"fmt"
	"strings"
	"time"
)

// Action is the recommendation direction.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionWait Action = "WAIT"
)

// ParseAction validates a caller-supplied action string.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	case ActionWait:
		return ActionWait, nil
	}
	return "", fmt.Errorf("unknown signal action %q", s)
}

// Status is the signal lifecycle state. Set to open at creation, advanced
// once to a terminal state, never reopened.
type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusClosed:
		return StatusClosed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("unknown signal status %q", s)
}

// Signal is one internally created trading recommendation.
type Signal struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Instrument string   `json:"instrument"`
	Timeframe  string   `json:"timeframe"`
	Action     Action   `json:"action"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Status     Status   `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkStatus is the lifecycle state of a signal-order link. The label set is
// owned by this system, not the broker.
type LinkStatus string

const (
	LinkPending   LinkStatus = "pending"
	LinkSubmitted LinkStatus = "submitted"
	LinkFilled    LinkStatus = "filled"
	LinkCancelled LinkStatus = "cancelled"
	LinkClosed    LinkStatus = "closed"
	LinkFailed    LinkStatus = "failed"
)

// ParseLinkStatus validates a caller-supplied link status string.
func ParseLinkStatus(s string) (LinkStatus, error) {
	switch LinkStatus(strings.ToLower(strings.TrimSpace(s))) {
	case LinkPending:
		return LinkPending, nil
	case LinkSubmitted:
		return LinkSubmitted, nil
	case LinkFilled:
		return LinkFilled, nil
	case LinkCancelled:
		return LinkCancelled, nil
	case LinkClosed:
		return LinkClosed, nil
	case LinkFailed:
		return LinkFailed, nil
	}
	return "", fmt.Errorf("unknown link status %q", s)
}

// Terminal reports whether the status ends the attempt. A filled link is
// still live: its broker-side trade remains open until closed.
func (s LinkStatus) Terminal() bool {
	switch s {
	case LinkCancelled, LinkClosed, LinkFailed:
		return true
	}
	return false
}

// Link correlates a signal to the broker order/trade produced by acting on
// it. A signal may accumulate links across re-attempts, but at most one may
// be non-terminal at a time.
type Link struct {
	ID           string     `json:"id"`
	SignalID     string     `json:"signal_id"`
	UserID       string     `json:"user_id"`
	Instrument   string     `json:"instrument"`
	Side         string     `json:"side"`
	OrderType    string     `json:"order_type"`
	OandaOrderID string     `json:"oanda_order_id,omitempty"`
	OandaTradeID string     `json:"oanda_trade_id,omitempty"`
	Status       LinkStatus `json:"status"`
	RawPayload   []byte     `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkUpdate is one externally driven link transition: a new status plus
// optionally the broker identifiers learned at the same time.
type LinkUpdate struct {
	Status       LinkStatus
	OandaOrderID *string
	OandaTradeID *string
	RawPayload   []byte
}
