package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Trade is one broker-reported open position leg. The broker is authoritative;
// nothing here is ever mutated locally.
type Trade struct {
	ID           string `json:"id"`
	Instrument   string `json:"instrument"`
	CurrentUnits string `json:"currentUnits"`
	InitialUnits string `json:"initialUnits"`
	Price        string `json:"price"`
	UnrealizedPL string `json:"unrealizedPL"`
	State        string `json:"state"`
	OpenTime     string `json:"openTime"`
}

type openTradesEnvelope struct {
	Trades []Trade `json:"trades"`
}

// OpenTrades fetches the account's open trades.
func (c *Client) OpenTrades(ctx context.Context) ([]Trade, error) {
	var env openTradesEnvelope
	if err := c.doRequest(ctx, http.MethodGet, c.accountPath("/openTrades"), nil, &env); err != nil {
		return nil, err
	}
	return env.Trades, nil
}

// CloseTrade fully closes one trade by id and returns the broker result
// verbatim.
func (c *Client) CloseTrade(ctx context.Context, tradeID string) (json.RawMessage, error) {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil, fmt.Errorf("%w: trade id required", ErrInvalidArgument)
	}
	path := c.accountPath("/trades/" + url.PathEscape(tradeID) + "/close")
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TradeRiskUpdate carries the three protective-order fields for one trade.
// Each field is independent: a value sets/updates that order, nil cancels it.
// Omission is NOT distinguished from an explicit null at the wire boundary;
// the broker payload always carries all three keys, each either a set-object
// or a JSON null. Callers that want "leave unchanged" must re-send the
// current value.
type TradeRiskUpdate struct {
	StopLoss             *float64
	TakeProfit           *float64
	TrailingStopDistance *float64
}

// Validate rejects any provided value that is not a positive finite number.
// Zero and negatives are invalid, distinct from "not provided" (nil).
func (u TradeRiskUpdate) Validate() error {
	checks := []struct {
		name string
		val  *float64
	}{
		{"stopLoss", u.StopLoss},
		{"takeProfit", u.TakeProfit},
		{"trailingStopDistance", u.TrailingStopDistance},
	}
	for _, chk := range checks {
		if chk.val == nil {
			continue
		}
		v := *chk.val
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidArgument, chk.name, v)
		}
	}
	return nil
}

type priceOrderSpec struct {
	Price       string `json:"price"`
	TimeInForce string `json:"timeInForce"`
}

type distanceOrderSpec struct {
	Distance    string `json:"distance"`
	TimeInForce string `json:"timeInForce"`
}

// Keys carry no omitempty: a nil pointer must serialize as an explicit null,
// which is the broker's cancel instruction for that protective order.
type tradeRiskPayload struct {
	StopLoss         *priceOrderSpec    `json:"stopLoss"`
	TakeProfit       *priceOrderSpec    `json:"takeProfit"`
	TrailingStopLoss *distanceOrderSpec `json:"trailingStopLoss"`
}

func formatRiskValue(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func (u TradeRiskUpdate) payload() tradeRiskPayload {
	var p tradeRiskPayload
	if u.StopLoss != nil {
		p.StopLoss = &priceOrderSpec{Price: formatRiskValue(*u.StopLoss), TimeInForce: "GTC"}
	}
	if u.TakeProfit != nil {
		p.TakeProfit = &priceOrderSpec{Price: formatRiskValue(*u.TakeProfit), TimeInForce: "GTC"}
	}
	if u.TrailingStopDistance != nil {
		p.TrailingStopLoss = &distanceOrderSpec{Distance: formatRiskValue(*u.TrailingStopDistance), TimeInForce: "GTC"}
	}
	return p
}

// UpdateTradeRisk replaces the trade's dependent stop-loss / take-profit /
// trailing-stop orders and returns the broker result verbatim.
func (c *Client) UpdateTradeRisk(ctx context.Context, tradeID string, update TradeRiskUpdate) (json.RawMessage, error) {
	tradeID = strings.TrimSpace(tradeID)
	if tradeID == "" {
		return nil, fmt.Errorf("%w: trade id required", ErrInvalidArgument)
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	path := c.accountPath("/trades/" + url.PathEscape(tradeID) + "/orders")
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, path, update.payload(), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
