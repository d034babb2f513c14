package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// PositionSide is one side of a net position.
type PositionSide struct {
	Units        string `json:"units"`
	AveragePrice string `json:"averagePrice,omitempty"`
	UnrealizedPL string `json:"unrealizedPL,omitempty"`
	PL           string `json:"pl,omitempty"`
}

// Position is the broker-reported net exposure per instrument; read-only
// passthrough.
type Position struct {
	Instrument   string       `json:"instrument"`
	Long         PositionSide `json:"long"`
	Short        PositionSide `json:"short"`
	UnrealizedPL string       `json:"unrealizedPL,omitempty"`
	PL           string       `json:"pl,omitempty"`
}

type openPositionsEnvelope struct {
	Positions []Position `json:"positions"`
}

// OpenPositions fetches the account's open positions.
func (c *Client) OpenPositions(ctx context.Context) ([]Position, error) {
	var env openPositionsEnvelope
	if err := c.doRequest(ctx, http.MethodGet, c.accountPath("/openPositions"), nil, &env); err != nil {
		return nil, err
	}
	return env.Positions, nil
}

type closePositionPayload struct {
	LongUnits  string `json:"longUnits"`
	ShortUnits string `json:"shortUnits"`
}

// ClosePosition fully closes both sides of an instrument's position and
// returns the broker result verbatim. Both sides are always requested: the
// broker treats a non-existent side as a no-op, so this is safe for
// one-sided positions.
func (c *Client) ClosePosition(ctx context.Context, instrument string) (json.RawMessage, error) {
	instrument = strings.TrimSpace(instrument)
	if instrument == "" {
		return nil, fmt.Errorf("%w: instrument required", ErrInvalidArgument)
	}
	path := c.accountPath("/positions/" + url.PathEscape(instrument) + "/close")
	payload := closePositionPayload{LongUnits: "ALL", ShortUnits: "ALL"}
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, path, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
