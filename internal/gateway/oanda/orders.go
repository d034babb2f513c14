package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// relatedTradeIDAliases lists, in priority order, every field name the broker
// has historically used to relate a pending order to its trade. The first
// match wins; keep this list as the single reviewable artifact for the
// correlation.
var relatedTradeIDAliases = []string{
	"tradeID",
	"tradeId",
	"relatedTradeID",
	"openTradeID",
}

// Order is one broker-reported pending instruction. Instrument may be absent
// upstream (stop-loss/take-profit orders carry only a trade reference); the
// workspace aggregator backfills it from the related trade.
type Order struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Instrument string `json:"instrument,omitempty"`
	Units      string `json:"units,omitempty"`
	Price      string `json:"price,omitempty"`
	State      string `json:"state,omitempty"`
	CreateTime string `json:"createTime,omitempty"`

	raw json.RawMessage
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Order(a)
	o.raw = append(json.RawMessage(nil), data...)
	return nil
}

// RelatedTradeID scans the raw order payload for the related-trade reference
// across the historical field-name variants.
func (o *Order) RelatedTradeID() string {
	if len(o.raw) == 0 {
		return ""
	}
	for _, key := range relatedTradeIDAliases {
		if v := gjson.GetBytes(o.raw, key); v.Exists() {
			if id := strings.TrimSpace(v.String()); id != "" {
				return id
			}
		}
	}
	return ""
}

type pendingOrdersEnvelope struct {
	Orders []Order `json:"orders"`
}

// PendingOrders fetches the account's pending orders.
func (c *Client) PendingOrders(ctx context.Context) ([]Order, error) {
	var env pendingOrdersEnvelope
	if err := c.doRequest(ctx, http.MethodGet, c.accountPath("/pendingOrders"), nil, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// CancelOrder cancels one pending order by id and returns the broker result
// verbatim.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id required", ErrInvalidArgument)
	}
	path := c.accountPath("/orders/" + url.PathEscape(orderID) + "/cancel")
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
