package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"finboard/internal/pkg/convert"
)

// AccountSummary mirrors the fields of /v3/accounts/{id}/summary consumed by
// the dashboard. OANDA reports decimal quantities as strings; they are passed
// through untouched.
type AccountSummary struct {
	ID                string `json:"id"`
	Alias             string `json:"alias"`
	Currency          string `json:"currency"`
	Balance           string `json:"balance"`
	NAV               string `json:"NAV"`
	UnrealizedPL      string `json:"unrealizedPL"`
	PL                string `json:"pl"`
	MarginUsed        string `json:"marginUsed"`
	MarginAvailable   string `json:"marginAvailable"`
	OpenTradeCount    int    `json:"openTradeCount"`
	OpenPositionCount int    `json:"openPositionCount"`
	PendingOrderCount int    `json:"pendingOrderCount"`
}

type accountSummaryEnvelope struct {
	Account           AccountSummary `json:"account"`
	LastTransactionID string         `json:"lastTransactionID"`
}

// AccountSummaryResult pairs the summary with the lastTransactionID anchor
// used for transaction-history windowing.
type AccountSummaryResult struct {
	Account           AccountSummary
	LastTransactionID int64
}

// AccountSummary fetches the account summary. This is the one broker fetch on
// the workspace critical path: its lastTransactionID anchors the activity
// window, so a failure here fails the whole snapshot.
func (c *Client) AccountSummary(ctx context.Context) (*AccountSummaryResult, error) {
	var env accountSummaryEnvelope
	if err := c.doRequest(ctx, http.MethodGet, c.accountPath("/summary"), nil, &env); err != nil {
		return nil, err
	}
	return &AccountSummaryResult{
		Account:           env.Account,
		LastTransactionID: convert.ToInt64(env.LastTransactionID),
	}, nil
}

// Transaction is one account-activity entry. IDs increase monotonically.
type Transaction struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Instrument   string `json:"instrument,omitempty"`
	Units        string `json:"units,omitempty"`
	Price        string `json:"price,omitempty"`
	PL           string `json:"pl,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Time         string `json:"time"`
	AccountID    string `json:"accountID"`
	BatchID      string `json:"batchID,omitempty"`
	OrderID      string `json:"orderID,omitempty"`
	TradeOpened  any    `json:"tradeOpened,omitempty"`
	TradesClosed any    `json:"tradesClosed,omitempty"`
}

type transactionsEnvelope struct {
	Transactions []Transaction `json:"transactions"`
}

// TransactionsIDRange fetches account activity for an inclusive id range.
// The broker rejects ranges wider than 1000 ids; callers keep the window at
// 200 (see broker.Workspace).
func (c *Client) TransactionsIDRange(ctx context.Context, from, to int64) ([]Transaction, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("oanda: invalid transaction id range [%d, %d]", from, to)
	}
	q := url.Values{}
	q.Set("from", strconv.FormatInt(from, 10))
	q.Set("to", strconv.FormatInt(to, 10))
	path := c.accountPath("/transactions/idrange") + "?" + q.Encode()
	var env transactionsEnvelope
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Transactions, nil
}
