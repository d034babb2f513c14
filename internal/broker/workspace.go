package broker

import (
	"context"
	"fmt"
	"sort"

	"finboard/internal/gateway/oanda"
	"finboard/internal/logger"
	"finboard/internal/pkg/convert"

	"golang.org/x/sync/errgroup"
)

const (
	// transactionWindow bounds the trailing id range requested from the
	// broker; activityLimit is how much of it the snapshot keeps.
	transactionWindow = 200
	activityLimit     = 30
)

// Workspace is the merged view of one user's broker state at one point in
// time. Trades, orders, positions and activity are best-effort: any of them
// may be empty because its fetch failed. Only the account summary is
// guaranteed present.
type Workspace struct {
	Account   oanda.AccountSummary `json:"account"`
	Trades    []oanda.Trade        `json:"trades"`
	Orders    []oanda.Order        `json:"orders"`
	Positions []oanda.Position     `json:"positions"`
	Activity  []oanda.Transaction  `json:"activity"`
}

// WorkspaceClient is the slice of the broker client the aggregator needs;
// *oanda.Client satisfies it.
type WorkspaceClient interface {
	AccountSummary(ctx context.Context) (*oanda.AccountSummaryResult, error)
	OpenTrades(ctx context.Context) ([]oanda.Trade, error)
	PendingOrders(ctx context.Context) ([]oanda.Order, error)
	OpenPositions(ctx context.Context) ([]oanda.Position, error)
	TransactionsIDRange(ctx context.Context, from, to int64) ([]oanda.Transaction, error)
}

// BuildWorkspace assembles a snapshot. The account summary is fetched first
// and is fatal on failure; its lastTransactionID anchors the activity window.
// The remaining four resources are fetched concurrently and settle
// independently: a failed fetch degrades that field to empty instead of
// failing the snapshot, and never aborts its siblings.
func BuildWorkspace(ctx context.Context, client WorkspaceClient) (*Workspace, error) {
	summary, err := client.AccountSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching account summary failed: %w", err)
	}

	var (
		trades       []oanda.Trade
		orders       []oanda.Order
		positions    []oanda.Position
		transactions []oanda.Transaction
	)

	// Each goroutine swallows its own error after logging it, so Wait never
	// short-circuits; this is a settle-all join, not a fail-fast one.
	var g errgroup.Group
	g.Go(func() error {
		var ferr error
		if trades, ferr = client.OpenTrades(ctx); ferr != nil {
			logger.Warnf("workspace: open trades fetch failed: %v", ferr)
			trades = nil
		}
		return nil
	})
	g.Go(func() error {
		var ferr error
		if orders, ferr = client.PendingOrders(ctx); ferr != nil {
			logger.Warnf("workspace: pending orders fetch failed: %v", ferr)
			orders = nil
		}
		return nil
	})
	g.Go(func() error {
		var ferr error
		if positions, ferr = client.OpenPositions(ctx); ferr != nil {
			logger.Warnf("workspace: open positions fetch failed: %v", ferr)
			positions = nil
		}
		return nil
	})
	g.Go(func() error {
		last := summary.LastTransactionID
		if last < 1 {
			return nil
		}
		from := last - transactionWindow
		if from < 1 {
			from = 1
		}
		var ferr error
		if transactions, ferr = client.TransactionsIDRange(ctx, from, last); ferr != nil {
			logger.Warnf("workspace: transaction range fetch failed: %v", ferr)
			transactions = nil
		}
		return nil
	})
	_ = g.Wait()

	ws := &Workspace{
		Account:   summary.Account,
		Trades:    sortTradesByPL(trades),
		Orders:    backfillOrderInstruments(orders, trades),
		Positions: emptyIfNil(positions),
		Activity:  windowActivity(transactions),
	}
	return ws, nil
}

// sortTradesByPL orders trades worst unrealized PL first, so the deepest
// drawdown sits at the top of the snapshot. Stable sort: broker order breaks
// ties.
func sortTradesByPL(trades []oanda.Trade) []oanda.Trade {
	if trades == nil {
		return []oanda.Trade{}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return convert.ToFloat64(trades[i].UnrealizedPL) < convert.ToFloat64(trades[j].UnrealizedPL)
	})
	return trades
}

// backfillOrderInstruments fills in each order's instrument from its related
// trade when the broker omitted it. Orders with no usable relation are left
// as fetched.
func backfillOrderInstruments(orders []oanda.Order, trades []oanda.Trade) []oanda.Order {
	if orders == nil {
		return []oanda.Order{}
	}
	byTradeID := make(map[string]string, len(trades))
	for _, tr := range trades {
		if tr.ID != "" && tr.Instrument != "" {
			byTradeID[tr.ID] = tr.Instrument
		}
	}
	for i := range orders {
		if orders[i].Instrument != "" {
			continue
		}
		if tradeID := orders[i].RelatedTradeID(); tradeID != "" {
			if inst, ok := byTradeID[tradeID]; ok {
				orders[i].Instrument = inst
			}
		}
	}
	return orders
}

// windowActivity keeps the most recent entries, newest first. The broker
// returns the id range in ascending order.
func windowActivity(transactions []oanda.Transaction) []oanda.Transaction {
	if len(transactions) > activityLimit {
		transactions = transactions[len(transactions)-activityLimit:]
	}
	out := make([]oanda.Transaction, 0, len(transactions))
	for i := len(transactions) - 1; i >= 0; i-- {
		out = append(out, transactions[i])
	}
	return out
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
