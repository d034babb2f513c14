package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"

	"finboard/internal/gateway/oanda"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorkspaceClient returns canned results per resource; a nil error slot
// with nil data means "empty success".
type fakeWorkspaceClient struct {
	summary     *oanda.AccountSummaryResult
	summaryErr  error
	trades      []oanda.Trade
	tradesErr   error
	orders      []oanda.Order
	ordersErr   error
	positions   []oanda.Position
	positionErr error
	txs         []oanda.Transaction
	txsErr      error

	txFrom, txTo int64
	txCalls      atomic.Int32
}

func (f *fakeWorkspaceClient) AccountSummary(context.Context) (*oanda.AccountSummaryResult, error) {
	return f.summary, f.summaryErr
}

func (f *fakeWorkspaceClient) OpenTrades(context.Context) ([]oanda.Trade, error) {
	return f.trades, f.tradesErr
}

func (f *fakeWorkspaceClient) PendingOrders(context.Context) ([]oanda.Order, error) {
	return f.orders, f.ordersErr
}

func (f *fakeWorkspaceClient) OpenPositions(context.Context) ([]oanda.Position, error) {
	return f.positions, f.positionErr
}

func (f *fakeWorkspaceClient) TransactionsIDRange(_ context.Context, from, to int64) ([]oanda.Transaction, error) {
	f.txCalls.Add(1)
	f.txFrom, f.txTo = from, to
	return f.txs, f.txsErr
}

func summaryWithLastTx(last int64) *oanda.AccountSummaryResult {
	return &oanda.AccountSummaryResult{
		Account:           oanda.AccountSummary{ID: "001-001-1234567-001", Currency: "USD", Balance: "10000.00"},
		LastTransactionID: last,
	}
}

func orderFromJSON(t *testing.T, raw string) oanda.Order {
	t.Helper()
	var order oanda.Order
	require.NoError(t, json.Unmarshal([]byte(raw), &order))
	return order
}

func TestBuildWorkspaceMergesAllResources(t *testing.T) {
	client := &fakeWorkspaceClient{
		summary:   summaryWithLastTx(500),
		trades:    []oanda.Trade{{ID: "T1", Instrument: "EUR_USD", CurrentUnits: "100"}},
		orders:    []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"LIMIT","instrument":"GBP_USD"}`)},
		positions: []oanda.Position{{Instrument: "EUR_USD"}},
		txs:       []oanda.Transaction{{ID: "499"}, {ID: "500"}},
	}

	ws, err := BuildWorkspace(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "001-001-1234567-001", ws.Account.ID)
	assert.Len(t, ws.Trades, 1)
	assert.Len(t, ws.Orders, 1)
	assert.Len(t, ws.Positions, 1)
	assert.Len(t, ws.Activity, 2)
}

func TestBuildWorkspaceSummaryFailureIsFatal(t *testing.T) {
	client := &fakeWorkspaceClient{summaryErr: errors.New("boom")}

	ws, err := BuildWorkspace(context.Background(), client)
	assert.Nil(t, ws)
	assert.Error(t, err)
}

func TestBuildWorkspaceDegradesFailedResources(t *testing.T) {
	client := &fakeWorkspaceClient{
		summary:   summaryWithLastTx(500),
		tradesErr: errors.New("trades down"),
		orders:    []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"LIMIT","instrument":"GBP_USD"}`)},
		positions: []oanda.Position{{Instrument: "EUR_USD"}},
		txs:       []oanda.Transaction{{ID: "500"}},
	}

	ws, err := BuildWorkspace(context.Background(), client)
	require.NoError(t, err)
	// The failed resource is empty, not nil, and its siblings are intact.
	assert.NotNil(t, ws.Trades)
	assert.Empty(t, ws.Trades)
	assert.Len(t, ws.Orders, 1)
	assert.Len(t, ws.Positions, 1)
	assert.Len(t, ws.Activity, 1)
}

func TestBuildWorkspaceAllBestEffortFail(t *testing.T) {
	client := &fakeWorkspaceClient{
		summary:     summaryWithLastTx(500),
		tradesErr:   errors.New("down"),
		ordersErr:   errors.New("down"),
		positionErr: errors.New("down"),
		txsErr:      errors.New("down"),
	}

	ws, err := BuildWorkspace(context.Background(), client)
	require.NoError(t, err)
	assert.Empty(t, ws.Trades)
	assert.Empty(t, ws.Orders)
	assert.Empty(t, ws.Positions)
	assert.Empty(t, ws.Activity)
	assert.Equal(t, "001-001-1234567-001", ws.Account.ID)
}

func TestBuildWorkspaceTransactionWindow(t *testing.T) {
	t.Run("Window Clamped To One", func(t *testing.T) {
		client := &fakeWorkspaceClient{summary: summaryWithLastTx(50)}
		_, err := BuildWorkspace(context.Background(), client)
		require.NoError(t, err)
		assert.Equal(t, int64(1), client.txFrom)
		assert.Equal(t, int64(50), client.txTo)
	})

	t.Run("Full Trailing Window", func(t *testing.T) {
		client := &fakeWorkspaceClient{summary: summaryWithLastTx(500)}
		_, err := BuildWorkspace(context.Background(), client)
		require.NoError(t, err)
		assert.Equal(t, int64(300), client.txFrom)
		assert.Equal(t, int64(500), client.txTo)
	})

	t.Run("No Transactions Yet Skips Fetch", func(t *testing.T) {
		client := &fakeWorkspaceClient{summary: summaryWithLastTx(0)}
		ws, err := BuildWorkspace(context.Background(), client)
		require.NoError(t, err)
		assert.Zero(t, client.txCalls.Load())
		assert.Empty(t, ws.Activity)
	})
}

func TestBuildWorkspaceTradesWorstFirst(t *testing.T) {
	client := &fakeWorkspaceClient{
		summary: summaryWithLastTx(10),
		trades: []oanda.Trade{
			{ID: "T1", UnrealizedPL: "5.0"},
			{ID: "T2", UnrealizedPL: "-3.2"},
			{ID: "T3", UnrealizedPL: "1.1"},
		},
	}

	ws, err := BuildWorkspace(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, ws.Trades, 3)
	assert.Equal(t, "T2", ws.Trades[0].ID)
	assert.Equal(t, "T3", ws.Trades[1].ID)
	assert.Equal(t, "T1", ws.Trades[2].ID)
}

func TestBuildWorkspaceActivityNewestFirst(t *testing.T) {
	txs := make([]oanda.Transaction, 0, 40)
	for i := 1; i <= 40; i++ {
		txs = append(txs, oanda.Transaction{ID: strconv.Itoa(i)})
	}
	client := &fakeWorkspaceClient{summary: summaryWithLastTx(40), txs: txs}

	ws, err := BuildWorkspace(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, ws.Activity, 30)
	assert.Equal(t, "40", ws.Activity[0].ID)
	assert.Equal(t, "11", ws.Activity[29].ID)
}

func TestBackfillOrderInstruments(t *testing.T) {
	trades := []oanda.Trade{
		{ID: "T1", Instrument: "EUR_USD"},
		{ID: "T2", Instrument: "GBP_USD"},
	}

	t.Run("Fills From Related Trade", func(t *testing.T) {
		orders := []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"STOP_LOSS","tradeID":"T1"}`)}
		out := backfillOrderInstruments(orders, trades)
		assert.Equal(t, "EUR_USD", out[0].Instrument)
	})

	t.Run("Existing Instrument Untouched", func(t *testing.T) {
		orders := []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"STOP_LOSS","instrument":"USD_JPY","tradeID":"T1"}`)}
		out := backfillOrderInstruments(orders, trades)
		assert.Equal(t, "USD_JPY", out[0].Instrument)
	})

	t.Run("Unknown Trade Left As Fetched", func(t *testing.T) {
		orders := []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"STOP_LOSS","tradeID":"T9"}`)}
		out := backfillOrderInstruments(orders, trades)
		assert.Empty(t, out[0].Instrument)
	})

	t.Run("Alias Variant Resolves", func(t *testing.T) {
		orders := []oanda.Order{orderFromJSON(t, `{"id":"O1","type":"TAKE_PROFIT","openTradeID":"T2"}`)}
		out := backfillOrderInstruments(orders, trades)
		assert.Equal(t, "GBP_USD", out[0].Instrument)
	})
}

type fakeCredentialSource struct {
	creds UserCredentials
	err   error
	calls int
}

func (f *fakeCredentialSource) UserCredentials(context.Context, string) (UserCredentials, error) {
	f.calls++
	return f.creds, f.err
}

func TestResolverMissingCredentials(t *testing.T) {
	source := &fakeCredentialSource{creds: UserCredentials{Environment: "practice"}}
	resolver := NewResolver(source, oanda.Options{})

	client, err := resolver.Resolve(context.Background(), "user-1")
	assert.Nil(t, client)
	assert.ErrorIs(t, err, oanda.ErrMissingCredentials)
}

func TestResolverPicksActiveEnvironment(t *testing.T) {
	source := &fakeCredentialSource{creds: UserCredentials{
		Environment:       "live",
		PracticeAccountID: "practice-acct",
		PracticeAPIToken:  "practice-token",
		LiveAccountID:     "live-acct",
		LiveAPIToken:      "live-token",
	}}
	resolver := NewResolver(source, oanda.Options{})

	client, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "live-acct", client.AccountID())
}

func TestResolverSelectsPracticeSetIndependently(t *testing.T) {
	// Only the practice set is configured; selecting live must fail even
	// though a complete practice set exists.
	creds := UserCredentials{
		Environment:       "live",
		PracticeAccountID: "practice-acct",
		PracticeAPIToken:  "practice-token",
	}
	set := creds.ActiveSet()
	assert.Equal(t, oanda.Live, set.Environment)
	assert.ErrorIs(t, set.Validate(), oanda.ErrMissingCredentials)
}

func TestResolverPropagatesSourceError(t *testing.T) {
	source := &fakeCredentialSource{err: fmt.Errorf("db closed")}
	resolver := NewResolver(source, oanda.Options{})

	_, err := resolver.Resolve(context.Background(), "user-1")
	assert.ErrorContains(t, err, "db closed")
}

func TestServiceResolvesFreshClientPerCall(t *testing.T) {
	source := &fakeCredentialSource{creds: UserCredentials{
		Environment:       "practice",
		PracticeAccountID: "acct",
		PracticeAPIToken:  "token",
	}}
	svc := NewService(NewResolver(source, oanda.Options{}))

	// Risk validation fires before resolution, so the source stays untouched
	// on invalid input.
	bad := -1.0
	_, err := svc.UpdateTradeRisk(context.Background(), "user-1", "17", oanda.TradeRiskUpdate{StopLoss: &bad})
	assert.ErrorIs(t, err, oanda.ErrInvalidArgument)
	assert.Zero(t, source.calls)
}
