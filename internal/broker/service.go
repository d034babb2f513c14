package broker

import (
	"context"
	"encoding/json"

	"finboard/internal/gateway/oanda"
)

// Service is the boundary exposed to transport: one aggregate read plus the
// single-resource reads and the mutation passthroughs. Every method resolves
// the caller's credentials and builds a fresh client; nothing broker-facing
// survives across calls.
type Service struct {
	resolver *Resolver
}

func NewService(resolver *Resolver) *Service {
	return &Service{resolver: resolver}
}

// Workspace returns the merged snapshot for one user.
func (s *Service) Workspace(ctx context.Context, userID string) (*Workspace, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildWorkspace(ctx, client)
}

// AccountSummary returns the raw account summary.
func (s *Service) AccountSummary(ctx context.Context, userID string) (*oanda.AccountSummaryResult, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.AccountSummary(ctx)
}

// Candles proxies an instrument candle query.
func (s *Service) Candles(ctx context.Context, userID string, query oanda.CandleQuery) (*oanda.CandlesResponse, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.Candles(ctx, query)
}

// Pricing proxies a pricing query for one or more instruments.
func (s *Service) Pricing(ctx context.Context, userID string, instruments []string) (*oanda.PricingResponse, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.Pricing(ctx, instruments)
}

// PendingOrders returns the user's pending orders, un-aggregated.
func (s *Service) PendingOrders(ctx context.Context, userID string) ([]oanda.Order, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.PendingOrders(ctx)
}

// CancelOrder cancels one pending order.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (json.RawMessage, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.CancelOrder(ctx, orderID)
}

// ClosePosition closes both sides of an instrument's position.
func (s *Service) ClosePosition(ctx context.Context, userID, instrument string) (json.RawMessage, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.ClosePosition(ctx, instrument)
}

// CloseTrade fully closes one trade.
func (s *Service) CloseTrade(ctx context.Context, userID, tradeID string) (json.RawMessage, error) {
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.CloseTrade(ctx, tradeID)
}

// UpdateTradeRisk updates the trade's protective orders. Validation runs
// before the client resolves a single byte to the broker.
func (s *Service) UpdateTradeRisk(ctx context.Context, userID, tradeID string, update oanda.TradeRiskUpdate) (json.RawMessage, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	client, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return client.UpdateTradeRisk(ctx, tradeID, update)
}
