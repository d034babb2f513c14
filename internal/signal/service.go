package signal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrActiveLinkExists rejects a second concurrent attempt on one signal.
var ErrActiveLinkExists = errors.New("signal already has a non-terminal link")

// ErrNotFound marks a missing or not-owned record on the read path. Writes
// never raise it: an update that matches zero rows is a silent no-op.
var ErrNotFound = errors.New("record not found")

// Store is the persistence consumed by the reconciler. All reads and writes
// are scoped by owning user; an update whose filter matches nothing reports
// zero affected rows rather than an error. InsertLink enforces the
// at-most-one-non-terminal-link rule atomically and returns
// ErrActiveLinkExists when a live link already exists for the signal.
type Store interface {
	InsertSignal(ctx context.Context, sig Signal) error
	GetSignal(ctx context.Context, userID, signalID string) (Signal, bool, error)
	ListSignals(ctx context.Context, userID string, limit int) ([]Signal, error)
	UpdateSignalStatus(ctx context.Context, userID, signalID string, status Status) (int64, error)

	InsertLink(ctx context.Context, link Link) error
	ListLinks(ctx context.Context, userID, signalID string) ([]Link, error)
	UpdateLink(ctx context.Context, userID, linkID string, update LinkUpdate) (int64, error)
}

// Service reconciles signals with the broker orders they produced.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NewSignalInput carries caller fields for signal creation.
type NewSignalInput struct {
	Instrument string
	Timeframe  string
	Action     Action
	EntryPrice *float64
	StopLoss   *float64
	TakeProfit *float64
	Rationale  string
}

// CreateSignal records a new recommendation in the open state.
func (s *Service) CreateSignal(ctx context.Context, userID string, in NewSignalInput) (Signal, error) {
	if strings.TrimSpace(userID) == "" {
		return Signal{}, fmt.Errorf("user id required")
	}
	if strings.TrimSpace(in.Instrument) == "" {
		return Signal{}, fmt.Errorf("instrument required")
	}
	if _, err := ParseAction(string(in.Action)); err != nil {
		return Signal{}, err
	}
	now := s.now()
	sig := Signal{
		ID:         uuid.NewString(),
		UserID:     userID,
		Instrument: strings.ToUpper(strings.TrimSpace(in.Instrument)),
		Timeframe:  strings.TrimSpace(in.Timeframe),
		Action:     in.Action,
		EntryPrice: in.EntryPrice,
		StopLoss:   in.StopLoss,
		TakeProfit: in.TakeProfit,
		Rationale:  in.Rationale,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertSignal(ctx, sig); err != nil {
		return Signal{}, fmt.Errorf("inserting signal failed: %w", err)
	}
	return sig, nil
}

// GetSignal returns one signal owned by the user.
func (s *Service) GetSignal(ctx context.Context, userID, signalID string) (Signal, error) {
	sig, ok, err := s.store.GetSignal(ctx, userID, signalID)
	if err != nil {
		return Signal{}, err
	}
	if !ok {
		return Signal{}, ErrNotFound
	}
	return sig, nil
}

// ListSignals returns the user's signals, newest first.
func (s *Service) ListSignals(ctx context.Context, userID string, limit int) ([]Signal, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListSignals(ctx, userID, limit)
}

// UpdateSignalStatus advances a signal's status. The write is ownership
// filtered and last-write-wins: there is no guard against re-writing an
// already-terminal signal, and an update matching zero rows (wrong owner,
// unknown id) is a silent no-op.
func (s *Service) UpdateSignalStatus(ctx context.Context, userID, signalID string, status Status) (bool, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return false, err
	}
	rows, err := s.store.UpdateSignalStatus(ctx, userID, signalID, status)
	if err != nil {
		return false, fmt.Errorf("updating signal status failed: %w", err)
	}
	return rows > 0, nil
}

// NewLinkInput carries caller fields for link creation.
type NewLinkInput struct {
	SignalID   string
	Instrument string
	Side       string
	OrderType  string
	RawPayload []byte
}

// CreateLink records that a signal was acted on. Re-attempts after a
// cancelled or failed attempt are allowed, but a second link is rejected
// while one is still non-terminal; the store enforces this atomically so two
// concurrent attempts cannot both slip through.
func (s *Service) CreateLink(ctx context.Context, userID string, in NewLinkInput) (Link, error) {
	if strings.TrimSpace(in.SignalID) == "" {
		return Link{}, fmt.Errorf("signal id required")
	}
	sig, ok, err := s.store.GetSignal(ctx, userID, in.SignalID)
	if err != nil {
		return Link{}, err
	}
	if !ok {
		return Link{}, ErrNotFound
	}
	instrument := strings.ToUpper(strings.TrimSpace(in.Instrument))
	if instrument == "" {
		instrument = sig.Instrument
	}
	now := s.now()
	link := Link{
		ID:         uuid.NewString(),
		SignalID:   sig.ID,
		UserID:     userID,
		Instrument: instrument,
		Side:       strings.ToUpper(strings.TrimSpace(in.Side)),
		OrderType:  strings.TrimSpace(in.OrderType),
		Status:     LinkPending,
		RawPayload: in.RawPayload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertLink(ctx, link); err != nil {
		if errors.Is(err, ErrActiveLinkExists) {
			return Link{}, err
		}
		return Link{}, fmt.Errorf("inserting link failed: %w", err)
	}
	return link, nil
}

// ListLinks returns the links for one signal owned by the user.
func (s *Service) ListLinks(ctx context.Context, userID, signalID string) ([]Link, error) {
	return s.store.ListLinks(ctx, userID, signalID)
}

// UpdateLink advances a link's status, optionally attaching the broker order
// and/or trade id learned at the same time. The update only applies when the
// link's owning user matches the caller; otherwise it affects zero rows and
// reports applied=false with no error, matching the ownership-filtered
// update semantics of the store.
func (s *Service) UpdateLink(ctx context.Context, userID, linkID string, update LinkUpdate) (bool, error) {
	if _, err := ParseLinkStatus(string(update.Status)); err != nil {
		return false, err
	}
	rows, err := s.store.UpdateLink(ctx, userID, linkID, update)
	if err != nil {
		return false, fmt.Errorf("updating link failed: %w", err)
	}
	return rows > 0, nil
}
