package gormstore

import (
	"context"
	"errors"
	"time"

	"finboard/internal/signal"
	"finboard/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func toSignalModel(sig signal.Signal) model.SignalModel {
	return model.SignalModel{
		ID:            sig.ID,
		UserID:        sig.UserID,
		Instrument:    sig.Instrument,
		Timeframe:     sig.Timeframe,
		Action:        string(sig.Action),
		EntryPrice:    sig.EntryPrice,
		StopLoss:      sig.StopLoss,
		TakeProfit:    sig.TakeProfit,
		Rationale:     sig.Rationale,
		Status:        string(sig.Status),
		CreatedAtUnix: sig.CreatedAt.Unix(),
		UpdatedAtUnix: sig.UpdatedAt.Unix(),
	}
}

func fromSignalModel(m model.SignalModel) signal.Signal {
	return signal.Signal{
		ID:         m.ID,
		UserID:     m.UserID,
		Instrument: m.Instrument,
		Timeframe:  m.Timeframe,
		Action:     signal.Action(m.Action),
		EntryPrice: m.EntryPrice,
		StopLoss:   m.StopLoss,
		TakeProfit: m.TakeProfit,
		Rationale:  m.Rationale,
		Status:     signal.Status(m.Status),
		CreatedAt:  time.Unix(m.CreatedAtUnix, 0),
		UpdatedAt:  time.Unix(m.UpdatedAtUnix, 0),
	}
}

func toLinkModel(link signal.Link) model.SignalLinkModel {
	return model.SignalLinkModel{
		ID:            link.ID,
		SignalID:      link.SignalID,
		UserID:        link.UserID,
		Instrument:    link.Instrument,
		Side:          link.Side,
		OrderType:     link.OrderType,
		OandaOrderID:  link.OandaOrderID,
		OandaTradeID:  link.OandaTradeID,
		Status:        string(link.Status),
		RawPayload:    datatypes.JSON(link.RawPayload),
		CreatedAtUnix: link.CreatedAt.Unix(),
		UpdatedAtUnix: link.UpdatedAt.Unix(),
	}
}

func fromLinkModel(m model.SignalLinkModel) signal.Link {
	return signal.Link{
		ID:           m.ID,
		SignalID:     m.SignalID,
		UserID:       m.UserID,
		Instrument:   m.Instrument,
		Side:         m.Side,
		OrderType:    m.OrderType,
		OandaOrderID: m.OandaOrderID,
		OandaTradeID: m.OandaTradeID,
		Status:       signal.LinkStatus(m.Status),
		RawPayload:   []byte(m.RawPayload),
		CreatedAt:    time.Unix(m.CreatedAtUnix, 0),
		UpdatedAt:    time.Unix(m.UpdatedAtUnix, 0),
	}
}

func (s *GormStore) InsertSignal(ctx context.Context, sig signal.Signal) error {
	m := toSignalModel(sig)
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *GormStore) GetSignal(ctx context.Context, userID, signalID string) (signal.Signal, bool, error) {
	var m model.SignalModel
	err := s.db.WithContext(ctx).First(&m, "id = ? AND user_id = ?", signalID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return signal.Signal{}, false, nil
	}
	if err != nil {
		return signal.Signal{}, false, err
	}
	return fromSignalModel(m), true, nil
}

func (s *GormStore) ListSignals(ctx context.Context, userID string, limit int) ([]signal.Signal, error) {
	var models []model.SignalModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]signal.Signal, 0, len(models))
	for _, m := range models {
		out = append(out, fromSignalModel(m))
	}
	return out, nil
}

// UpdateSignalStatus performs an ownership-filtered single-row update. No
// prior-state predicate: writes are last-write-wins by design.
func (s *GormStore) UpdateSignalStatus(ctx context.Context, userID, signalID string, status signal.Status) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.SignalModel{}).
		Where("id = ? AND user_id = ?", signalID, userID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().Unix(),
		})
	return res.RowsAffected, res.Error
}

var activeLinkStatuses = []string{
	string(signal.LinkPending),
	string(signal.LinkSubmitted),
	string(signal.LinkFilled),
}

// InsertLink creates a link only if the signal has no non-terminal link. The
// check and the insert run in one transaction; SQLite serializes writers, so
// two concurrent attempts cannot both pass the check.
func (s *GormStore) InsertLink(ctx context.Context, link signal.Link) error {
	m := toLinkModel(link)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&model.SignalLinkModel{}).
			Where("signal_id = ? AND status IN ?", m.SignalID, activeLinkStatuses).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return signal.ErrActiveLinkExists
		}
		return tx.Create(&m).Error
	})
}

func (s *GormStore) ListLinks(ctx context.Context, userID, signalID string) ([]signal.Link, error) {
	var models []model.SignalLinkModel
	err := s.db.WithContext(ctx).
		Where("signal_id = ? AND user_id = ?", signalID, userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]signal.Link, 0, len(models))
	for _, m := range models {
		out = append(out, fromLinkModel(m))
	}
	return out, nil
}

// UpdateLink applies one link transition, ownership filtered. Zero affected
// rows (wrong owner or unknown id) is not an error.
func (s *GormStore) UpdateLink(ctx context.Context, userID, linkID string, update signal.LinkUpdate) (int64, error) {
	fields := map[string]any{
		"status":     string(update.Status),
		"updated_at": time.Now().Unix(),
	}
	if update.OandaOrderID != nil {
		fields["oanda_order_id"] = *update.OandaOrderID
	}
	if update.OandaTradeID != nil {
		fields["oanda_trade_id"] = *update.OandaTradeID
	}
	if len(update.RawPayload) > 0 {
		fields["raw_payload"] = datatypes.JSON(update.RawPayload)
	}
	res := s.db.WithContext(ctx).Model(&model.SignalLinkModel{}).
		Where("id = ? AND user_id = ?", linkID, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}
