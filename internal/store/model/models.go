package model

import "gorm.io/datatypes"

// UserModel holds the per-user broker credential pair: an environment
// selector plus one account/token set per environment. Tokens are stored as
// the user entered them; validation happens at resolve time.
type UserModel struct {
	ID                string `gorm:"column:id;primaryKey"`
	Username          string `gorm:"column:username;uniqueIndex"`
	OandaEnvironment  string `gorm:"column:oanda_environment"`
	PracticeAccountID string `gorm:"column:practice_account_id"`
	PracticeAPIToken  string `gorm:"column:practice_api_token"`
	LiveAccountID     string `gorm:"column:live_account_id"`
	LiveAPIToken      string `gorm:"column:live_api_token"`
	CreatedAtUnix     int64  `gorm:"column:created_at"`
	UpdatedAtUnix     int64  `gorm:"column:updated_at"`
}

func (UserModel) TableName() string { return "users" }

type SignalModel struct {
	ID            string   `gorm:"column:id;primaryKey"`
	UserID        string   `gorm:"column:user_id;index"`
	Instrument    string   `gorm:"column:instrument"`
	Timeframe     string   `gorm:"column:timeframe"`
	Action        string   `gorm:"column:action"`
	EntryPrice    *float64 `gorm:"column:entry_price"`
	StopLoss      *float64 `gorm:"column:stop_loss"`
	TakeProfit    *float64 `gorm:"column:take_profit"`
	Rationale     string   `gorm:"column:rationale;type:TEXT"`
	Status        string   `gorm:"column:status;index"`
	CreatedAtUnix int64    `gorm:"column:created_at"`
	UpdatedAtUnix int64    `gorm:"column:updated_at"`
}

func (SignalModel) TableName() string { return "signals" }

type SignalLinkModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	SignalID      string         `gorm:"column:signal_id;index"`
	UserID        string         `gorm:"column:user_id;index"`
	Instrument    string         `gorm:"column:instrument"`
	Side          string         `gorm:"column:side"`
	OrderType     string         `gorm:"column:order_type"`
	OandaOrderID  string         `gorm:"column:oanda_order_id"`
	OandaTradeID  string         `gorm:"column:oanda_trade_id"`
	Status        string         `gorm:"column:status;index"`
	RawPayload    datatypes.JSON `gorm:"column:raw_payload;type:TEXT"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (SignalLinkModel) TableName() string { return "signal_links" }
