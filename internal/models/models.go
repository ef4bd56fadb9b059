package models

import "time"

// Option kind values stored in the option_type columns.
const (
	Call = "call"
	Put  = "put"
)

// OptionRecord is one observation of a quoted contract together with the
// analytics derived from it. Rows are insert-only; a later observation of the
// same contract appends a new row.
type OptionRecord struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Symbol            string    `json:"symbol" gorm:"size:10;not null;index:idx_options_symbol_exp"`
	OptionType        string    `json:"option_type" gorm:"size:4;not null"`
	StrikePrice       float64   `json:"strike_price" gorm:"not null"`
	ExpirationDate    time.Time `json:"expiration_date" gorm:"index:idx_options_symbol_exp;not null"`
	BidPrice          *float64  `json:"bid_price"`
	AskPrice          *float64  `json:"ask_price"`
	LastPrice         *float64  `json:"last_price"`
	UnderlyingPrice   *float64  `json:"underlying_price"`
	TimeToMaturity    *float64  `json:"time_to_maturity"` // years
	ImpliedVolatility *float64  `json:"implied_volatility"`
	CreatedAt         time.Time `json:"created_at" gorm:"index"`
}

func (OptionRecord) TableName() string { return "options_data" }

// GreeksRecord holds the five sensitivities computed for one OptionRecord.
type GreeksRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OptionID       uint      `json:"option_id" gorm:"index;not null"`
	Symbol         string    `json:"symbol" gorm:"size:10;not null;index:idx_greeks_symbol_exp"`
	StrikePrice    float64   `json:"strike_price" gorm:"not null"`
	ExpirationDate time.Time `json:"expiration_date" gorm:"index:idx_greeks_symbol_exp;not null"`
	OptionType     string    `json:"option_type" gorm:"size:4;not null"`
	Delta          float64   `json:"delta"`
	Gamma          float64   `json:"gamma"`
	Theta          float64   `json:"theta"`
	Vega           float64   `json:"vega"`
	Rho            float64   `json:"rho"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

func (GreeksRecord) TableName() string { return "greeks_data" }

// IVPoint is one point of the implied-volatility time series, written only
// when the solver converged for the observation.
type IVPoint struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Symbol            string    `json:"symbol" gorm:"size:10;not null;index:idx_iv_symbol_exp"`
	StrikePrice       float64   `json:"strike_price" gorm:"not null;index:idx_iv_symbol_exp"`
	ExpirationDate    time.Time `json:"expiration_date" gorm:"index:idx_iv_symbol_exp;not null"`
	OptionType        string    `json:"option_type" gorm:"size:4;not null"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	TimeToMaturity    *float64  `json:"time_to_maturity"`
	RecordedAt        time.Time `json:"recorded_at" gorm:"index"`
}

func (IVPoint) TableName() string { return "iv_evolution" }
