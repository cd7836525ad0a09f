package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a money account payments are attributed to.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
