package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockTransactionType string

const (
	StockIn     StockTransactionType = "in"
	StockOut    StockTransactionType = "out"
	StockAdjust StockTransactionType = "adjust"
)

var StockTransactionTypes = []interface{}{string(StockIn), string(StockOut), string(StockAdjust)}

// Stock amounts are stored as numeric(15,4).
const StockScale = 4

var MaxStockAmount = decimal.RequireFromString("99999999999.9999")

type StockTransaction struct {
	ID           uint                 `json:"id"`
	ItemID       uint                 `json:"item_id"`
	QrID         uint                 `json:"qr_id"`
	Type         StockTransactionType `json:"type"`
	Quantity     decimal.Decimal      `json:"quantity"`
	Note         string               `json:"note"`
	BalanceAfter decimal.Decimal      `json:"balance_after"`
	CreatedBy    *uint                `json:"created_by"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Delta is the signed change the transaction applies to the item balance.
func (t StockTransaction) Delta() decimal.Decimal {
	if t.Type == StockOut {
		return t.Quantity.Neg()
	}

	return t.Quantity
}

type StockTransactionFilter struct {
	ItemID uint
	Type   string
}
