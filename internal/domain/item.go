package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemPalette holds the wheel colors handed out to items created without one.
var ItemPalette = []string{
	"#f59e0b", "#fcd34d", "#fb7185", "#c084fc", "#60a5fa",
	"#34d399", "#fdba74", "#f9a8d4", "#93c5fd", "#a7f3d0",
}

// PaletteColor spreads consecutive items across the palette.
func PaletteColor(index int64) string {
	if index < 0 {
		index = 0
	}

	return ItemPalette[(index*3)%int64(len(ItemPalette))]
}

type Item struct {
	ID           uint            `json:"id"`
	QrID         uint            `json:"qr_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Color        string          `json:"color"`
	BalanceStock decimal.Decimal `json:"balance_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (i Item) InStock() bool {
	return i.BalanceStock.IsPositive()
}

type ItemFilter struct {
	Search string
}

// WheelItem is the public view of an item on the spin wheel.
type WheelItem struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	InStock bool   `json:"in_stock"`
}
