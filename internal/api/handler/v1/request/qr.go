package request

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

var colorExp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type CreateQrRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (req *CreateQrRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Status == "" {
		req.Status = string(domain.QrActive)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(0, 255)),
		validation.Field(&req.Status, validation.In(domain.QrStatuses...)),
	)
}

type UpdateQrRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (req *UpdateQrRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(0, 255)),
		validation.Field(&req.Status, validation.Required, validation.In(domain.QrStatuses...)),
	)
}

type QuestionRequest struct {
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	IsRequired bool     `json:"is_required"`
	Options    []string `json:"options"`
	SortOrder  int      `json:"sort_order"`
}

func (req *QuestionRequest) Validate() error {
	req.Label = strings.TrimSpace(req.Label)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Label, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Type, validation.Required, validation.In(domain.QuestionTypes...)),
		validation.Field(&req.Options, validation.Each(validation.Length(0, 255))),
		validation.Field(&req.SortOrder, validation.Min(0)),
	)
}

type ItemRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Color        string          `json:"color"`
	InitialStock decimal.Decimal `json:"initial_stock"`
}

func (req *ItemRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.TrimSpace(req.SKU)
	req.Color = strings.TrimSpace(req.Color)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.SKU, validation.Length(0, 100)),
		validation.Field(&req.Color, validation.Match(colorExp).Error("must be a hex color like #A1B2C3")),
		validation.Field(&req.InitialStock, validation.By(nonNegative), validation.By(storableAmount)),
	)
}

type StockTransactionRequest struct {
	ItemID   uint            `json:"item_id"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note"`
}

func (req *StockTransactionRequest) Validate() error {
	req.Note = strings.TrimSpace(req.Note)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.ItemID, validation.Required),
		validation.Field(&req.Type, validation.Required, validation.In(domain.StockTransactionTypes...)),
		validation.Field(&req.Quantity, validation.By(positive), validation.By(storableAmount)),
		validation.Field(&req.Note, validation.Length(0, 2000)),
	)
}

func nonNegative(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}

	return nil
}

func storableAmount(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if !d.Equal(d.Truncate(domain.StockScale)) {
		return fmt.Errorf("must have at most %d decimal places", domain.StockScale)
	}
	if d.Abs().GreaterThan(domain.MaxStockAmount) {
		return fmt.Errorf("must be no greater than %s", domain.MaxStockAmount.StringFixed(domain.StockScale))
	}

	return nil
}

func positive(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}

	return nil
}

type ResponseStatusRequest struct {
	Status string `json:"status"`
}

func (req *ResponseStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(domain.FormResponseStatuses...)),
	)
}

type WishStatusRequest struct {
	Status string `json:"status"`
}

func (req *WishStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(domain.WishStatuses...)),
	)
}

type GeneratePinsRequest struct {
	Count int `json:"count"`
}

func (req *GeneratePinsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Count, validation.Required, validation.Min(1), validation.Max(1000)),
	)
}
