package dto

import "github.com/shopspring/decimal"

// LowStockAlert payload del evento inventory:low_stock para una variante en o bajo el umbral.
type LowStockAlert struct {
	VariantID         string          `json:"variantId"`
	DealerID          string          `json:"dealerId,omitempty"`
	SKU               string          `json:"sku"`
	PartName          string          `json:"partName"`
	StockQuantity     decimal.Decimal `json:"stockQuantity"`
	Threshold         decimal.Decimal `json:"threshold"`
	SuggestedOrderQty decimal.Decimal `json:"suggestedOrderQty"` // umbral * 1.5 - stock
}
