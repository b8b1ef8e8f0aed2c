package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo del concesionario (repuesto, accesorio, vehículo).
// El stock vive en sus variantes.
type Product struct {
	DealerID    string          `json:"dealer_id" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Brand       string          `json:"brand" validate:"omitempty,max=100"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	BasePrice   decimal.Decimal `json:"base_price" validate:"gte=0"`
}

// ProductVariant SKU concreto con existencias. Pertenece al concesionario vía su producto.
type ProductVariant struct {
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	SKU           string          `json:"sku" validate:"required,max=60"` // código único por concesionario
	PartName      string          `json:"part_name" validate:"required,max=200"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}
