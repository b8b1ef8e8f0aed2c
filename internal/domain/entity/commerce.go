package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale venta de vehículo o repuestos. sale_number se genera al crear (SAL-...).
type Sale struct {
	DealerID   string          `json:"dealer_id" validate:"omitempty,uuid"`
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	VehicleID  string          `json:"vehicle_id" validate:"omitempty,uuid"`
	SaleNumber string          `json:"sale_number" validate:"omitempty,max=40"`
	Total      decimal.Decimal `json:"total" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=draft confirmed cancelled"`
}

// Order pedido de tienda. order_number se genera al crear (ORD-...).
type Order struct {
	DealerID    string          `json:"dealer_id" validate:"omitempty,uuid"`
	CustomerID  string          `json:"customer_id" validate:"required,uuid"`
	OrderNumber string          `json:"order_number" validate:"omitempty,max=40"`
	Total       decimal.Decimal `json:"total" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending paid shipped delivered cancelled"`
}

// PurchaseOrder orden de compra a proveedor (PO-...).
type PurchaseOrder struct {
	DealerID     string          `json:"dealer_id" validate:"omitempty,uuid"`
	PONumber     string          `json:"po_number" validate:"omitempty,max=40"`
	Supplier     string          `json:"supplier" validate:"required,max=150"`
	Total        decimal.Decimal `json:"total" validate:"gte=0"`
	Status       string          `json:"status" validate:"omitempty,oneof=draft sent received cancelled"`
	ExpectedDate *time.Time      `json:"expected_date"`
}

// Payment pago recibido (PAY-...).
type Payment struct {
	DealerID      string          `json:"dealer_id" validate:"omitempty,uuid"`
	SaleID        string          `json:"sale_id" validate:"omitempty,uuid"`
	OrderID       string          `json:"order_id" validate:"omitempty,uuid"`
	PaymentNumber string          `json:"payment_number" validate:"omitempty,max=40"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Method        string          `json:"method" validate:"required,oneof=cash card transfer credit"`
	Status        string          `json:"status" validate:"omitempty,oneof=pending completed refunded"`
}

// Return devolución de un pedido (RET-...).
type Return struct {
	DealerID     string          `json:"dealer_id" validate:"omitempty,uuid"`
	OrderID      string          `json:"order_id" validate:"required,uuid"`
	ReturnNumber string          `json:"return_number" validate:"omitempty,max=40"`
	Reason       string          `json:"reason" validate:"required,max=500"`
	Amount       decimal.Decimal `json:"amount" validate:"gte=0"`
	Status       string          `json:"status" validate:"omitempty,oneof=requested approved rejected refunded"`
}

// Shipment envío de un pedido; tracking_number se genera al crear (TRK-...).
type Shipment struct {
	DealerID       string `json:"dealer_id" validate:"omitempty,uuid"`
	OrderID        string `json:"order_id" validate:"required,uuid"`
	TrackingNumber string `json:"tracking_number" validate:"omitempty,max=60"`
	Carrier        string `json:"carrier" validate:"omitempty,max=100"`
	Status         string `json:"status" validate:"omitempty,oneof=pending in_transit delivered returned"`
}

// Estimate cotización de un ticket de servicio (EST-...).
type Estimate struct {
	DealerID       string          `json:"dealer_id" validate:"omitempty,uuid"`
	TicketID       string          `json:"ticket_id" validate:"required,uuid"`
	EstimateNumber string          `json:"estimate_number" validate:"omitempty,max=40"`
	Total          decimal.Decimal `json:"total" validate:"gte=0"`
	Status         string          `json:"status" validate:"omitempty,oneof=draft sent approved rejected"`
	ValidUntil     *time.Time      `json:"valid_until"`
}

// Tipos y estados de transacción financiera.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"

	TransactionPending   = "pending"
	TransactionCompleted = "completed"
)

// Transaction movimiento financiero del concesionario. Los trabajos completados
// generan uno de tipo income en estado pending.
type Transaction struct {
	DealerID    string          `json:"dealer_id" validate:"omitempty,uuid"`
	JobID       string          `json:"job_id" validate:"omitempty,uuid"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}
