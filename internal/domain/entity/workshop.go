package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un trabajo del taller.
const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Vehicle vehículo de un cliente.
type Vehicle struct {
	DealerID   string `json:"dealer_id" validate:"omitempty,uuid"`
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
	VIN        string `json:"vin" validate:"omitempty,len=17"`
	Plate      string `json:"plate" validate:"omitempty,max=15"`
	Make       string `json:"make" validate:"required,max=60"`
	Model      string `json:"model" validate:"required,max=60"`
	Year       int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Mileage    int    `json:"mileage" validate:"gte=0"`
}

// ServiceTicket solicitud de servicio (SRV-...). Pertenece al concesionario vía el perfil del cliente.
type ServiceTicket struct {
	ProfileID    string `json:"profile_id" validate:"required,uuid"`
	VehicleID    string `json:"vehicle_id" validate:"omitempty,uuid"`
	TicketNumber string `json:"ticket_number" validate:"omitempty,max=40"`
	Description  string `json:"description" validate:"required,max=2000"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Status       string `json:"status" validate:"omitempty,oneof=open in_progress closed cancelled"`
}

// Job trabajo (orden de taller) asignado a un técnico.
type Job struct {
	DealerID     string `json:"dealer_id" validate:"omitempty,uuid"`
	TicketID     string `json:"ticket_id" validate:"omitempty,uuid"`
	VehicleID    string `json:"vehicle_id" validate:"omitempty,uuid"`
	TechnicianID string `json:"technician_id" validate:"omitempty,uuid"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"omitempty,max=2000"`
	Status       string `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Mileage      int    `json:"mileage" validate:"gte=0"`
}

// PartsUsage repuesto consumido en un trabajo. Al crearlo se descuenta el stock de la variante.
type PartsUsage struct {
	DealerID  string          `json:"dealer_id" validate:"omitempty,uuid"`
	JobID     string          `json:"job_id" validate:"required,uuid"`
	VariantID string          `json:"variant_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// ServiceHistory entrada del historial de servicio de un vehículo.
type ServiceHistory struct {
	DealerID    string    `json:"dealer_id" validate:"omitempty,uuid"`
	JobID       string    `json:"job_id" validate:"omitempty,uuid"`
	VehicleID   string    `json:"vehicle_id" validate:"omitempty,uuid"`
	ServiceDate time.Time `json:"service_date" validate:"required"`
	Mileage     int       `json:"mileage" validate:"gte=0"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
}
