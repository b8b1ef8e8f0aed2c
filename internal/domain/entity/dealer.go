package entity

// Estados de cuentas de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Dealer representa un concesionario/taller (tenant del sistema).
type Dealer struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Code     string `json:"code" validate:"omitempty,max=30"`
	TaxID    string `json:"tax_id" validate:"omitempty,max=30"` // NIT o RUT
	Address  string `json:"address" validate:"omitempty,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive bool   `json:"is_active"`
}

// UserAccount cuenta de acceso al portal. Al borrarla con registros asociados
// se marca como inactive.
type UserAccount struct {
	DealerID string `json:"dealer_id" validate:"omitempty,uuid"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Role     string `json:"role" validate:"required,max=50"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Staff empleado del concesionario (técnicos, asesores). is_active=false al desactivarlo.
type Staff struct {
	DealerID string `json:"dealer_id" validate:"omitempty,uuid"`
	UserID   string `json:"user_id" validate:"omitempty,uuid"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Position string `json:"position" validate:"omitempty,max=80"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	IsActive bool   `json:"is_active"`
}
