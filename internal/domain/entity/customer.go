package entity

// Customer representa un cliente del concesionario.
type Customer struct {
	DealerID       string `json:"dealer_id" validate:"omitempty,uuid"`
	FirstName      string `json:"first_name" validate:"required,min=1,max=100"`
	LastName       string `json:"last_name" validate:"required,min=1,max=100"`
	DocumentNumber string `json:"document_number" validate:"omitempty,max=30"` // cédula o NIT
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=30"`
}

// Profile perfil de cliente usado por la app móvil; los tickets de servicio
// pertenecen al concesionario a través de su perfil.
type Profile struct {
	DealerID   string `json:"dealer_id" validate:"omitempty,uuid"`
	CustomerID string `json:"customer_id" validate:"omitempty,uuid"`
	FullName   string `json:"full_name" validate:"required,min=2,max=150"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
}

// Referral referido traído por un cliente. El código se genera al crear.
type Referral struct {
	DealerID     string `json:"dealer_id" validate:"omitempty,uuid"`
	CustomerID   string `json:"customer_id" validate:"required,uuid"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=40"`
	ReferredName string `json:"referred_name" validate:"required,max=150"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	Status       string `json:"status" validate:"omitempty,oneof=pending contacted converted lost"`
}
