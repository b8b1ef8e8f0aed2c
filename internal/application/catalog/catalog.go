// Package catalog declara los recursos del portal del concesionario sobre el
// motor genérico de internal/application/resource.
package catalog

import (
	"fmt"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
)

// Nombres de recurso (segmento de URL /api/v1/{recurso}).
const (
	Dealers         = "dealers"
	Users           = "users"
	Staff           = "staff"
	Customers       = "customers"
	Profiles        = "profiles"
	Referrals       = "referrals"
	Products        = "products"
	ProductVariants = "product-variants"
	Vehicles        = "vehicles"
	Sales           = "sales"
	Orders          = "orders"
	PurchaseOrders  = "purchase-orders"
	Payments        = "payments"
	Returns         = "returns"
	Shipments       = "shipments"
	Estimates       = "estimates"
	Transactions    = "transactions"
	ServiceTickets  = "service-tickets"
	Jobs            = "jobs"
	PartsUsage      = "parts-usage"
	ServiceHistory  = "service-history"
)

// Tablas.
const (
	DealersTable         = "dealers"
	UsersTable           = "users"
	StaffTable           = "staff"
	CustomersTable       = "customers"
	ProfilesTable        = "profiles"
	ReferralsTable       = "referrals"
	ProductsTable        = "products"
	ProductVariantsTable = "product_variants"
	VehiclesTable        = "vehicles"
	SalesTable           = "sales"
	OrdersTable          = "orders"
	PurchaseOrdersTable  = "purchase_orders"
	PaymentsTable        = "payments"
	ReturnsTable         = "returns"
	ShipmentsTable       = "shipments"
	EstimatesTable       = "estimates"
	TransactionsTable    = "transactions"
	ServiceTicketsTable  = "service_tickets"
	JobsTable            = "jobs"
	PartsUsageTable      = "parts_usage"
	ServiceHistoryTable  = "service_history"
)

const dealerScope = "dealer_id"

var newestFirst = []query.Order{{Field: "created_at", Desc: true}}

func belongsTo(collection, field string) query.Relation {
	return query.Relation{Collection: collection, Field: field, References: "id"}
}

func hasMany(collection, field string) query.Relation {
	return query.Relation{Collection: collection, Field: "id", References: field, Many: true}
}

// Entities configuración declarativa de cada recurso.
func Entities() map[string]resource.EntityConfig {
	return map[string]resource.EntityConfig{
		Dealers: {
			Collection:       DealersTable,
			ScopeBy:          "id",
			DefaultOrder:     []query.Order{{Field: "name"}},
			SearchableFields: []string{"name", "code", "email"},
			Schema:           resource.NewStructSchema[entity.Dealer](),
			GenerateID:       true,
			SoftDelete:       &resource.SoftDeletePolicy{Field: "is_active", InactiveValue: false},
		},
		Users: {
			Collection:       UsersTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"email", "full_name"},
			Schema:           resource.NewStructSchema[entity.UserAccount](),
			GenerateID:       true,
			SoftDelete:       &resource.SoftDeletePolicy{Field: "status", InactiveValue: entity.UserStatusInactive},
			Relations: map[string]query.Relation{
				"dealer": belongsTo(DealersTable, "dealer_id"),
			},
		},
		Staff: {
			Collection:       StaffTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     []query.Order{{Field: "full_name"}},
			SearchableFields: []string{"full_name", "position"},
			Schema:           resource.NewStructSchema[entity.Staff](),
			GenerateID:       true,
			SoftDelete:       &resource.SoftDeletePolicy{Field: "is_active", InactiveValue: false},
			Relations: map[string]query.Relation{
				"user": belongsTo(UsersTable, "user_id"),
			},
		},
		Customers: {
			Collection:       CustomersTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"first_name", "last_name", "email", "document_number", "phone"},
			Schema:           resource.NewStructSchema[entity.Customer](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"vehicles": hasMany(VehiclesTable, "customer_id"),
			},
		},
		Profiles: {
			Collection:       ProfilesTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"full_name", "email", "phone"},
			Schema:           resource.NewStructSchema[entity.Profile](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"customer": belongsTo(CustomersTable, "customer_id"),
			},
		},
		Referrals: {
			Collection:       ReferralsTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"referral_code", "referred_name"},
			Schema:           resource.NewStructSchema[entity.Referral](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "referral_code", Prefix: "REF"},
			Relations: map[string]query.Relation{
				"customer": belongsTo(CustomersTable, "customer_id"),
			},
		},
		Products: {
			Collection:       ProductsTable,
			ScopeBy:          dealerScope,
			Include:          query.Include{"variants": nil},
			DefaultOrder:     []query.Order{{Field: "name"}},
			SearchableFields: []string{"name", "brand", "category"},
			Schema:           resource.NewStructSchema[entity.Product](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"variants": hasMany(ProductVariantsTable, "product_id"),
			},
		},
		ProductVariants: {
			Collection:       ProductVariantsTable,
			ScopeBy:          "product.dealer_id",
			Include:          query.Include{"product": nil},
			DefaultOrder:     []query.Order{{Field: "sku"}},
			SearchableFields: []string{"sku", "part_name"},
			Schema:           resource.NewStructSchema[entity.ProductVariant](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"product": belongsTo(ProductsTable, "product_id"),
			},
		},
		Vehicles: {
			Collection:       VehiclesTable,
			ScopeBy:          dealerScope,
			Include:          query.Include{"customer": nil},
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"vin", "plate", "make", "model"},
			Schema:           resource.NewStructSchema[entity.Vehicle](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"customer": belongsTo(CustomersTable, "customer_id"),
			},
		},
		Sales: {
			Collection:       SalesTable,
			ScopeBy:          dealerScope,
			Include:          query.Include{"customer": nil, "vehicle": nil},
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"sale_number"},
			Schema:           resource.NewStructSchema[entity.Sale](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "sale_number", Prefix: "SAL"},
			Relations: map[string]query.Relation{
				"customer": belongsTo(CustomersTable, "customer_id"),
				"vehicle":  belongsTo(VehiclesTable, "vehicle_id"),
			},
		},
		Orders: {
			Collection:       OrdersTable,
			ScopeBy:          dealerScope,
			Include:          query.Include{"customer": nil},
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"order_number"},
			Schema:           resource.NewStructSchema[entity.Order](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "order_number", Prefix: "ORD"},
			Relations: map[string]query.Relation{
				"customer":  belongsTo(CustomersTable, "customer_id"),
				"shipments": hasMany(ShipmentsTable, "order_id"),
			},
		},
		PurchaseOrders: {
			Collection:       PurchaseOrdersTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"po_number", "supplier"},
			Schema:           resource.NewStructSchema[entity.PurchaseOrder](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "po_number", Prefix: "PO"},
		},
		Payments: {
			Collection:       PaymentsTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"payment_number"},
			Schema:           resource.NewStructSchema[entity.Payment](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "payment_number", Prefix: "PAY"},
			Relations: map[string]query.Relation{
				"sale":  belongsTo(SalesTable, "sale_id"),
				"order": belongsTo(OrdersTable, "order_id"),
			},
		},
		Returns: {
			Collection:       ReturnsTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"return_number", "reason"},
			Schema:           resource.NewStructSchema[entity.Return](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "return_number", Prefix: "RET"},
			Relations: map[string]query.Relation{
				"order": belongsTo(OrdersTable, "order_id"),
			},
		},
		Shipments: {
			Collection:       ShipmentsTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"tracking_number", "carrier"},
			Schema:           resource.NewStructSchema[entity.Shipment](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "tracking_number", Prefix: "TRK"},
			Relations: map[string]query.Relation{
				"order": belongsTo(OrdersTable, "order_id"),
			},
		},
		Estimates: {
			Collection:       EstimatesTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"estimate_number"},
			Schema:           resource.NewStructSchema[entity.Estimate](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "estimate_number", Prefix: "EST"},
			Relations: map[string]query.Relation{
				"ticket": belongsTo(ServiceTicketsTable, "ticket_id"),
			},
		},
		Transactions: {
			Collection:       TransactionsTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"description"},
			Schema:           resource.NewStructSchema[entity.Transaction](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"job": belongsTo(JobsTable, "job_id"),
			},
		},
		ServiceTickets: {
			Collection:       ServiceTicketsTable,
			ScopeBy:          "profile.dealer_id",
			Include:          query.Include{"profile": nil, "vehicle": nil},
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"ticket_number", "description"},
			Schema:           resource.NewStructSchema[entity.ServiceTicket](),
			GenerateID:       true,
			BusinessNumber:   &resource.BusinessNumber{Field: "ticket_number", Prefix: "SRV"},
			Relations: map[string]query.Relation{
				"profile": belongsTo(ProfilesTable, "profile_id"),
				"vehicle": belongsTo(VehiclesTable, "vehicle_id"),
				"jobs":    hasMany(JobsTable, "ticket_id"),
			},
		},
		Jobs: {
			Collection:       JobsTable,
			ScopeBy:          dealerScope,
			Include:          query.Include{"parts": nil},
			DefaultOrder:     newestFirst,
			SearchableFields: []string{"title", "description"},
			Schema:           resource.NewStructSchema[entity.Job](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"ticket":     belongsTo(ServiceTicketsTable, "ticket_id"),
				"vehicle":    belongsTo(VehiclesTable, "vehicle_id"),
				"technician": belongsTo(StaffTable, "technician_id"),
				"parts":      hasMany(PartsUsageTable, "job_id"),
			},
		},
		PartsUsage: {
			Collection:   PartsUsageTable,
			ScopeBy:      dealerScope,
			Include:      query.Include{"variant": nil},
			DefaultOrder: newestFirst,
			Schema:       resource.NewStructSchema[entity.PartsUsage](),
			GenerateID:   true,
			Relations: map[string]query.Relation{
				"job":     belongsTo(JobsTable, "job_id"),
				"variant": belongsTo(ProductVariantsTable, "variant_id"),
			},
		},
		ServiceHistory: {
			Collection:       ServiceHistoryTable,
			ScopeBy:          dealerScope,
			DefaultOrder:     []query.Order{{Field: "service_date", Desc: true}},
			SearchableFields: []string{"description"},
			Schema:           resource.NewStructSchema[entity.ServiceHistory](),
			GenerateID:       true,
			Relations: map[string]query.Relation{
				"job":     belongsTo(JobsTable, "job_id"),
				"vehicle": belongsTo(VehiclesTable, "vehicle_id"),
			},
		},
	}
}

// Register agrega todos los recursos al registro y valida las rutas de alcance y carga.
func Register(reg *resource.Registry) error {
	for name, cfg := range Entities() {
		if err := reg.Register(name, cfg); err != nil {
			return err
		}
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// UniqueColumns columnas únicas por tabla además de id (números de negocio y SKU).
func UniqueColumns() map[string][]string {
	out := make(map[string][]string)
	for _, cfg := range Entities() {
		if cfg.BusinessNumber != nil {
			out[cfg.Collection] = append(out[cfg.Collection], cfg.BusinessNumber.Field)
		}
	}
	out[ProductVariantsTable] = append(out[ProductVariantsTable], "sku")
	out[UsersTable] = append(out[UsersTable], "email")
	return out
}
