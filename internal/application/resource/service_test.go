package resource_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
	"github.com/jhoicas/Concesionario-api/internal/infrastructure/memstore"
)

type customerPayload struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"omitempty,email"`
	DealerID string `json:"dealer_id"`
	IsActive *bool  `json:"is_active"`
}

type orderPayload struct {
	OrderNumber string          `json:"order_number"`
	CustomerID  string          `json:"customer_id" validate:"required"`
	VehicleID   string          `json:"vehicle_id"`
	DealerID    string          `json:"dealer_id"`
	Total       decimal.Decimal `json:"total" validate:"gte=0"`
}

var (
	adminD1   = &entity.ActingUser{ID: "u1", Role: entity.RoleDealerAdmin, DealerID: "d1"}
	adminD2   = &entity.ActingUser{ID: "u2", Role: entity.RoleDealerAdmin, DealerID: "d2"}
	superUser = &entity.ActingUser{ID: "root", Role: entity.RoleSuperAdmin}
	viewerD1  = &entity.ActingUser{ID: "u3", Role: "viewer", DealerID: "d1"}
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	err    error
	events []string
	data   []any
}

func (b *recordingBroadcaster) Emit(_ context.Context, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.data = append(b.data, payload)
	return b.err
}

type serviceFixture struct {
	registry    *resource.Registry
	store       *memstore.Store
	dispatcher  *resource.Dispatcher
	broadcaster *recordingBroadcaster
	metrics     *recordingMetrics
	now         time.Time
}

func newTestRegistry(t *testing.T) *resource.Registry {
	t.Helper()
	reg := resource.NewRegistry()
	byCreated := []query.Order{{Field: "created_at", Desc: true}}
	require.NoError(t, reg.Register("customers", resource.EntityConfig{
		Collection:       "customers",
		ScopeBy:          "dealer_id",
		DefaultOrder:     byCreated,
		SearchableFields: []string{"name", "email"},
		Schema:           resource.NewStructSchema[customerPayload](),
		GenerateID:       true,
		SoftDelete:       &resource.SoftDeletePolicy{Field: "is_active", InactiveValue: false},
	}))
	require.NoError(t, reg.Register("vehicles", resource.EntityConfig{
		Collection: "vehicles",
		ScopeBy:    "dealer_id",
		GenerateID: true,
	}))
	require.NoError(t, reg.Register("orders", resource.EntityConfig{
		Collection:     "orders",
		ScopeBy:        "dealer_id",
		DefaultOrder:   byCreated,
		Schema:         resource.NewStructSchema[orderPayload](),
		GenerateID:     true,
		BusinessNumber: &resource.BusinessNumber{Field: "order_number", Prefix: "ORD"},
		Relations: map[string]query.Relation{
			"customer": {Collection: "customers", Field: "customer_id", References: "id"},
			"vehicle":  {Collection: "vehicles", Field: "vehicle_id", References: "id"},
		},
	}))
	require.NoError(t, reg.Register("notes", resource.EntityConfig{
		Collection: "notes",
		ScopeBy:    "customer.dealer_id",
		Include:    query.Include{"customer": nil},
		Relations: map[string]query.Relation{
			"customer": {Collection: "customers", Field: "customer_id", References: "id"},
		},
	}))
	require.NoError(t, reg.Validate())
	return reg
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	reg := newTestRegistry(t)
	f := &serviceFixture{
		registry:    reg,
		store:       memstore.New(reg.Catalog(), memstore.WithUnique("orders", "order_number")),
		broadcaster: &recordingBroadcaster{},
		metrics:     &recordingMetrics{},
		now:         time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
	f.dispatcher = resource.NewDispatcher(zerolog.Nop(), f.metrics)
	return f
}

// service arma el motor sobre store (el memstore del fixture si es nil).
func (f *serviceFixture) service(store repository.Datastore) *resource.Service {
	if store == nil {
		store = f.store
	}
	perms := memstore.NewPermissionStore(map[string][]string{
		entity.RoleDealerAdmin: {
			"customers:create", "customers:read", "customers:update", "customers:delete",
			"vehicles:create", "vehicles:read", "vehicles:update", "vehicles:delete",
			"orders:create", "orders:read", "orders:update", "orders:delete",
			"notes:create", "notes:read", "notes:update", "notes:delete",
		},
		"viewer": {"customers:read"},
	})
	authz := resource.NewAuthorizer(f.registry, perms, "")
	return resource.NewService(f.registry, authz, store, f.dispatcher, f.broadcaster, f.metrics, zerolog.Nop(), resource.Options{
		DefaultLimit: 50,
		Now:          func() time.Time { return f.now },
	})
}

func (f *serviceFixture) seedCustomers() {
	base := f.now.Add(-time.Hour)
	f.store.Seed("customers",
		entity.Record{"id": "c1", "dealer_id": "d1", "name": "Ana Gómez", "email": "ana@d1.co", "created_at": base},
		entity.Record{"id": "c2", "dealer_id": "d1", "name": "Bruno Díaz", "email": "bruno@d1.co", "created_at": base.Add(time.Minute)},
		entity.Record{"id": "c3", "dealer_id": "d2", "name": "ANA Ruiz", "email": "ana@d2.co", "created_at": base.Add(2 * time.Minute)},
	)
}

func ids(records []entity.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestList_AislamientoPorTenant(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)
	ctx := context.Background()

	res, err := svc.List(ctx, adminD1, "customers", resource.ListParams{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids(res.Data))
	assert.Equal(t, 2, res.Pagination.Total)

	res, err = svc.List(ctx, adminD2, "customers", resource.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, ids(res.Data))

	res, err = svc.List(ctx, superUser, "customers", resource.ListParams{})
	require.NoError(t, err)
	assert.Len(t, res.Data, 3, "el super admin no tiene alcance")
}

func TestList_AlcancePorRelacion(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	f.store.Seed("notes",
		entity.Record{"id": "n1", "customer_id": "c1", "body": "cambio de aceite"},
		entity.Record{"id": "n2", "customer_id": "c3", "body": "frenos"},
	)
	svc := f.service(nil)

	res, err := svc.List(context.Background(), adminD1, "notes", resource.ListParams{})
	require.NoError(t, err)
	require.Equal(t, []string{"n1"}, ids(res.Data))
	customer, ok := res.Data[0]["customer"].(entity.Record)
	require.True(t, ok, "la relación se incluye según la forma de carga")
	assert.Equal(t, "c1", customer.ID())

	_, err = svc.Read(context.Background(), adminD1, "notes", "n2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_PaginacionYOrden(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.store.Seed("customers", entity.Record{
			"id":         fmt.Sprintf("c%02d", i),
			"dealer_id":  "d1",
			"name":       fmt.Sprintf("cliente %02d", i),
			"created_at": f.now.Add(time.Duration(i) * time.Minute),
		})
	}
	svc := f.service(nil)

	res, err := svc.List(context.Background(), adminD1, "customers", resource.ParseListParams(map[string]string{"page": "2", "limit": "10"}, 50))
	require.NoError(t, err)
	assert.Len(t, res.Data, 10)
	assert.Equal(t, 25, res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.Page)
	assert.Equal(t, 10, res.Pagination.Limit)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.Equal(t, "c14", res.Data[0].ID(), "orden created_at descendente")
	assert.Equal(t, "c05", res.Data[9].ID())

	res, err = svc.List(context.Background(), adminD1, "customers", resource.ParseListParams(map[string]string{"page": "9", "limit": "10"}, 50))
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 25, res.Pagination.Total)
}

func TestList_FiltrosYBusqueda(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)
	ctx := context.Background()

	res, err := svc.List(ctx, superUser, "customers", resource.ParseListParams(map[string]string{"q": "ana"}, 0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c3"}, ids(res.Data), "búsqueda sin distinguir mayúsculas")

	res, err = svc.List(ctx, adminD1, "customers", resource.ParseListParams(map[string]string{"search": "ana"}, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids(res.Data), "la búsqueda no escapa del alcance")

	res, err = svc.List(ctx, adminD1, "customers", resource.ParseListParams(map[string]string{"dealer_id": "d2"}, 0))
	require.NoError(t, err)
	assert.Empty(t, res.Data, "un filtro explícito no amplía el alcance")
}

func TestCreate_InyectaTenantYEmiteCambio(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)

	rec, err := svc.Create(context.Background(), adminD1, "customers", map[string]any{
		"name":      "Carla",
		"dealer_id": "d2",
		"hacker":    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "d1", rec["dealer_id"])
	assert.NotContains(t, rec, "hacker")
	assert.Equal(t, []string{"customers:changed"}, f.broadcaster.events)
	ev := f.broadcaster.data[0].(resource.ChangeEvent)
	assert.Equal(t, "create", ev.Action)
	assert.Equal(t, rec.ID(), ev.ID)

	platform, err := svc.Create(context.Background(), superUser, "customers", map[string]any{"name": "Dana", "dealer_id": "d2"})
	require.NoError(t, err)
	assert.Equal(t, "d2", platform["dealer_id"], "la plataforma elige el tenant")
}

func TestCreate_ValidacionNoEscribe(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)

	_, err := svc.Create(context.Background(), adminD1, "customers", map[string]any{"email": "sin-arroba"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := []string{}
	for _, d := range verr.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email"}, fields)

	n, err := f.store.Count(context.Background(), "customers", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.broadcaster.events)
}

func TestCreate_NumeroDeNegocio(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)

	rec, err := svc.Create(context.Background(), adminD1, "orders", map[string]any{"customer_id": "c1", "total": "120.50"})
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-20260302-[A-Z0-9]{4}$`, rec["order_number"])

	given, err := svc.Create(context.Background(), adminD1, "orders", map[string]any{"customer_id": "c1", "order_number": "ORD-MANUAL"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-MANUAL", given["order_number"])

	_, err = svc.Create(context.Background(), adminD1, "orders", map[string]any{"customer_id": "c1", "order_number": "ORD-MANUAL"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "un número provisto no se regenera")
}

// collidingStore falla los primeros Create con ErrDuplicate.
type collidingStore struct {
	*memstore.Store
	failures int
	numbers  []string
}

func (s *collidingStore) Create(ctx context.Context, collection string, data entity.Record, include query.Include) (entity.Record, error) {
	s.numbers = append(s.numbers, data.String("order_number"))
	if s.failures > 0 {
		s.failures--
		return nil, fmt.Errorf("orders.order_number: %w", domain.ErrDuplicate)
	}
	return s.Store.Create(ctx, collection, data, include)
}

func TestCreate_ReintentaColisionDeNumero(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	store := &collidingStore{Store: f.store, failures: 2}
	svc := f.service(store)

	rec, err := svc.Create(context.Background(), adminD1, "orders", map[string]any{"customer_id": "c1"})
	require.NoError(t, err)
	require.Len(t, store.numbers, 3)
	assert.Equal(t, store.numbers[2], rec["order_number"])

	store.failures = 5
	store.numbers = nil
	_, err = svc.Create(context.Background(), adminD1, "orders", map[string]any{"customer_id": "c1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, store.numbers, 3, "máximo tres intentos")
}

func TestRead_OtroTenantEsNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)

	rec, err := svc.Read(context.Background(), adminD1, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", rec["name"])

	_, foreign := svc.Read(context.Background(), adminD1, "customers", "c3")
	_, missing := svc.Read(context.Background(), adminD1, "customers", "c999")
	assert.ErrorIs(t, foreign, domain.ErrNotFound)
	assert.ErrorIs(t, missing, domain.ErrNotFound)
	assert.Equal(t, missing.Error(), foreign.Error(), "no se distingue ajeno de inexistente")
}

func TestUpdate_ParcialYDentroDelAlcance(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)
	ctx := context.Background()

	rec, err := svc.Update(ctx, adminD1, "customers", "c1", map[string]any{"email": "ana@nuevo.co", "dealer_id": "d2", "id": "otro"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", rec["name"], "los campos ausentes se conservan")
	assert.Equal(t, "ana@nuevo.co", rec["email"])
	assert.Equal(t, "d1", rec["dealer_id"], "no se puede mover a otro tenant")
	assert.Equal(t, "c1", rec.ID())

	_, err = svc.Update(ctx, adminD2, "customers", "c1", map[string]any{"name": "Robado"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, adminD1, "customers", "c1", map[string]any{"email": "malo"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rec, err = svc.Read(ctx, adminD1, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, "ana@nuevo.co", rec["email"])
}

func TestCreateYUpdate_ReferenciasDeOtroTenant(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	f.store.Seed("notes", entity.Record{"id": "n1", "customer_id": "c1", "body": "cambio de aceite"})
	f.store.Seed("vehicles", entity.Record{"id": "v3", "dealer_id": "d2", "plate": "DDD222"})
	svc := f.service(nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, adminD1, "notes", "n1", map[string]any{"customer_id": "c3"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "no puede moverse a un cliente de otro tenant")
	note, err := svc.Read(ctx, adminD1, "notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, "c1", note["customer_id"])

	_, err = svc.Create(ctx, adminD1, "notes", map[string]any{"customer_id": "c3", "body": "intruso"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Create(ctx, adminD1, "orders", map[string]any{"customer_id": "c3"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Create(ctx, adminD1, "orders", map[string]any{"customer_id": "c1", "vehicle_id": "v3"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, missing := svc.Create(ctx, adminD1, "orders", map[string]any{"customer_id": "c999"})
	assert.ErrorIs(t, missing, domain.ErrNotFound)
	assert.Equal(t, missing.Error(), err.Error(), "no se distingue ajeno de inexistente")

	n, err := f.store.Count(ctx, "orders", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.store.Count(ctx, "notes", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.broadcaster.events)

	created, err := svc.Create(ctx, adminD1, "notes", map[string]any{"customer_id": "c2", "body": "rotación"})
	require.NoError(t, err)
	assert.Equal(t, "c2", created["customer_id"])

	moved, err := svc.Update(ctx, superUser, "notes", "n1", map[string]any{"customer_id": "c3"})
	require.NoError(t, err, "la plataforma puede reasignar")
	assert.Equal(t, "c3", moved["customer_id"])
}

// racingStore borra el registro justo después de la lectura previa al update.
type racingStore struct {
	*memstore.Store
	once sync.Once
}

func (s *racingStore) FindFirst(ctx context.Context, collection string, where query.Filter, include query.Include) (entity.Record, error) {
	rec, err := s.Store.FindFirst(ctx, collection, where, include)
	s.once.Do(func() {
		_, _ = s.Store.DeleteWhere(ctx, collection, query.ByID(rec.ID()))
	})
	return rec, err
}

func TestUpdate_EscrituraCondicional(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(&racingStore{Store: f.store})

	_, err := svc.Update(context.Background(), adminD1, "customers", "c2", map[string]any{"name": "Fantasma"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	n, _ := f.store.Count(context.Background(), "customers", query.ByID("c2"))
	assert.Zero(t, n, "la escritura no resucita el registro")
	assert.Empty(t, f.broadcaster.events)
}

func TestDelete_FisicoYDesactivacion(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	f.store.Seed("vehicles",
		entity.Record{"id": "v1", "dealer_id": "d1", "plate": "ABC123"},
		entity.Record{"id": "v2", "dealer_id": "d1", "plate": "XYZ987"},
	)
	f.store.Seed("orders", entity.Record{"id": "o1", "dealer_id": "d1", "customer_id": "c1", "vehicle_id": "v1"})
	svc := f.service(nil)
	ctx := context.Background()

	res, err := svc.Delete(ctx, adminD1, "customers", "c2")
	require.NoError(t, err)
	assert.False(t, res.SoftDeleted)
	_, err = svc.Read(ctx, adminD1, "customers", "c2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err = svc.Delete(ctx, adminD1, "customers", "c1")
	require.NoError(t, err)
	assert.True(t, res.SoftDeleted)
	rec, err := svc.Read(ctx, adminD1, "customers", "c1")
	require.NoError(t, err)
	assert.Equal(t, false, rec["is_active"])

	_, err = svc.Delete(ctx, adminD1, "vehicles", "v1")
	assert.ErrorIs(t, err, domain.ErrIntegrity, "sin política de desactivación")

	_, err = svc.Delete(ctx, adminD2, "vehicles", "v2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Delete(ctx, adminD1, "vehicles", "v2")
	require.NoError(t, err)

	assert.Equal(t, []string{"customers:purged", "customers:changed", "vehicles:purged"}, f.broadcaster.events)
}

func TestService_Autorizacion(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	svc := f.service(nil)
	ctx := context.Background()

	_, err := svc.List(ctx, nil, "customers", resource.ListParams{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.List(ctx, adminD1, "invoices", resource.ListParams{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, viewerD1, "customers", resource.ListParams{})
	assert.NoError(t, err)

	_, err = svc.Delete(ctx, viewerD1, "customers", "c1")
	var ferr *domain.ForbiddenError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "customers:delete", ferr.Permission)
	n, _ := f.store.Count(ctx, "customers", nil)
	assert.Equal(t, 3, n)

	names, err := svc.Resources(viewerD1)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "notes", "orders", "vehicles"}, names)
	_, err = svc.Resources(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_EfectosYEventosNoAfectanLaRespuesta(t *testing.T) {
	f := newFixture(t)
	f.seedCustomers()
	f.broadcaster.err = errors.New("redis caído")
	var got resource.MutationEvent
	f.dispatcher.Register("customers", resource.OpUpdate, hookFunc{name: "auditoria", fn: func(_ context.Context, ev resource.MutationEvent) error {
		got = ev
		return errors.New("auditoría no disponible")
	}})
	svc := f.service(nil)

	rec, err := svc.Update(context.Background(), adminD1, "customers", "c1", map[string]any{"name": "Ana María"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", rec["name"])

	assert.Equal(t, "Ana Gómez", got.Before["name"])
	assert.Equal(t, "Ana María", got.After["name"])
	assert.Equal(t, *adminD1, got.User)
	assert.Equal(t, []string{"customers:update:auditoria"}, f.metrics.sideEffect)
	assert.Equal(t, []string{"customers:changed"}, f.metrics.broadcast)
}
