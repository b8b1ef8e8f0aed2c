package resource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Concesionario-api/internal/application/dto"
	"github.com/jhoicas/Concesionario-api/internal/domain"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Reintentos de Create cuando el número de negocio generado colisiona con uno existente.
const maxNumberAttempts = 3

// Options ajustes de despliegue del motor.
type Options struct {
	DefaultLimit int
	// MaxLimit tope opcional para limit (0 = sin tope).
	MaxLimit int
	Now      func() time.Time
}

// Service casos de uso List/Create/Read/Update/Delete para cualquier recurso registrado.
type Service struct {
	registry    *Registry
	authz       *Authorizer
	store       repository.Datastore
	dispatcher  *Dispatcher
	broadcaster Broadcaster
	metrics     Metrics
	log         zerolog.Logger
	opts        Options
}

// NewService construye el motor. broadcaster y metrics pueden ser nil.
func NewService(
	registry *Registry,
	authz *Authorizer,
	store repository.Datastore,
	dispatcher *Dispatcher,
	broadcaster Broadcaster,
	metrics Metrics,
	log zerolog.Logger,
	opts Options,
) *Service {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		registry:    registry,
		authz:       authz,
		store:       store,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		metrics:     metrics,
		log:         log,
		opts:        opts,
	}
}

// Resources nombres de recursos registrados (requiere usuario autenticado).
func (s *Service) Resources(user *entity.ActingUser) ([]string, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.registry.Names(), nil
}

// List lista registros con paginación, filtros de igualdad y búsqueda.
// Datos y conteo se consultan en paralelo sobre el mismo filtro.
func (s *Service) List(ctx context.Context, user *entity.ActingUser, resource string, params ListParams) (*dto.ListResponse, error) {
	ec, err := s.authz.Authorize(ctx, resource, OpRead, user)
	if err != nil {
		return nil, err
	}
	if params.Page <= 0 {
		params.Page = DefaultPage
	}
	if params.Limit <= 0 {
		params.Limit = s.opts.DefaultLimit
	}
	if s.opts.MaxLimit > 0 && params.Limit > s.opts.MaxLimit {
		params.Limit = s.opts.MaxLimit
	}
	cfg := ec.Config
	where := listFilter(cfg, BuildScopeFilter(cfg, &ec.User), params)

	var (
		records []entity.Record
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.Find(gctx, cfg.Collection, query.Find{
			Where:   where,
			OrderBy: cfg.DefaultOrder,
			Skip:    params.Skip(),
			Take:    params.Limit,
			Include: cfg.Include,
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, cfg.Collection, where)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Internal("listar "+resource, err)
	}
	if records == nil {
		records = []entity.Record{}
	}
	return &dto.ListResponse{
		Success:    true,
		Data:       records,
		Pagination: dto.NewPagination(total, params.Page, params.Limit),
	}, nil
}

// Create valida, completa id / número de negocio / tenant, persiste y dispara efectos.
func (s *Service) Create(ctx context.Context, user *entity.ActingUser, resource string, body map[string]any) (entity.Record, error) {
	ec, err := s.authz.Authorize(ctx, resource, OpCreate, user)
	if err != nil {
		return nil, err
	}
	cfg := ec.Config
	data, err := parseBody(cfg.Schema, body, false)
	if err != nil {
		return nil, err
	}
	if cfg.GenerateID && data.ID() == "" {
		data["id"] = uuid.NewString()
	}
	if field, ok := TenantField(cfg); ok && !ec.User.IsPlatform() {
		data[field] = ec.User.DealerID
	}
	if err := s.checkReferences(ctx, ec, data); err != nil {
		return nil, err
	}
	generated := false
	if bn := cfg.BusinessNumber; bn != nil && data.String(bn.Field) == "" {
		if err := s.assignNumber(data, bn); err != nil {
			return nil, domain.Internal("generar número de negocio", err)
		}
		generated = true
	}

	var created entity.Record
	for attempt := 1; ; attempt++ {
		created, err = s.store.Create(ctx, cfg.Collection, data, cfg.Include)
		if err == nil {
			break
		}
		if generated && attempt < maxNumberAttempts && errors.Is(err, domain.ErrDuplicate) {
			s.log.Warn().Str("resource", resource).Int("attempt", attempt).Msg("colisión de número de negocio, regenerando")
			if err := s.assignNumber(data, cfg.BusinessNumber); err != nil {
				return nil, domain.Internal("generar número de negocio", err)
			}
			continue
		}
		return nil, domain.Internal("crear "+resource, err)
	}

	s.dispatcher.Dispatch(ctx, MutationEvent{Resource: resource, Operation: OpCreate, User: ec.User, After: created})
	s.emit(ctx, resource+EventSuffixChanged, ChangeEvent{ID: created.ID(), Action: "create", Data: created})
	return created, nil
}

// Read devuelve el registro si existe y pertenece al alcance del usuario. Ambos
// casos negativos responden igual (ErrNotFound).
func (s *Service) Read(ctx context.Context, user *entity.ActingUser, resource, id string) (entity.Record, error) {
	ec, err := s.authz.Authorize(ctx, resource, OpRead, user)
	if err != nil {
		return nil, err
	}
	cfg := ec.Config
	rec, err := s.store.FindFirst(ctx, cfg.Collection, ownershipFilter(cfg, &ec.User, id), cfg.Include)
	if err != nil {
		return nil, domain.Internal("leer "+resource, err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// Update aplica una actualización parcial. La escritura es condicional sobre
// {id} + alcance, así un registro borrado o reasignado entre la lectura de
// "before" y la escritura no se modifica. Las llaves foráneas del payload deben
// apuntar a registros del mismo tenant; así un recurso con alcance por relación
// no puede moverse a otro concesionario.
func (s *Service) Update(ctx context.Context, user *entity.ActingUser, resource, id string, body map[string]any) (entity.Record, error) {
	ec, err := s.authz.Authorize(ctx, resource, OpUpdate, user)
	if err != nil {
		return nil, err
	}
	cfg := ec.Config
	data, err := parseBody(cfg.Schema, body, true)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	// Un usuario de concesionario no puede mover el registro a otro tenant.
	if field, ok := TenantField(cfg); ok && !ec.User.IsPlatform() {
		if _, present := data[field]; present {
			data[field] = ec.User.DealerID
		}
	}

	where := ownershipFilter(cfg, &ec.User, id)
	before, err := s.store.FindFirst(ctx, cfg.Collection, where, nil)
	if err != nil {
		return nil, domain.Internal("leer "+resource, err)
	}
	if before == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.checkReferences(ctx, ec, data); err != nil {
		return nil, err
	}

	var after entity.Record
	if len(data) == 0 {
		after, err = s.store.FindFirst(ctx, cfg.Collection, where, cfg.Include)
	} else {
		after, err = s.store.UpdateWhere(ctx, cfg.Collection, where, data, cfg.Include)
	}
	if err != nil {
		return nil, domain.Internal("actualizar "+resource, err)
	}
	if after == nil {
		return nil, domain.ErrNotFound
	}

	s.dispatcher.Dispatch(ctx, MutationEvent{Resource: resource, Operation: OpUpdate, User: ec.User, Before: before, After: after})
	s.emit(ctx, resource+EventSuffixChanged, ChangeEvent{ID: after.ID(), Action: "update", Data: after})
	return after, nil
}

// Delete borra físicamente; si otra fila referencia el registro y el recurso
// tiene política de desactivación, la aplica en su lugar.
func (s *Service) Delete(ctx context.Context, user *entity.ActingUser, resource, id string) (*dto.DeleteResponse, error) {
	ec, err := s.authz.Authorize(ctx, resource, OpDelete, user)
	if err != nil {
		return nil, err
	}
	cfg := ec.Config
	where := ownershipFilter(cfg, &ec.User, id)

	n, err := s.store.DeleteWhere(ctx, cfg.Collection, where)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrity) && cfg.SoftDelete != nil {
			return s.softDelete(ctx, ec, where, id)
		}
		return nil, domain.Internal("eliminar "+resource, err)
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}

	s.dispatcher.Dispatch(ctx, MutationEvent{Resource: resource, Operation: OpDelete, User: ec.User, Before: entity.Record{"id": id}})
	s.emit(ctx, resource+EventSuffixPurged, ChangeEvent{ID: id, Action: "delete"})
	return &dto.DeleteResponse{Success: true, Message: "registro eliminado"}, nil
}

func (s *Service) softDelete(ctx context.Context, ec ExecutionContext, where query.Filter, id string) (*dto.DeleteResponse, error) {
	policy := ec.Config.SoftDelete
	rec, err := s.store.UpdateWhere(ctx, ec.Config.Collection, where, entity.Record{policy.Field: policy.InactiveValue}, nil)
	if err != nil {
		return nil, domain.Internal("desactivar "+ec.Resource, err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	s.emit(ctx, ec.Resource+EventSuffixChanged, ChangeEvent{ID: id, Action: "deactivate", Data: rec})
	return &dto.DeleteResponse{
		Success:     true,
		Message:     "registro desactivado: está referenciado por otros registros",
		SoftDeleted: true,
	}, nil
}

func (s *Service) assignNumber(data entity.Record, bn *BusinessNumber) error {
	num, err := NewBusinessNumber(bn.Prefix, s.opts.Now())
	if err != nil {
		return err
	}
	data[bn.Field] = num
	return nil
}

// emit publica sin afectar el resultado de la mutación.
func (s *Service) emit(ctx context.Context, event string, payload any) {
	if err := s.broadcaster.Emit(ctx, event, payload); err != nil {
		s.metrics.BroadcastFailed(event)
		s.log.Warn().Err(err).Str("event", event).Msg("no se pudo emitir el evento")
	}
}

func parseBody(schema Schema, body map[string]any, partial bool) (entity.Record, error) {
	if schema == nil {
		data := entity.Record(body).Clone()
		if data == nil {
			data = entity.Record{}
		}
		return data, nil
	}
	if partial {
		schema = schema.Partial()
	}
	data, err := schema.Parse(body)
	if err != nil {
		return nil, domain.Internal("validar payload", err)
	}
	if data == nil {
		data = entity.Record{}
	}
	return data, nil
}
