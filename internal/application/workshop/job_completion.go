package workshop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

// JobCompletionHook al pasar un trabajo a "completed" registra el ingreso por
// repuestos (transacción pendiente) y la entrada de historial de servicio.
// Cada paso es independiente: si uno falla el otro se ejecuta igual, y el
// cambio de estado del trabajo ya quedó confirmado.
type JobCompletionHook struct {
	store repository.Datastore
	now   func() time.Time
}

// NewJobCompletionHook construye el hook de jobs:update. now nil usa time.Now.
func NewJobCompletionHook(store repository.Datastore, now func() time.Time) *JobCompletionHook {
	if now == nil {
		now = time.Now
	}
	return &JobCompletionHook{store: store, now: now}
}

func (h *JobCompletionHook) Name() string { return "job-completion" }

func (h *JobCompletionHook) Handle(ctx context.Context, ev resource.MutationEvent) error {
	if ev.After == nil || ev.After.String("status") != entity.JobStatusCompleted {
		return nil
	}
	if ev.Before != nil && ev.Before.String("status") == entity.JobStatusCompleted {
		return nil
	}
	dealerID := ev.After.String("dealer_id")
	if dealerID == "" {
		dealerID = ev.User.DealerID
	}

	var errs []error
	if err := resource.Guard(func() error { return h.recordIncome(ctx, ev.After, dealerID) }); err != nil {
		errs = append(errs, fmt.Errorf("transacción del trabajo: %w", err))
	}
	if err := resource.Guard(func() error { return h.recordHistory(ctx, ev.After, dealerID) }); err != nil {
		errs = append(errs, fmt.Errorf("historial de servicio: %w", err))
	}
	return errors.Join(errs...)
}

// PartsTotal suma quantity * unit_price de los repuestos consumidos en el trabajo.
// Con dealerID solo cuenta los consumos registrados por ese concesionario.
func (h *JobCompletionHook) PartsTotal(ctx context.Context, jobID, dealerID string) (decimal.Decimal, error) {
	where := query.Filter{query.Eq{Field: "job_id", Value: jobID}}
	if dealerID != "" {
		where = where.And(query.Eq{Field: "dealer_id", Value: dealerID})
	}
	parts, err := h.store.Find(ctx, catalog.PartsUsageTable, query.Find{Where: where})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range parts {
		qty, err := p.Decimal("quantity")
		if err != nil {
			return decimal.Zero, err
		}
		price, err := p.Decimal("unit_price")
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(qty.Mul(price))
	}
	return total, nil
}

func (h *JobCompletionHook) recordIncome(ctx context.Context, job entity.Record, dealerID string) error {
	total, err := h.PartsTotal(ctx, job.ID(), dealerID)
	if err != nil {
		return err
	}
	if !total.IsPositive() {
		return nil
	}
	_, err = h.store.Create(ctx, catalog.TransactionsTable, entity.Record{
		"id":          uuid.NewString(),
		"type":        entity.TransactionIncome,
		"status":      entity.TransactionPending,
		"amount":      total,
		"job_id":      job.ID(),
		"dealer_id":   nullable(dealerID),
		"description": "Repuestos del trabajo " + jobLabel(job),
	}, nil)
	return err
}

func (h *JobCompletionHook) recordHistory(ctx context.Context, job entity.Record, dealerID string) error {
	mileage, err := job.Decimal("mileage")
	if err != nil {
		mileage = decimal.Zero
	}
	_, err = h.store.Create(ctx, catalog.ServiceHistoryTable, entity.Record{
		"id":           uuid.NewString(),
		"job_id":       job.ID(),
		"vehicle_id":   nullable(job.String("vehicle_id")),
		"dealer_id":    nullable(dealerID),
		"service_date": h.now().UTC(),
		"mileage":      mileage.IntPart(),
		"description":  jobLabel(job),
	}, nil)
	return err
}

func jobLabel(job entity.Record) string {
	if title := job.String("title"); title != "" {
		return title
	}
	return job.ID()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
