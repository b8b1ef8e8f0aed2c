package workshop

import (
	"context"
	"fmt"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

// PartsUsageHook descuenta el stock de la variante consumida y revisa el punto de reorden.
type PartsUsageHook struct {
	store    repository.Datastore
	reorder  *ReorderChecker
	variants resource.EntityConfig
}

// NewPartsUsageHook construye el hook de parts-usage:create.
func NewPartsUsageHook(store repository.Datastore, reorder *ReorderChecker) *PartsUsageHook {
	return &PartsUsageHook{
		store:    store,
		reorder:  reorder,
		variants: catalog.Entities()[catalog.ProductVariants],
	}
}

func (h *PartsUsageHook) Name() string { return "parts-usage-stock" }

// Handle decrementa stock_quantity en una sola escritura atómica; dos consumos
// concurrentes de la misma variante no pierden ninguno de los dos descuentos.
// La escritura lleva el alcance del usuario: nunca toca una variante de otro concesionario.
func (h *PartsUsageHook) Handle(ctx context.Context, ev resource.MutationEvent) error {
	variantID := ev.After.String("variant_id")
	if variantID == "" {
		return nil
	}
	qty, err := ev.After.Decimal("quantity")
	if err != nil {
		return fmt.Errorf("cantidad de parts-usage %s: %w", ev.After.ID(), err)
	}
	if !qty.IsPositive() {
		return nil
	}
	where := query.Merge(query.ByID(variantID), resource.BuildScopeFilter(h.variants, &ev.User))
	updated, err := h.store.Increment(ctx, catalog.ProductVariantsTable, where, "stock_quantity", qty.Neg())
	if err != nil {
		return fmt.Errorf("descontar stock de %s: %w", variantID, err)
	}
	if updated == nil {
		return fmt.Errorf("variante %s no encontrada", variantID)
	}
	if h.reorder == nil {
		return nil
	}
	_, err = h.reorder.Check(ctx, variantID)
	return err
}
