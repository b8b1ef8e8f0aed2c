package workshop

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
	"github.com/jhoicas/Concesionario-api/internal/application/dto"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/domain/entity"
	"github.com/jhoicas/Concesionario-api/internal/domain/query"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
)

// DefaultLowStockThreshold umbral de existencias bajo el cual se alerta.
const DefaultLowStockThreshold = 5

var idealStockFactor = decimal.NewFromFloat(1.5)

// ReorderChecker revisa el stock de una variante y emite inventory:low_stock si
// está en o bajo el umbral. No crea la orden de compra.
type ReorderChecker struct {
	store       repository.Datastore
	broadcaster resource.Broadcaster
	threshold   decimal.Decimal
	log         zerolog.Logger
}

// NewReorderChecker construye el verificador. threshold <= 0 usa DefaultLowStockThreshold.
func NewReorderChecker(store repository.Datastore, broadcaster resource.Broadcaster, threshold int, log zerolog.Logger) *ReorderChecker {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if broadcaster == nil {
		broadcaster = resource.NopBroadcaster{}
	}
	return &ReorderChecker{
		store:       store,
		broadcaster: broadcaster,
		threshold:   decimal.NewFromInt(int64(threshold)),
		log:         log,
	}
}

// Check devuelve la alerta emitida, o nil si el stock está sobre el umbral.
func (c *ReorderChecker) Check(ctx context.Context, variantID string) (*dto.LowStockAlert, error) {
	variant, err := c.store.FindFirst(ctx, catalog.ProductVariantsTable, query.ByID(variantID), query.Include{"product": nil})
	if err != nil {
		return nil, fmt.Errorf("cargar variante %s: %w", variantID, err)
	}
	if variant == nil {
		return nil, fmt.Errorf("variante %s no encontrada", variantID)
	}
	stock, err := variant.Decimal("stock_quantity")
	if err != nil {
		return nil, err
	}
	if stock.GreaterThan(c.threshold) {
		return nil, nil
	}

	suggested := c.threshold.Mul(idealStockFactor).Sub(stock)
	if suggested.IsNegative() {
		suggested = decimal.Zero
	}
	alert := &dto.LowStockAlert{
		VariantID:         variantID,
		SKU:               variant.String("sku"),
		PartName:          variant.String("part_name"),
		StockQuantity:     stock,
		Threshold:         c.threshold,
		SuggestedOrderQty: suggested.Ceil(),
	}
	if product, ok := variant["product"].(entity.Record); ok {
		alert.DealerID = product.String("dealer_id")
	}
	if err := c.broadcaster.Emit(ctx, resource.EventLowStock, alert); err != nil {
		return alert, fmt.Errorf("emitir alerta de stock bajo: %w", err)
	}
	c.log.Warn().
		Str("variant_id", variantID).
		Str("sku", alert.SKU).
		Str("stock", stock.String()).
		Msg("creación automática de orden de reposición no implementada")
	return alert, nil
}
