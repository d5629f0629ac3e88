package salon

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AdjustStockInput is a manual stock movement. Quantity is signed.
type AdjustStockInput struct {
	Quantity int64
	Type     salon.InventoryTransactionType
	Notes    string
}

// InventoryService applies manual stock movements and lists the ledger.
type InventoryService struct {
	products     salon.ProductRepository
	transactions salon.InventoryTransactionRepository
}

// NewInventoryService binds the service to a tenant's repositories.
func NewInventoryService(repos *salon.Repositories) *InventoryService {
	return &InventoryService{
		products:     repos.Products,
		transactions: repos.InventoryTransactions,
	}
}

// AdjustStock moves the stock of productID and records the movement.
func (s *InventoryService) AdjustStock(ctx context.Context, productID uuid.UUID, in AdjustStockInput, userID uuid.UUID) (*salon.InventoryTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "adjust_stock")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, productID.String(),
		telemetry.SpanAttrQuantity, in.Quantity,
	)

	if in.Type == "" {
		in.Type = salon.InventoryAdjustment
	}
	switch {
	case in.Quantity == 0:
		return nil, shared.NewValidationError("quantity cannot be zero")
	case in.Type == salon.InventorySale:
		return nil, shared.NewValidationError("sale movements are recorded by sales")
	case in.Type == salon.InventoryRestock && in.Quantity < 0:
		return nil, shared.NewValidationError("restock quantity must be positive")
	case !in.Type.IsValid():
		return nil, shared.NewValidationError("invalid inventory transaction type %q", in.Type)
	}

	after, err := s.products.AdjustStock(ctx, productID, in.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	tx, err := salon.NewInventoryTransaction(productID, in.Type, in.Quantity, after, nil, strings.TrimSpace(in.Notes))
	if err != nil {
		return nil, err
	}
	tx.CreatedBy = &userID
	if err := s.transactions.Create(ctx, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Stock adjusted",
		zap.String("product_id", productID.String()),
		zap.Int64("quantity", in.Quantity),
		zap.Int64("stock_after", after),
	)
	return tx, nil
}

// ListTransactions returns a page of the stock ledger.
func (s *InventoryService) ListTransactions(ctx context.Context, filter shared.Filter) (shared.Paginated[salon.InventoryTransaction], error) {
	filter = filter.Normalize()
	items, total, err := s.transactions.List(ctx, filter)
	if err != nil {
		return shared.Paginated[salon.InventoryTransaction]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit), nil
}
