package salon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillPrefix starts every sale bill number.
const BillPrefix = "S"

const maxBillNumberAttempts = 5

// CreateSaleInput is a bill as submitted at the counter.
type CreateSaleInput struct {
	ClientID     *uuid.UUID
	ClientName   string
	StaffID      *uuid.UUID
	SaleTime     time.Time
	BusinessDate string
	Items        []salon.SaleItem
	Discount     decimal.Decimal
	Payments     []salon.Payment
	Notes        string
}

// UpdateSaleInput edits notes or cancels a sale.
type UpdateSaleInput struct {
	Notes  *string
	Status *salon.SaleStatus
}

// SaleResult pairs a sale with its receipt.
type SaleResult struct {
	Sale    *salon.Sale    `json:"sale"`
	Receipt *salon.Receipt `json:"receipt,omitempty"`
}

type stockMove struct {
	quantity   int64
	stockAfter int64
}

// SaleService books sales with their side effects: receipt, stock, stock
// movements and client history.
type SaleService struct {
	repos *salon.Repositories
	now   func() time.Time
}

// NewSaleService binds the service to a tenant's repositories.
func NewSaleService(repos *salon.Repositories) *SaleService {
	return &SaleService{repos: repos, now: time.Now}
}

// Create prices and stores a sale. Product stock is taken before the sale
// is written and handed back if anything after that fails.
func (s *SaleService) Create(ctx context.Context, in CreateSaleInput, userID uuid.UUID) (*SaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()

	settings, err := loadSettings(ctx, s.repos.Settings)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if in.SaleTime.IsZero() {
		in.SaleTime = s.now()
	}
	if strings.TrimSpace(in.BusinessDate) == "" {
		in.BusinessDate = shared.BusinessDate(in.SaleTime, settingsLocation(settings))
	}
	if err := s.resolveClient(ctx, &in); err != nil {
		return nil, err
	}
	if err := s.resolveProducts(ctx, in.Items); err != nil {
		return nil, err
	}

	sale, err := salon.NewSale(salon.SaleDraft{
		ClientID:     in.ClientID,
		ClientName:   in.ClientName,
		StaffID:      in.StaffID,
		SaleTime:     in.SaleTime,
		BusinessDate: in.BusinessDate,
		Items:        in.Items,
		Discount:     in.Discount,
		Payments:     in.Payments,
		Notes:        in.Notes,
		CreatedBy:    &userID,
	}, settings.TaxRate)
	if err != nil {
		return nil, err
	}

	moves, err := s.takeStock(ctx, sale)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	seq, err := s.insertWithBillNumber(ctx, sale)
	if err != nil {
		s.returnStock(ctx, moves)
		telemetry.RecordError(span, err)
		return nil, err
	}

	receipt := salon.NewReceipt(sale, salon.FormatBillNumber(settings.ReceiptPrefix, sale.BusinessDate, seq))
	if err := s.repos.Receipts.Create(ctx, receipt); err != nil {
		if delErr := s.repos.Sales.Delete(ctx, sale.ID); delErr != nil {
			logger.L(ctx).Error("Failed to remove sale after receipt failure", zap.Error(delErr))
		}
		s.returnStock(ctx, moves)
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.recordMovements(ctx, moves, salon.InventorySale, -1, &sale.ID, "Sale "+sale.BillNumber, userID)

	if sale.ClientID != nil {
		if err := s.repos.Clients.RecordVisit(ctx, *sale.ClientID, sale.GrandTotal); err != nil {
			logger.L(ctx).Warn("Failed to update client visit history",
				zap.String("client_id", sale.ClientID.String()), zap.Error(err))
		}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, sale.ID.String(),
		telemetry.SpanAttrBillNumber, sale.BillNumber,
	)
	logger.L(ctx).Info("Sale created",
		zap.String("bill_number", sale.BillNumber),
		zap.String("grand_total", sale.GrandTotal.StringFixed(2)),
	)
	return &SaleResult{Sale: sale, Receipt: receipt}, nil
}

func (s *SaleService) resolveClient(ctx context.Context, in *CreateSaleInput) error {
	if in.ClientID == nil {
		return nil
	}
	client, err := s.repos.Clients.FindByID(ctx, *in.ClientID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.ClientName) == "" {
		in.ClientName = client.Name
	}
	return nil
}

// resolveProducts checks that product lines point at existing products and
// fills blank names from the catalog.
func (s *SaleService) resolveProducts(ctx context.Context, items []salon.SaleItem) error {
	for i := range items {
		item := &items[i]
		if item.Type != salon.ItemProduct || item.RefID == nil {
			continue
		}
		product, err := s.repos.Products.FindByID(ctx, *item.RefID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(item.Name) == "" {
			item.Name = product.Name
		}
	}
	return nil
}

func (s *SaleService) takeStock(ctx context.Context, sale *salon.Sale) (map[uuid.UUID]stockMove, error) {
	moves := make(map[uuid.UUID]stockMove)
	for productID, qty := range sale.ProductQuantities() {
		after, err := s.repos.Products.AdjustStock(ctx, productID, -qty)
		if err != nil {
			s.returnStock(ctx, moves)
			return nil, err
		}
		moves[productID] = stockMove{quantity: qty, stockAfter: after}
	}
	return moves, nil
}

func (s *SaleService) returnStock(ctx context.Context, moves map[uuid.UUID]stockMove) map[uuid.UUID]stockMove {
	returned := make(map[uuid.UUID]stockMove, len(moves))
	for productID, move := range moves {
		after, err := s.repos.Products.AdjustStock(ctx, productID, move.quantity)
		if err != nil {
			logger.L(ctx).Error("Failed to return stock",
				zap.String("product_id", productID.String()),
				zap.Int64("quantity", move.quantity),
				zap.Error(err))
			continue
		}
		returned[productID] = stockMove{quantity: move.quantity, stockAfter: after}
	}
	return returned
}

// insertWithBillNumber numbers the sale after the day's existing bills,
// moving on to the next number when another request took it first.
func (s *SaleService) insertWithBillNumber(ctx context.Context, sale *salon.Sale) (int64, error) {
	count, err := s.repos.Sales.CountByBusinessDate(ctx, sale.BusinessDate)
	if err != nil {
		return 0, err
	}
	seq := count + 1
	for attempt := 0; attempt < maxBillNumberAttempts; attempt++ {
		sale.BillNumber = salon.FormatBillNumber(BillPrefix, sale.BusinessDate, seq)
		err = s.repos.Sales.Create(ctx, sale)
		if err == nil {
			return seq, nil
		}
		if !shared.IsConflict(err) {
			return 0, err
		}
		seq++
	}
	return 0, shared.NewConflictError("could not allocate a bill number after %d attempts", maxBillNumberAttempts)
}

// recordMovements writes one inventory transaction per product. sign is -1
// for stock leaving and +1 for stock coming back. Failures are logged; the
// product stock itself is already correct.
func (s *SaleService) recordMovements(ctx context.Context, moves map[uuid.UUID]stockMove, typ salon.InventoryTransactionType, sign int64, ref *uuid.UUID, notes string, userID uuid.UUID) {
	for productID, move := range moves {
		tx, err := salon.NewInventoryTransaction(productID, typ, sign*move.quantity, move.stockAfter, ref, notes)
		if err == nil {
			tx.CreatedBy = &userID
			err = s.repos.InventoryTransactions.Create(ctx, tx)
		}
		if err != nil {
			logger.L(ctx).Warn("Failed to record inventory transaction",
				zap.String("product_id", productID.String()), zap.Error(err))
		}
	}
}

// Get returns a sale and its receipt.
func (s *SaleService) Get(ctx context.Context, id uuid.UUID) (*SaleResult, error) {
	sale, err := s.repos.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	receipt, err := s.repos.Receipts.FindBySaleID(ctx, id)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	return &SaleResult{Sale: sale, Receipt: receipt}, nil
}

// List returns a page of sales.
func (s *SaleService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[salon.Sale], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Sales.List(ctx, filter)
	if err != nil {
		return shared.Paginated[salon.Sale]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit), nil
}

// Update edits the notes of a sale or cancels it. Cancelling hands the
// products back to stock; a cancelled sale cannot be completed again.
func (s *SaleService) Update(ctx context.Context, id uuid.UUID, in UpdateSaleInput, userID uuid.UUID) (*salon.Sale, error) {
	sale, err := s.repos.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Notes != nil {
		sale.Notes = strings.TrimSpace(*in.Notes)
	}

	cancel := false
	if in.Status != nil && *in.Status != sale.Status {
		switch *in.Status {
		case salon.SaleCancelled:
			if err := sale.Cancel(); err != nil {
				return nil, err
			}
			cancel = true
		case salon.SaleCompleted:
			return nil, shared.NewInvalidStateError("cancelled sales cannot be reopened")
		default:
			return nil, shared.NewValidationError("invalid sale status %q", *in.Status)
		}
	}

	if err := s.repos.Sales.Update(ctx, sale); err != nil {
		return nil, err
	}
	if cancel {
		s.restock(ctx, sale, fmt.Sprintf("Sale %s cancelled", sale.BillNumber), userID)
	}
	return sale, nil
}

// Delete removes a sale and its receipt. A completed sale hands its
// products back to stock first.
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	sale, err := s.repos.Sales.FindByID(ctx, id)
	if err != nil {
		return err
	}
	receipt, err := s.repos.Receipts.FindBySaleID(ctx, id)
	switch {
	case err == nil:
		if err := s.repos.Receipts.Delete(ctx, receipt.ID); err != nil {
			return err
		}
	case !shared.IsNotFound(err):
		return err
	}
	if err := s.repos.Sales.Delete(ctx, id); err != nil {
		return err
	}
	if sale.IsCompleted() {
		s.restock(ctx, sale, fmt.Sprintf("Sale %s deleted", sale.BillNumber), userID)
	}
	return nil
}

func (s *SaleService) restock(ctx context.Context, sale *salon.Sale, notes string, userID uuid.UUID) {
	moves := make(map[uuid.UUID]stockMove)
	for productID, qty := range sale.ProductQuantities() {
		moves[productID] = stockMove{quantity: qty}
	}
	returned := s.returnStock(ctx, moves)
	s.recordMovements(ctx, returned, salon.InventoryRestock, 1, &sale.ID, notes, userID)
}

// ListReceipts returns a page of receipts.
func (s *SaleService) ListReceipts(ctx context.Context, filter shared.Filter) (shared.Paginated[salon.Receipt], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Receipts.List(ctx, filter)
	if err != nil {
		return shared.Paginated[salon.Receipt]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit), nil
}

// GetReceipt returns one receipt.
func (s *SaleService) GetReceipt(ctx context.Context, id uuid.UUID) (*salon.Receipt, error) {
	return s.repos.Receipts.FindByID(ctx, id)
}
