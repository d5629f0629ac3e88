// Package cashregistry orchestrates shift submission, verification and
// daily summaries over one tenant store.
package cashregistry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/cashregistry"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmitShiftInput is one opening or closing count.
type SubmitShiftInput struct {
	Date          string
	ShiftType     cashregistry.ShiftType
	Denominations []cashregistry.Denomination
	OnlineCash    decimal.Decimal
	PosCash       decimal.Decimal
	Notes         string
}

// DayFigures are the sales and expense totals a closing is reconciled
// against.
type DayFigures struct {
	CashCollected decimal.Decimal `json:"cashCollected"`
	ExpenseValue  decimal.Decimal `json:"expenseValue"`
	OnlineSales   decimal.Decimal `json:"onlineSales"`
	CardSales     decimal.Decimal `json:"cardSales"`
	SalesCount    int             `json:"salesCount"`
}

// DailySummary joins both shifts of one day with the live figures.
type DailySummary struct {
	Date            string              `json:"date"`
	Opening         *cashregistry.Entry `json:"opening,omitempty"`
	Closing         *cashregistry.Entry `json:"closing,omitempty"`
	OpeningBalance  decimal.Decimal     `json:"openingBalance"`
	ExpectedBalance decimal.Decimal     `json:"expectedCashBalance"`
	DayFigures
}

// Service runs cash registry operations against one tenant's repositories.
type Service struct {
	entries  cashregistry.Repository
	sales    salon.SaleRepository
	expenses salon.ExpenseRepository
	now      func() time.Time
}

// NewService binds the service to a tenant's repositories.
func NewService(repos *salon.Repositories) *Service {
	return &Service{
		entries:  repos.CashRegistry,
		sales:    repos.Sales,
		expenses: repos.Expenses,
		now:      time.Now,
	}
}

// SubmitShift records the count for (date, shift), replacing an unverified
// earlier submission of the same pair. A closing is reconciled against the
// day's opening balance, cash sales and cash expenses.
func (s *Service) SubmitShift(ctx context.Context, in SubmitShiftInput, userID uuid.UUID) (*cashregistry.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_registry", "submit_shift")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBusinessDate, in.Date,
		telemetry.SpanAttrShiftType, string(in.ShiftType),
	)

	in.Date = strings.TrimSpace(in.Date)
	entry, err := s.entries.FindByDateAndShift(ctx, in.Date, in.ShiftType)
	switch {
	case shared.IsNotFound(err):
		entry, err = cashregistry.NewEntry(in.Date, in.ShiftType, &userID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		telemetry.RecordError(span, err)
		return nil, err
	default:
		if err := entry.EnsureEditable(); err != nil {
			return nil, err
		}
	}

	switch in.ShiftType {
	case cashregistry.ShiftOpening:
		err = entry.ApplyOpening(in.Denominations)
	case cashregistry.ShiftClosing:
		err = s.applyClosing(ctx, entry, in)
	default:
		err = shared.NewValidationError("invalid shift type %q", in.ShiftType)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if notes := strings.TrimSpace(in.Notes); notes != "" {
		entry.Notes = notes
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Cash registry shift submitted",
		zap.String("date", entry.BusinessDate),
		zap.String("shift", string(entry.ShiftType)),
		zap.String("balance_difference", entry.BalanceDifference.StringFixed(2)),
		zap.String("reason", entry.BalanceDifferenceReason),
	)
	return entry, nil
}

// Resubmit replaces the count of an existing entry. The entry keeps its
// date and shift.
func (s *Service) Resubmit(ctx context.Context, id uuid.UUID, in SubmitShiftInput, userID uuid.UUID) (*cashregistry.Entry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Date != "" && strings.TrimSpace(in.Date) != entry.BusinessDate {
		return nil, shared.NewValidationError("date cannot be changed on an existing entry")
	}
	if in.ShiftType != "" && in.ShiftType != entry.ShiftType {
		return nil, shared.NewValidationError("shiftType cannot be changed on an existing entry")
	}
	in.Date = entry.BusinessDate
	in.ShiftType = entry.ShiftType
	return s.SubmitShift(ctx, in, userID)
}

func (s *Service) applyClosing(ctx context.Context, entry *cashregistry.Entry, in SubmitShiftInput) error {
	opening, err := s.openingBalance(ctx, in.Date)
	if err != nil {
		return err
	}
	figures, err := s.DayFigures(ctx, in.Date)
	if err != nil {
		return err
	}
	return entry.ApplyClosing(cashregistry.ClosingInput{
		Denominations:  in.Denominations,
		OpeningBalance: opening,
		CashCollected:  figures.CashCollected,
		ExpenseValue:   figures.ExpenseValue,
		OnlineCash:     in.OnlineCash,
		PosCash:        in.PosCash,
	})
}

func (s *Service) openingBalance(ctx context.Context, date string) (decimal.Decimal, error) {
	opening, err := s.entries.FindByDateAndShift(ctx, date, cashregistry.ShiftOpening)
	if shared.IsNotFound(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return opening.OpeningBalance, nil
}

// DayFigures totals the completed sales and the expenses of date.
func (s *Service) DayFigures(ctx context.Context, date string) (DayFigures, error) {
	figures := DayFigures{
		CashCollected: decimal.Zero,
		ExpenseValue:  decimal.Zero,
		OnlineSales:   decimal.Zero,
		CardSales:     decimal.Zero,
	}
	sales, err := s.sales.FindByBusinessDate(ctx, date)
	if err != nil {
		return figures, err
	}
	for i := range sales {
		sale := &sales[i]
		if !sale.IsCompleted() {
			continue
		}
		figures.SalesCount++
		figures.CashCollected = figures.CashCollected.Add(sale.CashAmount())
		figures.OnlineSales = figures.OnlineSales.Add(sale.AmountByMode(salon.PaymentOnline))
		figures.CardSales = figures.CardSales.Add(sale.AmountByMode(salon.PaymentCard))
	}

	expenses, err := s.expenses.FindByBusinessDate(ctx, date)
	if err != nil {
		return figures, err
	}
	for i := range expenses {
		if expenses[i].IsCash() {
			figures.ExpenseValue = figures.ExpenseValue.Add(expenses[i].Amount)
		}
	}
	return figures, nil
}

// Verify marks an entry verified by userID. Entries with a difference need
// a note.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, note string, userID uuid.UUID) (*cashregistry.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_registry", "verify")
	defer span.End()

	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := entry.Verify(userID, note, s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	logger.L(ctx).Info("Cash registry entry verified",
		zap.String("entry_id", id.String()),
		zap.String("verified_by", userID.String()),
	)
	return entry, nil
}

// Delete removes an unverified entry.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := entry.EnsureDeletable(); err != nil {
		return err
	}
	return s.entries.Delete(ctx, id)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*cashregistry.Entry, error) {
	return s.entries.FindByID(ctx, id)
}

// List returns a page of entries.
func (s *Service) List(ctx context.Context, filter cashregistry.ListFilter) (shared.Paginated[cashregistry.Entry], error) {
	page := filter.Filter.Normalize()
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if _, err := shared.ParseBusinessDate(d); err != nil {
			return shared.Paginated[cashregistry.Entry]{}, err
		}
	}
	if filter.ShiftType != "" && !filter.ShiftType.IsValid() {
		return shared.Paginated[cashregistry.Entry]{}, shared.NewValidationError("invalid shift type %q", filter.ShiftType)
	}
	items, total, err := s.entries.List(ctx, filter)
	if err != nil {
		return shared.Paginated[cashregistry.Entry]{}, err
	}
	return shared.NewPaginated(items, total, page.Page, page.Limit), nil
}

// DailySummary reports both shifts of date and the expected closing
// balance computed from the live figures.
func (s *Service) DailySummary(ctx context.Context, date string) (*DailySummary, error) {
	if _, err := shared.ParseBusinessDate(date); err != nil {
		return nil, err
	}
	entries, err := s.entries.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	figures, err := s.DayFigures(ctx, date)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{Date: date, OpeningBalance: decimal.Zero, DayFigures: figures}
	for i := range entries {
		entry := &entries[i]
		switch entry.ShiftType {
		case cashregistry.ShiftOpening:
			summary.Opening = entry
			summary.OpeningBalance = entry.OpeningBalance
		case cashregistry.ShiftClosing:
			summary.Closing = entry
		}
	}
	r := cashregistry.Reconcile(cashregistry.ReconcileInput{
		Opening:       summary.OpeningBalance,
		CashCollected: figures.CashCollected,
		ExpenseValue:  figures.ExpenseValue,
	})
	summary.ExpectedBalance = r.ExpectedBalance
	return summary, nil
}
