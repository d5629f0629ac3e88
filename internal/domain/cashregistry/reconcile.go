package cashregistry

import (
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Denomination is one counted note or coin value.
type Denomination struct {
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// Total returns value times count.
func (d Denomination) Total() decimal.Decimal {
	return d.Value.Mul(decimal.NewFromInt(d.Count))
}

// TotalDenominations sums a breakdown. Values must be positive whole
// amounts and counts non-negative.
func TotalDenominations(ds []Denomination) (decimal.Decimal, error) {
	if len(ds) == 0 {
		return decimal.Zero, shared.NewValidationError("at least one denomination is required")
	}
	total := decimal.Zero
	for i, d := range ds {
		if !d.Value.IsPositive() {
			return decimal.Zero, shared.NewValidationError("denomination %d: value must be positive", i+1)
		}
		if !d.Value.IsInteger() {
			return decimal.Zero, shared.NewValidationError("denomination %d: value must be a whole number", i+1)
		}
		if d.Count < 0 {
			return decimal.Zero, shared.NewValidationError("denomination %d: count cannot be negative", i+1)
		}
		total = total.Add(d.Total())
	}
	return total, nil
}

// ReconcileInput holds the figures of a closing reconciliation.
type ReconcileInput struct {
	Opening       decimal.Decimal
	CashCollected decimal.Decimal
	ExpenseValue  decimal.Decimal
	Counted       decimal.Decimal
	OnlineCash    decimal.Decimal
	PosCash       decimal.Decimal
}

// Reconciliation is the outcome of comparing counted cash with the
// expected position.
type Reconciliation struct {
	ExpectedBalance     decimal.Decimal
	BalanceDifference   decimal.Decimal
	BalanceReason       string
	OnlinePosDifference decimal.Decimal
	OnlinePosReason     string
}

// Reconcile computes expected = opening + collected - expenses and the
// differences against the counted and online/POS figures.
func Reconcile(in ReconcileInput) Reconciliation {
	expected := in.Opening.Add(in.CashCollected).Sub(in.ExpenseValue)
	diff := in.Counted.Sub(expected)
	onlinePos := in.OnlineCash.Sub(in.PosCash)

	r := Reconciliation{
		ExpectedBalance:     expected,
		BalanceDifference:   diff,
		BalanceReason:       ReasonBalanced,
		OnlinePosDifference: onlinePos,
		OnlinePosReason:     ReasonBalanced,
	}
	if !diff.IsZero() {
		r.BalanceReason = ReasonManualAdjustment
	}
	if !onlinePos.IsZero() {
		r.OnlinePosReason = ReasonDifference
	}
	return r
}
