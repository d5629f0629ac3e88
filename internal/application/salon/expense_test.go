package salon_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appcash "github.com/salon-crm/backend/internal/application/cashregistry"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseService_DatesInBusinessTimezone(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	settings := salon.DefaultBusinessSettings("Glow Studio")
	settings.Timezone = "Asia/Kolkata"
	require.NoError(t, repos.Settings.Save(ctx, settings))

	// 01:30 on the 15th in Kolkata.
	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	result, err := appsalon.NewSaleService(repos).Create(ctx, appsalon.CreateSaleInput{
		SaleTime: at,
		Items:    []salon.SaleItem{haircut("1200")},
		Payments: cash("1200"),
	}, uuid.New())
	require.NoError(t, err)

	expense := &salon.Expense{Category: "supplies", Amount: dec("200"), ExpenseTime: at}
	require.NoError(t, appsalon.NewExpenseService(repos).Create(ctx, expense))

	assert.Equal(t, "2026-03-15", result.Sale.BusinessDate)
	assert.Equal(t, result.Sale.BusinessDate, expense.BusinessDate)

	figures, err := appcash.NewService(repos).DayFigures(ctx, "2026-03-15")
	require.NoError(t, err)
	assert.True(t, figures.CashCollected.Equal(dec("1200")))
	assert.True(t, figures.ExpenseValue.Equal(dec("200")))
}

func TestExpenseService_KeepsExplicitDate(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := appsalon.NewExpenseService(repos)

	expense := &salon.Expense{
		Category:     "rent",
		Amount:       dec("5000"),
		ExpenseTime:  time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
		BusinessDate: "2026-03-01",
	}
	require.NoError(t, svc.Create(ctx, expense))
	assert.Equal(t, "2026-03-01", expense.BusinessDate)

	updated, err := svc.Update(ctx, expense.ID, func(e *salon.Expense) error {
		e.BusinessDate = ""
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, day, updated.BusinessDate)
}
