package salon_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRUDService_CreateAssignsIdentityAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc := appsalon.NewServiceCatalog(newRepos(t))

	presetID := uuid.New()
	service := &salon.Service{Name: "  Facial  ", Price: dec("1200")}
	service.ID = presetID
	require.NoError(t, svc.Create(ctx, service))

	assert.NotEqual(t, presetID, service.ID)
	assert.Equal(t, "Facial", service.Name)
	assert.Equal(t, 30, service.Duration)
	assert.Equal(t, salon.StatusActive, service.Status)

	got, err := svc.Get(ctx, service.ID)
	require.NoError(t, err)
	assert.Equal(t, "Facial", got.Name)
}

func TestCRUDService_CreateValidates(t *testing.T) {
	svc := appsalon.NewServiceCatalog(newRepos(t))
	err := svc.Create(context.Background(), &salon.Service{Price: dec("10")})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCRUDService_CreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	seedClient(t, repos, "Asha", "9000000001")

	err := appsalon.NewClientService(repos).Create(ctx, &salon.Client{Name: "Other", Phone: "9000000001"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCRUDService_UpdateKeepsIdentityAndPreservedFields(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	client := seedClient(t, repos, "Asha", "9000000001")
	require.NoError(t, repos.Clients.RecordVisit(ctx, client.ID, dec("500")))

	svc := appsalon.NewClientService(repos)
	updated, err := svc.Update(ctx, client.ID, func(c *salon.Client) error {
		c.ID = uuid.New()
		c.Name = "Asha K"
		c.VisitCount = 99
		c.TotalSpent = dec("1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, client.ID, updated.ID)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, int64(1), updated.VisitCount)
	assert.True(t, updated.TotalSpent.Equal(dec("500")))

	stored, err := svc.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", stored.Name)
	assert.Equal(t, int64(1), stored.VisitCount)
}

func TestCRUDService_ProductEditsDoNotMoveStock(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	product := seedProduct(t, repos, "SH-1", 7)

	updated, err := appsalon.NewProductService(repos).Update(ctx, product.ID, func(p *salon.Product) error {
		p.Stock = 1000
		p.Price = dec("300")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.Stock)
	assert.True(t, updated.Price.Equal(dec("300")))
}

func TestCRUDService_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := appsalon.NewStaffService(repos)

	_, err := svc.Update(ctx, uuid.New(), func(*salon.Staff) error { return nil })
	assert.ErrorIs(t, err, shared.ErrNotFound)

	staff := &salon.Staff{Name: "Ravi", Phone: "9000000009"}
	require.NoError(t, svc.Create(ctx, staff))

	_, err = svc.Update(ctx, staff.ID, func(s *salon.Staff) error {
		s.Name = ""
		return nil
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(ctx, staff.ID, func(*salon.Staff) error {
		return shared.NewInvalidArgumentError("bad body")
	})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestCRUDService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := appsalon.NewClientService(repos)
	a := seedClient(t, repos, "Asha", "9000000001")
	seedClient(t, repos, "Bina", "9000000002")
	seedClient(t, repos, "Chitra", "9000000003")

	page, err := svc.List(ctx, shared.Filter{Search: "bina"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bina", page.Items[0].Name)

	all, err := svc.List(ctx, shared.Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Len(t, all.Items, 2)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), shared.ErrNotFound)
}
