package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type crudRoutes interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func registerCRUD(g *gin.RouterGroup, path string, h crudRoutes) {
	g.GET(path, h.List)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

func catalogRouter(e *testEnv) *gin.Engine {
	r, g := e.tenantGroup()
	registerCRUD(g, "/clients", NewClientHandler(e.base))
	registerCRUD(g, "/products", NewProductHandler(e.base))
	registerCRUD(g, "/expenses", NewExpenseHandler(e.base))
	return r
}

func TestClientHandler_Lifecycle(t *testing.T) {
	e := newTestEnv(t)
	r := catalogRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/clients", e.token, map[string]any{
		"name":   "Anna Roy",
		"phone":  "9800000001",
		"email":  "Anna@Example.com",
		"gender": "female",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[salon.Client](t, resp)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "anna@example.com", created.Email)
	assert.Equal(t, salon.StatusActive, created.Status)

	serve(t, r, http.MethodPost, "/api/clients", e.token, map[string]any{"name": "Bela Sen", "phone": "9800000002"})

	w, resp = serve(t, r, http.MethodGet, "/api/clients?gender=female", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	clients := decodeData[[]salon.Client](t, resp)
	require.Len(t, clients, 1)
	assert.Equal(t, "Anna Roy", clients[0].Name)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(1), resp.Pagination.Total)

	w, resp = serve(t, r, http.MethodGet, "/api/clients?search=bela", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]salon.Client](t, resp), 1)

	path := "/api/clients/" + created.ID.String()
	w, resp = serve(t, r, http.MethodPut, path, e.token, map[string]any{
		"notes":      "prefers mornings",
		"visitCount": 99,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[salon.Client](t, resp)
	assert.Equal(t, "Anna Roy", updated.Name)
	assert.Equal(t, "9800000001", updated.Phone)
	assert.Equal(t, "prefers mornings", updated.Notes)
	assert.Zero(t, updated.VisitCount)
	assert.Equal(t, created.ID, updated.ID)

	w, _ = serve(t, r, http.MethodDelete, path, e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = serve(t, r, http.MethodGet, path, e.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestClientHandler_Rejections(t *testing.T) {
	e := newTestEnv(t)
	r := catalogRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/clients", e.token, map[string]any{"phone": "9800000001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", resp.Error.Code)

	w, _ = serve(t, r, http.MethodPost, "/api/clients", e.token, map[string]any{"name": "Anna", "phone": "9800000001"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, resp = serve(t, r, http.MethodPost, "/api/clients", e.token, map[string]any{"name": "Other Anna", "phone": "9800000001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFLICT", resp.Error.Code)

	w, _ = serve(t, r, http.MethodGet, "/api/clients/not-a-uuid", e.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(t, r, http.MethodPut, "/api/clients/"+uuid.NewString(), e.token, map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serve(t, r, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductHandler_UpdateKeepsStock(t *testing.T) {
	e := newTestEnv(t)
	r := catalogRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/products", e.token, map[string]any{
		"name":     "Argan Oil",
		"sku":      "ARG-01",
		"category": "hair",
		"price":    "450.00",
		"stock":    12,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decodeData[salon.Product](t, resp)
	assert.Equal(t, int64(12), product.Stock)

	w, resp = serve(t, r, http.MethodPut, "/api/products/"+product.ID.String(), e.token, map[string]any{
		"price": "480.00",
		"stock": 500,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[salon.Product](t, resp)
	assert.Equal(t, "480", updated.Price.String())
	assert.Equal(t, int64(12), updated.Stock)

	w, resp = serve(t, r, http.MethodGet, "/api/products?category=skin", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(resp.Data))
}

func TestExpenseHandler_CreateAndFilter(t *testing.T) {
	e := newTestEnv(t)
	r := catalogRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/expenses", e.token, map[string]any{
		"category":    "supplies",
		"amount":      "1200.50",
		"paymentMode": "cash",
		"date":        "2026-03-14",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	expense := decodeData[salon.Expense](t, resp)
	assert.Equal(t, "2026-03-14", expense.BusinessDate)

	w, resp = serve(t, r, http.MethodGet, "/api/expenses?date=2026-03-14&paymentMode=cash", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]salon.Expense](t, resp), 1)

	w, resp = serve(t, r, http.MethodGet, "/api/expenses?date=2026-03-15", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]salon.Expense](t, resp))
}
