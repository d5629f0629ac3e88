package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
)

// InventoryHandler serves manual stock movements and the stock ledger.
type InventoryHandler struct {
	BaseHandler
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(base BaseHandler) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base}
}

// AdjustStockRequest moves stock by a signed quantity.
type AdjustStockRequest struct {
	Quantity int64  `json:"quantity" binding:"required"`
	Type     string `json:"type" binding:"omitempty,oneof=restock adjustment"`
	Notes    string `json:"notes" binding:"max=500"`
}

// AdjustStock godoc
// @ID           adjustProductStock
// @Summary      Adjust product stock
// @Description  Moves stock by a signed quantity and records the transaction
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body AdjustStockRequest true "Stock movement"
// @Success      201 {object} dto.Response{data=salon.InventoryTransaction}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	caller, err := callerIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	productID, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}

	tx, err := appsalon.NewInventoryService(repos).AdjustStock(c.Request.Context(), productID, appsalon.AdjustStockInput{
		Quantity: req.Quantity,
		Type:     salon.InventoryTransactionType(req.Type),
		Notes:    req.Notes,
	}, caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// ListTransactions godoc
// @ID           listInventoryTransactions
// @Summary      List inventory transactions
// @Tags         inventory
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Free text search"
// @Param        sortBy query string false "Sort field"
// @Param        sortOrder query string false "Sort direction" Enums(asc, desc)
// @Param        productId query string false "Product ID" format(uuid)
// @Param        type query string false "Transaction type"
// @Success      200 {object} dto.Response{data=[]salon.InventoryTransaction}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory-transactions [get]
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter, err := listFilter(c, "productId", "type")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := appsalon.NewInventoryService(repos).ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
