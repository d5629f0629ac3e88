package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// SaleHandler serves point of sale bills and their receipts.
type SaleHandler struct {
	BaseHandler
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(base BaseHandler) *SaleHandler {
	return &SaleHandler{BaseHandler: base}
}

// SaleItemRequest is one line of a submitted bill.
type SaleItemRequest struct {
	Type      string          `json:"type" binding:"required,oneof=service product"`
	RefID     *uuid.UUID      `json:"refId"`
	Name      string          `json:"name" binding:"max=200"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PaymentRequest is one tender of a submitted bill.
type PaymentRequest struct {
	Mode   string          `json:"mode" binding:"required,oneof=cash card online"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateSaleRequest is a bill submitted at the counter.
type CreateSaleRequest struct {
	ClientID   *uuid.UUID        `json:"clientId"`
	ClientName string            `json:"clientName" binding:"max=200"`
	StaffID    *uuid.UUID        `json:"staffId"`
	SaleTime   *time.Time        `json:"saleTime"`
	Date       string            `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Items      []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount   decimal.Decimal   `json:"discount"`
	Payments   []PaymentRequest  `json:"payments" binding:"required,min=1,dive"`
	Notes      string            `json:"notes" binding:"max=2000"`
}

// UpdateSaleRequest edits notes or cancels a sale.
type UpdateSaleRequest struct {
	Notes  *string `json:"notes" binding:"omitempty,max=2000"`
	Status *string `json:"status" binding:"omitempty,oneof=completed cancelled"`
}

func (r CreateSaleRequest) input() appsalon.CreateSaleInput {
	in := appsalon.CreateSaleInput{
		ClientID:     r.ClientID,
		ClientName:   r.ClientName,
		StaffID:      r.StaffID,
		BusinessDate: r.Date,
		Discount:     r.Discount,
		Notes:        r.Notes,
		Items:        make([]salon.SaleItem, 0, len(r.Items)),
		Payments:     make([]salon.Payment, 0, len(r.Payments)),
	}
	if r.SaleTime != nil {
		in.SaleTime = *r.SaleTime
	}
	for _, item := range r.Items {
		in.Items = append(in.Items, salon.SaleItem{
			Type:      salon.ItemType(item.Type),
			RefID:     item.RefID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	for _, p := range r.Payments {
		in.Payments = append(in.Payments, salon.Payment{
			Mode:   salon.PaymentMode(p.Mode),
			Amount: p.Amount,
		})
	}
	return in
}

// Create godoc
// @ID           createSale
// @Summary      Create sale
// @Description  Records a bill, deducts product stock and issues a receipt
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body CreateSaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=appsalon.SaleResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
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
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := appsalon.NewSaleService(repos).Create(c.Request.Context(), req.input(), caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @ID           listSales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Free text search"
// @Param        sortBy query string false "Sort field"
// @Param        sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]salon.Sale}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter, err := listFilter(c, "status", "date", "clientId", "staffId")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := appsalon.NewSaleService(repos).List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @ID           getSale
// @Summary      Get sale
// @Description  Returns the sale with its receipt
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=appsalon.SaleResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := appsalon.NewSaleService(repos).Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update godoc
// @ID           updateSale
// @Summary      Update sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body UpdateSaleRequest true "Sale changes"
// @Success      200 {object} dto.Response{data=salon.Sale}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
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
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}

	in := appsalon.UpdateSaleInput{Notes: req.Notes}
	if req.Status != nil {
		status := salon.SaleStatus(*req.Status)
		in.Status = &status
	}
	sale, err := appsalon.NewSaleService(repos).Update(c.Request.Context(), id, in, caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @ID           deleteSale
// @Summary      Delete sale
// @Description  Deletes the sale and restores product stock
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
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
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := appsalon.NewSaleService(repos).Delete(c.Request.Context(), id, caller.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Sale deleted successfully"})
}

// ListReceipts godoc
// @ID           listReceipts
// @Summary      List receipts
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Free text search"
// @Param        sortBy query string false "Sort field"
// @Param        sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]salon.Receipt}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /receipts [get]
func (h *SaleHandler) ListReceipts(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := appsalon.NewSaleService(repos).ListReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetReceipt godoc
// @ID           getReceipt
// @Summary      Get receipt
// @Tags         sales
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} dto.Response{data=salon.Receipt}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /receipts/{id} [get]
func (h *SaleHandler) GetReceipt(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	receipt, err := appsalon.NewSaleService(repos).GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
