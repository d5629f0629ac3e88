package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/application/cashregistry"
	domain "github.com/salon-crm/backend/internal/domain/cashregistry"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// CashRegistryHandler serves the opening and closing cash counts.
type CashRegistryHandler struct {
	BaseHandler
}

// NewCashRegistryHandler creates a new CashRegistryHandler
func NewCashRegistryHandler(base BaseHandler) *CashRegistryHandler {
	return &CashRegistryHandler{BaseHandler: base}
}

// DenominationRequest is a count of one note or coin value.
type DenominationRequest struct {
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count" binding:"min=0"`
}

// ShiftRequest is one opening or closing count.
type ShiftRequest struct {
	Date          string                `json:"date" binding:"required,datetime=2006-01-02"`
	ShiftType     string                `json:"shiftType" binding:"required,oneof=opening closing"`
	Denominations []DenominationRequest `json:"denominations" binding:"dive"`
	OnlineCash    decimal.Decimal       `json:"onlineCash"`
	PosCash       decimal.Decimal       `json:"posCash"`
	Notes         string                `json:"notes" binding:"max=1000"`
}

// VerifyRequest carries the optional verification note.
type VerifyRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

// ListCashRegistryQuery filters the registry list.
type ListCashRegistryQuery struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	ShiftType string `form:"shiftType" binding:"omitempty,oneof=opening closing"`
	Status    string `form:"status" binding:"omitempty,oneof=unverified verified"`
}

func (r ShiftRequest) input() cashregistry.SubmitShiftInput {
	in := cashregistry.SubmitShiftInput{
		Date:          r.Date,
		ShiftType:     domain.ShiftType(r.ShiftType),
		Denominations: make([]domain.Denomination, 0, len(r.Denominations)),
		OnlineCash:    r.OnlineCash,
		PosCash:       r.PosCash,
		Notes:         r.Notes,
	}
	for _, d := range r.Denominations {
		in.Denominations = append(in.Denominations, domain.Denomination{Value: d.Value, Count: d.Count})
	}
	return in
}

func (h *CashRegistryHandler) service(c *gin.Context) (*cashregistry.Service, bool) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return cashregistry.NewService(repos), true
}

// List godoc
// @ID           listCashRegistry
// @Summary      List cash registry entries
// @Tags         cash-registry
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        from query string false "First business date" format(date)
// @Param        to query string false "Last business date" format(date)
// @Param        shiftType query string false "Shift type" Enums(opening, closing)
// @Param        status query string false "Verification status" Enums(unverified, verified)
// @Success      200 {object} dto.Response{data=[]domain.Entry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry [get]
func (h *CashRegistryHandler) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q ListCashRegistryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := svc.List(c.Request.Context(), domain.ListFilter{
		Filter:    filter,
		From:      q.From,
		To:        q.To,
		ShiftType: domain.ShiftType(q.ShiftType),
		Status:    domain.Status(q.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Summary godoc
// @ID           getCashRegistrySummary
// @Summary      Get daily cash summary
// @Description  Returns the opening and closing counts of a day with the expected closing balance
// @Tags         cash-registry
// @Produce      json
// @Param        date query string true "Business date" format(date)
// @Success      200 {object} dto.Response{data=cashregistry.DailySummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry/summary [get]
func (h *CashRegistryHandler) Summary(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	summary, err := svc.DailySummary(c.Request.Context(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Get godoc
// @ID           getCashRegistryEntry
// @Summary      Get cash registry entry
// @Tags         cash-registry
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=domain.Entry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry/{id} [get]
func (h *CashRegistryHandler) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Submit godoc
// @ID           submitCashRegistryShift
// @Summary      Submit shift count
// @Description  Records an opening or closing count. A closing count is reconciled against the day's cash flow
// @Tags         cash-registry
// @Accept       json
// @Produce      json
// @Param        request body ShiftRequest true "Shift count"
// @Success      201 {object} dto.Response{data=domain.Entry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry [post]
func (h *CashRegistryHandler) Submit(c *gin.Context) {
	caller, err := callerIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	svc, ok := h.service(c)
	if !ok {
		return
	}
	var req ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := svc.SubmitShift(c.Request.Context(), req.input(), caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Resubmit godoc
// @ID           resubmitCashRegistryShift
// @Summary      Resubmit shift count
// @Description  Replaces an unverified count
// @Tags         cash-registry
// @Accept       json
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Param        request body ShiftRequest true "Shift count"
// @Success      200 {object} dto.Response{data=domain.Entry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry/{id} [put]
func (h *CashRegistryHandler) Resubmit(c *gin.Context) {
	caller, err := callerIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	svc, ok := h.service(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}
	entry, err := svc.Resubmit(c.Request.Context(), id, req.input(), caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Verify godoc
// @ID           verifyCashRegistryEntry
// @Summary      Verify cash registry entry
// @Description  The request body is optional
// @Tags         cash-registry
// @Accept       json
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Param        request body VerifyRequest false "Verification note"
// @Success      200 {object} dto.Response{data=domain.Entry}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry/{id}/verify [post]
func (h *CashRegistryHandler) Verify(c *gin.Context) {
	caller, err := callerIdentity(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	svc, ok := h.service(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// The note is optional; an empty body binds nothing.
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.HandleError(c, err)
		return
	}
	entry, err := svc.Verify(c.Request.Context(), id, req.Note, caller.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete godoc
// @ID           deleteCashRegistryEntry
// @Summary      Delete cash registry entry
// @Tags         cash-registry
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cash-registry/{id} [delete]
func (h *CashRegistryHandler) Delete(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Cash registry entry deleted successfully"})
}
