package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/application/identity"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
)

// BusinessHandler serves platform administration of tenant businesses.
type BusinessHandler struct {
	BaseHandler
	provisioning *identity.ProvisioningService
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(base BaseHandler, provisioning *identity.ProvisioningService) *BusinessHandler {
	return &BusinessHandler{BaseHandler: base, provisioning: provisioning}
}

// OwnerRequest is the owner account created with a business.
type OwnerRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Phone    string `json:"phone" binding:"max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// CreateBusinessRequest provisions a business with its owner.
type CreateBusinessRequest struct {
	Name    string       `json:"name" binding:"required,max=200"`
	Phone   string       `json:"phone" binding:"max=50"`
	Email   string       `json:"email" binding:"omitempty,email,max=200"`
	Address string       `json:"address" binding:"max=500"`
	Plan    string       `json:"plan" binding:"omitempty,oneof=free basic pro enterprise"`
	Owner   OwnerRequest `json:"owner" binding:"required"`
}

// UpdateStatusRequest moves a business to another lifecycle state.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// UpdatePlanRequest changes the subscription plan.
type UpdatePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free basic pro enterprise"`
}

// List godoc
// @ID           listBusinesses
// @Summary      List businesses
// @Description  Lists tenant businesses with search, status and plan filters
// @Tags         admin-businesses
// @Produce      json
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Free text search"
// @Param        sortBy query string false "Sort field"
// @Param        sortOrder query string false "Sort direction" Enums(asc, desc)
// @Param        status query string false "Business status" Enums(active, inactive, suspended)
// @Param        plan query string false "Subscription plan" Enums(free, basic, pro, enterprise)
// @Success      200 {object} dto.Response{data=[]platform.Business}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/businesses [get]
func (h *BusinessHandler) List(c *gin.Context) {
	filter, err := listFilter(c, "status", "plan")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.provisioning.ListBusinesses(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Create godoc
// @ID           createBusiness
// @Summary      Create business
// @Description  Provisions a business with its owner account and store
// @Tags         admin-businesses
// @Accept       json
// @Produce      json
// @Param        request body CreateBusinessRequest true "Business and owner"
// @Success      201 {object} dto.Response{data=identity.CreateBusinessResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/businesses [post]
func (h *BusinessHandler) Create(c *gin.Context) {
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.provisioning.CreateBusiness(c.Request.Context(), identity.CreateBusinessInput{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Plan:          platform.BusinessPlan(req.Plan),
		OwnerName:     req.Owner.Name,
		OwnerEmail:    req.Owner.Email,
		OwnerPhone:    req.Owner.Phone,
		OwnerPassword: req.Owner.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get godoc
// @ID           getBusiness
// @Summary      Get business
// @Tags         admin-businesses
// @Produce      json
// @Param        id path string true "Business ID" format(uuid)
// @Success      200 {object} dto.Response{data=platform.Business}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/businesses/{id} [get]
func (h *BusinessHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	business, err := h.provisioning.GetBusiness(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}

// UpdateStatus godoc
// @ID           updateBusinessStatus
// @Summary      Update business status
// @Tags         admin-businesses
// @Accept       json
// @Produce      json
// @Param        id path string true "Business ID" format(uuid)
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=platform.Business}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/businesses/{id}/status [put]
func (h *BusinessHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}
	business, err := h.provisioning.UpdateStatus(c.Request.Context(), id, platform.BusinessStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}

// UpdatePlan godoc
// @ID           updateBusinessPlan
// @Summary      Update business plan
// @Tags         admin-businesses
// @Accept       json
// @Produce      json
// @Param        id path string true "Business ID" format(uuid)
// @Param        request body UpdatePlanRequest true "New plan"
// @Success      200 {object} dto.Response{data=platform.Business}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/businesses/{id}/plan [put]
func (h *BusinessHandler) UpdatePlan(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, err)
		return
	}
	business, err := h.provisioning.UpdatePlan(c.Request.Context(), id, platform.BusinessPlan(req.Plan))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}
