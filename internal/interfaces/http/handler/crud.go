package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
)

// CRUDHandler exposes list/get/create/update/delete for one catalog
// entity of the caller's business.
type CRUDHandler[T any, P appsalon.Entity[T]] struct {
	BaseHandler
	service    func(*salon.Repositories) *appsalon.CRUDService[T, P]
	filterKeys []string
}

// NewCRUDHandler binds service to the tenant repositories of each request.
func NewCRUDHandler[T any, P appsalon.Entity[T]](base BaseHandler, service func(*salon.Repositories) *appsalon.CRUDService[T, P], filterKeys ...string) *CRUDHandler[T, P] {
	return &CRUDHandler[T, P]{BaseHandler: base, service: service, filterKeys: filterKeys}
}

func (h *CRUDHandler[T, P]) bind(c *gin.Context) (*appsalon.CRUDService[T, P], bool) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return h.service(repos), true
}

// List godoc
// @ID           listRecords
// @Summary      List records
// @Description  Returns one page filtered by the query string. Mounted for clients, services, products, staff, appointments and expenses
// @Tags         catalog
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, services, products, staff, appointments, expenses)
// @Param        page query int false "Page number" minimum(1)
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Free text search"
// @Param        sortBy query string false "Sort field"
// @Param        sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]object}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{resource} [get]
func (h *CRUDHandler[T, P]) List(c *gin.Context) {
	svc, ok := h.bind(c)
	if !ok {
		return
	}
	filter, err := listFilter(c, h.filterKeys...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @ID           getRecord
// @Summary      Get record
// @Tags         catalog
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, services, products, staff, appointments, expenses)
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{resource}/{id} [get]
func (h *CRUDHandler[T, P]) Get(c *gin.Context) {
	svc, ok := h.bind(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	record, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Create godoc
// @ID           createRecord
// @Summary      Create record
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, services, products, staff, appointments, expenses)
// @Param        request body object true "Record"
// @Success      201 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{resource} [post]
func (h *CRUDHandler[T, P]) Create(c *gin.Context) {
	svc, ok := h.bind(c)
	if !ok {
		return
	}
	record := new(T)
	if err := c.ShouldBindJSON(record); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := svc.Create(c.Request.Context(), record); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// Update godoc
// @ID           updateRecord
// @Summary      Update record
// @Description  Merges the posted fields into the record
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, services, products, staff, appointments, expenses)
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body object true "Fields to change"
// @Success      200 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{resource}/{id} [put]
func (h *CRUDHandler[T, P]) Update(c *gin.Context) {
	svc, ok := h.bind(c)
	if !ok {
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	record, err := svc.Update(c.Request.Context(), id, func(cur *T) error {
		return c.ShouldBindJSON(cur)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete godoc
// @ID           deleteRecord
// @Summary      Delete record
// @Tags         catalog
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, services, products, staff, appointments, expenses)
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /{resource}/{id} [delete]
func (h *CRUDHandler[T, P]) Delete(c *gin.Context) {
	svc, ok := h.bind(c)
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
	h.Success(c, MessageResponse{Message: "Deleted successfully"})
}

// Catalog handlers of a business.
type (
	ClientHandler      = CRUDHandler[salon.Client, *salon.Client]
	AppointmentHandler = CRUDHandler[salon.Appointment, *salon.Appointment]
	ServiceHandler     = CRUDHandler[salon.Service, *salon.Service]
	ProductHandler     = CRUDHandler[salon.Product, *salon.Product]
	StaffHandler       = CRUDHandler[salon.Staff, *salon.Staff]
	ExpenseHandler     = CRUDHandler[salon.Expense, *salon.Expense]
)

func NewClientHandler(base BaseHandler) *ClientHandler {
	return NewCRUDHandler(base, appsalon.NewClientService, "status", "gender")
}

func NewAppointmentHandler(base BaseHandler) *AppointmentHandler {
	return NewCRUDHandler(base, appsalon.NewAppointmentService, "status", "clientId", "staffId", "serviceId")
}

func NewServiceHandler(base BaseHandler) *ServiceHandler {
	return NewCRUDHandler(base, appsalon.NewServiceCatalog, "status", "category")
}

func NewProductHandler(base BaseHandler) *ProductHandler {
	return NewCRUDHandler(base, appsalon.NewProductService, "status", "category")
}

func NewStaffHandler(base BaseHandler) *StaffHandler {
	return NewCRUDHandler(base, appsalon.NewStaffService, "status", "role")
}

func NewExpenseHandler(base BaseHandler) *ExpenseHandler {
	return NewCRUDHandler(base, appsalon.NewExpenseService, "category", "date", "paymentMode")
}
