package handler

import (
	"github.com/gin-gonic/gin"
	appsalon "github.com/salon-crm/backend/internal/application/salon"
	"github.com/salon-crm/backend/internal/domain/salon"
)

// SettingsHandler serves the business settings document.
type SettingsHandler struct {
	BaseHandler
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(base BaseHandler) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base}
}

// Get godoc
// @ID           getSettings
// @Summary      Get business settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=salon.BusinessSettings}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	settings, err := appsalon.NewSettingsService(repos).Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Update godoc
// @ID           updateSettings
// @Summary      Update business settings
// @Description  Omitted fields keep their value
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body salon.BusinessSettings true "Settings fields"
// @Success      200 {object} dto.Response{data=salon.BusinessSettings}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	repos, err := businessRepos(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	settings, err := appsalon.NewSettingsService(repos).Update(c.Request.Context(), func(cur *salon.BusinessSettings) error {
		return c.ShouldBindJSON(cur)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}
