// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartify/sim-backend/internal/i18n"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

// CatalogHandler serves the public plan/device/store reference data.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GET /catalog/plans
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	plans, err := h.catalogService.ListPlans()
	if err != nil {
		handleServiceError(c, err, "catalog")
		return
	}
	utils.SuccessResponse(c, gin.H{"plans": plans})
}

// GET /catalog/devices
func (h *CatalogHandler) ListDevices(c *gin.Context) {
	devices, err := h.catalogService.ListDevices()
	if err != nil {
		handleServiceError(c, err, "catalog")
		return
	}
	utils.SuccessResponse(c, gin.H{"devices": devices})
}

// GET /catalog/devices/:id
func (h *CatalogHandler) GetDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "device id"), nil)
		return
	}

	device, err := h.catalogService.GetDevice(id)
	if err != nil {
		handleServiceError(c, err, "catalog")
		return
	}
	utils.SuccessResponse(c, gin.H{"device": device})
}

// GET /catalog/stores
func (h *CatalogHandler) ListStores(c *gin.Context) {
	stores, err := h.catalogService.ListStores()
	if err != nil {
		handleServiceError(c, err, "catalog")
		return
	}
	utils.SuccessResponse(c, gin.H{"stores": stores})
}
