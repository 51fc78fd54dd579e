// internal/handlers/location.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

type LocationHandler struct {
	locationService *services.LocationService
}

func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

// GET /locations/provinces
func (h *LocationHandler) ListProvinces(c *gin.Context) {
	provinces, err := h.locationService.ListProvinces()
	if err != nil {
		handleServiceError(c, err, "location")
		return
	}
	utils.SuccessResponse(c, gin.H{"provinces": provinces})
}

// GET /locations/cities?province_id=
func (h *LocationHandler) ListCities(c *gin.Context) {
	provinceID, _ := strconv.Atoi(c.Query("province_id"))

	cities, err := h.locationService.ListCities(provinceID)
	if err != nil {
		handleServiceError(c, err, "location")
		return
	}
	utils.SuccessResponse(c, gin.H{"cities": cities})
}

// GET /locations/barangays?city_id=
func (h *LocationHandler) ListBarangays(c *gin.Context) {
	cityID, _ := strconv.Atoi(c.Query("city_id"))

	barangays, err := h.locationService.ListBarangays(cityID)
	if err != nil {
		handleServiceError(c, err, "location")
		return
	}
	utils.SuccessResponse(c, gin.H{"barangays": barangays})
}
