// internal/services/location_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/models"
)

// LocationService serves the province/city/barangay lookups behind the
// address form.
type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

func (s *LocationService) ListProvinces() ([]models.Province, error) {
	var provinces []models.Province
	if err := s.db.Order("name asc").Find(&provinces).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch provinces: %w", err)
	}
	return provinces, nil
}

func (s *LocationService) ListCities(provinceID int) ([]models.City, error) {
	var cities []models.City
	query := s.db.Order("name asc")
	if provinceID > 0 {
		query = query.Where("province_id = ?", provinceID)
	}
	if err := query.Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}
	return cities, nil
}

func (s *LocationService) ListBarangays(cityID int) ([]models.Barangay, error) {
	var barangays []models.Barangay
	query := s.db.Order("name asc")
	if cityID > 0 {
		query = query.Where("city_id = ?", cityID)
	}
	if err := query.Find(&barangays).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch barangays: %w", err)
	}
	return barangays, nil
}
