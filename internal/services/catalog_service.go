// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/models"
)

// CatalogService serves the plan and device reference data the wizard
// renders. Read-only from the customer flow; rows are seeded or managed
// out of band.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListPlans() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("is_active = ?", true).Order("price asc").Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}
	return plans, nil
}

func (s *CatalogService) ListDevices() ([]models.Device, error) {
	var devices []models.Device
	err := s.db.Where("is_active = ?", true).
		Preload("Configurations", "is_active = ?", true).
		Order("brand asc, name asc").
		Find(&devices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}
	return devices, nil
}

func (s *CatalogService) GetDevice(id uuid.UUID) (*models.Device, error) {
	var device models.Device
	err := s.db.Where("id = ? AND is_active = ?", id, true).
		Preload("Configurations", "is_active = ?", true).
		First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("device: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &device, nil
}

func (s *CatalogService) ListStores() ([]models.Store, error) {
	var stores []models.Store
	err := s.db.Where("is_active = ?", true).
		Preload("City").
		Order("name asc").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}
	return stores, nil
}
