// internal/services/msisdn_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/database"
	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/utils"
)

// MSISDNService manages the phone number pool. Assignment is a two-row
// write (ledger flip plus application field) and must stay atomic, so
// everything state-changing here runs inside a transaction with
// conditional updates guarding the ledger row.
type MSISDNService struct {
	db           *gorm.DB
	auditService *AuditService
}

func NewMSISDNService(db *gorm.DB, auditService *AuditService) *MSISDNService {
	return &MSISDNService{
		db:           db,
		auditService: auditService,
	}
}

type AssignNumberRequest struct {
	MSISDN string `json:"msisdn" validate:"required,msisdn"`
}

// ListAvailable returns up to limit free numbers, lowest first.
func (s *MSISDNService) ListAvailable(limit int) ([]models.AvailableNumber, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var numbers []models.AvailableNumber
	err := s.db.
		Where("status = ?", models.NumberStatusAvailable).
		Order("msisdn asc").
		Limit(limit).
		Find(&numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available numbers: %w", err)
	}
	return numbers, nil
}

// Assign hands a free number to an application. The ledger row flips to
// "assigned" and the application's assigned_number field is written in
// the same transaction; any number the application previously held is
// released first. Losing a race for the same number returns ErrConflict.
func (s *MSISDNService) Assign(applicationID, agentID uuid.UUID, req *AssignNumberRequest, ipAddress string) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status.IsTerminal() {
			return &InvalidStateError{Operation: "assign number", CurrentStatus: string(application.Status)}
		}
		if application.AssignedAgentID != nil && *application.AssignedAgentID != agentID {
			return fmt.Errorf("%w: application is not assigned to this agent", ErrForbidden)
		}

		// Swap: free any number the application already holds
		if application.AssignedNumber != "" {
			if err := s.release(tx, &application, &agentID, ipAddress); err != nil {
				return err
			}
		}

		now := time.Now()
		result := tx.Model(&models.AvailableNumber{}).
			Where("msisdn = ? AND status = ?", req.MSISDN, models.NumberStatusAvailable).
			Updates(map[string]interface{}{
				"status":      models.NumberStatusAssigned,
				"assigned_to": applicationID,
				"assigned_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to assign number: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var number models.AvailableNumber
			err := tx.Where("msisdn = ?", req.MSISDN).First(&number).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("number: %w", ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			return fmt.Errorf("%w: number is no longer available", ErrConflict)
		}

		if err := tx.Model(&application).Update("assigned_number", req.MSISDN).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		application.AssignedNumber = req.MSISDN

		return s.auditService.Record(tx, AuditEntry{
			ApplicationID: &application.ID,
			AgentID:       &agentID,
			Action:        models.AuditActionNumberAssigned,
			Changes:       map[string]interface{}{"msisdn": req.MSISDN},
			IPAddress:     ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Release frees the number an application holds and clears the field on
// the application record.
func (s *MSISDNService) Release(applicationID, agentID uuid.UUID, ipAddress string) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var application models.Application
		if err := tx.First(&application, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}
		if application.AssignedNumber == "" {
			return nil
		}
		return s.release(tx, &application, &agentID, ipAddress)
	})
}

func (s *MSISDNService) release(tx *gorm.DB, application *models.Application, agentID *uuid.UUID, ipAddress string) error {
	msisdn := application.AssignedNumber

	result := tx.Model(&models.AvailableNumber{}).
		Where("assigned_to = ? AND status = ?", application.ID, models.NumberStatusAssigned).
		Updates(map[string]interface{}{
			"status":      models.NumberStatusAvailable,
			"assigned_to": nil,
			"assigned_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release number: %w", result.Error)
	}

	if err := tx.Model(application).Update("assigned_number", "").Error; err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	application.AssignedNumber = ""

	if result.RowsAffected == 0 {
		// Field was set but no ledger row backed it; nothing to audit
		return nil
	}

	return s.auditService.Record(tx, AuditEntry{
		ApplicationID: &application.ID,
		AgentID:       agentID,
		Action:        models.AuditActionNumberReleased,
		Changes:       map[string]interface{}{"msisdn": msisdn},
		IPAddress:     ipAddress,
	})
}
