// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/models"
)

// AuditService appends immutable audit entries. Record is always called
// with the same *gorm.DB (transaction or root) as the state change it
// documents, so the entry commits or rolls back with it.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

type AuditEntry struct {
	ApplicationID *uuid.UUID
	AgentID       *uuid.UUID
	Action        string
	Changes       map[string]interface{}
	IPAddress     string
}

func (s *AuditService) Record(tx *gorm.DB, entry AuditEntry) error {
	if tx == nil {
		tx = s.db
	}

	row := &models.AuditLog{
		ApplicationID: entry.ApplicationID,
		AgentID:       entry.AgentID,
		Action:        entry.Action,
		Changes:       models.JSONB(entry.Changes),
		IPAddress:     entry.IPAddress,
	}

	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListByApplication returns the audit trail for one application,
// oldest first.
func (s *AuditService) ListByApplication(applicationID uuid.UUID) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := s.db.Where("application_id = ?", applicationID).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return entries, nil
}
