// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog is an append-only record of a state-changing action against an
// application. Rows are never updated or deleted.
type AuditLog struct {
	BaseModel
	ApplicationID *uuid.UUID `json:"application_id" gorm:"type:uuid;index"`
	AgentID       *uuid.UUID `json:"agent_id" gorm:"type:uuid;index"`
	Action        string     `json:"action" gorm:"size:100;not null;index"`
	Changes       JSONB      `json:"changes" gorm:"type:jsonb"`
	IPAddress     string     `json:"ip_address" gorm:"size:45"`

	Application *Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
	Agent       *Agent       `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
}
