// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusVerified  ApplicationStatus = "verified"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition may leave the status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusVerified || s == ApplicationStatusRejected
}

type SimType string

const (
	SimTypePhysical SimType = "physical"
	SimTypeESim     SimType = "esim"
)

type NumberStatus string

const (
	NumberStatusAvailable NumberStatus = "available"
	NumberStatusReserved  NumberStatus = "reserved"
	NumberStatusAssigned  NumberStatus = "assigned"
)

type AddressType string

const (
	AddressTypeResidential AddressType = "residential"
	AddressTypeEmployment  AddressType = "employment"
)

type EmploymentType string

const (
	EmploymentTypeFullTime     EmploymentType = "full-time"
	EmploymentTypeSelfEmployed EmploymentType = "self-employed"
	EmploymentTypeUnemployed   EmploymentType = "unemployed"
)

type AgentRole string

const (
	AgentRoleAgent AgentRole = "agent"
	AgentRoleAdmin AgentRole = "admin"
)

// Audit actions
const (
	AuditActionApplicationSubmitted = "application_submitted"
	AuditActionApplicationAssigned  = "application_assigned"
	AuditActionApplicationVerified  = "application_verified"
	AuditActionApplicationRejected  = "application_rejected"
	AuditActionNumberAssigned       = "number_assigned"
	AuditActionNumberReleased       = "number_released"
)
