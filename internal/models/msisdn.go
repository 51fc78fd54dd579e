// internal/models/msisdn.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailableNumber is one entry in the phone number pool. A number in
// status "assigned" always carries a non-nil AssignedTo; once assigned it
// is never handed out again (release happens only on rejection).
type AvailableNumber struct {
	BaseModel
	MSISDN      string       `json:"msisdn" gorm:"uniqueIndex;size:20;not null"`
	Status      NumberStatus `json:"status" gorm:"type:varchar(20);default:'available';not null;index"`
	ReservedFor *uuid.UUID   `json:"reserved_for" gorm:"type:uuid"`
	AssignedTo  *uuid.UUID   `json:"assigned_to" gorm:"type:uuid"`
	ReservedAt  *time.Time   `json:"reserved_at"`
	AssignedAt  *time.Time   `json:"assigned_at"`
}
