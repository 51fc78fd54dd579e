// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Plan struct {
	BaseModel
	Name           string          `json:"name" gorm:"size:255;not null"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	DurationMonths int             `json:"duration_months" gorm:"not null"`
	Features       JSONB           `json:"features" gorm:"type:jsonb"`
	IsActive       bool            `json:"is_active" gorm:"default:true;not null"`
}

type Device struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:255;not null"`
	Brand       string          `json:"brand" gorm:"size:100;not null"`
	Model       string          `json:"model" gorm:"size:100;not null"`
	BasePrice   decimal.Decimal `json:"base_price" gorm:"type:decimal(10,2);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[]"`
	IsActive    bool            `json:"is_active" gorm:"default:true;not null"`

	Configurations []DeviceConfiguration `json:"configurations,omitempty" gorm:"foreignKey:DeviceID"`
}

type DeviceConfiguration struct {
	BaseModel
	DeviceID        uuid.UUID       `json:"device_id" gorm:"type:uuid;not null;index"`
	Color           string          `json:"color" gorm:"size:50"`
	Storage         string          `json:"storage" gorm:"size:50"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" gorm:"type:decimal(10,2);default:0;not null"`
	StockQuantity   int             `json:"stock_quantity" gorm:"default:0;not null"`
	IsActive        bool            `json:"is_active" gorm:"default:true;not null"`
}
