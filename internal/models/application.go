// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application is one customer's financing attempt, identified externally
// by its cart ID. At most one pending application may exist per email.
type Application struct {
	BaseModel
	CartID           string            `json:"cart_id" gorm:"uniqueIndex;size:50;not null"`
	Email            string            `json:"email" gorm:"size:255;not null;index"`
	EmailVerified    bool              `json:"email_verified" gorm:"default:false;not null"`
	Status           ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';not null;index"`
	CustomerIDType   string            `json:"customer_id_type" gorm:"size:50"`
	CustomerIDNumber string            `json:"customer_id_number" gorm:"size:100;index"`
	AssignedNumber   string            `json:"assigned_number" gorm:"size:20"`
	SimType          SimType           `json:"sim_type" gorm:"type:varchar(20)"`
	SignatureURL     string            `json:"signature_url" gorm:"type:text"`
	SubmittedAt      *time.Time        `json:"submitted_at"`
	AssignedAgentID  *uuid.UUID        `json:"assigned_agent_id" gorm:"type:uuid;index"`
	StoreID          *uuid.UUID        `json:"store_id" gorm:"type:uuid"`

	// Relationships
	AssignedAgent       *Agent                 `json:"assigned_agent,omitempty" gorm:"foreignKey:AssignedAgentID"`
	Store               *Store                 `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	CustomerInformation *CustomerInformation   `json:"customer_information,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	Addresses           []Address              `json:"addresses,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	EmploymentInfo      *EmploymentInformation `json:"employment_information,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	OrderItems          []OrderItem            `json:"order_items,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
	PrivacyPreferences  *PrivacyPreferences    `json:"privacy_preferences,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

// CustomerInformation holds the identity document section of the form.
type CustomerInformation struct {
	BaseModel
	ApplicationID        uuid.UUID `json:"application_id" gorm:"type:uuid;uniqueIndex;not null"`
	IDType               string    `json:"id_type" gorm:"size:50;not null"`
	IDFrontURL           string    `json:"id_front_url" gorm:"type:text;not null"`
	IDBackURL            string    `json:"id_back_url" gorm:"type:text;not null"`
	NationalID           string    `json:"national_id" gorm:"size:100"`
	IDVerificationStatus string    `json:"id_verification_status" gorm:"size:20;default:'pending';not null"`
}

type Address struct {
	BaseModel
	ApplicationID      uuid.UUID   `json:"application_id" gorm:"type:uuid;not null;index"`
	AddressType        AddressType `json:"address_type" gorm:"type:varchar(20);not null"`
	TypeDetail         string      `json:"type_detail" gorm:"size:50"`
	HouseLotNumber     string      `json:"house_lot_number" gorm:"size:100;not null"`
	StreetName         string      `json:"street_name" gorm:"size:255;not null"`
	VillageSubdivision string      `json:"village_subdivision" gorm:"size:255"`
	ProvinceID         *int        `json:"province_id"`
	CityID             *int        `json:"city_id"`
	BarangayID         *int        `json:"barangay_id"`
	ZipCode            string      `json:"zip_code" gorm:"size:10"`

	Barangay *Barangay `json:"barangay,omitempty" gorm:"foreignKey:BarangayID"`
}

type EmploymentInformation struct {
	BaseModel
	ApplicationID       uuid.UUID      `json:"application_id" gorm:"type:uuid;uniqueIndex;not null"`
	EmploymentType      EmploymentType `json:"employment_type" gorm:"type:varchar(20);not null"`
	EmployerName        string         `json:"employer_name" gorm:"size:255"`
	EmployerContact     string         `json:"employer_contact" gorm:"size:100"`
	JobTitle            string         `json:"job_title" gorm:"size:100"`
	PositionLevel       string         `json:"position_level" gorm:"size:50"`
	MonthlyIncomeRange  string         `json:"monthly_income_range" gorm:"size:50"`
	EmploymentStartDate *time.Time     `json:"employment_start_date"`
	SameAsResidential   bool           `json:"same_as_residential" gorm:"default:false;not null"`
}

// OrderItem captures a plan + device selection with its computed pricing.
type OrderItem struct {
	BaseModel
	ApplicationID  uuid.UUID       `json:"application_id" gorm:"type:uuid;not null;index"`
	PlanID         uuid.UUID       `json:"plan_id" gorm:"type:uuid;not null"`
	DeviceID       uuid.UUID       `json:"device_id" gorm:"type:uuid;not null"`
	DeviceConfigID *uuid.UUID      `json:"device_config_id" gorm:"type:uuid"`
	DevicePrice    decimal.Decimal `json:"device_price" gorm:"type:decimal(10,2);not null"`
	PlanPrice      decimal.Decimal `json:"plan_price" gorm:"type:decimal(10,2);not null"`
	OneTimeCashout decimal.Decimal `json:"one_time_cashout" gorm:"type:decimal(10,2);not null"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment" gorm:"type:decimal(10,2);not null"`

	Plan         *Plan                `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	Device       *Device              `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
	DeviceConfig *DeviceConfiguration `json:"device_configuration,omitempty" gorm:"foreignKey:DeviceConfigID"`
}

type PrivacyPreferences struct {
	BaseModel
	ApplicationID                 uuid.UUID `json:"application_id" gorm:"type:uuid;uniqueIndex;not null"`
	ProductOffers                 bool      `json:"product_offers" gorm:"default:false;not null"`
	TrustedPartners               bool      `json:"trusted_partners" gorm:"default:false;not null"`
	Customization                 bool      `json:"customization" gorm:"default:false;not null"`
	SisterCompanies               bool      `json:"sister_companies" gorm:"default:false;not null"`
	BusinessPartners              bool      `json:"business_partners" gorm:"default:false;not null"`
	TermsAccepted                 bool      `json:"terms_accepted" gorm:"default:false;not null"`
	PrivacyNoticeAccepted         bool      `json:"privacy_notice_accepted" gorm:"default:false;not null"`
	SubscriberDeclarationAccepted bool      `json:"subscriber_declaration_accepted" gorm:"default:false;not null"`
}
