// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/database"
	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/utils"
)

// ApplicationService owns the application record and its status field.
// Every guarded transition runs as a conditional update on the expected
// status inside a transaction, so two racing requests cannot both pass
// the same precondition.
type ApplicationService struct {
	db           *gorm.DB
	auditService *AuditService
}

func NewApplicationService(db *gorm.DB, auditService *AuditService) *ApplicationService {
	return &ApplicationService{
		db:           db,
		auditService: auditService,
	}
}

type CreateApplicationRequest struct {
	Email            string `json:"email" validate:"required,email"`
	SimType          string `json:"sim_type" validate:"omitempty,oneof=physical esim"`
	CustomerIDType   string `json:"customer_id_type,omitempty"`
	CustomerIDNumber string `json:"customer_id_number,omitempty"`
}

type UpdateApplicationRequest struct {
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	EmailVerified    *bool   `json:"email_verified,omitempty"`
	SimType          *string `json:"sim_type,omitempty" validate:"omitempty,oneof=physical esim"`
	CustomerIDType   *string `json:"customer_id_type,omitempty"`
	CustomerIDNumber *string `json:"customer_id_number,omitempty"`
	SignatureURL     *string `json:"signature_url,omitempty"`
}

func (s *ApplicationService) Create(req *CreateApplicationRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// At most one pending application per email
	var existing models.Application
	err := s.db.Where("email = ? AND status = ?", req.Email, models.ApplicationStatusPending).
		First(&existing).Error
	if err == nil {
		return nil, &DuplicatePendingError{
			CartID:        existing.CartID,
			ApplicationID: existing.ID.String(),
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cartID, err := utils.GenerateCartID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cart ID: %w", err)
	}

	application := &models.Application{
		CartID:           cartID,
		Email:            req.Email,
		SimType:          models.SimType(req.SimType),
		CustomerIDType:   req.CustomerIDType,
		CustomerIDNumber: req.CustomerIDNumber,
		Status:           models.ApplicationStatusPending,
	}

	if err := s.db.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return application, nil
}

func (s *ApplicationService) GetByID(id uuid.UUID) (*models.Application, error) {
	return s.getOne("id = ?", id)
}

func (s *ApplicationService) GetByCartID(cartID string) (*models.Application, error) {
	return s.getOne("cart_id = ?", cartID)
}

func (s *ApplicationService) getOne(query string, arg interface{}) (*models.Application, error) {
	var application models.Application
	err := s.db.Preload("CustomerInformation").
		Preload("Addresses").
		Preload("Addresses.Barangay").
		Preload("EmploymentInfo").
		Preload("OrderItems").
		Preload("OrderItems.Plan").
		Preload("OrderItems.Device").
		Preload("OrderItems.DeviceConfig").
		Preload("PrivacyPreferences").
		Preload("Store").
		Where(query, arg).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &application, nil
}

// Update merges the provided fields onto the record. Fields arrive
// incrementally across wizard steps, so no cross-field validation
// happens here. Verified and rejected applications are immutable.
func (s *ApplicationService) Update(id uuid.UUID, req *UpdateApplicationRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var application models.Application
	if err := s.db.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if application.Status.IsTerminal() {
		return nil, &InvalidStateError{Operation: "update", CurrentStatus: string(application.Status)}
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.EmailVerified != nil {
		updates["email_verified"] = *req.EmailVerified
	}
	if req.SimType != nil {
		updates["sim_type"] = *req.SimType
	}
	if req.CustomerIDType != nil {
		updates["customer_id_type"] = *req.CustomerIDType
	}
	if req.CustomerIDNumber != nil {
		updates["customer_id_number"] = *req.CustomerIDNumber
	}
	if req.SignatureURL != nil {
		updates["signature_url"] = *req.SignatureURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(&application).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update application: %w", err)
		}
	}

	return &application, nil
}

// Submit is the customer-facing transition into "submitted": signature
// captured, timestamp recorded, audit entry written.
func (s *ApplicationService) Submit(id uuid.UUID, signatureURL, ipAddress string) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		now := time.Now()
		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", id, models.ApplicationStatusPending).
			Updates(map[string]interface{}{
				"status":        models.ApplicationStatusSubmitted,
				"signature_url": signatureURL,
				"submitted_at":  now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to submit application: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &InvalidStateError{Operation: "submit", CurrentStatus: string(application.Status)}
		}

		application.Status = models.ApplicationStatusSubmitted
		application.SignatureURL = signatureURL
		application.SubmittedAt = &now

		return s.auditService.Record(tx, AuditEntry{
			ApplicationID: &application.ID,
			Action:        models.AuditActionApplicationSubmitted,
			Changes:       map[string]interface{}{"status": models.ApplicationStatusSubmitted},
			IPAddress:     ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// AssignToAgent claims an application for review. From "pending" it also
// moves the status to "submitted"; from "submitted" it only takes
// ownership (self-submitted and orphaned applications), which makes a
// same-agent retry a no-op.
func (s *ApplicationService) AssignToAgent(id, agentID, storeID uuid.UUID, ipAddress string) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.AssignedAgentID != nil && *application.AssignedAgentID != agentID {
			return fmt.Errorf("%w: application is already assigned to another agent", ErrConflict)
		}

		switch application.Status {
		case models.ApplicationStatusPending:
			result := tx.Model(&models.Application{}).
				Where("id = ? AND status = ?", id, models.ApplicationStatusPending).
				Updates(map[string]interface{}{
					"status":            models.ApplicationStatusSubmitted,
					"assigned_agent_id": agentID,
					"store_id":          storeID,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to assign application: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return &InvalidStateError{Operation: "assign", CurrentStatus: string(application.Status)}
			}
			application.Status = models.ApplicationStatusSubmitted

		case models.ApplicationStatusSubmitted:
			if application.AssignedAgentID != nil {
				// Same agent retrying the claim
				return nil
			}
			result := tx.Model(&models.Application{}).
				Where("id = ? AND status = ? AND assigned_agent_id IS NULL", id, models.ApplicationStatusSubmitted).
				Updates(map[string]interface{}{
					"assigned_agent_id": agentID,
					"store_id":          storeID,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to assign application: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: application is already assigned to another agent", ErrConflict)
			}

		default:
			return &InvalidStateError{Operation: "assign", CurrentStatus: string(application.Status)}
		}

		application.AssignedAgentID = &agentID
		application.StoreID = &storeID

		return s.auditService.Record(tx, AuditEntry{
			ApplicationID: &application.ID,
			AgentID:       &agentID,
			Action:        models.AuditActionApplicationAssigned,
			Changes: map[string]interface{}{
				"status":   application.Status,
				"agent_id": agentID.String(),
				"store_id": storeID.String(),
			},
			IPAddress: ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Verify is the terminal locking transition. Once verified the record is
// immutable; Update refuses terminal statuses.
func (s *ApplicationService) Verify(id, agentID uuid.UUID, ipAddress string) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status != models.ApplicationStatusSubmitted {
			return &InvalidStateError{Operation: "verify", CurrentStatus: string(application.Status)}
		}

		if application.AssignedAgentID == nil || *application.AssignedAgentID != agentID {
			return fmt.Errorf("%w: application is not assigned to this agent", ErrForbidden)
		}

		now := time.Now()
		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", id, models.ApplicationStatusSubmitted).
			Updates(map[string]interface{}{
				"status":       models.ApplicationStatusVerified,
				"submitted_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to verify application: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &InvalidStateError{Operation: "verify", CurrentStatus: string(application.Status)}
		}

		application.Status = models.ApplicationStatusVerified
		application.SubmittedAt = &now

		return s.auditService.Record(tx, AuditEntry{
			ApplicationID: &application.ID,
			AgentID:       &agentID,
			Action:        models.AuditActionApplicationVerified,
			Changes:       map[string]interface{}{"status": models.ApplicationStatusVerified},
			IPAddress:     ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Reject moves a submitted application to the rejected terminal state and
// releases its assigned number back to the pool in the same transaction.
func (s *ApplicationService) Reject(id, agentID uuid.UUID, reason, ipAddress string) (*models.Application, error) {
	var application models.Application

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("application: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if application.Status != models.ApplicationStatusSubmitted {
			return &InvalidStateError{Operation: "reject", CurrentStatus: string(application.Status)}
		}

		if application.AssignedAgentID == nil || *application.AssignedAgentID != agentID {
			return fmt.Errorf("%w: application is not assigned to this agent", ErrForbidden)
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", id, models.ApplicationStatusSubmitted).
			Updates(map[string]interface{}{
				"status":          models.ApplicationStatusRejected,
				"assigned_number": "",
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reject application: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &InvalidStateError{Operation: "reject", CurrentStatus: string(application.Status)}
		}

		application.Status = models.ApplicationStatusRejected

		// Free the number the application was holding, if any
		var number models.AvailableNumber
		err := tx.Where("assigned_to = ? AND status = ?", id, models.NumberStatusAssigned).
			First(&number).Error
		if err == nil {
			if err := tx.Model(&number).Updates(map[string]interface{}{
				"status":      models.NumberStatusAvailable,
				"assigned_to": nil,
				"assigned_at": nil,
			}).Error; err != nil {
				return fmt.Errorf("failed to release number: %w", err)
			}
			if err := s.auditService.Record(tx, AuditEntry{
				ApplicationID: &application.ID,
				AgentID:       &agentID,
				Action:        models.AuditActionNumberReleased,
				Changes:       map[string]interface{}{"msisdn": number.MSISDN},
				IPAddress:     ipAddress,
			}); err != nil {
				return err
			}
			application.AssignedNumber = ""
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		return s.auditService.Record(tx, AuditEntry{
			ApplicationID: &application.ID,
			AgentID:       &agentID,
			Action:        models.AuditActionApplicationRejected,
			Changes: map[string]interface{}{
				"status": models.ApplicationStatusRejected,
				"reason": reason,
			},
			IPAddress: ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// SearchForAgent returns the agent's work queue: every pending
// application, the submitted/verified ones this agent owns, and any
// submitted application that lost its owner.
func (s *ApplicationService) SearchForAgent(agentID uuid.UUID) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Where("status = ?", models.ApplicationStatusPending).
		Or("status IN ? AND assigned_agent_id = ?",
			[]models.ApplicationStatus{models.ApplicationStatusSubmitted, models.ApplicationStatusVerified}, agentID).
		Or("status = ? AND assigned_agent_id IS NULL", models.ApplicationStatusSubmitted).
		Order("created_at desc").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return applications, nil
}

// List is the paginated agent console query. A search term matches cart
// ID, email, and customer ID number; a status filter narrows to that
// status; with neither the agent's work queue is returned.
func (s *ApplicationService) List(agentID uuid.UUID, params utils.PaginationParams) ([]models.Application, int64, error) {
	query := s.db.Model(&models.Application{})

	switch {
	case params.Search != "":
		pattern := "%" + params.Search + "%"
		query = query.Where("cart_id LIKE ? OR email LIKE ? OR customer_id_number LIKE ?", pattern, pattern, pattern)
	case params.Status != "":
		query = query.Where("status = ?", params.Status)
	default:
		query = query.Where(
			s.db.Where("status = ?", models.ApplicationStatusPending).
				Or("status IN ? AND assigned_agent_id = ?",
					[]models.ApplicationStatus{models.ApplicationStatusSubmitted, models.ApplicationStatusVerified}, agentID).
				Or("status = ? AND assigned_agent_id IS NULL", models.ApplicationStatusSubmitted),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status", "email", "submitted_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return applications, total, nil
}

// Search matches the term against cart ID, email, and customer ID number.
func (s *ApplicationService) Search(term string) ([]models.Application, error) {
	var applications []models.Application
	pattern := "%" + term + "%"
	err := s.db.
		Where("cart_id LIKE ? OR email LIKE ? OR customer_id_number LIKE ?", pattern, pattern, pattern).
		Order("created_at desc").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}
	return applications, nil
}

func (s *ApplicationService) ListByStatus(status models.ApplicationStatus) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Where("status = ?", status).
		Order("created_at desc").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return applications, nil
}

// ListOpen is the default agent console view: everything not rejected.
func (s *ApplicationService) ListOpen() ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Where("status IN ?", []models.ApplicationStatus{
			models.ApplicationStatusPending,
			models.ApplicationStatusSubmitted,
			models.ApplicationStatusVerified,
		}).
		Order("created_at desc").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return applications, nil
}

// ----------------------------------------------------------------------
// Child sections
// ----------------------------------------------------------------------

type CustomerInformationRequest struct {
	IDType     string `json:"id_type" validate:"required"`
	IDFrontURL string `json:"id_front_url" validate:"required"`
	IDBackURL  string `json:"id_back_url" validate:"required"`
	NationalID string `json:"national_id,omitempty"`
}

type AddressRequest struct {
	AddressType        string `json:"address_type" validate:"required,oneof=residential employment"`
	TypeDetail         string `json:"type_detail,omitempty"`
	HouseLotNumber     string `json:"house_lot_number" validate:"required"`
	StreetName         string `json:"street_name" validate:"required"`
	VillageSubdivision string `json:"village_subdivision,omitempty"`
	ProvinceID         *int   `json:"province_id,omitempty"`
	CityID             *int   `json:"city_id,omitempty"`
	BarangayID         *int   `json:"barangay_id,omitempty"`
	ZipCode            string `json:"zip_code,omitempty"`
}

type EmploymentRequest struct {
	EmploymentType      string     `json:"employment_type" validate:"required,oneof=full-time self-employed unemployed"`
	EmployerName        string     `json:"employer_name,omitempty"`
	EmployerContact     string     `json:"employer_contact,omitempty"`
	JobTitle            string     `json:"job_title,omitempty"`
	PositionLevel       string     `json:"position_level,omitempty"`
	MonthlyIncomeRange  string     `json:"monthly_income_range,omitempty"`
	EmploymentStartDate *time.Time `json:"employment_start_date,omitempty"`
	SameAsResidential   bool       `json:"same_as_residential,omitempty"`
}

type OrderItemRequest struct {
	PlanID         uuid.UUID       `json:"plan_id" validate:"required"`
	DeviceID       uuid.UUID       `json:"device_id" validate:"required"`
	DeviceConfigID *uuid.UUID      `json:"device_config_id,omitempty"`
	OneTimeCashout decimal.Decimal `json:"one_time_cashout"`
}

type PrivacyPreferencesRequest struct {
	ProductOffers                 bool `json:"product_offers"`
	TrustedPartners               bool `json:"trusted_partners"`
	Customization                 bool `json:"customization"`
	SisterCompanies               bool `json:"sister_companies"`
	BusinessPartners              bool `json:"business_partners"`
	TermsAccepted                 bool `json:"terms_accepted" validate:"required"`
	PrivacyNoticeAccepted         bool `json:"privacy_notice_accepted" validate:"required"`
	SubscriberDeclarationAccepted bool `json:"subscriber_declaration_accepted" validate:"required"`
}

func (s *ApplicationService) requireEditable(id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := s.db.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if application.Status.IsTerminal() {
		return nil, &InvalidStateError{Operation: "update", CurrentStatus: string(application.Status)}
	}
	return &application, nil
}

func (s *ApplicationService) AddCustomerInformation(applicationID uuid.UUID, req *CustomerInformationRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.requireEditable(applicationID); err != nil {
		return err
	}

	info := models.CustomerInformation{
		ApplicationID:        applicationID,
		IDType:               req.IDType,
		IDFrontURL:           req.IDFrontURL,
		IDBackURL:            req.IDBackURL,
		NationalID:           req.NationalID,
		IDVerificationStatus: "pending",
	}

	// Reposting the section replaces the previous answers in place; the
	// wizard lets customers navigate back to earlier steps.
	var existing models.CustomerInformation
	err := s.db.Where("application_id = ?", applicationID).First(&existing).Error
	switch {
	case err == nil:
		info.BaseModel = existing.BaseModel
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Save(&info).Error; err != nil {
		return fmt.Errorf("failed to save customer information: %w", err)
	}
	return nil
}

func (s *ApplicationService) AddAddress(applicationID uuid.UUID, req *AddressRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.requireEditable(applicationID); err != nil {
		return err
	}

	address := &models.Address{
		ApplicationID:      applicationID,
		AddressType:        models.AddressType(req.AddressType),
		TypeDetail:         req.TypeDetail,
		HouseLotNumber:     req.HouseLotNumber,
		StreetName:         req.StreetName,
		VillageSubdivision: req.VillageSubdivision,
		ProvinceID:         req.ProvinceID,
		CityID:             req.CityID,
		BarangayID:         req.BarangayID,
		ZipCode:            req.ZipCode,
	}
	if err := s.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}
	return nil
}

func (s *ApplicationService) AddEmployment(applicationID uuid.UUID, req *EmploymentRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.requireEditable(applicationID); err != nil {
		return err
	}

	info := models.EmploymentInformation{
		ApplicationID:       applicationID,
		EmploymentType:      models.EmploymentType(req.EmploymentType),
		EmployerName:        req.EmployerName,
		EmployerContact:     req.EmployerContact,
		JobTitle:            req.JobTitle,
		PositionLevel:       req.PositionLevel,
		MonthlyIncomeRange:  req.MonthlyIncomeRange,
		EmploymentStartDate: req.EmploymentStartDate,
		SameAsResidential:   req.SameAsResidential,
	}

	var existing models.EmploymentInformation
	err := s.db.Where("application_id = ?", applicationID).First(&existing).Error
	switch {
	case err == nil:
		info.BaseModel = existing.BaseModel
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Save(&info).Error; err != nil {
		return fmt.Errorf("failed to save employment information: %w", err)
	}
	return nil
}

// AddOrderItem prices the selection from the catalog: device base price
// plus configuration adjustment, financed over the plan duration after
// the one-time cash-out, plus the monthly plan fee.
func (s *ApplicationService) AddOrderItem(applicationID uuid.UUID, req *OrderItemRequest) (*models.OrderItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.requireEditable(applicationID); err != nil {
		return nil, err
	}

	var plan models.Plan
	if err := s.db.Where("id = ? AND is_active = ?", req.PlanID, true).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var device models.Device
	if err := s.db.Where("id = ? AND is_active = ?", req.DeviceID, true).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("device: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	devicePrice := device.BasePrice
	if req.DeviceConfigID != nil {
		var config models.DeviceConfiguration
		if err := s.db.Where("id = ? AND device_id = ? AND is_active = ?",
			req.DeviceConfigID, req.DeviceID, true).First(&config).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("device configuration: %w", ErrNotFound)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		devicePrice = devicePrice.Add(config.PriceAdjustment)
	}

	cashout := req.OneTimeCashout
	if cashout.GreaterThan(devicePrice) {
		return nil, fmt.Errorf("%w: one-time cash-out exceeds device price", ErrValidation)
	}
	if plan.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: plan has no installment duration", ErrValidation)
	}

	months := decimal.NewFromInt(int64(plan.DurationMonths))
	monthly := devicePrice.Sub(cashout).DivRound(months, 2).Add(plan.Price)

	item := &models.OrderItem{
		ApplicationID:  applicationID,
		PlanID:         req.PlanID,
		DeviceID:       req.DeviceID,
		DeviceConfigID: req.DeviceConfigID,
		DevicePrice:    devicePrice,
		PlanPrice:      plan.Price,
		OneTimeCashout: cashout,
		MonthlyPayment: monthly,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to save order item: %w", err)
	}
	return item, nil
}

func (s *ApplicationService) AddPrivacyPreferences(applicationID uuid.UUID, req *PrivacyPreferencesRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.requireEditable(applicationID); err != nil {
		return err
	}

	prefs := models.PrivacyPreferences{
		ApplicationID:                 applicationID,
		ProductOffers:                 req.ProductOffers,
		TrustedPartners:               req.TrustedPartners,
		Customization:                 req.Customization,
		SisterCompanies:               req.SisterCompanies,
		BusinessPartners:              req.BusinessPartners,
		TermsAccepted:                 req.TermsAccepted,
		PrivacyNoticeAccepted:         req.PrivacyNoticeAccepted,
		SubscriberDeclarationAccepted: req.SubscriberDeclarationAccepted,
	}

	var existing models.PrivacyPreferences
	err := s.db.Where("application_id = ?", applicationID).First(&existing).Error
	switch {
	case err == nil:
		prefs.BaseModel = existing.BaseModel
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Save(&prefs).Error; err != nil {
		return fmt.Errorf("failed to save privacy preferences: %w", err)
	}
	return nil
}
