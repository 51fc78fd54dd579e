// internal/services/application_service_test.go
package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/utils"
)

type ApplicationServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ApplicationService
	msisdns *MSISDNService
	agent   *models.Agent
	other   *models.Agent
}

func (suite *ApplicationServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	audit := NewAuditService(suite.db)
	suite.service = NewApplicationService(suite.db, audit)
	suite.msisdns = NewMSISDNService(suite.db, audit)
	suite.agent = createTestAgent(suite.T(), suite.db, "agent_one")
	suite.other = createTestAgent(suite.T(), suite.db, "agent_two")
}

func (suite *ApplicationServiceTestSuite) createApplication(email string) *models.Application {
	app, err := suite.service.Create(&CreateApplicationRequest{
		Email:   email,
		SimType: "physical",
	})
	suite.Require().NoError(err)
	return app
}

func (suite *ApplicationServiceTestSuite) submit(app *models.Application) *models.Application {
	submitted, err := suite.service.Submit(app.ID, "https://cdn.example.com/sig.png", "127.0.0.1")
	suite.Require().NoError(err)
	return submitted
}

func (suite *ApplicationServiceTestSuite) TestCreateStartsPendingWithCartID() {
	app := suite.createApplication("alice@example.com")

	suite.Equal(models.ApplicationStatusPending, app.Status)
	suite.True(strings.HasPrefix(app.CartID, "CART-"))
	suite.False(app.EmailVerified)
	suite.Nil(app.SubmittedAt)
}

func (suite *ApplicationServiceTestSuite) TestCreateRejectsSecondPendingForEmail() {
	first := suite.createApplication("alice@example.com")

	_, err := suite.service.Create(&CreateApplicationRequest{Email: "alice@example.com"})
	suite.Require().Error(err)

	var dup *DuplicatePendingError
	suite.Require().True(errors.As(err, &dup))
	suite.Equal(first.CartID, dup.CartID)
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *ApplicationServiceTestSuite) TestCreateAllowedAfterPreviousResolved() {
	app := suite.createApplication("alice@example.com")
	suite.submit(app)

	_, err := suite.service.Verify(app.ID, suite.agent.ID, "127.0.0.1")
	suite.Require().Error(err) // not assigned yet

	_, err = suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	_, err = suite.service.Verify(app.ID, suite.agent.ID, "127.0.0.1")
	suite.Require().NoError(err)

	// Email is free again once the application left pending
	second, err := suite.service.Create(&CreateApplicationRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)
	suite.NotEqual(app.CartID, second.CartID)
}

func (suite *ApplicationServiceTestSuite) TestGetByCartIDNotFound() {
	_, err := suite.service.GetByCartID("CART-0000000000000000")
	suite.True(errors.Is(err, ErrNotFound))
}

func (suite *ApplicationServiceTestSuite) TestUpdateMergesFields() {
	app := suite.createApplication("alice@example.com")

	newEmail := "alice.new@example.com"
	idType := "passport"
	updated, err := suite.service.Update(app.ID, &UpdateApplicationRequest{
		Email:          &newEmail,
		CustomerIDType: &idType,
	})
	suite.Require().NoError(err)
	suite.Equal(newEmail, updated.Email)
	suite.Equal(idType, updated.CustomerIDType)

	// Untouched fields survive
	reloaded, err := suite.service.GetByID(app.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SimTypePhysical, reloaded.SimType)
}

func (suite *ApplicationServiceTestSuite) TestUpdateBlockedOnTerminalStatus() {
	app := suite.createApplication("alice@example.com")
	suite.submit(app)
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	_, err = suite.service.Verify(app.ID, suite.agent.ID, "127.0.0.1")
	suite.Require().NoError(err)

	email := "late@example.com"
	_, err = suite.service.Update(app.ID, &UpdateApplicationRequest{Email: &email})
	suite.Require().Error(err)

	var invalid *InvalidStateError
	suite.True(errors.As(err, &invalid))
	suite.True(errors.Is(err, ErrInvalidState))
}

func (suite *ApplicationServiceTestSuite) TestSubmitRecordsSignatureAndAudit() {
	app := suite.createApplication("alice@example.com")
	submitted := suite.submit(app)

	suite.Equal(models.ApplicationStatusSubmitted, submitted.Status)
	suite.NotNil(submitted.SubmittedAt)
	suite.Equal("https://cdn.example.com/sig.png", submitted.SignatureURL)
	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionApplicationSubmitted))
}

func (suite *ApplicationServiceTestSuite) TestSubmitTwiceFails() {
	app := suite.createApplication("alice@example.com")
	suite.submit(app)

	_, err := suite.service.Submit(app.ID, "https://cdn.example.com/sig2.png", "127.0.0.1")
	suite.True(errors.Is(err, ErrInvalidState))
}

func (suite *ApplicationServiceTestSuite) TestAssignFromPendingMovesToSubmitted() {
	app := suite.createApplication("alice@example.com")

	assigned, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusSubmitted, assigned.Status)
	suite.Equal(suite.agent.ID, *assigned.AssignedAgentID)
	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionApplicationAssigned))
}

func (suite *ApplicationServiceTestSuite) TestAssignClaimsSelfSubmittedApplication() {
	app := suite.createApplication("alice@example.com")
	suite.submit(app)

	claimed, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusSubmitted, claimed.Status)
	suite.Equal(suite.agent.ID, *claimed.AssignedAgentID)
}

func (suite *ApplicationServiceTestSuite) TestAssignSameAgentIsIdempotent() {
	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	again, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal(suite.agent.ID, *again.AssignedAgentID)
}

func (suite *ApplicationServiceTestSuite) TestAssignOwnedByOtherAgentConflicts() {
	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	_, err = suite.service.AssignToAgent(app.ID, suite.other.ID, *suite.other.StoreID, "127.0.0.1")
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *ApplicationServiceTestSuite) TestVerifyRequiresOwnership() {
	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	_, err = suite.service.Verify(app.ID, suite.other.ID, "127.0.0.1")
	suite.True(errors.Is(err, ErrForbidden))

	verified, err := suite.service.Verify(app.ID, suite.agent.ID, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusVerified, verified.Status)
	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionApplicationVerified))
}

func (suite *ApplicationServiceTestSuite) TestVerifyFromPendingFails() {
	app := suite.createApplication("alice@example.com")

	_, err := suite.service.Verify(app.ID, suite.agent.ID, "127.0.0.1")
	suite.True(errors.Is(err, ErrInvalidState))
}

func (suite *ApplicationServiceTestSuite) TestRejectReleasesAssignedNumber() {
	createTestNumber(suite.T(), suite.db, "09171234001")

	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	_, err = suite.msisdns.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.Require().NoError(err)

	rejected, err := suite.service.Reject(app.ID, suite.agent.ID, "incomplete documents", "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusRejected, rejected.Status)
	suite.Empty(rejected.AssignedNumber)

	var number models.AvailableNumber
	suite.Require().NoError(suite.db.Where("msisdn = ?", "09171234001").First(&number).Error)
	suite.Equal(models.NumberStatusAvailable, number.Status)
	suite.Nil(number.AssignedTo)

	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionApplicationRejected))
	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionNumberReleased))
}

func (suite *ApplicationServiceTestSuite) TestRejectRequiresOwnership() {
	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	_, err = suite.service.Reject(app.ID, suite.other.ID, "", "127.0.0.1")
	suite.True(errors.Is(err, ErrForbidden))
}

func (suite *ApplicationServiceTestSuite) TestWorkQueueContents() {
	pending := suite.createApplication("pending@example.com")

	owned := suite.createApplication("owned@example.com")
	_, err := suite.service.AssignToAgent(owned.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	orphaned := suite.createApplication("orphan@example.com")
	suite.submit(orphaned)

	foreign := suite.createApplication("foreign@example.com")
	_, err = suite.service.AssignToAgent(foreign.ID, suite.other.ID, *suite.other.StoreID, "127.0.0.1")
	suite.Require().NoError(err)

	queue, err := suite.service.SearchForAgent(suite.agent.ID)
	suite.Require().NoError(err)

	ids := make(map[uuid.UUID]bool, len(queue))
	for _, app := range queue {
		ids[app.ID] = true
	}
	suite.True(ids[pending.ID], "pending applications belong in every queue")
	suite.True(ids[owned.ID], "own submitted applications belong in the queue")
	suite.True(ids[orphaned.ID], "orphaned submitted applications belong in the queue")
	suite.False(ids[foreign.ID], "another agent's applications are hidden")
}

func (suite *ApplicationServiceTestSuite) TestListPaginatesSearchResults() {
	suite.createApplication("match-one@example.com")
	suite.createApplication("match-two@example.com")
	suite.createApplication("unrelated@example.org")

	apps, total, err := suite.service.List(suite.agent.ID, utils.PaginationParams{
		Page:   1,
		Limit:  1,
		Sort:   "created_at",
		Order:  "desc",
		Search: "example.com",
	})
	suite.Require().NoError(err)
	suite.EqualValues(2, total)
	suite.Len(apps, 1)
}

func (suite *ApplicationServiceTestSuite) TestAddOrderItemComputesPricing() {
	plan := &models.Plan{Name: "Plan 999", Price: decimal.NewFromInt(999), DurationMonths: 24, IsActive: true}
	suite.Require().NoError(suite.db.Create(plan).Error)

	device := &models.Device{Name: "Phone X", Brand: "Acme", Model: "X", BasePrice: decimal.NewFromInt(40000), IsActive: true}
	suite.Require().NoError(suite.db.Create(device).Error)

	config := &models.DeviceConfiguration{DeviceID: device.ID, Color: "black", Storage: "256GB", PriceAdjustment: decimal.NewFromInt(2000), IsActive: true}
	suite.Require().NoError(suite.db.Create(config).Error)

	app := suite.createApplication("alice@example.com")
	item, err := suite.service.AddOrderItem(app.ID, &OrderItemRequest{
		PlanID:         plan.ID,
		DeviceID:       device.ID,
		DeviceConfigID: &config.ID,
		OneTimeCashout: decimal.NewFromInt(6000),
	})
	suite.Require().NoError(err)

	suite.True(item.DevicePrice.Equal(decimal.NewFromInt(42000)))
	suite.True(item.PlanPrice.Equal(decimal.NewFromInt(999)))
	// (42000 - 6000) / 24 + 999 = 1500 + 999
	suite.True(item.MonthlyPayment.Equal(decimal.NewFromInt(2499)))
}

func (suite *ApplicationServiceTestSuite) TestAddOrderItemRejectsExcessiveCashout() {
	plan := &models.Plan{Name: "Plan 999", Price: decimal.NewFromInt(999), DurationMonths: 24, IsActive: true}
	suite.Require().NoError(suite.db.Create(plan).Error)

	device := &models.Device{Name: "Phone X", Brand: "Acme", Model: "X", BasePrice: decimal.NewFromInt(40000), IsActive: true}
	suite.Require().NoError(suite.db.Create(device).Error)

	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AddOrderItem(app.ID, &OrderItemRequest{
		PlanID:         plan.ID,
		DeviceID:       device.ID,
		OneTimeCashout: decimal.NewFromInt(50000),
	})
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *ApplicationServiceTestSuite) TestAddOrderItemRejectsZeroDurationPlan() {
	plan := &models.Plan{Name: "Broken Plan", Price: decimal.NewFromInt(999), DurationMonths: 0, IsActive: true}
	suite.Require().NoError(suite.db.Create(plan).Error)

	device := &models.Device{Name: "Phone X", Brand: "Acme", Model: "X", BasePrice: decimal.NewFromInt(40000), IsActive: true}
	suite.Require().NoError(suite.db.Create(device).Error)

	app := suite.createApplication("alice@example.com")
	_, err := suite.service.AddOrderItem(app.ID, &OrderItemRequest{
		PlanID:         plan.ID,
		DeviceID:       device.ID,
		OneTimeCashout: decimal.NewFromInt(0),
	})
	suite.True(errors.Is(err, ErrValidation))
}

func (suite *ApplicationServiceTestSuite) TestCustomerInformationRepostReplacesSection() {
	app := suite.createApplication("alice@example.com")

	suite.Require().NoError(suite.service.AddCustomerInformation(app.ID, &CustomerInformationRequest{
		IDType:     "passport",
		IDFrontURL: "https://cdn.example.com/front-v1.png",
		IDBackURL:  "https://cdn.example.com/back-v1.png",
	}))
	suite.Require().NoError(suite.service.AddCustomerInformation(app.ID, &CustomerInformationRequest{
		IDType:     "drivers_license",
		IDFrontURL: "https://cdn.example.com/front-v2.png",
		IDBackURL:  "https://cdn.example.com/back-v2.png",
	}))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.CustomerInformation{}).
		Where("application_id = ?", app.ID).Count(&count).Error)
	suite.Equal(int64(1), count)

	var info models.CustomerInformation
	suite.Require().NoError(suite.db.Where("application_id = ?", app.ID).First(&info).Error)
	suite.Equal("drivers_license", info.IDType)
	suite.Equal("https://cdn.example.com/front-v2.png", info.IDFrontURL)
}

func (suite *ApplicationServiceTestSuite) TestEmploymentRepostReplacesSection() {
	app := suite.createApplication("alice@example.com")

	suite.Require().NoError(suite.service.AddEmployment(app.ID, &EmploymentRequest{
		EmploymentType: "full-time",
		EmployerName:   "Acme Corp",
	}))
	suite.Require().NoError(suite.service.AddEmployment(app.ID, &EmploymentRequest{
		EmploymentType: "self-employed",
	}))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.EmploymentInformation{}).
		Where("application_id = ?", app.ID).Count(&count).Error)
	suite.Equal(int64(1), count)

	var info models.EmploymentInformation
	suite.Require().NoError(suite.db.Where("application_id = ?", app.ID).First(&info).Error)
	suite.Equal(models.EmploymentType("self-employed"), info.EmploymentType)
	suite.Empty(info.EmployerName)
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
