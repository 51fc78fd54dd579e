// internal/services/msisdn_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/models"
)

type MSISDNServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	service      *MSISDNService
	applications *ApplicationService
	agent        *models.Agent
	other        *models.Agent
}

func (suite *MSISDNServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	audit := NewAuditService(suite.db)
	suite.service = NewMSISDNService(suite.db, audit)
	suite.applications = NewApplicationService(suite.db, audit)
	suite.agent = createTestAgent(suite.T(), suite.db, "agent_one")
	suite.other = createTestAgent(suite.T(), suite.db, "agent_two")
}

func (suite *MSISDNServiceTestSuite) createOwnedApplication(email string) *models.Application {
	app, err := suite.applications.Create(&CreateApplicationRequest{Email: email})
	suite.Require().NoError(err)
	app, err = suite.applications.AssignToAgent(app.ID, suite.agent.ID, *suite.agent.StoreID, "127.0.0.1")
	suite.Require().NoError(err)
	return app
}

func (suite *MSISDNServiceTestSuite) TestListAvailableExcludesAssigned() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	taken := createTestNumber(suite.T(), suite.db, "09171234002")

	app := suite.createOwnedApplication("alice@example.com")
	suite.Require().NoError(suite.db.Model(taken).Updates(map[string]interface{}{
		"status":      models.NumberStatusAssigned,
		"assigned_to": app.ID,
	}).Error)

	numbers, err := suite.service.ListAvailable(20)
	suite.Require().NoError(err)
	suite.Len(numbers, 1)
	suite.Equal("09171234001", numbers[0].MSISDN)
}

func (suite *MSISDNServiceTestSuite) TestAssignFlipsLedgerAndApplication() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	app := suite.createOwnedApplication("alice@example.com")

	updated, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal("09171234001", updated.AssignedNumber)

	var number models.AvailableNumber
	suite.Require().NoError(suite.db.Where("msisdn = ?", "09171234001").First(&number).Error)
	suite.Equal(models.NumberStatusAssigned, number.Status)
	suite.Require().NotNil(number.AssignedTo)
	suite.Equal(app.ID, *number.AssignedTo)
	suite.NotNil(number.AssignedAt)

	suite.EqualValues(1, countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionNumberAssigned))
}

func (suite *MSISDNServiceTestSuite) TestAssignTakenNumberConflicts() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	first := suite.createOwnedApplication("alice@example.com")
	second := suite.createOwnedApplication("bob@example.com")

	_, err := suite.service.Assign(first.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.Require().NoError(err)

	_, err = suite.service.Assign(second.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.True(errors.Is(err, ErrConflict))
}

func (suite *MSISDNServiceTestSuite) TestAssignUnknownNumberNotFound() {
	app := suite.createOwnedApplication("alice@example.com")

	_, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09179999999"}, "127.0.0.1")
	suite.True(errors.Is(err, ErrNotFound))
}

func (suite *MSISDNServiceTestSuite) TestAssignSwapReleasesPreviousNumber() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	createTestNumber(suite.T(), suite.db, "09171234002")
	app := suite.createOwnedApplication("alice@example.com")

	_, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.Require().NoError(err)

	updated, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234002"}, "127.0.0.1")
	suite.Require().NoError(err)
	suite.Equal("09171234002", updated.AssignedNumber)

	var released models.AvailableNumber
	suite.Require().NoError(suite.db.Where("msisdn = ?", "09171234001").First(&released).Error)
	suite.Equal(models.NumberStatusAvailable, released.Status)
	suite.Nil(released.AssignedTo)
}

func (suite *MSISDNServiceTestSuite) TestAssignForbiddenForNonOwner() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	app := suite.createOwnedApplication("alice@example.com")

	_, err := suite.service.Assign(app.ID, suite.other.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.True(errors.Is(err, ErrForbidden))
}

func (suite *MSISDNServiceTestSuite) TestAssignRejectsMalformedMSISDN() {
	app := suite.createOwnedApplication("alice@example.com")

	_, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "12345"}, "127.0.0.1")
	suite.Error(err)
}

func (suite *MSISDNServiceTestSuite) TestReleaseReturnsNumberToPool() {
	createTestNumber(suite.T(), suite.db, "09171234001")
	app := suite.createOwnedApplication("alice@example.com")

	_, err := suite.service.Assign(app.ID, suite.agent.ID, &AssignNumberRequest{MSISDN: "09171234001"}, "127.0.0.1")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Release(app.ID, suite.agent.ID, "127.0.0.1"))

	var number models.AvailableNumber
	suite.Require().NoError(suite.db.Where("msisdn = ?", "09171234001").First(&number).Error)
	suite.Equal(models.NumberStatusAvailable, number.Status)

	var reloaded models.Application
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", app.ID).Error)
	suite.Empty(reloaded.AssignedNumber)
	suite.Equal(int64(1), countAuditRows(suite.T(), suite.db, app.ID, models.AuditActionNumberReleased))
}

func (suite *MSISDNServiceTestSuite) TestReleaseWithoutNumberIsNoop() {
	app := suite.createOwnedApplication("alice@example.com")

	suite.NoError(suite.service.Release(app.ID, suite.agent.ID, "127.0.0.1"))
}

func TestMSISDNServiceSuite(t *testing.T) {
	suite.Run(t, new(MSISDNServiceTestSuite))
}
