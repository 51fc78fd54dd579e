// internal/services/otp_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/models"
)

type OTPServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	service      *OTPService
	applications *ApplicationService
}

func (suite *OTPServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())

	cfg := &config.Config{
		OTP: config.OTPConfig{
			DevMode:       true,
			DevCode:       "123456",
			ExpiryMinutes: 5,
			MaxAttempts:   3,
		},
	}

	audit := NewAuditService(suite.db)
	suite.service = NewOTPService(suite.db, cfg, NewNotificationService(cfg))
	suite.applications = NewApplicationService(suite.db, audit)
}

func (suite *OTPServiceTestSuite) TestSendReturnsDevCodeInDevMode() {
	result, err := suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)
	suite.Equal("123456", result.DevCode)
	suite.True(result.ExpiresAt.After(time.Now()))
}

func (suite *OTPServiceTestSuite) TestVerifyFlagsPendingApplications() {
	app, err := suite.applications.Create(&CreateApplicationRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)
	suite.False(app.EmailVerified)

	_, err = suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)

	err = suite.service.Verify(&VerifyOTPRequest{Email: "alice@example.com", Code: "123456"})
	suite.Require().NoError(err)

	reloaded, err := suite.applications.GetByID(app.ID)
	suite.Require().NoError(err)
	suite.True(reloaded.EmailVerified)
}

func (suite *OTPServiceTestSuite) TestVerifyWrongCodeBurnsAttempts() {
	_, err := suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		err = suite.service.Verify(&VerifyOTPRequest{Email: "alice@example.com", Code: "000000"})
		suite.True(errors.Is(err, ErrInvalidCode))
	}

	// Attempt cap reached; even the right code is refused now
	err = suite.service.Verify(&VerifyOTPRequest{Email: "alice@example.com", Code: "123456"})
	suite.True(errors.Is(err, ErrInvalidState))
}

func (suite *OTPServiceTestSuite) TestVerifyExpiredCode() {
	_, err := suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(&models.OTPVerification{}).
		Where("email = ?", "alice@example.com").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = suite.service.Verify(&VerifyOTPRequest{Email: "alice@example.com", Code: "123456"})
	suite.True(errors.Is(err, ErrInvalidState))
}

func (suite *OTPServiceTestSuite) TestVerifyWithoutSendNotFound() {
	err := suite.service.Verify(&VerifyOTPRequest{Email: "nobody@example.com", Code: "123456"})
	suite.True(errors.Is(err, ErrNotFound))
}

func (suite *OTPServiceTestSuite) TestResendReplacesPreviousCode() {
	_, err := suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)
	_, err = suite.service.Send(&SendOTPRequest{Email: "alice@example.com"})
	suite.Require().NoError(err)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.OTPVerification{}).
		Where("email = ? AND verified = ?", "alice@example.com", false).
		Count(&count).Error)
	suite.EqualValues(1, count)
}

func (suite *OTPServiceTestSuite) TestGeneratedCodeWithoutDevMode() {
	cfg := &config.Config{
		OTP: config.OTPConfig{
			DevMode:       false,
			ExpiryMinutes: 5,
			MaxAttempts:   3,
		},
	}
	service := NewOTPService(suite.db, cfg, NewNotificationService(cfg))

	result, err := service.Send(&SendOTPRequest{Email: "bob@example.com"})
	suite.Require().NoError(err)
	suite.Empty(result.DevCode)

	var otp models.OTPVerification
	suite.Require().NoError(suite.db.Where("email = ?", "bob@example.com").First(&otp).Error)
	suite.Len(otp.OTPCode, 6)
}

func TestOTPServiceSuite(t *testing.T) {
	suite.Run(t, new(OTPServiceTestSuite))
}
