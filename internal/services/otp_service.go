// internal/services/otp_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/database"
	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/utils"
)

// OTPService issues and checks email verification codes. Sending a new
// code invalidates prior unverified codes for the address, so the check
// always runs against the newest row.
type OTPService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
}

func NewOTPService(db *gorm.DB, config *config.Config, notificationService *NotificationService) *OTPService {
	return &OTPService{
		db:                  db,
		config:              config,
		notificationService: notificationService,
	}
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// SendResult reports what Send did; DevCode is populated only in dev
// mode, where the fixed code is returned instead of emailed.
type SendResult struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	DevCode   string    `json:"dev_code,omitempty"`
}

func (s *OTPService) Send(req *SendOTPRequest) (*SendResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	code := s.config.OTP.DevCode
	if !s.config.OTP.DevMode {
		generated, err := utils.GenerateOTPCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate OTP code: %w", err)
		}
		code = generated
	}

	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Only one live code per address
		if err := tx.Where("email = ? AND verified = ?", req.Email, false).
			Delete(&models.OTPVerification{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous codes: %w", err)
		}

		otp := &models.OTPVerification{
			Email:     req.Email,
			OTPCode:   code,
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(otp).Error; err != nil {
			return fmt.Errorf("failed to create OTP record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SendResult{
		Email:     req.Email,
		ExpiresAt: expiresAt,
	}

	if s.config.OTP.DevMode {
		result.DevCode = code
		logrus.WithField("email", req.Email).Info("OTP issued in dev mode, skipping email delivery")
		return result, nil
	}

	if err := s.notificationService.SendOTPEmail(req.Email, code, s.config.OTP.ExpiryMinutes); err != nil {
		return nil, fmt.Errorf("failed to send OTP email: %w", err)
	}

	return result, nil
}

// Verify checks the submitted code against the newest unverified row for
// the email. A wrong code burns an attempt; after MaxAttempts the row is
// dead and a new code must be requested. On success every pending
// application for the email is marked email-verified.
func (s *OTPService) Verify(req *VerifyOTPRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var otp models.OTPVerification
		err := tx.Where("email = ? AND verified = ?", req.Email, false).
			Order("created_at desc").
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no pending verification code: %w", ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if otp.Attempts >= s.config.OTP.MaxAttempts {
			return fmt.Errorf("%w: too many attempts, request a new code", ErrInvalidState)
		}

		if time.Now().After(otp.ExpiresAt) {
			return fmt.Errorf("%w: verification code has expired", ErrInvalidState)
		}

		if otp.OTPCode != req.Code {
			if err := tx.Model(&otp).Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
				return fmt.Errorf("failed to record attempt: %w", err)
			}
			return fmt.Errorf("%w: incorrect verification code", ErrInvalidCode)
		}

		if err := tx.Model(&otp).Update("verified", true).Error; err != nil {
			return fmt.Errorf("failed to mark code verified: %w", err)
		}

		if err := tx.Model(&models.Application{}).
			Where("email = ? AND status = ?", req.Email, models.ApplicationStatusPending).
			Update("email_verified", true).Error; err != nil {
			return fmt.Errorf("failed to flag applications: %w", err)
		}

		return nil
	})
}
