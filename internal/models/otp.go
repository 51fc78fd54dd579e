// internal/models/otp.go
package models

import "time"

// OTPVerification is one issued email verification code. Sending a new
// code removes prior unverified rows for the email, so at most one
// checkable code exists per address at a time.
type OTPVerification struct {
	BaseModel
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	OTPCode   string    `json:"-" gorm:"size:10;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Verified  bool      `json:"verified" gorm:"default:false;not null"`
	Attempts  int       `json:"attempts" gorm:"default:0;not null"`
}
