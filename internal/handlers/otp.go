// internal/handlers/otp.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/smartify/sim-backend/internal/i18n"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

type OTPHandler struct {
	otpService *services.OTPService
}

func NewOTPHandler(otpService *services.OTPService) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
	}
}

// POST /otp/send
func (h *OTPHandler) Send(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOTPEmailRequired), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.otpService.Send(&req)
	if err != nil {
		handleServiceError(c, err, "otp")
		return
	}

	message := i18n.T(lang, i18n.KeyOTPSent)
	if result.DevCode != "" {
		message = i18n.T(lang, i18n.KeyOTPSentDev, result.DevCode)
	}

	utils.SuccessResponse(c, gin.H{
		"message":    message,
		"email":      result.Email,
		"expires_at": result.ExpiresAt,
		"dev_code":   result.DevCode,
	})
}

// POST /otp/verify
func (h *OTPHandler) Verify(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.otpService.Verify(&req); err != nil {
		handleServiceError(c, err, "otp")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyOTPVerified),
		"verified": true,
	})
}
