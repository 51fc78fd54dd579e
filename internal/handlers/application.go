// internal/handlers/application.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartify/sim-backend/internal/i18n"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

// ApplicationHandler serves the customer-facing wizard endpoints. No
// authentication: the customer's handle is the unguessable cart ID.
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

func parseApplicationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "application id"), nil)
		return uuid.Nil, false
	}
	return id, true
}

// POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	application, err := h.applicationService.Create(&req)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationCreated),
		"application": application,
	})
}

// GET /applications/cart/:cartId
func (h *ApplicationHandler) GetByCartID(c *gin.Context) {
	application, err := h.applicationService.GetByCartID(c.Param("cartId"))
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{"application": application})
}

// PATCH /applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	application, err := h.applicationService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationUpdated),
		"application": application,
	})
}

// POST /applications/:id/customer-information
func (h *ApplicationHandler) SaveCustomerInformation(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.CustomerInformationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.applicationService.AddCustomerInformation(id, &req); err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyApplicationUpdated)})
}

// POST /applications/:id/addresses
func (h *ApplicationHandler) SaveAddress(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.applicationService.AddAddress(id, &req); err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyApplicationUpdated)})
}

// POST /applications/:id/employment
func (h *ApplicationHandler) SaveEmployment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.EmploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.applicationService.AddEmployment(id, &req); err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyApplicationUpdated)})
}

// POST /applications/:id/order-items
func (h *ApplicationHandler) SaveOrderItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	item, err := h.applicationService.AddOrderItem(id, &req)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyApplicationUpdated),
		"order_item": item,
	})
}

// POST /applications/:id/privacy-preferences
func (h *ApplicationHandler) SavePrivacyPreferences(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req services.PrivacyPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.applicationService.AddPrivacyPreferences(id, &req); err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyApplicationUpdated)})
}

// POST /applications/:id/submit
func (h *ApplicationHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	var req struct {
		SignatureURL string `json:"signature_url" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	application, err := h.applicationService.Submit(id, req.SignatureURL, c.ClientIP())
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationSubmitted),
		"application": application,
	})
}
