// internal/handlers/agent.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/smartify/sim-backend/internal/i18n"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

// AgentHandler serves the store console: login, the review queue, and
// the verdict operations.
type AgentHandler struct {
	authService         *services.AuthService
	applicationService  *services.ApplicationService
	msisdnService       *services.MSISDNService
	auditService        *services.AuditService
	notificationService *services.NotificationService
}

func NewAgentHandler(
	authService *services.AuthService,
	applicationService *services.ApplicationService,
	msisdnService *services.MSISDNService,
	auditService *services.AuditService,
	notificationService *services.NotificationService,
) *AgentHandler {
	return &AgentHandler{
		authService:         authService,
		applicationService:  applicationService,
		msisdnService:       msisdnService,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

func agentIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := utils.GetAgentIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

// storeIDFromContext reads the store claim set by the auth middleware.
// Agents created without a store have an empty claim.
func storeIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("agent_store_id")
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// POST /agent/login
func (h *AgentHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
			return
		}
		handleServiceError(c, err, "agent")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"agent":      authResponse.Agent,
		"token":      authResponse.AccessToken,
		"token_type": authResponse.TokenType,
		"expires_in": authResponse.ExpiresIn,
	})
}

// GET /agent/profile
func (h *AgentHandler) Profile(c *gin.Context) {
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	agent, err := h.authService.GetAgent(agentID)
	if err != nil {
		handleServiceError(c, err, "agent")
		return
	}

	utils.SuccessResponse(c, gin.H{"agent": agent})
}

// POST /agent/agents (admin only, enforced by middleware)
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	agent, err := h.authService.CreateAgent(&req)
	if err != nil {
		handleServiceError(c, err, "agent")
		return
	}

	utils.CreatedResponse(c, gin.H{"agent": agent})
}

// GET /agent/applications
//
// With ?search= the match runs across cart ID, email, and customer ID
// number. With ?status= only that status. Otherwise the agent's work
// queue.
func (h *AgentHandler) ListApplications(c *gin.Context) {
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	applications, total, err := h.applicationService.List(agentID, params)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(applications, total, params))
}

// GET /agent/applications/:id
func (h *AgentHandler) GetApplication(c *gin.Context) {
	id, ok := parseApplicationID(c)
	if !ok {
		return
	}

	application, err := h.applicationService.GetByID(id)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	auditTrail, err := h.auditService.ListByApplication(id)
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": application,
		"audit_trail": auditTrail,
	})
}

// POST /agent/applications/:id/assign
func (h *AgentHandler) AssignApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	// Assignment binds the application to the agent's store, so an
	// agent without one cannot take it.
	storeID, ok := storeIDFromContext(c)
	if !ok {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "store"), nil)
		return
	}

	application, err := h.applicationService.AssignToAgent(id, agentID, storeID, c.ClientIP())
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationAssigned),
		"application": application,
	})
}

// POST /agent/applications/:id/verify
func (h *AgentHandler) VerifyApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	application, err := h.applicationService.Verify(id, agentID, c.ClientIP())
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	// Delivery failure must not undo the verdict
	if err := h.notificationService.SendApplicationVerifiedEmail(application); err != nil {
		logrus.WithError(err).Warn("Failed to send verification email")
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationVerified),
		"application": application,
	})
}

// POST /agent/applications/:id/reject
func (h *AgentHandler) RejectApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	application, err := h.applicationService.Reject(id, agentID, req.Reason, c.ClientIP())
	if err != nil {
		handleServiceError(c, err, "application")
		return
	}

	if err := h.notificationService.SendApplicationRejectedEmail(application, req.Reason); err != nil {
		logrus.WithError(err).Warn("Failed to send rejection email")
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationRejected),
		"application": application,
	})
}

// POST /agent/applications/:id/assign-number
func (h *AgentHandler) AssignNumber(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseApplicationID(c)
	if !ok {
		return
	}
	agentID, ok := agentIDFromContext(c)
	if !ok {
		return
	}

	var req services.AssignNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	application, err := h.msisdnService.Assign(id, agentID, &req, c.ClientIP())
	if err != nil {
		handleServiceError(c, err, "msisdn")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyNumberAssigned),
		"application": application,
	})
}

// GET /agent/numbers/available
func (h *AgentHandler) ListAvailableNumbers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	numbers, err := h.msisdnService.ListAvailable(limit)
	if err != nil {
		handleServiceError(c, err, "msisdn")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"numbers": numbers,
		"count":   len(numbers),
	})
}
