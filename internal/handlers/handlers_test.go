// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/middleware"
	"github.com/smartify/sim-backend/internal/models"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

var testDBCounter int64

// WizardFlowTestSuite walks the whole journey: customer creates and
// submits an application, then an agent claims it, assigns a number, and
// verifies it.
type WizardFlowTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (suite *WizardFlowTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlerdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&models.Store{}, &models.Agent{},
		&models.Application{}, &models.CustomerInformation{}, &models.Address{},
		&models.EmploymentInformation{}, &models.OrderItem{}, &models.PrivacyPreferences{},
		&models.AvailableNumber{}, &models.OTPVerification{}, &models.AuditLog{},
	))

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
		OTP: config.OTPConfig{DevMode: true, DevCode: "123456", ExpiryMinutes: 5, MaxAttempts: 3},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Seed an agent and one free number
	store := &models.Store{Name: "Test Store", IsActive: true}
	suite.Require().NoError(db.Create(store).Error)
	agent := &models.Agent{
		Username: "agent_one",
		Email:    "agent@example.com",
		Role:     models.AgentRoleAgent,
		StoreID:  &store.ID,
		IsActive: true,
	}
	suite.Require().NoError(agent.SetPassword("secret123"))
	suite.Require().NoError(db.Create(agent).Error)
	suite.Require().NoError(db.Create(&models.AvailableNumber{
		MSISDN: "09171234001",
		Status: models.NumberStatusAvailable,
	}).Error)

	audit := services.NewAuditService(db)
	notifications := services.NewNotificationService(cfg)
	applicationService := services.NewApplicationService(db, audit)
	msisdnService := services.NewMSISDNService(db, audit)
	otpService := services.NewOTPService(db, cfg, notifications)
	authService := services.NewAuthService(db, cfg)

	applicationHandler := NewApplicationHandler(applicationService)
	agentHandler := NewAgentHandler(authService, applicationService, msisdnService, audit, notifications)
	otpHandler := NewOTPHandler(otpService)

	r := gin.New()
	r.Use(middleware.I18nMiddleware())
	v1 := r.Group("/v1")
	{
		v1.POST("/otp/send", otpHandler.Send)
		v1.POST("/otp/verify", otpHandler.Verify)
		v1.POST("/applications", applicationHandler.Create)
		v1.GET("/applications/cart/:cartId", applicationHandler.GetByCartID)
		v1.POST("/applications/:id/customer-information", applicationHandler.SaveCustomerInformation)
		v1.POST("/applications/:id/submit", applicationHandler.Submit)

		v1.POST("/agent/login", agentHandler.Login)
		authed := v1.Group("/agent", middleware.AgentRequired())
		{
			authed.GET("/applications", agentHandler.ListApplications)
			authed.POST("/applications/:id/assign", agentHandler.AssignApplication)
			authed.POST("/applications/:id/assign-number", agentHandler.AssignNumber)
			authed.POST("/applications/:id/verify", agentHandler.VerifyApplication)
			authed.GET("/numbers/available", agentHandler.ListAvailableNumbers)
		}
	}
	suite.router = r
}

func (suite *WizardFlowTestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WizardFlowTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *WizardFlowTestSuite) login() string {
	w := suite.request("POST", "/v1/agent/login", gin.H{
		"username": "agent_one",
		"password": "secret123",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	data := suite.decode(w)["data"].(map[string]interface{})
	return data["token"].(string)
}

func (suite *WizardFlowTestSuite) TestFullJourney() {
	// Customer starts an application
	w := suite.request("POST", "/v1/applications", gin.H{
		"email":    "alice@example.com",
		"sim_type": "physical",
	}, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	appData := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})
	appID := appData["id"].(string)
	cartID := appData["cart_id"].(string)

	// Email verification via dev-mode OTP
	w = suite.request("POST", "/v1/otp/send", gin.H{"email": "alice@example.com"}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = suite.request("POST", "/v1/otp/verify", gin.H{"email": "alice@example.com", "code": "123456"}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// Resume by cart ID
	w = suite.request("GET", "/v1/applications/cart/"+cartID, nil, "")
	suite.Require().Equal(http.StatusOK, w.Code)
	resumed := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})
	suite.True(resumed["email_verified"].(bool))

	// Customer signs and submits
	w = suite.request("POST", "/v1/applications/"+appID+"/submit", gin.H{
		"signature_url": "https://cdn.example.com/sig.png",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// Agent takes over
	token := suite.login()

	w = suite.request("GET", "/v1/agent/applications", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("POST", "/v1/agent/applications/"+appID+"/assign", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("GET", "/v1/agent/numbers/available", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("POST", "/v1/agent/applications/"+appID+"/assign-number", gin.H{
		"msisdn": "09171234001",
	}, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("POST", "/v1/agent/applications/"+appID+"/verify", nil, token)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	verified := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})
	suite.Equal("verified", verified["status"])
	suite.Equal("09171234001", verified["assigned_number"])
}

func (suite *WizardFlowTestSuite) TestDuplicatePendingReturnsConflict() {
	w := suite.request("POST", "/v1/applications", gin.H{"email": "bob@example.com"}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)
	first := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})

	w = suite.request("POST", "/v1/applications", gin.H{"email": "bob@example.com"}, "")
	suite.Require().Equal(http.StatusConflict, w.Code)
	details := suite.decode(w)["error"].(map[string]interface{})["details"].(map[string]interface{})
	suite.Equal(first["cart_id"], details["cart_id"])
}

func (suite *WizardFlowTestSuite) TestChildSectionValidationReturns400() {
	w := suite.request("POST", "/v1/applications", gin.H{"email": "bob@example.com"}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)
	app := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})

	// id_front_url and id_back_url are required
	w = suite.request("POST", "/v1/applications/"+app["id"].(string)+"/customer-information", gin.H{
		"id_type": "passport",
	}, "")
	suite.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())

	apiErr := suite.decode(w)["error"].(map[string]interface{})
	suite.Equal("VALIDATION_ERROR", apiErr["code"])
	suite.NotEmpty(apiErr["details"])
}

func (suite *WizardFlowTestSuite) TestAssignRejectedForAgentWithoutStore() {
	agent := &models.Agent{
		Username: "agent_floating",
		Email:    "floating@example.com",
		Role:     models.AgentRoleAgent,
		IsActive: true,
	}
	suite.Require().NoError(agent.SetPassword("secret123"))
	suite.Require().NoError(suite.db.Create(agent).Error)

	w := suite.request("POST", "/v1/agent/login", gin.H{
		"username": "agent_floating",
		"password": "secret123",
	}, "")
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	token := suite.decode(w)["data"].(map[string]interface{})["token"].(string)

	w = suite.request("POST", "/v1/applications", gin.H{"email": "carol@example.com"}, "")
	suite.Require().Equal(http.StatusCreated, w.Code)
	app := suite.decode(w)["data"].(map[string]interface{})["application"].(map[string]interface{})

	w = suite.request("POST", "/v1/agent/applications/"+app["id"].(string)+"/assign", nil, token)
	suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (suite *WizardFlowTestSuite) TestLoginDatabaseFailureIsNot401() {
	suite.Require().NoError(suite.db.Migrator().DropTable(&models.Agent{}))

	w := suite.request("POST", "/v1/agent/login", gin.H{
		"username": "agent_one",
		"password": "secret123",
	}, "")
	suite.Equal(http.StatusInternalServerError, w.Code, w.Body.String())
}

func (suite *WizardFlowTestSuite) TestAgentRoutesRequireToken() {
	w := suite.request("GET", "/v1/agent/applications", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *WizardFlowTestSuite) TestSubmitUnknownApplication() {
	w := suite.request("POST", "/v1/applications/6f1f64cf-3a40-4b7f-9f0a-6f6a2d8f0001/submit", gin.H{
		"signature_url": "https://cdn.example.com/sig.png",
	}, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestWizardFlowSuite(t *testing.T) {
	suite.Run(t, new(WizardFlowTestSuite))
}
