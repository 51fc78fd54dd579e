// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/smartify/sim-backend/internal/config"
	"github.com/smartify/sim-backend/internal/handlers"
	"github.com/smartify/sim-backend/internal/middleware"
	"github.com/smartify/sim-backend/internal/services"
	"github.com/smartify/sim-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 storage unavailable, falling back to local mode")
		storageService, _ = services.NewStorageService(&config.Config{})
	}
	auditService := services.NewAuditService(db)

	authService := services.NewAuthService(db, cfg)
	applicationService := services.NewApplicationService(db, auditService)
	msisdnService := services.NewMSISDNService(db, auditService)
	otpService := services.NewOTPService(db, cfg, notificationService)
	catalogService := services.NewCatalogService(db)
	locationService := services.NewLocationService(db)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	agentHandler := handlers.NewAgentHandler(authService, applicationService, msisdnService, auditService, notificationService)
	otpHandler := handlers.NewOTPHandler(otpService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	locationHandler := handlers.NewLocationHandler(locationService)
	uploadHandler := handlers.NewUploadHandler(storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Reference data for the wizard
		locations := v1.Group("/locations")
		{
			locations.GET("/provinces", locationHandler.ListProvinces)
			locations.GET("/cities", locationHandler.ListCities)
			locations.GET("/barangays", locationHandler.ListBarangays)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/plans", catalogHandler.ListPlans)
			catalog.GET("/devices", catalogHandler.ListDevices)
			catalog.GET("/devices/:id", catalogHandler.GetDevice)
			catalog.GET("/stores", catalogHandler.ListStores)
		}

		// Email verification
		otp := v1.Group("/otp")
		{
			otp.POST("/send", middleware.OTPRateLimit(), otpHandler.Send)
			otp.POST("/verify", otpHandler.Verify)
		}

		// File uploads (ID documents, signatures)
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.UploadRateLimit())
		{
			uploads.POST("/:category", uploadHandler.Upload)
		}

		// Customer wizard; identified by cart ID, no auth
		applications := v1.Group("/applications")
		{
			applications.POST("", applicationHandler.Create)
			applications.GET("/cart/:cartId", applicationHandler.GetByCartID)
			applications.PATCH("/:id", applicationHandler.Update)
			applications.POST("/:id/customer-information", applicationHandler.SaveCustomerInformation)
			applications.POST("/:id/addresses", applicationHandler.SaveAddress)
			applications.POST("/:id/employment", applicationHandler.SaveEmployment)
			applications.POST("/:id/order-items", applicationHandler.SaveOrderItem)
			applications.POST("/:id/privacy-preferences", applicationHandler.SavePrivacyPreferences)
			applications.POST("/:id/submit", applicationHandler.Submit)
		}

		// Store console
		agent := v1.Group("/agent")
		{
			agent.POST("/login", middleware.AuthRateLimit(), agentHandler.Login)

			authed := agent.Group("")
			authed.Use(middleware.AgentRequired())
			{
				authed.GET("/profile", agentHandler.Profile)
				authed.GET("/applications", agentHandler.ListApplications)
				authed.GET("/applications/:id", agentHandler.GetApplication)
				authed.POST("/applications/:id/assign", agentHandler.AssignApplication)
				authed.POST("/applications/:id/verify", agentHandler.VerifyApplication)
				authed.POST("/applications/:id/reject", agentHandler.RejectApplication)
				authed.POST("/applications/:id/assign-number", agentHandler.AssignNumber)
				authed.GET("/numbers/available", agentHandler.ListAvailableNumbers)

				admin := authed.Group("")
				admin.Use(middleware.AdminRequired())
				{
					admin.POST("/agents", agentHandler.CreateAgent)
				}
			}
		}
	}

	return r
}
