// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/config"
	"github.com/taqyim/valuation-backend/internal/handlers"
	"github.com/taqyim/valuation-backend/internal/middleware"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	conversationService := services.NewConversationService(db)
	notificationService := services.NewNotificationService(cfg)
	valuationService := services.NewValuationService(db, conversationService, notificationService)
	pricingService := services.NewPricingService(db)
	matcherService := services.NewMatcherService(db, pricingService)
	loanService := services.NewLoanService(db)
	authService := services.NewAuthService(db, cfg)
	adminService := services.NewAdminService(db)

	estimatorCfg := services.EstimatorConfig{
		BuildingCostPerSqm: cfg.Valuation.BuildingCostPerSqm,
		LocationFactor:     cfg.Valuation.LocationFactor,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	valuationHandler := handlers.NewValuationHandler(valuationService, storageService)
	companyHandler := handlers.NewCompanyHandler(valuationService, pricingService, storageService)
	bankHandler := handlers.NewBankHandler(adminService, matcherService, loanService, estimatorCfg)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	pricingHandler := handlers.NewPricingHandler(pricingService, estimatorCfg)
	adminHandler := handlers.NewAdminHandler(adminService, pricingService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

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
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Client valuation routes
		valuations := v1.Group("/valuations")
		valuations.Use(middleware.AuthRequired())
		{
			valuations.GET("", valuationHandler.List)
			valuations.GET("/:id", valuationHandler.Get)

			clientOnly := valuations.Group("")
			clientOnly.Use(middleware.RoleRequired(models.RoleClient))
			{
				clientOnly.POST("", valuationHandler.Create)
				clientOnly.PUT("/:id", valuationHandler.Update)
				clientOnly.PUT("/:id/accept", valuationHandler.Accept)
				clientOnly.PUT("/:id/decline", valuationHandler.Decline)
				clientOnly.PUT("/:id/transfer", valuationHandler.Transfer)
			}

			valuations.POST("/:id/appointments", valuationHandler.ProposeAppointment)
			valuations.POST("/:id/documents", middleware.UploadRateLimit(), valuationHandler.AttachDocument)
		}

		// Company routes
		company := v1.Group("/company")
		company.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCompany))
		{
			company.GET("/valuations", valuationHandler.List)
			company.GET("/valuations/:id", valuationHandler.Get)
			company.PUT("/valuations/:id/reject", companyHandler.Reject)
			company.PUT("/valuations/:id/revision", companyHandler.RequestRevision)
			company.PUT("/valuations/:id/value", companyHandler.SubmitValue)
			company.POST("/valuations/:id/report", middleware.UploadRateLimit(), companyHandler.UploadReport)
			company.PUT("/appointments/:id/respond", companyHandler.RespondAppointment)
			company.PUT("/appointments/:id/finalize", companyHandler.FinalizeAppointment)
			company.POST("/land-prices/import", companyHandler.ImportPrices)
		}

		// Bank directory, matcher and loan calculators. Public, but a logged-in
		// caller is identified so the audit trail carries the user.
		banks := v1.Group("/banks")
		banks.Use(middleware.OptionalAuth())
		{
			banks.GET("", bankHandler.List)
			banks.GET("/:slug/companies", bankHandler.CertifiedCompanies)
			banks.POST("/:slug/offers", bankHandler.CertifiedOffers)
			banks.GET("/:slug/loan-policies", bankHandler.ListLoanPolicies)
			banks.POST("/:slug/max-loan", bankHandler.MaxLoan)
			banks.POST("/loan-payment", bankHandler.LoanPayment)
		}

		// Public pricing and estimation
		v1.GET("/land-prices", middleware.OptionalAuth(), pricingHandler.List)
		v1.POST("/estimate", middleware.OptionalAuth(), pricingHandler.Estimate)

		// Conversations
		conversations := v1.Group("/conversations")
		conversations.Use(middleware.AuthRequired())
		{
			conversations.GET("", conversationHandler.List)
			conversations.GET("/:id/messages", conversationHandler.ListMessages)
			conversations.POST("/:id/messages", middleware.MessageRateLimit(), conversationHandler.SendMessage)
			conversations.PUT("/:id/status", conversationHandler.UpdateStatus)
			conversations.POST("/start/:companyID", conversationHandler.Start)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/banks", adminHandler.ListBanks)
			admin.POST("/banks", adminHandler.CreateBank)
			admin.GET("/companies", adminHandler.ListCompanies)
			admin.POST("/companies", adminHandler.CreateCompany)
			admin.POST("/approvals", adminHandler.ApproveCompany)
			admin.DELETE("/approvals", adminHandler.RevokeApproval)
			admin.POST("/loan-policies", adminHandler.UpsertLoanPolicy)
			admin.GET("/land-prices", adminHandler.ListLandPrices)
			admin.POST("/land-prices/import", adminHandler.ImportLandPrices)
		}
	}

	return r
}
