package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"rafiqe/internal/middleware"
	"rafiqe/internal/services"
)

// NewRouter builds the gin engine serving the JSON API.
func NewRouter(budgetService services.BudgetServicer) *gin.Engine {
	ledgerHandler := NewLedgerHandler(budgetService)
	transactionHandler := NewTransactionHandler(budgetService)
	onboardingHandler := NewOnboardingHandler(budgetService)
	advisorHandler := NewAdvisorHandler(budgetService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	v1.GET("/state", ledgerHandler.GetState)
	v1.GET("/dashboard", ledgerHandler.GetDashboard)
	v1.PUT("/income", ledgerHandler.SetIncome)
	v1.PUT("/settings", ledgerHandler.UpdateSettings)
	v1.GET("/currencies", ledgerHandler.GetCurrencies)
	v1.POST("/reset", ledgerHandler.Reset)

	// Bucket routes
	buckets := v1.Group("/buckets")
	buckets.POST("", ledgerHandler.AddBucket)
	buckets.PUT("/:id/allocation", ledgerHandler.UpdateBucketAllocation)
	buckets.DELETE("/:id", ledgerHandler.DeleteBucket)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Onboarding and plan routes
	v1.POST("/onboarding/start", onboardingHandler.Start)
	v1.POST("/onboarding/profile", onboardingHandler.SubmitProfile)
	v1.PUT("/profile", onboardingHandler.UpdateProfile)

	plans := v1.Group("/plans")
	plans.GET("", onboardingHandler.GetPlans)
	plans.POST("/generate", onboardingHandler.GeneratePlans)
	plans.POST("/retry", onboardingHandler.RetryPlans)
	plans.POST("/skip", onboardingHandler.SkipPlans)
	plans.POST("/:id/apply", onboardingHandler.ApplyPlan)

	// Advisory routes
	suggestions := v1.Group("/suggestions")
	suggestions.GET("", advisorHandler.GetSuggestions)
	suggestions.DELETE("", advisorHandler.DismissSuggestions)
	suggestions.POST("/:index/apply", advisorHandler.ApplySuggestion)

	v1.GET("/advice", advisorHandler.GetAdvice)
	v1.POST("/advice/refresh", advisorHandler.RefreshAdvice)
	v1.POST("/goal-image", advisorHandler.GenerateGoalImage)

	return router
}
