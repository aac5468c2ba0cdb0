package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	incomeHandler *IncomeHandler,
	budgetHandler *BudgetHandler,
	categoryHandler *CategoryHandler,
	savingsHandler *SavingsHandler,
	wsHandler *WebSocketHandler,
) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Profile routes (protected)
	profile := api.Group("/profile")
	profile.Use(authMiddleware.Authenticate())
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.POST("/avatar", profileHandler.UploadAvatar)
	profile.DELETE("/avatar", profileHandler.DeleteAvatar)

	// Income routes (protected)
	incomes := api.Group("/incomes")
	incomes.Use(authMiddleware.Authenticate())
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetIncomes)
	incomes.GET("/:id", incomeHandler.GetIncome)
	incomes.PUT("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	// Budget routes (protected)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware.Authenticate())
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Category routes (protected). Creation fans out to the text oracle,
	// so it sits behind the per-user rate limiter.
	categories := api.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	categories.POST("", categoryHandler.CreateCategory, middleware.RateLimitMiddleware(rateLimiter))
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)

	// Savings routes (protected)
	savings := api.Group("/savings")
	savings.Use(authMiddleware.Authenticate())
	savings.POST("", savingsHandler.CreateSavings)
	savings.GET("", savingsHandler.GetAllSavings)
	savings.GET("/:id", savingsHandler.GetSavings)
	savings.PUT("/:id", savingsHandler.UpdateSavings)
	savings.DELETE("/:id", savingsHandler.DeleteSavings)

	// WebSocket endpoint; the token travels as a query parameter
	e.GET("/ws", wsHandler.HandleWS)

	// API documentation
	e.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
