package handler

import (
	"database/sql"
	"net/http"

	"expense_tracker/internal/budget"
	"expense_tracker/internal/config"
	"expense_tracker/internal/expense"
	"expense_tracker/internal/middleware"
	"expense_tracker/internal/observability"
	"expense_tracker/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
)

// SetupHandler initializes all dependencies and routes
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) *gin.Engine {

	r := gin.Default()

	// Gin snapshots each route's handler chain at registration, so the
	// metrics middleware must be attached before any route is added.
	if observability.GlobalMetrics != nil {
		r.Use(middleware.PrometheusMiddleware(observability.GlobalMetrics))
	}

	// Repositories
	userRepo := user.NewUserRepository()
	expenseRepo := expense.NewExpenseRepository()
	budgetRepo := budget.NewBudgetRepository()

	// Services
	userService := user.NewUserService(userRepo, db, cfg.JWT.Secret, cfg.JWT.TokenTTL)
	expenseService := expense.NewExpenseService(
		expenseRepo,
		db,
		redisClient,
		budget.NewLookup(budgetRepo, db),
		budget.NewAlertPublisher(conn),
	)
	budgetService := budget.NewBudgetService(budgetRepo, db, expenseService)

	// Controllers
	userController := user.NewUserController(userService)
	expenseController := expense.NewExpenseController(expenseService)
	budgetController := budget.NewBudgetController(budgetService)

	setupRoutes(r, userController, expenseController, budgetController, userService, redisClient, cfg.JWT.Secret)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(
	r *gin.Engine,
	userCtrl *user.UserController,
	expenseCtrl *expense.ExpenseController,
	budgetCtrl *budget.BudgetController,
	userService user.UserServiceInterface,
	redisClient *redis.Client,
	jwtSecret string,
) {
	// Public routes
	r.POST("/signup", userCtrl.Signup)
	r.POST("/login", userCtrl.Login)
	r.POST("/token", userCtrl.Token)
	r.GET("/categories", expenseCtrl.Categories)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	// Protected routes: every one of them passes through the auth gate
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret, userService))
	protected.Use(middleware.RateLimiterMiddleware(redisClient, middleware.DefaultRateLimiterConfig()))
	{
		protected.GET("/me", userCtrl.Me)

		protected.POST("/expenses", expenseCtrl.CreateExpense)
		protected.GET("/expenses", expenseCtrl.ListExpenses)
		protected.PUT("/expenses/:id", expenseCtrl.UpdateExpense)
		protected.DELETE("/expenses/:id", expenseCtrl.DeleteExpense)
		protected.GET("/expenses/filter", expenseCtrl.FilterExpenses)
		protected.GET("/expenses/search", expenseCtrl.SearchExpenses)
		protected.GET("/expenses/by-date", expenseCtrl.ExpensesByDate)
		protected.GET("/expenses/summary/monthly", expenseCtrl.MonthlySummary)
		protected.GET("/expenses/summary/categories", expenseCtrl.CategorySummary)
		protected.GET("/expenses/anomalies", expenseCtrl.Anomalies)

		// Exports are heavier; give them a tighter bucket
		protected.GET("/expenses/export",
			middleware.RateLimiterMiddleware(redisClient, middleware.ConservativeRateLimiter()),
			expenseCtrl.ExportExpenses,
		)

		protected.POST("/budget", budgetCtrl.SetBudget)
		protected.GET("/budget/status", budgetCtrl.BudgetStatus)
		protected.GET("/budget/alerts", budgetCtrl.Alerts)
	}
}
