package budget

import (
	"errors"
	"net/http"
	"strconv"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
)

type BudgetController struct {
	service BudgetServiceInterface
}

func NewBudgetController(service BudgetServiceInterface) *BudgetController {
	return &BudgetController{
		service: service,
	}
}

// SetBudget sets or replaces the authenticated user's budget for a month
func (bc *BudgetController) SetBudget(c *gin.Context) {
	var req struct {
		Month  string  `json:"month" binding:"required"`
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	b, err := bc.service.Set(userID, req.Month, req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Month must use the YYYY-MM format"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set budget"})
		return
	}

	c.JSON(http.StatusCreated, b)
}

// BudgetStatus reports budget, spent, and remaining for ?year=&month=
func (bc *BudgetController) BudgetStatus(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	status, err := bc.service.Status(userID, year, month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get budget status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Alerts lists the authenticated user's recorded over-budget alerts
func (bc *BudgetController) Alerts(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	alerts, err := bc.service.Alerts(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alerts"})
		return
	}

	if alerts == nil {
		alerts = []*Alert{}
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
