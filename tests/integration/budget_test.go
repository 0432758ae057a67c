//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"expense_tracker/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBudgetIntegration_UpsertLatestWins drives the ON CONFLICT upsert
// through HTTP: setting the same month twice leaves exactly one budget row
// holding the latest amount.
func TestBudgetIntegration_UpsertLatestWins(t *testing.T) {
	deps := SetupTestEnvironment(t)
	defer deps.Cleanup(t)

	gin.SetMode(gin.TestMode)
	router := handler.SetupHandler(deps.DB, deps.RabbitConn, deps.RedisClient, deps.Config)

	token := signupAndLogin(t, router, fmt.Sprintf("budget_%d@test.local", time.Now().UnixNano()), "BudgetPass123!")

	now := time.Now()
	month := now.Format("2006-01")
	statusPath := fmt.Sprintf("/budget/status?year=%d&month=%d", now.Year(), int(now.Month()))

	// Spend 300 in the current month
	w := doJSON(router, "POST", "/expenses", token, map[string]interface{}{
		"title":    "Rent",
		"amount":   300.0,
		"category": "Housing",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("SetBudget", func(t *testing.T) {
		w := doJSON(router, "POST", "/budget", token, map[string]interface{}{
			"month":  month,
			"amount": 500.0,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("StatusReflectsFirstAmount", func(t *testing.T) {
		w := doJSON(router, "GET", statusPath, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status map[string]float64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, 500.0, status["budget"])
		assert.Equal(t, 300.0, status["spent"])
		assert.Equal(t, 200.0, status["remaining"])
	})

	t.Run("ReplaceBudget", func(t *testing.T) {
		w := doJSON(router, "POST", "/budget", token, map[string]interface{}{
			"month":  month,
			"amount": 800.0,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("StatusReflectsLatestAmount", func(t *testing.T) {
		w := doJSON(router, "GET", statusPath, token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status map[string]float64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, 800.0, status["budget"])
		assert.Equal(t, 300.0, status["spent"])
		assert.Equal(t, 500.0, status["remaining"])
	})

	t.Run("SingleRowPerMonth", func(t *testing.T) {
		var count int
		err := deps.DB.QueryRow("SELECT COUNT(*) FROM budgets WHERE month = $1", month).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

// A month without a budget reports zero and omits remaining entirely.
func TestBudgetIntegration_StatusWithoutBudget(t *testing.T) {
	deps := SetupTestEnvironment(t)
	defer deps.Cleanup(t)

	gin.SetMode(gin.TestMode)
	router := handler.SetupHandler(deps.DB, deps.RabbitConn, deps.RedisClient, deps.Config)

	token := signupAndLogin(t, router, fmt.Sprintf("nobudget_%d@test.local", time.Now().UnixNano()), "NoBudget123!")

	w := doJSON(router, "GET", "/budget/status?year=2030&month=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, float64(0), status["budget"])
	assert.NotContains(t, status, "remaining")
}
