//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense_tracker/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupAndLogin(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	payload := map[string]string{"name": "Test User", "email": email, "password": password}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/signup", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	loginBody, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req = httptest.NewRequest("POST", "/login", bytes.NewBuffer(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var loginResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResponse))
	token := loginResponse["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestAPIIntegration_ExpenseOwnership runs the full two-user journey against
// real Postgres: the SQL user_id scoping, not a mock, decides what each
// caller can see and touch.
func TestAPIIntegration_ExpenseOwnership(t *testing.T) {
	deps := SetupTestEnvironment(t)
	defer deps.Cleanup(t)

	gin.SetMode(gin.TestMode)
	router := handler.SetupHandler(deps.DB, deps.RabbitConn, deps.RedisClient, deps.Config)

	suffix := time.Now().UnixNano()
	ownerToken := signupAndLogin(t, router, fmt.Sprintf("owner_%d@test.local", suffix), "OwnerPass123!")
	otherToken := signupAndLogin(t, router, fmt.Sprintf("other_%d@test.local", suffix), "OtherPass123!")

	var expenseID int

	t.Run("CreateExpense", func(t *testing.T) {
		w := doJSON(router, "POST", "/expenses", ownerToken, map[string]interface{}{
			"title":    "Groceries",
			"amount":   42.5,
			"category": "Food",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		expenseID = int(created["id"].(float64))
		assert.Greater(t, expenseID, 0)
	})

	t.Run("OwnerSeesExpense", func(t *testing.T) {
		w := doJSON(router, "GET", "/expenses", ownerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("OtherUserListIsEmpty", func(t *testing.T) {
		w := doJSON(router, "GET", "/expenses", otherToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(0), response["count"])
	})

	t.Run("CrossOwnerUpdateIsNotFound", func(t *testing.T) {
		w := doJSON(router, "PUT", fmt.Sprintf("/expenses/%d", expenseID), otherToken, map[string]interface{}{
			"title":    "Hijacked",
			"amount":   1.0,
			"category": "Other",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CrossOwnerDeleteIsNotFound", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/expenses/%d", expenseID), otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// The row survived the attempt
		w = doJSON(router, "GET", "/expenses", ownerToken, nil)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("OwnerDeleteSucceeds", func(t *testing.T) {
		w := doJSON(router, "DELETE", fmt.Sprintf("/expenses/%d", expenseID), ownerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unauthorized_NoToken", func(t *testing.T) {
		w := doJSON(router, "GET", "/expenses", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MetricsRecordAppRequests", func(t *testing.T) {
		w := doJSON(router, "GET", "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})
}

func TestAPIIntegration_DuplicateSignup(t *testing.T) {
	deps := SetupTestEnvironment(t)
	defer deps.Cleanup(t)

	gin.SetMode(gin.TestMode)
	router := handler.SetupHandler(deps.DB, deps.RabbitConn, deps.RedisClient, deps.Config)

	email := fmt.Sprintf("dup_%d@test.local", time.Now().UnixNano())
	payload := map[string]string{"name": "Dup", "email": email, "password": "DupPass123!"}

	w := doJSON(router, "POST", "/signup", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	// The unique index, not application state, rejects the second signup
	w = doJSON(router, "POST", "/signup", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}
