package budget

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBudgetService is a mock implementation of BudgetServiceInterface
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) Set(userID int, month string, amount float64) (*Budget, error) {
	args := m.Called(userID, month, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Budget), args.Error(1)
}

func (m *MockBudgetService) Status(userID, year, month int) (*Status, error) {
	args := m.Called(userID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Status), args.Error(1)
}

func (m *MockBudgetService) Alerts(userID int) ([]*Alert, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Alert), args.Error(1)
}

func setupBudgetRouter(service BudgetServiceInterface, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.UserIDKey, userID)
		c.Next()
	})

	controller := NewBudgetController(service)
	r.POST("/budget", controller.SetBudget)
	r.GET("/budget/status", controller.BudgetStatus)
	r.GET("/budget/alerts", controller.Alerts)
	return r
}

func TestSetBudget_Success(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	mockService.On("Set", 1, "2024-03", 500.0).
		Return(&Budget{ID: 1, UserID: 1, Month: "2024-03", Amount: 500}, nil)

	body, _ := json.Marshal(gin.H{"month": "2024-03", "amount": 500})
	req := httptest.NewRequest(http.MethodPost, "/budget", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got Budget
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2024-03", got.Month)
	assert.Equal(t, 500.0, got.Amount)
	mockService.AssertExpectations(t)
}

func TestSetBudget_InvalidMonth(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	mockService.On("Set", 1, "March", 500.0).Return(nil, ErrInvalidMonth)

	body, _ := json.Marshal(gin.H{"month": "March", "amount": 500})
	req := httptest.NewRequest(http.MethodPost, "/budget", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM")
}

func TestSetBudget_RejectsNonPositiveAmount(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	body, _ := json.Marshal(gin.H{"month": "2024-03", "amount": -5})
	req := httptest.NewRequest(http.MethodPost, "/budget", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Set")
}

func TestBudgetStatus_Success(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	remaining := 200.0
	mockService.On("Status", 1, 2024, 3).
		Return(&Status{Budget: 500, Spent: 300, Remaining: &remaining}, nil)

	req := httptest.NewRequest(http.MethodGet, "/budget/status?year=2024&month=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 500.0, got["budget"])
	assert.Equal(t, 300.0, got["spent"])
	assert.Equal(t, 200.0, got["remaining"])
}

func TestBudgetStatus_NoBudgetOmitsRemaining(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	mockService.On("Status", 1, 2024, 4).Return(&Status{Budget: 0, Spent: 120.5}, nil)

	req := httptest.NewRequest(http.MethodGet, "/budget/status?year=2024&month=4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "remaining")
}

func TestBudgetStatus_InvalidMonthParam(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	req := httptest.NewRequest(http.MethodGet, "/budget/status?year=2024&month=13", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Status")
}

func TestAlerts_EmptyList(t *testing.T) {
	mockService := new(MockBudgetService)
	router := setupBudgetRouter(mockService, 1)

	mockService.On("Alerts", 1).Return([]*Alert{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/budget/alerts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Alerts []*Alert `json:"alerts"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Empty(t, got.Alerts)
	assert.Zero(t, got.Count)
}
