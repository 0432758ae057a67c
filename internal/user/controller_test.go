package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expense_tracker/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(name, email, password string) (int, error) {
	args := m.Called(name, email, password)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) Login(email, password string) (string, error) {
	args := m.Called(email, password)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) GetUserByID(id int) (*User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestSignup_Success(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/signup", controller.Signup)

	mockService.On("Register", "Alice", "a@x.com", "secret123").Return(7, nil)

	body := `{"name":"Alice","email":"a@x.com","password":"secret123"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/signup", controller.Signup)

	mockService.On("Register", "Alice", "a@x.com", "secret123").Return(0, ErrEmailTaken)

	body := `{"name":"Alice","email":"a@x.com","password":"secret123"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")
	mockService.AssertExpectations(t)
}

func TestSignup_InvalidBody(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/signup", controller.Signup)

	body := `{"name":"Alice","email":"not-an-email","password":"secret123"}`
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Register")
}

func TestLogin_ReturnsBearerToken(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/login", controller.Login)

	mockService.On("Login", "a@x.com", "secret123").Return("signed.jwt.token", nil)

	body := `{"email":"a@x.com","password":"secret123"}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"signed.jwt.token","token_type":"bearer"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/login", controller.Login)

	mockService.On("Login", "a@x.com", "wrong").Return("", ErrInvalidCredentials)

	body := `{"email":"a@x.com","password":"wrong"}`
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

func TestToken_FormLogin(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)
	router.POST("/token", controller.Token)

	mockService.On("Login", "a@x.com", "secret123").Return("signed.jwt.token", nil)

	body := "username=a%40x.com&password=secret123"
	req := httptest.NewRequest("POST", "/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"signed.jwt.token","token_type":"bearer"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestMe_ReturnsIdentity(t *testing.T) {
	mockService := new(MockUserService)
	router := setupTestRouter()
	controller := NewUserController(mockService)

	mockService.On("GetUserByID", 42).Return(&User{ID: 42, Name: "Alice", Email: "a@x.com"}, nil)

	router.GET("/me", func(c *gin.Context) {
		c.Set(auth.UserIDKey, 42)
		controller.Me(c)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42,"name":"Alice","email":"a@x.com"}`, w.Body.String())
	mockService.AssertExpectations(t)
}
