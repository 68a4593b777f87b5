package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func setupRouter(tokens TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/private", AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("deviceID"))
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setup      func(m *MockTokenValidator)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "missing authorization header",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid authorization header format",
		},
		{
			name:   "invalid token",
			header: "Bearer forged",
			setup: func(m *MockTokenValidator) {
				m.On("ValidateToken", "forged").Return("", errors.New("bad signature"))
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid token",
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(m *MockTokenValidator) {
				m.On("ValidateToken", "good").Return("device-1", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "device-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(MockTokenValidator)
			if tt.setup != nil {
				tt.setup(tokens)
			}

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			setupRouter(tokens).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			tokens.AssertExpectations(t)
		})
	}
}
