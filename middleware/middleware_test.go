package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedH1998/onbored-sub001/utils"
)

var secret = []byte("test-secret")

func newRouter(serviceKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("http://localhost:3000"))
	r.GET("/private", AuthRequired(secret, serviceKey), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	token, err := utils.GenerateJWT(secret, "user-7", "u@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		serviceKey string
		setup      func(*http.Request)
		wantStatus int
		wantBody   string
	}{
		{"no credentials", "", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"bearer token", "", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "user-7"},
		{"cookie token", "", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt_token", Value: token}) }, http.StatusOK, "user-7"},
		{"bad token", "", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"service key", "svc", func(r *http.Request) { r.Header.Set("X-API-KEY", "svc") }, http.StatusOK, "service"},
		{"wrong service key", "svc", func(r *http.Request) { r.Header.Set("X-API-KEY", "nope") }, http.StatusUnauthorized, ""},
		{"empty key never matches unset service key", "", func(r *http.Request) { r.Header.Set("X-API-KEY", "") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			newRouter(tt.serviceKey).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/private", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	newRouter("").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
