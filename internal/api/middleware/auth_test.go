package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/pkg/jwthelper"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

const testKey = "test-signing-key"

type users map[uint]domain.User

func (u users) GetUser(_ context.Context, id uint) (domain.User, error) {
	user, ok := u[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}

	return user, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	known := users{
		1: {ID: 1, Name: "Ada", Role: domain.RoleAdmin},
		2: {ID: 2, Name: "Bob", Role: "user"},
	}
	r.GET("/me", NewAuthenticator(testKey).VerifyJWT(), RequireAdmin(known), func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			ctx.Status(http.StatusTeapot)
			return
		}
		ctx.String(http.StatusOK, user.Name)
	})

	return r
}

func token(t *testing.T, key string, userID uint, ttl time.Duration) string {
	t.Helper()

	signed, err := jwthelper.GenerateToken([]byte(key), userID, "test", ttl)
	require.NoError(t, err)

	return signed
}

func TestVerifyJWTAndRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + token(t, "other", 1, time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + token(t, testKey, 1, -time.Minute), wantStatus: http.StatusUnauthorized},
		{name: "unknown user", header: "Bearer " + token(t, testKey, 9, time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "not an admin", header: "Bearer " + token(t, testKey, 2, time.Hour), wantStatus: http.StatusForbidden},
		{name: "admin", header: "Bearer " + token(t, testKey, 1, time.Hour), wantStatus: http.StatusOK, wantBody: "Ada"},
		{name: "admin via query", query: "?token=" + token(t, testKey, 1, time.Hour), wantStatus: http.StatusOK, wantBody: "Ada"},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
