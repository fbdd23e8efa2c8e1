package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/api/middleware"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

var testAdmin = domain.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin}

// newTestRouter returns an engine that acts as if RequireAdmin let user in.
func newTestRouter(user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		r.Use(func(ctx *gin.Context) {
			ctx.Set(middleware.ContextKeyUserID, user.ID)
			ctx.Set(middleware.ContextKeyUser, *user)
			ctx.Next()
		})
	}

	return r
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}
