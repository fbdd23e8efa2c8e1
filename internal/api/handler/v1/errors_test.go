package v1

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

func TestRenderServiceErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "field errors",
			err:        fmt.Errorf("wrapped -> %w", validation.Errors{"email": errors.New("has already been taken")}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: map[string]interface{}{
				"status": "The given data was invalid.",
				"code":   float64(http.StatusUnprocessableEntity),
				"errors": map[string]interface{}{"email": "has already been taken"},
			},
		},
		{
			name:       "missing resource",
			err:        fmt.Errorf("s.repo.FindByID -> %w", service.ErrQuestionNotFound),
			wantStatus: http.StatusNotFound,
			wantBody: map[string]interface{}{
				"status": "Resource not found.",
				"code":   float64(http.StatusNotFound),
				"error":  "question with id 7 not found",
			},
		},
		{
			name:       "anything else",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"status": "Internal server error.", "code": float64(http.StatusInternalServerError)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(nil)
			r.GET("/qrs/:qrID/questions/:questionID", func(ctx *gin.Context) {
				renderServiceErr(ctx, "test", tt.err)
			})

			rec := doJSON(t, r, http.MethodGet, "/qrs/3/questions/7", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decode(t, rec))
		})
	}
}

func TestPathID(t *testing.T) {
	r := newTestRouter(nil)
	r.GET("/qrs/:qrID", func(ctx *gin.Context) {
		id, respErr := pathID(ctx, "qrID", "qr")
		if respErr != nil {
			ctx.JSON(respErr.HTTPStatusCode, respErr)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"id": id})
	})

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/qrs/12", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/qrs/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/qrs/0", nil).Code)
}

func TestRenderErrCarriesStatusCode(t *testing.T) {
	r := newTestRouter(nil)
	r.GET("/qrs/:qrID", func(ctx *gin.Context) {
		response.RenderErr(ctx, response.ErrNotFound("qr", "id", ctx.Param("qrID")))
	})

	rec := doJSON(t, r, http.MethodGet, "/qrs/7", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"status": "Resource not found.",
		"code":   float64(http.StatusNotFound),
		"error":  "qr with id 7 not found",
	}, decode(t, rec))
}
