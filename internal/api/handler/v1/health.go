package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
)

// HandleHealth godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Health
// @Router       / [get]
func HandleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.Health{Status: "ok"})
}
