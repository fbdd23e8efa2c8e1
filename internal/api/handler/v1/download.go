package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
)

// serveZip streams an open archive as an attachment and closes it.
func serveZip(ctx *gin.Context, op string, f afero.File, name string) {
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("download not closed", zap.String("file", name), zap.Error(err))
		}
	}()

	info, err := f.Stat()
	if err != nil {
		response.RenderErr(ctx, internalErr(op+" -> f.Stat", err))
		return
	}

	ctx.DataFromReader(http.StatusOK, info.Size(), "application/zip", f, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}
