package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type WishImageExportService interface {
	RequestExport(ctx context.Context, qrID, userID uint) (domain.WishImageExportView, bool, error)
	ListRecent(ctx context.Context, qrID, userID uint) ([]domain.WishImageExportView, error)
	OpenDownload(ctx context.Context, id, userID uint) (afero.File, string, error)
}

type WishImageExportHandler struct {
	svc WishImageExportService
}

func NewWishImageExportHandler(svc WishImageExportService) *WishImageExportHandler {
	return &WishImageExportHandler{svc: svc}
}

// HandleRequestExport godoc
// @Summary      Queue a ZIP of accepted wish card images
// @Description  A queued or running export of the same user is returned instead of a new one.
// @Tags         wish-image-exports
// @Produce      json
// @Param        qrID  path      int  true  "QR ID"
// @Success      202   {object}  response.ExportRequested
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID}/wish-image-exports [post]
// @Security BearerAuth
func (h *WishImageExportHandler) HandleRequestExport(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	export, running, err := h.svc.RequestExport(ctx.Request.Context(), qrID, user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRequestExport -> h.svc.RequestExport", err)
		return
	}

	msg := "Wish image export has been queued."
	if running {
		msg = "An image export is already in progress."
	}

	ctx.JSON(http.StatusAccepted, response.ExportRequested{
		Message:        msg,
		Export:         export,
		AlreadyRunning: running,
	})
}

// HandleListExports godoc
// @Summary      Latest wish image exports of the current user
// @Tags         wish-image-exports
// @Produce      json
// @Param        qrID  path      int  true  "QR ID"
// @Success      200   {array}   domain.WishImageExportView
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID}/wish-image-exports [get]
// @Security BearerAuth
func (h *WishImageExportHandler) HandleListExports(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exports, err := h.svc.ListRecent(ctx.Request.Context(), qrID, user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListExports -> h.svc.ListRecent", err)
		return
	}

	ctx.JSON(http.StatusOK, exports)
}

// HandleDownloadExport godoc
// @Summary      Download a completed wish image export
// @Tags         wish-image-exports
// @Produce      application/zip
// @Param        exportID  path  int  true  "Export ID"
// @Success      200
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /wish-image-exports/{exportID}/download [get]
// @Security BearerAuth
func (h *WishImageExportHandler) HandleDownloadExport(ctx *gin.Context) {
	id, respErr := pathID(ctx, "exportID", "wish image export")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	f, name, err := h.svc.OpenDownload(ctx.Request.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrExportNotReady):
			response.RenderErr(ctx, response.ErrNotFound("wish image export file", "id", id))
		default:
			renderServiceErr(ctx, "v1.HandleDownloadExport -> h.svc.OpenDownload", err)
		}

		return
	}

	serveZip(ctx, "v1.HandleDownloadExport", f, name)
}
