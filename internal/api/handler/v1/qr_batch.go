package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type QrBatchService interface {
	MaxQuantity() int
	Settings(ctx context.Context) (domain.QrBatchSettingsPayload, error)
	CreateBatch(ctx context.Context, in service.BatchSettingsInput, createdBy uint) (domain.QrBatchView, error)
	GetBatch(ctx context.Context, id uint) (domain.QrBatchView, error)
	ListBatches(ctx context.Context, page int) (domain.Page[domain.QrBatchView], error)
	OpenDownload(ctx context.Context, id uint) (afero.File, string, error)
}

type QrBatchHandler struct {
	svc QrBatchService
}

func NewQrBatchHandler(svc QrBatchService) *QrBatchHandler {
	return &QrBatchHandler{svc: svc}
}

// HandleBatchSettings godoc
// @Summary      Defaults, size presets and the latest batch for the batch form
// @Tags         qr-batches
// @Produce      json
// @Success      200  {object}  domain.QrBatchSettingsPayload
// @Router       /qr-batches/settings [get]
// @Security BearerAuth
func (h *QrBatchHandler) HandleBatchSettings(ctx *gin.Context) {
	payload, err := h.svc.Settings(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleBatchSettings -> h.svc.Settings", err)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

// HandleListBatches godoc
// @Summary      List printable QR batches
// @Tags         qr-batches
// @Produce      json
// @Param        page  query     int  false  "page"
// @Success      200   {object}  response.Paginated[domain.QrBatchView]
// @Router       /qr-batches [get]
// @Security BearerAuth
func (h *QrBatchHandler) HandleListBatches(ctx *gin.Context) {
	batches, err := h.svc.ListBatches(ctx.Request.Context(), queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListBatches -> h.svc.ListBatches", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(batches))
}

// HandleCreateBatch godoc
// @Summary      Queue a printable QR batch
// @Description  Generation runs in the background. Poll the batch for progress.
// @Tags         qr-batches
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateQrBatchRequest  true  "request body"
// @Success      202      {object}  domain.QrBatchView
// @Failure      422      {object}  response.Err
// @Router       /qr-batches [post]
// @Security BearerAuth
func (h *QrBatchHandler) HandleCreateBatch(ctx *gin.Context) {
	var req request.CreateQrBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(h.svc.MaxQuantity()); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	batch, err := h.svc.CreateBatch(ctx.Request.Context(), service.BatchSettingsInput{
		Quantity:   req.Quantity,
		BaseURL:    req.BaseURL,
		PageFormat: req.PageFormat,
		MarginMM:   req.MarginMM,
		GapMM:      req.GapMM,
		Cols:       req.Cols,
		Rows:       req.Rows,
		SizeMode:   req.SizeMode,
		SizePreset: req.SizePreset,
		SizeMM:     req.SizeMM,
	}, user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateBatch -> h.svc.CreateBatch", err)
		return
	}

	ctx.JSON(http.StatusAccepted, batch)
}

// HandleGetBatch godoc
// @Summary      Get a batch with its progress
// @Tags         qr-batches
// @Produce      json
// @Param        batchID  path      int  true  "Batch ID"
// @Success      200      {object}  domain.QrBatchView
// @Failure      404      {object}  response.Err
// @Router       /qr-batches/{batchID} [get]
// @Security BearerAuth
func (h *QrBatchHandler) HandleGetBatch(ctx *gin.Context) {
	id, respErr := pathID(ctx, "batchID", "qr batch")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	batch, err := h.svc.GetBatch(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetBatch -> h.svc.GetBatch", err)
		return
	}

	ctx.JSON(http.StatusOK, batch)
}

// HandleDownloadBatch godoc
// @Summary      Download the ZIP of PDFs of a completed batch
// @Tags         qr-batches
// @Produce      application/zip
// @Param        batchID  path  int  true  "Batch ID"
// @Success      200
// @Failure      404      {object}  response.Err
// @Router       /qr-batches/{batchID}/download [get]
// @Security BearerAuth
func (h *QrBatchHandler) HandleDownloadBatch(ctx *gin.Context) {
	id, respErr := pathID(ctx, "batchID", "qr batch")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	f, name, err := h.svc.OpenDownload(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotReady) {
			response.RenderErr(ctx, response.ErrNotFound("qr batch file", "id", id))
			return
		}

		renderServiceErr(ctx, "v1.HandleDownloadBatch -> h.svc.OpenDownload", err)
		return
	}

	serveZip(ctx, "v1.HandleDownloadBatch", f, name)
}
