package v1

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type PinService interface {
	ListPins(ctx context.Context, qrID uint, filter domain.PinFilter, page int) (domain.Page[domain.QrPin], error)
	GeneratePins(ctx context.Context, qrID uint, count int) ([]string, error)
	ExportFileName(qrID uint) string
	ExportCSV(ctx context.Context, qr domain.Qr, w io.Writer) error
}

type QrFinder interface {
	GetQr(ctx context.Context, id uint) (domain.Qr, error)
}

type PinHandler struct {
	svc PinService
	qrs QrFinder
}

func NewPinHandler(svc PinService, qrs QrFinder) *PinHandler {
	return &PinHandler{
		svc: svc,
		qrs: qrs,
	}
}

// HandleListPins godoc
// @Summary      List the spin PINs of a QR code
// @Tags         pins
// @Produce      json
// @Param        qrID     path      int     true   "QR ID"
// @Param        search   query     string  false  "pin prefix"
// @Param        is_used  query     bool    false  "used or unused only"
// @Param        page     query     int     false  "page"
// @Success      200      {object}  response.Paginated[domain.QrPin]
// @Failure      404      {object}  response.Err
// @Router       /qrs/{qrID}/pins [get]
// @Security BearerAuth
func (h *PinHandler) HandleListPins(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.PinFilter{Search: ctx.Query("search")}
	if used, err := strconv.ParseBool(ctx.Query("is_used")); err == nil {
		filter.IsUsed = &used
	}

	pins, err := h.svc.ListPins(ctx.Request.Context(), qrID, filter, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListPins -> h.svc.ListPins", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(pins))
}

// HandleGeneratePins godoc
// @Summary      Generate new PINs
// @Tags         pins
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                          true  "QR ID"
// @Param        request  body      request.GeneratePinsRequest  true  "request body"
// @Success      201      {object}  response.GeneratedPins
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/pins [post]
// @Security BearerAuth
func (h *PinHandler) HandleGeneratePins(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.GeneratePinsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	pins, err := h.svc.GeneratePins(ctx.Request.Context(), qrID, req.Count)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGeneratePins -> h.svc.GeneratePins", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.GeneratedPins{
		Message: fmt.Sprintf("%d PINs generated.", len(pins)),
		Pins:    pins,
	})
}

// HandleExportPins godoc
// @Summary      Download every PIN of a QR code as CSV
// @Tags         pins
// @Produce      text/csv
// @Param        qrID  path  int  true  "QR ID"
// @Success      200
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID}/pins/export [get]
// @Security BearerAuth
func (h *PinHandler) HandleExportPins(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	qr, err := h.qrs.GetQr(ctx.Request.Context(), qrID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleExportPins -> h.qrs.GetQr", err)
		return
	}

	ctx.Header("Content-Type", "text/csv; charset=UTF-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.svc.ExportFileName(qr.ID)))
	ctx.Status(http.StatusOK)

	// Headers are out once the first chunk is flushed, so a failure
	// mid-stream can only be logged.
	if err := h.svc.ExportCSV(ctx.Request.Context(), qr, ctx.Writer); err != nil {
		zap.L().Error("pin export aborted", zap.Uint("qr_id", qr.ID), zap.Error(err))
	}
}
