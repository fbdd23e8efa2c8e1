package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type QrService interface {
	ListQrs(ctx context.Context, filter domain.QrFilter, page int) (domain.Page[domain.QrSummary], error)
	GetQrDetail(ctx context.Context, id uint) (domain.QrDetail, error)
	CreateQr(ctx context.Context, qr domain.Qr) (domain.Qr, error)
	UpdateQr(ctx context.Context, qr domain.Qr) (domain.Qr, error)
	DeleteQr(ctx context.Context, id uint) error
	RegenerateToken(ctx context.Context, id uint) (domain.Qr, error)
}

type QrHandler struct {
	svc QrService
}

func NewQrHandler(svc QrService) *QrHandler {
	return &QrHandler{svc: svc}
}

// HandleListQrs godoc
// @Summary      List QR codes
// @Description  Newest first, with per QR counters.
// @Tags         qrs
// @Produce      json
// @Param        search  query     string  false  "name or token"
// @Param        status  query     string  false  "active, inactive or archived"
// @Param        page    query     int     false  "page"
// @Success      200     {object}  response.Paginated[domain.QrSummary]
// @Router       /qrs [get]
// @Security BearerAuth
func (h *QrHandler) HandleListQrs(ctx *gin.Context) {
	filter := domain.QrFilter{
		Search: ctx.Query("search"),
		Status: ctx.Query("status"),
	}

	qrs, err := h.svc.ListQrs(ctx.Request.Context(), filter, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListQrs -> h.svc.ListQrs", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(qrs))
}

// HandleCreateQr godoc
// @Summary      Create a QR code
// @Tags         qrs
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateQrRequest  true  "request body"
// @Success      201      {object}  domain.Qr
// @Failure      422      {object}  response.Err
// @Router       /qrs [post]
// @Security BearerAuth
func (h *QrHandler) HandleCreateQr(ctx *gin.Context) {
	var req request.CreateQrRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	qr, err := h.svc.CreateQr(ctx.Request.Context(), domain.Qr{
		Name:      req.Name,
		Status:    domain.QrStatus(req.Status),
		CreatedBy: &user.ID,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateQr -> h.svc.CreateQr", err)
		return
	}

	ctx.JSON(http.StatusCreated, qr)
}

// HandleGetQr godoc
// @Summary      Get a QR code with its questions and items
// @Tags         qrs
// @Produce      json
// @Param        qrID  path      int  true  "QR ID"
// @Success      200   {object}  domain.QrDetail
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID} [get]
// @Security BearerAuth
func (h *QrHandler) HandleGetQr(ctx *gin.Context) {
	id, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	detail, err := h.svc.GetQrDetail(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetQr -> h.svc.GetQrDetail", err)
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleUpdateQr godoc
// @Summary      Update a QR code
// @Tags         qrs
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                      true  "QR ID"
// @Param        request  body      request.UpdateQrRequest  true  "request body"
// @Success      200      {object}  domain.Qr
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID} [put]
// @Security BearerAuth
func (h *QrHandler) HandleUpdateQr(ctx *gin.Context) {
	id, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateQrRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	qr, err := h.svc.UpdateQr(ctx.Request.Context(), domain.Qr{
		ID:     id,
		Name:   req.Name,
		Status: domain.QrStatus(req.Status),
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateQr -> h.svc.UpdateQr", err)
		return
	}

	ctx.JSON(http.StatusOK, qr)
}

// HandleDeleteQr godoc
// @Summary      Delete a QR code and everything attached to it
// @Tags         qrs
// @Produce      json
// @Param        qrID  path      int  true  "QR ID"
// @Success      200   {object}  response.Message
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID} [delete]
// @Security BearerAuth
func (h *QrHandler) HandleDeleteQr(ctx *gin.Context) {
	id, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteQr(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteQr -> h.svc.DeleteQr", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "QR deleted."})
}

// HandleRegenerateToken godoc
// @Summary      Issue a new token for a QR code
// @Description  Printed codes carrying the old token stop working.
// @Tags         qrs
// @Produce      json
// @Param        qrID  path      int  true  "QR ID"
// @Success      200   {object}  domain.Qr
// @Failure      404   {object}  response.Err
// @Router       /qrs/{qrID}/regenerate-token [post]
// @Security BearerAuth
func (h *QrHandler) HandleRegenerateToken(ctx *gin.Context) {
	id, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	qr, err := h.svc.RegenerateToken(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRegenerateToken -> h.svc.RegenerateToken", err)
		return
	}

	ctx.JSON(http.StatusOK, qr)
}
