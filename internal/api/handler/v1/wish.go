package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type WishService interface {
	ListWishes(ctx context.Context, qrID uint, filter domain.WishFilter, page int) (domain.Page[domain.Wish], error)
	UpdateStatus(ctx context.Context, qrID, id uint, status domain.WishStatus) (domain.Wish, error)
	DeleteWish(ctx context.Context, qrID, id uint) error
}

type WishHandler struct {
	svc WishService
}

func NewWishHandler(svc WishService) *WishHandler {
	return &WishHandler{svc: svc}
}

// HandleListWishes godoc
// @Summary      List wishes left on a QR code
// @Tags         wishes
// @Produce      json
// @Param        qrID    path      int     true   "QR ID"
// @Param        search  query     string  false  "message"
// @Param        status  query     string  false  "pending, accepted or rejected"
// @Param        page    query     int     false  "page"
// @Success      200     {object}  response.Paginated[domain.Wish]
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/wishes [get]
// @Security BearerAuth
func (h *WishHandler) HandleListWishes(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.WishFilter{Search: ctx.Query("search")}
	if status := ctx.Query("status"); status != "" {
		filter.Status = string(domain.NormalizeWishStatus(status))
	}

	wishes, err := h.svc.ListWishes(ctx.Request.Context(), qrID, filter, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListWishes -> h.svc.ListWishes", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(wishes))
}

// HandleUpdateWishStatus godoc
// @Summary      Accept or reject a wish
// @Description  The retired new, seen and done statuses are still accepted.
// @Tags         wishes
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                        true  "QR ID"
// @Param        wishID   path      int                        true  "Wish ID"
// @Param        request  body      request.WishStatusRequest  true  "request body"
// @Success      200      {object}  domain.Wish
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/wishes/{wishID} [patch]
// @Security BearerAuth
func (h *WishHandler) HandleUpdateWishStatus(ctx *gin.Context) {
	qrID, id, respErr := wishPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.WishStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	req.Status = string(domain.NormalizeWishStatus(req.Status))
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	wish, err := h.svc.UpdateStatus(ctx.Request.Context(), qrID, id, domain.WishStatus(req.Status))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateWishStatus -> h.svc.UpdateStatus", err)
		return
	}

	ctx.JSON(http.StatusOK, wish)
}

// HandleDeleteWish godoc
// @Summary      Delete a wish and its card image
// @Tags         wishes
// @Produce      json
// @Param        qrID    path      int  true  "QR ID"
// @Param        wishID  path      int  true  "Wish ID"
// @Success      200     {object}  response.Message
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/wishes/{wishID} [delete]
// @Security BearerAuth
func (h *WishHandler) HandleDeleteWish(ctx *gin.Context) {
	qrID, id, respErr := wishPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteWish(ctx.Request.Context(), qrID, id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteWish -> h.svc.DeleteWish", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Wish deleted."})
}

func wishPath(ctx *gin.Context) (uint, uint, *response.Err) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		return 0, 0, respErr
	}
	id, respErr := pathID(ctx, "wishID", "wish")
	if respErr != nil {
		return 0, 0, respErr
	}

	return qrID, id, nil
}
