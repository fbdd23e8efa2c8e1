package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type NotificationService interface {
	Feed(ctx context.Context, userID uint) (domain.NotificationFeed, error)
	Poll(ctx context.Context, userID uint) (domain.NotificationFeed, error)
	MarkRead(ctx context.Context, id string, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type NotificationHandler struct {
	svc NotificationService
	hub *NotificationHub
}

func NewNotificationHandler(svc NotificationService, hub *NotificationHub) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
		hub: hub,
	}
}

// HandleFeed godoc
// @Summary      Latest notifications of the current user
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  domain.NotificationFeed
// @Router       /notifications [get]
// @Security BearerAuth
func (h *NotificationHandler) HandleFeed(ctx *gin.Context) {
	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	feed, err := h.svc.Feed(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleFeed -> h.svc.Feed", err)
		return
	}

	ctx.JSON(http.StatusOK, feed)
}

// HandlePoll godoc
// @Summary      Latest unread notifications of the current user
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  domain.NotificationFeed
// @Router       /notifications/poll [get]
// @Security BearerAuth
func (h *NotificationHandler) HandlePoll(ctx *gin.Context) {
	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	feed, err := h.svc.Poll(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandlePoll -> h.svc.Poll", err)
		return
	}

	ctx.JSON(http.StatusOK, feed)
}

// HandleMarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path      string  true  "Notification ID"
// @Success      200             {object}  response.OK
// @Failure      403             {object}  response.Err
// @Failure      404             {object}  response.Err
// @Router       /notifications/{notificationID}/read [post]
// @Security BearerAuth
func (h *NotificationHandler) HandleMarkRead(ctx *gin.Context) {
	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.MarkRead(ctx.Request.Context(), ctx.Param("notificationID"), user.ID); err != nil {
		if errors.Is(err, service.ErrNotificationForbidden) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		renderServiceErr(ctx, "v1.HandleMarkRead -> h.svc.MarkRead", err)
		return
	}

	ctx.JSON(http.StatusOK, response.OK{OK: true})
}

// HandleMarkAllRead godoc
// @Summary      Mark every notification of the current user read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.OK
// @Router       /notifications/mark-all-read [post]
// @Security BearerAuth
func (h *NotificationHandler) HandleMarkAllRead(ctx *gin.Context) {
	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.MarkAllRead(ctx.Request.Context(), user.ID); err != nil {
		renderServiceErr(ctx, "v1.HandleMarkAllRead -> h.svc.MarkAllRead", err)
		return
	}

	ctx.JSON(http.StatusOK, response.OK{OK: true})
}

// HandleWebSocket godoc
// @Summary      Live notification stream
// @Description  Browsers pass the JWT as ?token= since they cannot set headers on the upgrade.
// @Tags         notifications
// @Param        token  query  string  false  "JWT"
// @Success      101    {string}  string  "Switching Protocols"
// @Failure      401    {object}  response.Err
// @Router       /notifications/ws [get]
// @Security BearerAuth
func (h *NotificationHandler) HandleWebSocket(ctx *gin.Context) {
	user, respErr := currentUser(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	// The upgrader writes its own error response.
	if err := h.hub.Serve(ctx.Writer, ctx.Request, user.ID); err != nil {
		zap.L().Warn("notification socket not opened", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
