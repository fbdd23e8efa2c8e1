package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

var (
	entryQrRequired = response.EntryErr{
		Title:   "QR Required",
		Message: "You need to scan a QR code to enter this page.",
	}
	entryInvalidQr = response.EntryErr{
		Title:   "Invalid QR",
		Message: "This QR link is invalid or no longer active. Please scan a valid QR code.",
	}
)

type PublicService interface {
	ActiveQr(ctx context.Context, token string) (domain.Qr, error)
	Form(ctx context.Context, token string) (domain.PublicForm, error)
	Submit(ctx context.Context, token, userIdentifier string, answers map[string]interface{}) (domain.FormResponse, error)
	WheelItems(ctx context.Context, token string) ([]domain.WheelItem, error)
	CheckPin(ctx context.Context, token, pin string) (bool, error)
	Spin(ctx context.Context, token, pin string) (domain.SpinResult, error)
}

type WishSubmitter interface {
	SubmitWish(ctx context.Context, qrID uint, message, imageData string) (domain.Wish, error)
}

// PublicHandler serves the pages reached by scanning a QR code. Nothing
// here is authenticated, the QR token is the only key.
type PublicHandler struct {
	svc    PublicService
	wishes WishSubmitter
}

func NewPublicHandler(svc PublicService, wishes WishSubmitter) *PublicHandler {
	return &PublicHandler{
		svc:    svc,
		wishes: wishes,
	}
}

// HandleEntry godoc
// @Summary      Landing page of a scanned QR code
// @Tags         public
// @Produce      json
// @Param        qr   query     string  true  "QR token"
// @Success      200  {object}  domain.PublicForm
// @Failure      400  {object}  response.EntryErr
// @Failure      404  {object}  response.EntryErr
// @Router       /public/entry [get]
func (h *PublicHandler) HandleEntry(ctx *gin.Context) {
	token := ctx.Query("qr")
	if token == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, entryQrRequired)
		return
	}

	form, err := h.svc.Form(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrQrNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, entryInvalidQr)
			return
		}

		response.RenderErr(ctx, internalErr("v1.HandleEntry -> h.svc.Form", err))
		return
	}

	ctx.JSON(http.StatusOK, form)
}

// HandleForm godoc
// @Summary      Form of an active QR code
// @Tags         public
// @Produce      json
// @Param        token  path      string  true  "QR token"
// @Success      200    {object}  domain.PublicForm
// @Failure      404    {object}  response.Err
// @Router       /public/qrs/{token} [get]
func (h *PublicHandler) HandleForm(ctx *gin.Context) {
	form, err := h.svc.Form(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		h.renderErr(ctx, "v1.HandleForm -> h.svc.Form", err)
		return
	}

	ctx.JSON(http.StatusOK, form)
}

// HandleSubmit godoc
// @Summary      Submit the form of a QR code
// @Description  Answers are keyed by question id. Field errors come back as answers.{id}.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token    path      string                     true  "QR token"
// @Param        request  body      request.SubmitFormRequest  true  "request body"
// @Success      201      {object}  response.Submitted
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /public/qrs/{token}/submit [post]
func (h *PublicHandler) HandleSubmit(ctx *gin.Context) {
	var req request.SubmitFormRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Submit(ctx.Request.Context(), ctx.Param("token"), req.UserIdentifier, req.Answers)
	if err != nil {
		h.renderErr(ctx, "v1.HandleSubmit -> h.svc.Submit", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.Submitted{
		Message: "Thank you! Your response has been submitted.",
		ID:      created.ID,
	})
}

// HandleSubmitWish godoc
// @Summary      Leave a wish, optionally with a drawn card
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token    path      string                     true  "QR token"
// @Param        request  body      request.SubmitWishRequest  true  "request body"
// @Success      201      {object}  response.Submitted
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /public/qrs/{token}/wishes [post]
func (h *PublicHandler) HandleSubmitWish(ctx *gin.Context) {
	var req request.SubmitWishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	qr, err := h.svc.ActiveQr(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		h.renderErr(ctx, "v1.HandleSubmitWish -> h.svc.ActiveQr", err)
		return
	}

	wish, err := h.wishes.SubmitWish(ctx.Request.Context(), qr.ID, req.Message, req.ImageData)
	if err != nil {
		h.renderErr(ctx, "v1.HandleSubmitWish -> h.wishes.SubmitWish", err)
		return
	}

	ctx.JSON(http.StatusCreated, response.Submitted{
		Message: "Thank you for your wish!",
		ID:      wish.ID,
	})
}

// HandleWheelItems godoc
// @Summary      Items on the spin wheel
// @Tags         public
// @Produce      json
// @Param        token  path      string  true  "QR token"
// @Success      200    {array}   domain.WheelItem
// @Failure      404    {object}  response.Err
// @Router       /public/qrs/{token}/items [get]
func (h *PublicHandler) HandleWheelItems(ctx *gin.Context) {
	items, err := h.svc.WheelItems(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		h.renderErr(ctx, "v1.HandleWheelItems -> h.svc.WheelItems", err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleCheckPin godoc
// @Summary      Check and use up a PIN
// @Description  An unused PIN is marked used, so a second check reports false.
// @Tags         public
// @Produce      json
// @Param        token  path      string  true  "QR token"
// @Param        pin    path      string  true  "PIN"
// @Success      200    {object}  response.PinCheck
// @Failure      404    {object}  response.Err
// @Router       /public/qrs/{token}/pins/{pin}/check [get]
func (h *PublicHandler) HandleCheckPin(ctx *gin.Context) {
	ok, err := h.svc.CheckPin(ctx.Request.Context(), ctx.Param("token"), ctx.Param("pin"))
	if err != nil {
		h.renderErr(ctx, "v1.HandleCheckPin -> h.svc.CheckPin", err)
		return
	}

	ctx.JSON(http.StatusOK, response.PinCheck{Exists: ok})
}

// HandleSpin godoc
// @Summary      Spin the wheel with a PIN
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        token    path      string               true  "QR token"
// @Param        request  body      request.SpinRequest  true  "request body"
// @Success      200      {object}  domain.SpinResult
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /public/qrs/{token}/spin [post]
func (h *PublicHandler) HandleSpin(ctx *gin.Context) {
	var req request.SpinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Spin(ctx.Request.Context(), ctx.Param("token"), req.Pin)
	if err != nil {
		if errors.Is(err, service.ErrNoPrizesLeft) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}

		h.renderErr(ctx, "v1.HandleSpin -> h.svc.Spin", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// renderErr reports unknown and inactive QR codes by their token.
func (h *PublicHandler) renderErr(ctx *gin.Context, op string, err error) {
	if errors.Is(err, service.ErrQrNotFound) {
		response.RenderErr(ctx, response.ErrNotFound("qr", "token", ctx.Param("token")))
		return
	}

	renderServiceErr(ctx, op, err)
}
