package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type FormResponseService interface {
	ListResponses(ctx context.Context, qrID uint, filter domain.FormResponseFilter, page int) (domain.Page[domain.FormResponse], error)
	GetResponse(ctx context.Context, qrID, id uint) (domain.FormResponse, error)
	UpdateStatus(ctx context.Context, qrID, id uint, status domain.FormResponseStatus) (domain.FormResponse, error)
	DeleteResponse(ctx context.Context, qrID, id uint) error
}

type FormResponseHandler struct {
	svc FormResponseService
}

func NewFormResponseHandler(svc FormResponseService) *FormResponseHandler {
	return &FormResponseHandler{svc: svc}
}

// HandleListResponses godoc
// @Summary      List form submissions of a QR code
// @Tags         responses
// @Produce      json
// @Param        qrID    path      int     true   "QR ID"
// @Param        search  query     string  false  "user identifier or answer text"
// @Param        status  query     string  false  "new, reviewed or archived"
// @Param        page    query     int     false  "page"
// @Success      200     {object}  response.Paginated[domain.FormResponse]
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/responses [get]
// @Security BearerAuth
func (h *FormResponseHandler) HandleListResponses(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.FormResponseFilter{
		Search: ctx.Query("search"),
		Status: ctx.Query("status"),
	}

	responses, err := h.svc.ListResponses(ctx.Request.Context(), qrID, filter, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListResponses -> h.svc.ListResponses", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(responses))
}

// HandleGetResponse godoc
// @Summary      Get one submission with its answers
// @Tags         responses
// @Produce      json
// @Param        qrID        path      int  true  "QR ID"
// @Param        responseID  path      int  true  "Response ID"
// @Success      200         {object}  domain.FormResponse
// @Failure      404         {object}  response.Err
// @Router       /qrs/{qrID}/responses/{responseID} [get]
// @Security BearerAuth
func (h *FormResponseHandler) HandleGetResponse(ctx *gin.Context) {
	qrID, id, respErr := responsePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	resp, err := h.svc.GetResponse(ctx.Request.Context(), qrID, id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetResponse -> h.svc.GetResponse", err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleUpdateResponseStatus godoc
// @Summary      Change the review status of a submission
// @Tags         responses
// @Accept       json
// @Produce      json
// @Param        qrID        path      int                            true  "QR ID"
// @Param        responseID  path      int                            true  "Response ID"
// @Param        request     body      request.ResponseStatusRequest  true  "request body"
// @Success      200         {object}  domain.FormResponse
// @Failure      404         {object}  response.Err
// @Failure      422         {object}  response.Err
// @Router       /qrs/{qrID}/responses/{responseID} [patch]
// @Security BearerAuth
func (h *FormResponseHandler) HandleUpdateResponseStatus(ctx *gin.Context) {
	qrID, id, respErr := responsePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ResponseStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	resp, err := h.svc.UpdateStatus(ctx.Request.Context(), qrID, id, domain.FormResponseStatus(req.Status))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateResponseStatus -> h.svc.UpdateStatus", err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleDeleteResponse godoc
// @Summary      Delete a submission
// @Tags         responses
// @Produce      json
// @Param        qrID        path      int  true  "QR ID"
// @Param        responseID  path      int  true  "Response ID"
// @Success      200         {object}  response.Message
// @Failure      404         {object}  response.Err
// @Router       /qrs/{qrID}/responses/{responseID} [delete]
// @Security BearerAuth
func (h *FormResponseHandler) HandleDeleteResponse(ctx *gin.Context) {
	qrID, id, respErr := responsePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteResponse(ctx.Request.Context(), qrID, id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteResponse -> h.svc.DeleteResponse", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Response deleted."})
}

func responsePath(ctx *gin.Context) (uint, uint, *response.Err) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		return 0, 0, respErr
	}
	id, respErr := pathID(ctx, "responseID", "response")
	if respErr != nil {
		return 0, 0, respErr
	}

	return qrID, id, nil
}
