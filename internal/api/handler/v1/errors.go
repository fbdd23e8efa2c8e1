package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/service"
)

type missing struct {
	err      error
	resource string
	param    string
}

// notFound maps the service sentinels onto the path parameter naming the
// missing resource.
var notFound = []missing{
	{service.ErrQrNotFound, "qr", "qrID"},
	{service.ErrQuestionNotFound, "question", "questionID"},
	{service.ErrItemNotFound, "item", "itemID"},
	{service.ErrFormResponseNotFound, "response", "responseID"},
	{service.ErrWishNotFound, "wish", "wishID"},
	{service.ErrPlanNotFound, "plan", "planID"},
	{service.ErrUserNotFound, "user", "userID"},
	{service.ErrQrBatchNotFound, "qr batch", "batchID"},
	{service.ErrWishImageExportNotFound, "wish image export", "exportID"},
	{service.ErrNotificationNotFound, "notification", "notificationID"},
}

// renderServiceErr renders field errors as 422, missing resources as 404 and
// anything else as 500 logged under op.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.RenderErr(ctx, response.ErrValidation(verrs))
		return
	}

	for _, m := range notFound {
		if errors.Is(err, m.err) {
			response.RenderErr(ctx, response.ErrNotFound(m.resource, "id", ctx.Param(m.param)))
			return
		}
	}

	response.RenderErr(ctx, internalErr(op, err))
}
