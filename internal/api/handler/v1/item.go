package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type ItemService interface {
	ListItems(ctx context.Context, qrID uint, filter domain.ItemFilter, page int) (domain.Page[domain.Item], error)
	CreateItem(ctx context.Context, item domain.Item, initialStock decimal.Decimal, createdBy uint) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	DeleteItem(ctx context.Context, qrID, id uint) error
}

type ItemHandler struct {
	svc ItemService
}

func NewItemHandler(svc ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// HandleListItems godoc
// @Summary      List the prize items of a QR code
// @Tags         items
// @Produce      json
// @Param        qrID    path      int     true   "QR ID"
// @Param        search  query     string  false  "name, sku or color"
// @Param        page    query     int     false  "page"
// @Success      200     {object}  response.Paginated[domain.Item]
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/items [get]
// @Security BearerAuth
func (h *ItemHandler) HandleListItems(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	items, err := h.svc.ListItems(ctx.Request.Context(), qrID, domain.ItemFilter{Search: ctx.Query("search")}, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListItems -> h.svc.ListItems", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(items))
}

// HandleCreateItem godoc
// @Summary      Add an item
// @Description  A positive initial_stock is booked as an "in" transaction.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                  true  "QR ID"
// @Param        request  body      request.ItemRequest  true  "request body"
// @Success      201      {object}  domain.Item
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/items [post]
// @Security BearerAuth
func (h *ItemHandler) HandleCreateItem(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ItemRequest
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

	item, err := h.svc.CreateItem(ctx.Request.Context(), domain.Item{
		QrID:  qrID,
		Name:  req.Name,
		SKU:   req.SKU,
		Color: req.Color,
	}, req.InitialStock, user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateItem -> h.svc.CreateItem", err)
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

// HandleUpdateItem godoc
// @Summary      Update an item
// @Description  The balance only moves through stock transactions.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                  true  "QR ID"
// @Param        itemID   path      int                  true  "Item ID"
// @Param        request  body      request.ItemRequest  true  "request body"
// @Success      200      {object}  domain.Item
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/items/{itemID} [put]
// @Security BearerAuth
func (h *ItemHandler) HandleUpdateItem(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.UpdateItem(ctx.Request.Context(), domain.Item{
		ID:    id,
		QrID:  qrID,
		Name:  req.Name,
		SKU:   req.SKU,
		Color: req.Color,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateItem -> h.svc.UpdateItem", err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleDeleteItem godoc
// @Summary      Delete an item
// @Tags         items
// @Produce      json
// @Param        qrID    path      int  true  "QR ID"
// @Param        itemID  path      int  true  "Item ID"
// @Success      200     {object}  response.Message
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/items/{itemID} [delete]
// @Security BearerAuth
func (h *ItemHandler) HandleDeleteItem(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	id, respErr := pathID(ctx, "itemID", "item")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteItem(ctx.Request.Context(), qrID, id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteItem -> h.svc.DeleteItem", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Item deleted."})
}
