package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type StockService interface {
	ListTransactions(ctx context.Context, qrID uint, filter domain.StockTransactionFilter, page int) (domain.Page[domain.StockTransaction], error)
	RecordTransaction(ctx context.Context, movement domain.StockTransaction) (domain.StockTransaction, error)
}

type StockHandler struct {
	svc StockService
}

func NewStockHandler(svc StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// HandleListTransactions godoc
// @Summary      List stock movements of a QR code
// @Tags         stock
// @Produce      json
// @Param        qrID     path      int     true   "QR ID"
// @Param        item_id  query     int     false  "item"
// @Param        type     query     string  false  "in, out or adjust"
// @Param        page     query     int     false  "page"
// @Success      200      {object}  response.Paginated[domain.StockTransaction]
// @Failure      404      {object}  response.Err
// @Router       /qrs/{qrID}/stock-transactions [get]
// @Security BearerAuth
func (h *StockHandler) HandleListTransactions(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.StockTransactionFilter{Type: ctx.Query("type")}
	if itemID, err := strconv.ParseUint(ctx.Query("item_id"), 10, 32); err == nil {
		filter.ItemID = uint(itemID)
	}

	txs, err := h.svc.ListTransactions(ctx.Request.Context(), qrID, filter, queryPage(ctx))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListTransactions -> h.svc.ListTransactions", err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewPaginated(txs))
}

// HandleRecordTransaction godoc
// @Summary      Book a stock movement
// @Description  "in" and "adjust" add the quantity, "out" takes it away.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                              true  "QR ID"
// @Param        request  body      request.StockTransactionRequest  true  "request body"
// @Success      201      {object}  domain.StockTransaction
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/stock-transactions [post]
// @Security BearerAuth
func (h *StockHandler) HandleRecordTransaction(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockTransactionRequest
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

	tx, err := h.svc.RecordTransaction(ctx.Request.Context(), domain.StockTransaction{
		ItemID:    req.ItemID,
		QrID:      qrID,
		Type:      domain.StockTransactionType(req.Type),
		Quantity:  req.Quantity,
		Note:      req.Note,
		CreatedBy: &user.ID,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRecordTransaction -> h.svc.RecordTransaction", err)
		return
	}

	ctx.JSON(http.StatusCreated, tx)
}
