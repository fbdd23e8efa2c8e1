package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type PlanService interface {
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	CreatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	UpdatePlan(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	DeletePlan(ctx context.Context, id uint) error
}

type PlanHandler struct {
	svc PlanService
}

func NewPlanHandler(svc PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

// HandleListPlans godoc
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Success      200  {array}   domain.Plan
// @Router       /plans [get]
// @Security BearerAuth
func (h *PlanHandler) HandleListPlans(ctx *gin.Context) {
	plans, err := h.svc.ListPlans(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListPlans -> h.svc.ListPlans", err)
		return
	}

	ctx.JSON(http.StatusOK, plans)
}

// HandleCreatePlan godoc
// @Summary      Create a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request  body      request.PlanRequest  true  "request body"
// @Success      201      {object}  domain.Plan
// @Failure      422      {object}  response.Err
// @Router       /plans [post]
// @Security BearerAuth
func (h *PlanHandler) HandleCreatePlan(ctx *gin.Context) {
	var req request.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	plan, err := h.svc.CreatePlan(ctx.Request.Context(), domain.Plan{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Detail:      req.Detail,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreatePlan -> h.svc.CreatePlan", err)
		return
	}

	ctx.JSON(http.StatusCreated, plan)
}

// HandleUpdatePlan godoc
// @Summary      Update a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        planID   path      int                  true  "Plan ID"
// @Param        request  body      request.PlanRequest  true  "request body"
// @Success      200      {object}  domain.Plan
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /plans/{planID} [put]
// @Security BearerAuth
func (h *PlanHandler) HandleUpdatePlan(ctx *gin.Context) {
	id, respErr := pathID(ctx, "planID", "plan")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	plan, err := h.svc.UpdatePlan(ctx.Request.Context(), domain.Plan{
		ID:          id,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Detail:      req.Detail,
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdatePlan -> h.svc.UpdatePlan", err)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// HandleDeletePlan godoc
// @Summary      Delete a plan
// @Tags         plans
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  response.Message
// @Failure      404     {object}  response.Err
// @Router       /plans/{planID} [delete]
// @Security BearerAuth
func (h *PlanHandler) HandleDeletePlan(ctx *gin.Context) {
	id, respErr := pathID(ctx, "planID", "plan")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeletePlan(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeletePlan -> h.svc.DeletePlan", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Plan deleted."})
}
