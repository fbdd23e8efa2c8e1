package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/request"
	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

type QuestionService interface {
	ListQuestions(ctx context.Context, qrID uint, filter domain.QuestionFilter) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, qrID, id uint) error
}

type QuestionHandler struct {
	svc QuestionService
}

func NewQuestionHandler(svc QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// HandleListQuestions godoc
// @Summary      List the form questions of a QR code
// @Tags         questions
// @Produce      json
// @Param        qrID    path      int     true   "QR ID"
// @Param        search  query     string  false  "label"
// @Param        type    query     string  false  "question type"
// @Success      200     {array}   domain.Question
// @Failure      404     {object}  response.Err
// @Router       /qrs/{qrID}/questions [get]
// @Security BearerAuth
func (h *QuestionHandler) HandleListQuestions(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	questions, err := h.svc.ListQuestions(ctx.Request.Context(), qrID, domain.QuestionFilter{
		Search: ctx.Query("search"),
		Type:   ctx.Query("type"),
	})
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListQuestions -> h.svc.ListQuestions", err)
		return
	}

	ctx.JSON(http.StatusOK, questions)
}

// HandleCreateQuestion godoc
// @Summary      Add a question to a QR form
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        qrID     path      int                      true  "QR ID"
// @Param        request  body      request.QuestionRequest  true  "request body"
// @Success      201      {object}  domain.Question
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Router       /qrs/{qrID}/questions [post]
// @Security BearerAuth
func (h *QuestionHandler) HandleCreateQuestion(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	req, ok := bindQuestion(ctx)
	if !ok {
		return
	}

	question, err := h.svc.CreateQuestion(ctx.Request.Context(), req.toQuestion(qrID, 0))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateQuestion -> h.svc.CreateQuestion", err)
		return
	}

	ctx.JSON(http.StatusCreated, question)
}

// HandleUpdateQuestion godoc
// @Summary      Update a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        qrID        path      int                      true  "QR ID"
// @Param        questionID  path      int                      true  "Question ID"
// @Param        request     body      request.QuestionRequest  true  "request body"
// @Success      200         {object}  domain.Question
// @Failure      404         {object}  response.Err
// @Failure      422         {object}  response.Err
// @Router       /qrs/{qrID}/questions/{questionID} [put]
// @Security BearerAuth
func (h *QuestionHandler) HandleUpdateQuestion(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	id, respErr := pathID(ctx, "questionID", "question")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	req, ok := bindQuestion(ctx)
	if !ok {
		return
	}

	question, err := h.svc.UpdateQuestion(ctx.Request.Context(), req.toQuestion(qrID, id))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateQuestion -> h.svc.UpdateQuestion", err)
		return
	}

	ctx.JSON(http.StatusOK, question)
}

// HandleDeleteQuestion godoc
// @Summary      Delete a question
// @Tags         questions
// @Produce      json
// @Param        qrID        path      int  true  "QR ID"
// @Param        questionID  path      int  true  "Question ID"
// @Success      200         {object}  response.Message
// @Failure      404         {object}  response.Err
// @Router       /qrs/{qrID}/questions/{questionID} [delete]
// @Security BearerAuth
func (h *QuestionHandler) HandleDeleteQuestion(ctx *gin.Context) {
	qrID, respErr := pathID(ctx, "qrID", "qr")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	id, respErr := pathID(ctx, "questionID", "question")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteQuestion(ctx.Request.Context(), qrID, id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteQuestion -> h.svc.DeleteQuestion", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Question deleted."})
}

type questionBody struct {
	request.QuestionRequest
}

func bindQuestion(ctx *gin.Context) (questionBody, bool) {
	var req request.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return questionBody{}, false
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return questionBody{}, false
	}

	return questionBody{req}, true
}

func (b questionBody) toQuestion(qrID, id uint) domain.Question {
	return domain.Question{
		ID:         id,
		QrID:       qrID,
		Label:      b.Label,
		Type:       domain.QuestionType(b.Type),
		IsRequired: b.IsRequired,
		Options:    b.Options,
		SortOrder:  b.SortOrder,
	}
}
