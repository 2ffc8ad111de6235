package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/httpcontext"
	aiUC "github.com/taskhive/backend/usecase/ai"
)

type AIHandler struct {
	baseHandler
	uc *aiUC.UseCase
}

func NewAIHandler(uc *aiUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// SuggestPriority asks the model for a one-word priority for a draft task.
func (h *AIHandler) SuggestPriority(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.PriorityRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	priority, err := h.uc.SuggestPriority(stdCtx, req.Title, req.Description, req.DueDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"priority": priority})
}

// Suggest returns free-text advice grounded in the caller's recent tasks.
func (h *AIHandler) Suggest(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.SuggestionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	suggestion, err := h.uc.Suggest(stdCtx, user.ID, req.Prompt)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"suggestion": suggestion})
}
