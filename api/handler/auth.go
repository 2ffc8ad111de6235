package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/session"
	"github.com/taskhive/backend/pkg/httpcontext"
	authUC "github.com/taskhive/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	signer *session.Signer
}

func NewAuthHandler(uc *authUC.UseCase, signer *session.Signer, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		signer:      signer,
	}
}

// Register creates an identity and opens a session for it.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, token, err := h.uc.Register(stdCtx, req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.signer.SetCookie(ctx, token)
	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{"user": user.Public()})
}

// Login verifies credentials and opens a session. A failed login leaves any
// existing cookie untouched.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, token, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.signer.SetCookie(ctx, token)
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user": user.Public()})
}

// Me returns the resolved identity behind the session cookie.
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user": user.Public()})
}

// Logout clears the cookie. The token itself stays valid until expiry; there
// is no server-side revocation list.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	h.signer.ClearCookie(ctx)
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"message": "logged out"})
}
