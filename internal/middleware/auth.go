package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskhive/backend/api/transport"
	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/session"
)

// UserKey is the request-scoped key under which the resolved identity is stored.
const UserKey = "current_user"

// UserResolver turns a presented session token into a full identity record.
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// SessionAuth is the single authorization gate in front of every protected
// route. Missing cookie, bad signature, expired token, and deleted identity
// all produce the same 401 body; no failure mode leaks which one occurred.
func SessionAuth(resolver UserResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := session.TokenFromRequest(ctx)

			user, err := resolver.ResolveCurrentUser(ctx, token)
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("identity resolution failed", zap.Error(err))
					respond(ctx, http.StatusInternalServerError,
						transport.NewError(string(domain.ErrCodeInternal), "internal error", nil))
					return
				}
				respond(ctx, http.StatusUnauthorized,
					transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrNotAuthenticated.Message, nil))
				return
			}

			ctx.SetUserValue(UserKey, user)
			next(ctx)
		}
	}
}

// CurrentUser retrieves the identity stored by SessionAuth, or nil when the
// request never passed the gate.
func CurrentUser(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(UserKey).(*domain.User)
	return user
}

func respond(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
