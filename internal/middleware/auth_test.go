package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/session"
)

type fakeResolver struct {
	user *domain.User
	err  error

	gotToken string
}

func (f *fakeResolver) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	f.gotToken = token
	return f.user, f.err
}

func protectedRequest(t *testing.T, resolver *fakeResolver, cookie string) *fasthttp.RequestCtx {
	t.Helper()

	var reached bool
	handler := SessionAuth(resolver, nil)(func(ctx *fasthttp.RequestCtx) {
		reached = true
		ctx.SetStatusCode(http.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/tasks")
	if cookie != "" {
		ctx.Request.Header.SetCookie(session.CookieName, cookie)
	}
	handler(ctx)

	if ctx.Response.StatusCode() == http.StatusOK && !reached {
		t.Fatal("200 response without the inner handler running")
	}
	return ctx
}

func TestSessionAuth_PassesIdentityThrough(t *testing.T) {
	resolver := &fakeResolver{user: &domain.User{ID: "user-1", Email: "alice@example.com"}}

	ctx := protectedRequest(t, resolver, "valid-token")

	if ctx.Response.StatusCode() != http.StatusOK {
		t.Fatalf("status %d, want 200", ctx.Response.StatusCode())
	}
	if resolver.gotToken != "valid-token" {
		t.Fatalf("resolver saw token %q", resolver.gotToken)
	}
	if user := CurrentUser(ctx); user == nil || user.ID != "user-1" {
		t.Fatalf("identity not stored on request: %+v", user)
	}
}

func TestSessionAuth_UniformUnauthorizedBody(t *testing.T) {
	// Missing cookie and failed resolution must be indistinguishable.
	missing := protectedRequest(t, &fakeResolver{err: domain.ErrNotAuthenticated}, "")
	rejected := protectedRequest(t, &fakeResolver{err: domain.ErrNotAuthenticated}, "expired-or-forged")

	for name, ctx := range map[string]*fasthttp.RequestCtx{"missing": missing, "rejected": rejected} {
		if ctx.Response.StatusCode() != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", name, ctx.Response.StatusCode())
		}
	}
	if string(missing.Response.Body()) != string(rejected.Response.Body()) {
		t.Fatalf("401 bodies differ:\n%s\n%s", missing.Response.Body(), rejected.Response.Body())
	}

	var payload struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(missing.Response.Body(), &payload); err != nil {
		t.Fatalf("401 body is not json: %v", err)
	}
	if payload.Code != string(domain.ErrCodeUnauthorized) {
		t.Fatalf("401 code: got %q", payload.Code)
	}
}

func TestSessionAuth_InfrastructureFailureIsNot401(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("connection refused")}

	ctx := protectedRequest(t, resolver, "valid-token")

	if ctx.Response.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", ctx.Response.StatusCode())
	}
}

func TestCurrentUser_NilWithoutGate(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	if user := CurrentUser(ctx); user != nil {
		t.Fatalf("expected nil, got %+v", user)
	}
}
