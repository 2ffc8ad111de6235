package session

import (
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
)

func TestIssueAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	signer := NewSigner("super-secret", time.Hour, false)
	id := Identity{UserID: "user-123", Email: "a@x.com"}

	tok, err := signer.Issue(id)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := signer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != id {
		t.Fatalf("identity mismatch: got %+v want %+v", got, id)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewSigner("right-secret", time.Hour, false).Issue(Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := NewSigner("wrong-secret", time.Hour, false).Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, false)
	tok, err := signer.Issue(Identity{UserID: "u1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}

	// Flip one byte of the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := signer.Verify(tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", -time.Second, false)
	// NewSigner clamps non-positive TTLs, so build an already expired signer
	// explicitly.
	signer.ttl = -time.Second

	tok, err := signer.Issue(Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := signer.Verify(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_TotalOverGarbage(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, false)
	for _, input := range []string{"", "not.a.jwt", "a.b", strings.Repeat("x", 4096), "...."} {
		if _, err := signer.Verify(input); err != ErrInvalidToken {
			t.Fatalf("input %q: expected ErrInvalidToken, got %v", input, err)
		}
	}
}

func TestSetCookie_Attributes(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", 7*24*time.Hour, false)
	ctx := &fasthttp.RequestCtx{}
	signer.SetCookie(ctx, "tok-value")

	header := string(ctx.Response.Header.PeekCookie(CookieName))
	if header == "" {
		t.Fatal("expected Set-Cookie header")
	}
	for _, want := range []string{"token=tok-value", "HttpOnly", "SameSite=Lax", "max-age=604800", "path=/"} {
		if !strings.Contains(strings.ToLower(header), strings.ToLower(want)) {
			t.Fatalf("cookie %q missing %q", header, want)
		}
	}
	if strings.Contains(strings.ToLower(header), "secure") {
		t.Fatalf("cookie should not be Secure outside production: %q", header)
	}
}

func TestClearCookie_Expires(t *testing.T) {
	t.Parallel()

	signer := NewSigner("secret", time.Hour, true)
	ctx := &fasthttp.RequestCtx{}
	signer.ClearCookie(ctx)

	header := strings.ToLower(string(ctx.Response.Header.PeekCookie(CookieName)))
	if header == "" {
		t.Fatal("expected Set-Cookie header")
	}
	if !strings.Contains(header, "secure") {
		t.Fatalf("production cookie should be Secure: %q", header)
	}
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	ctx := &fasthttp.RequestCtx{}
	if got := TokenFromRequest(ctx); got != "" {
		t.Fatalf("expected empty token without cookie, got %q", got)
	}

	ctx.Request.Header.SetCookie(CookieName, "abc")
	if got := TokenFromRequest(ctx); got != "abc" {
		t.Fatalf("expected %q, got %q", "abc", got)
	}
}
