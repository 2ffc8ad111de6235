package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
)

// CookieName is the transport cookie carrying the session token.
const CookieName = "token"

// DefaultTTL is the fixed validity window of an issued token.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken collapses every verification failure (missing, malformed,
// bad signature, expired) into a single signal so callers cannot distinguish
// the root cause.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the claim set embedded at issuance. It is trusted on
// verification without re-reading storage, so it stays minimal.
type Identity struct {
	UserID string
	Email  string
}

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Signer mints and verifies HMAC-signed session tokens. There is no
// server-side session table; the token is the whole session.
type Signer struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSigner builds a Signer. secure marks issued cookies Secure and should be
// set for production transports.
func NewSigner(secret string, ttl time.Duration, secure bool) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// TTL returns the configured validity window.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token binding the identity for the configured window.
func (s *Signer) Issue(id Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: id.UserID,
		Email:  id.Email,
	})
	return token.SignedString(s.secret)
}

// Verify resolves a presented token back to the identity embedded at issuance.
// It is total over all string inputs: any failure yields ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || parsed.UserID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: parsed.UserID, Email: parsed.Email}, nil
}

// SetCookie attaches the token to the response as an http-only, same-site-lax
// cookie with a max-age matching the token validity.
func (s *Signer) SetCookie(ctx *fasthttp.RequestCtx, token string) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(CookieName)
	c.SetValue(token)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetMaxAge(int(s.ttl.Seconds()))
	c.SetSecure(s.secure)

	ctx.Response.Header.SetCookie(c)
}

// ClearCookie expires the session cookie. This is the whole of logout: a
// token copied elsewhere stays valid until its natural expiry.
func (s *Signer) ClearCookie(ctx *fasthttp.RequestCtx) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(CookieName)
	c.SetValue("")
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(fasthttp.CookieExpireDelete)
	c.SetSecure(s.secure)

	ctx.Response.Header.SetCookie(c)
}

// TokenFromRequest extracts the session token from the request cookie jar.
func TokenFromRequest(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Cookie(CookieName))
}
