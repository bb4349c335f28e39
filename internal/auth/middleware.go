package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	cookieName   = "auth_token"
	ctxPrincipal = "principal"
)

func bearer(c *gin.Context) string {
	if tok, err := c.Cookie(cookieName); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate resolves the caller from a bearer token or the auth cookie and
// stores the Principal on the context. Anything else is a 401.
func Authenticate(tokens *Tokens, store PrincipalStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token not provided"})
			return
		}
		userID, err := tokens.Parse(raw)
		if err != nil {
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		p, err := store.Lookup(c.Request.Context(), userID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrUnauthorized) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "User from token not found"})
			return
		}
		c.Set(ctxPrincipal, *p)
		c.Next()
	}
}

// Require lets the request through only if the principal holds capability.
func Require(authz Authorizer, capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		if err := authz.Authorize(c.Request.Context(), p, capability); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Authenticator checks a login/password pair; *Users satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*User, error)
}

// LoginHandler issues a token and sets it as an http-only cookie.
func LoginHandler(users Authenticator, tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in loginRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u, err := users.Authenticate(c.Request.Context(), in.Login, in.Password)
		if err != nil {
			if errors.Is(err, ErrBadPassword) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		tok, err := tokens.Issue(u.Principal())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.SetCookie(cookieName, tok, int(tokens.ttl.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"token": tok, "role": u.Role})
	}
}
