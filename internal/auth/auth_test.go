package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleAuthorizer(t *testing.T) {
	a := NewRoleAuthorizer()
	ctx := context.Background()

	tests := []struct {
		role Role
		cap  Capability
		ok   bool
	}{
		{RoleAdmin, CapFinanceAdmin, true},
		{RoleAdmin, CapStockWrite, true},
		{RoleClerk, CapStockWrite, true},
		{RoleClerk, CapPartiesWrite, true},
		{RoleClerk, CapFinanceRead, false},
		{RoleClerk, CapReportsRead, false},
		{RoleAccountant, CapFinanceWrite, true},
		{RoleAccountant, CapReportsRead, true},
		{RoleAccountant, CapStockWrite, false},
		{RoleAccountant, CapFinanceAdmin, false},
		{"", CapStockRead, false},
	}
	for _, tt := range tests {
		err := a.Authorize(ctx, Principal{UserID: 1, Role: tt.role}, tt.cap)
		if tt.ok {
			assert.NoError(t, err, "%s %s", tt.role, tt.cap)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s", tt.role, tt.cap)
		}
	}
}

func TestTokens(t *testing.T) {
	tk := NewTokens("s3cret", time.Hour)
	tok, err := tk.Issue(Principal{UserID: 42, Login: "tendai", Role: RoleClerk})
	require.NoError(t, err)

	id, err := tk.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = NewTokens("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = tk.Parse(tok + "x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	tk.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tk.Parse(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("treated-pine")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "treated-pine"))
	assert.False(t, CheckPassword(h, "untreated"))
}

type staticStore map[int64]Principal

func (s staticStore) Lookup(_ context.Context, id int64) (*Principal, error) {
	p, ok := s[id]
	if !ok {
		return nil, ErrUnauthorized
	}
	return &p, nil
}

func newProtectedRouter(tk *Tokens, store PrincipalStore, capability Capability) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api", Authenticate(tk, store))
	g.GET("/thing", Require(NewRoleAuthorizer(), capability), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.String(http.StatusOK, p.Login)
	})
	return r
}

func TestMiddleware(t *testing.T) {
	tk := NewTokens("s3cret", time.Hour)
	store := staticStore{
		1: {UserID: 1, Login: "clerk", Role: RoleClerk},
		2: {UserID: 2, Login: "books", Role: RoleAccountant},
	}
	r := newProtectedRouter(tk, store, CapStockWrite)

	clerkTok, _ := tk.Issue(store[1])
	booksTok, _ := tk.Issue(store[2])
	ghostTok, _ := tk.Issue(Principal{UserID: 99, Login: "ghost", Role: RoleAdmin})

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"malformed header", "Token " + clerkTok, "", http.StatusUnauthorized},
		{"clerk via header", "Bearer " + clerkTok, "", http.StatusOK},
		{"clerk via cookie", "", clerkTok, http.StatusOK},
		{"accountant lacks capability", "Bearer " + booksTok, "", http.StatusForbidden},
		{"unknown user", "Bearer " + ghostTok, "", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/thing", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type fakeAuthenticator struct{ user User }

func (f fakeAuthenticator) Authenticate(_ context.Context, login, password string) (*User, error) {
	if login != f.user.Login || password != "pw" {
		return nil, ErrBadPassword
	}
	u := f.user
	return &u, nil
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tk := NewTokens("s3cret", time.Hour)
	r := gin.New()
	r.POST("/login", LoginHandler(fakeAuthenticator{user: User{ID: 5, Login: "admin", Role: RoleAdmin, Active: true}}, tk))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"admin","password":"pw"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), cookieName+"=")
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"admin","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"admin"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
