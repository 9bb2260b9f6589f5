package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "42",
		"email": "alice@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, c
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed := signToken(t, jwt.SigningMethodHS256, []byte("secret"), validClaims())

	rec, called, c := runAuth(t, "Bearer "+signed)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Get(CtxUserID) != int64(42) {
		t.Fatalf("user_id not set: %v", c.Get(CtxUserID))
	}
	if c.Get(CtxEmail) != "alice@example.com" {
		t.Fatalf("email not set")
	}
	if c.Get(CtxRole) != "admin" {
		t.Fatalf("role not set")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	badSub := validClaims()
	badSub["sub"] = "alice"

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"garbage token":   "Bearer not-a-token",
		"wrong secret":    "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong algorithm": "Bearer " + signToken(t, jwt.SigningMethodHS384, []byte("secret"), validClaims()),
		"expired":         "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("secret"), expired),
		"no expiry":       "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("secret"), noExp),
		"non-numeric sub": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("secret"), badSub),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, called, _ := runAuth(t, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
