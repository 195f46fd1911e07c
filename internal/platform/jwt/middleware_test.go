package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func run(secret, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/check", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired(secret)(c)
	return w, c
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := run(testSecret, tt.authHeader)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_MissingJWTSecret は署名鍵が未設定の場合に500が返されることを検証します。
func TestAuthRequired_MissingJWTSecret(t *testing.T) {
	w, c := run("", "Bearer anything")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !c.IsAborted() {
		t.Error("expected request to be aborted")
	}
}

// TestAuthRequired_InvalidTokens は不正なトークンが拒否されることを検証します。
func TestAuthRequired_InvalidTokens(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "operator",
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"wrong secret", signed(t, jwt.SigningMethodHS256, []byte("other-secret"), valid)},
		{"expired", signed(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"wrong issuer", signed(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"missing exp", signed(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"other hmac alg", signed(t, jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{"none alg", signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := run(testSecret, "Bearer "+tt.token)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンで次のハンドラへ進み、subject が設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	token, err := NewGenerator(testSecret, time.Hour).GenerateToken("operator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, c := run(testSecret, "Bearer "+token)

	if c.IsAborted() {
		t.Fatalf("expected request to pass, got status %d", w.Code)
	}
	if got := c.GetString(ContextSubject); got != "operator" {
		t.Errorf("expected subject operator, got %q", got)
	}
}
