package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"long expiration", "secret", 24 * time.Hour * 30},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			if gen == nil {
				t.Fatal("expected generator to be non-nil")
			}
			if string(gen.secret) != tt.secret {
				t.Errorf("expected secret %q, got %q", tt.secret, string(gen.secret))
			}
			if gen.expiration != tt.expiration {
				t.Errorf("expected expiration %v, got %v", tt.expiration, gen.expiration)
			}
		})
	}
}

// TestGenerator_GenerateToken は生成されたJWTトークンが有効で正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	issued := time.Now().Truncate(time.Second)
	gen := NewGenerator(secret, 2*time.Hour)
	gen.now = func() time.Time { return issued }

	tokenStr, err := gen.GenerateToken("operator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got err=%v", err)
	}
	if claims.Subject != "operator" {
		t.Errorf("expected subject operator, got %q", claims.Subject)
	}
	if claims.Issuer != Issuer {
		t.Errorf("expected issuer %q, got %q", Issuer, claims.Issuer)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(2 * time.Hour)) {
		t.Errorf("expected exp %v, got %v", issued.Add(2*time.Hour), claims.ExpiresAt.Time)
	}
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		t.Errorf("expected HS256, got %s", token.Method.Alg())
	}
}

// TestGenerator_EmptySecret は鍵が空の場合にトークンを発行しないことを検証します。
func TestGenerator_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator("", time.Hour).GenerateToken("operator"); err != ErrEmptySecret {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
}
