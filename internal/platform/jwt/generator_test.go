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

			gen, ok := NewGenerator(tt.secret, tt.expiration).(*generator)
			if !ok {
				t.Fatal("expected *generator")
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

	issued := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		subject    string
		scopes     []string
		wantScope  string
		expiration time.Duration
	}{
		{"run operator", "ops", []string{ScopeRun}, "metrics:run", time.Hour},
		{"several scopes", "ci", []string{ScopeRun, "metrics:read"}, "metrics:run metrics:read", time.Hour},
		{"no scope", "viewer", nil, "", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator("test-secret", tt.expiration).(*generator)
			gen.now = func() time.Time { return issued }

			tokenStr, err := gen.GenerateToken(tt.subject, tt.scopes...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			}, jwt.WithTimeFunc(func() time.Time { return issued }))
			if err != nil {
				t.Fatalf("failed to parse token: %v", err)
			}
			if token.Method != jwt.SigningMethodHS256 {
				t.Errorf("expected HS256, got %v", token.Method.Alg())
			}

			claims := token.Claims.(jwt.MapClaims)
			if claims["sub"] != tt.subject {
				t.Errorf("expected sub %q, got %v", tt.subject, claims["sub"])
			}
			if claims["scope"] != tt.wantScope {
				t.Errorf("expected scope %q, got %v", tt.wantScope, claims["scope"])
			}
			if exp := int64(claims["exp"].(float64)); exp != issued.Add(tt.expiration).Unix() {
				t.Errorf("expected exp %d, got %d", issued.Add(tt.expiration).Unix(), exp)
			}
			if iat := int64(claims["iat"].(float64)); iat != issued.Unix() {
				t.Errorf("expected iat %d, got %d", issued.Unix(), iat)
			}
		})
	}
}

// TestGenerator_GenerateToken_Invalid は空のシークレットやサブジェクトが拒否されることを検証します。
func TestGenerator_GenerateToken_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator("", time.Hour).GenerateToken("ops"); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewGenerator("secret", time.Hour).GenerateToken("  "); err == nil {
		t.Error("expected error for empty subject")
	}
}
