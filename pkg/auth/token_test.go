package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/enums"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "https://meddot.example/auth/v1",
		Audience:          "authenticated",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()
	userID := uuid.NewString()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:    userID,
		Email:     "student@meddot.app",
		Role:      enums.TokenRoleAuthenticated,
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID() != userID {
		t.Fatalf("expected subject %s, got %s", userID, claims.UserID())
	}
	if claims.Email != "student@meddot.app" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != enums.TokenRoleAuthenticated {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "u-1", Role: enums.TokenRoleAuthenticated})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseAccessTokenRejectsWrongAudience(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "u-1", Role: enums.TokenRoleAuthenticated})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Audience = "dashboard"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected audience validation failure")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: "u-1", Role: enums.TokenRoleAuthenticated})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseAccessTokenSubjectRules(t *testing.T) {
	cfg := testConfig()

	userToken, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.TokenRoleAuthenticated})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, userToken); err == nil {
		t.Fatal("expected user token without subject to fail")
	}

	serviceToken, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.TokenRoleServiceRole})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, serviceToken)
	if err != nil {
		t.Fatalf("service token should parse: %v", err)
	}
	if claims.Role != enums.TokenRoleServiceRole {
		t.Fatalf("unexpected role %s", claims.Role)
	}
}

func TestParseAccessTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testConfig()
	claims := AccessTokenClaims{
		Role: enums.TokenRoleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}
