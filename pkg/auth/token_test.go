package auth

import (
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: enums.UserRoleCustomer, JTI: "access-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti access-1, got %q", claims.ID)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	wantExp := now.Add(30 * time.Minute).Unix()
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != wantExp {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected generated uuid jti, got %q", claims.ID)
	}
}

func TestMintAccessTokenRejectsBadInput(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "root"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.UserRoleCustomer}); err == nil {
		t.Fatal("expected missing user id error")
	}
	noSecret := cfg
	noSecret.Secret = ""
	if _, err := MintAccessToken(noSecret, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestParseAccessTokenRejectsExpiredAndForeign(t *testing.T) {
	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow-expired parse failed: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected jti on expired token")
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessTokenAllowExpired(other, token); err == nil {
		t.Fatal("expected signature mismatch")
	}
	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	if _, err := ParseAccessTokenAllowExpired(otherIssuer, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}
