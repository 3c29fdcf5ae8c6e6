package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gourmetpress/gourmetpress-backend/pkg/config"
	"github.com/gourmetpress/gourmetpress-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gourmetpress",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	actorID := uuid.New()
	locationID := uuid.New()

	payload := AccessTokenPayload{
		ActorID:    actorID,
		Role:       enums.ActorRoleStaff,
		LocationID: &locationID,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.ActorID != actorID {
		t.Fatalf("expected actor_id %s, got %s", actorID, claims.ActorID)
	}
	if claims.Role != enums.ActorRoleStaff {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.LocationID == nil || *claims.LocationID != locationID {
		t.Fatalf("location id not preserved")
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
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gourmetpress",
		ExpirationMinutes: 10,
	}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.ActorRoleDriver,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gourmetpress",
		ExpirationMinutes: 15,
	}
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "gourmetpress",
		ExpirationMinutes: 5,
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    "",
	}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
