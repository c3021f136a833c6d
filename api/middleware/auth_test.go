package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/tarunagarwal1981/travelhub-backend/pkg/auth"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/config"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

var testJWTConfig = config.JWTConfig{
	Secret: "test-secret",
	Issuer: "travelhub-test",
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.UserRole, ttl time.Duration) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), pkgAuth.TokenPayload{
		UserID: userID,
		Role:   role,
		TTL:    ttl,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func authHandler(t *testing.T, gotActor *pkgAuth.Actor) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			t.Fatal("expected actor in context after auth")
		}
		*gotActor = actor
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testJWTConfig, testLogger())(inner)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := mintToken(t, uuid.New(), enums.UserRoleAgent, -time.Hour)
	handler := Auth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSeedsActor(t *testing.T) {
	userID := uuid.New()
	token := mintToken(t, userID, enums.UserRoleAgent, time.Hour)

	var actor pkgAuth.Actor
	handler := authHandler(t, &actor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if actor.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, actor.UserID)
	}
	if actor.Role != enums.UserRoleAgent {
		t.Fatalf("expected agent role, got %s", actor.Role)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(string(enums.UserRoleAdmin), testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	agentCtx := WithActor(nil, pkgAuth.Actor{UserID: uuid.New(), Role: enums.UserRoleAgent})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin", nil).WithContext(agentCtx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent, got %d", rec.Code)
	}

	adminCtx := WithActor(nil, pkgAuth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin", nil).WithContext(adminCtx)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}
