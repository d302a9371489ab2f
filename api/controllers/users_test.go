package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	registered *auth.RegisterRequest
	result     *auth.TokenResponse
	profile    *users.UserDTO
	err        error
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	s.registered = &req
	return s.result, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	return s.result, s.err
}

func (s *stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func TestUsersRegisterCreated(t *testing.T) {
	svc := &stubAuthService{result: &auth.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &users.UserDTO{ID: uuid.New(), Email: "ada@example.com"},
	}}
	body := `{"name":"Ada","email":"ada@example.com","password":"longenough"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	UsersRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(tokenHeader) != "access" {
		t.Fatalf("expected access token header")
	}
	if svc.registered == nil || svc.registered.Name != "Ada" {
		t.Fatalf("unexpected register call %+v", svc.registered)
	}
	var envelope struct {
		Data auth.TokenResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh" || envelope.Data.User == nil {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestUsersRegisterValidation(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(`{"name":"Ada","email":"nope","password":"short"}`))
	rec := httptest.NewRecorder()
	UsersRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.registered != nil {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestUsersRegisterDuplicateEmail(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	body := `{"name":"Ada","email":"ada@example.com","password":"longenough"}`
	rec := httptest.NewRecorder()
	UsersRegister(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestUsersLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	body := `{"email":"ada@example.com","password":"wrong"}`
	rec := httptest.NewRecorder()
	UsersLogin(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUsersProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{profile: &users.UserDTO{ID: userID, Email: "ada@example.com"}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	rec := httptest.NewRecorder()
	UsersProfile(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity got %d", rec.Code)
	}

	req = req.WithContext(middleware.WithUser(req.Context(), userID.String(), "customer"))
	rec = httptest.NewRecorder()
	UsersProfile(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != userID {
		t.Fatalf("unexpected user %s", envelope.Data.ID)
	}
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Storefront-Env") != "test" {
		t.Fatalf("unexpected live response %d %q", rec.Code, rec.Header().Get("X-Storefront-Env"))
	}
}
