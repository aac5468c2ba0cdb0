package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/philiptitus/bridger/internal/testutil"
)

func newTestUser(authID, email string, name *string) *domain.User {
	return &domain.User{
		ID:           uuid.New(),
		AuthID:       authID,
		Email:        email,
		Name:         name,
		AuthProvider: domain.ProviderFromSubject(authID),
	}
}

// Helper to set up auth context
func setupAuthContext(c echo.Context, authID, email, name string) {
	setupAuthContextWithUser(c, authID, email, name, uuid.Nil)
}

// Helper to set up auth context with a resolved user ID
func setupAuthContextWithUser(c echo.Context, authID, email, name string, userID uuid.UUID) {
	customClaims := &middleware.CustomClaims{
		Email: email,
		Name:  name,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: authID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.AuthIDKey, authID)
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "google-oauth2|12345", "new@example.com", "New User")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.IsNewUser {
		t.Error("Expected isNewUser to be true")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email 'new@example.com', got %s", response.User.Email)
	}
	if response.User.AuthProvider != "google" {
		t.Errorf("Expected provider 'google', got %s", response.User.AuthProvider)
	}
}

func TestCallback_ExistingUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	name := "Existing"
	userRepo.AddUser(newTestUser("auth0|existing", "existing@example.com", &name))
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|existing", "existing@example.com", "Existing")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.IsNewUser {
		t.Error("Expected isNewUser to be false")
	}
}

func TestCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|noemail", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestMe_Success(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	user := newTestUser("auth0|me", "me@example.com", nil)
	userRepo.AddUser(user)
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithUser(c, "auth0|me", "me@example.com", "", user.ID)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.User.ID != user.ID.String() {
		t.Errorf("Expected user ID %s, got %s", user.ID, response.User.ID)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
