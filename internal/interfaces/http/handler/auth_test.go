package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/application/identity"
	"github.com/salon-crm/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(e *testEnv) *gin.Engine {
	h := NewAuthHandler(e.base, e.auth)
	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/forgot-password", h.ForgotPassword)
	r.POST("/api/auth/reset-password", h.ResetPassword)
	r.POST("/api/admin/auth/login", h.AdminLogin)

	authed := r.Group("/api/auth", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     e.jwt,
		TokenBlacklist: e.blacklist,
	}))
	authed.GET("/me", h.Me)
	authed.POST("/logout", h.Logout)
	return r
}

type loginData struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	User      struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Business struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"business"`
}

func TestAuthHandler_Login(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: ownerEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData[loginData](t, resp)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "Bearer", data.TokenType)
	assert.Equal(t, ownerEmail, data.User.Email)
	assert.Equal(t, "owner", data.User.Role)
	assert.Equal(t, "Glow Studio", data.Business.Name)
	assert.NotContains(t, w.Body.String(), "passwordHash")
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"wrong password", LoginRequest{Email: ownerEmail, Password: "wrong-password"}, http.StatusUnauthorized, "AUTHENTICATION"},
		{"unknown email", LoginRequest{Email: "nobody@glow.test", Password: testPassword}, http.StatusUnauthorized, "AUTHENTICATION"},
		{"invalid email", LoginRequest{Email: "not-an-email", Password: testPassword}, http.StatusBadRequest, "VALIDATION"},
		{"missing password", map[string]string{"email": ownerEmail}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, r, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	w, resp := serve(t, r, http.MethodGet, "/api/auth/me", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decodeData[loginData](t, resp)
	assert.Equal(t, ownerEmail, profile.User.Email)
	assert.Equal(t, "Glow Studio", profile.Business.Name)

	w, resp = serve(t, r, http.MethodPost, "/api/auth/logout", e.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Logged out successfully", decodeData[MessageResponse](t, resp).Message)

	w, resp = serve(t, r, http.MethodGet, "/api/auth/me", e.token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", resp.Error.Message)
}

func TestAuthHandler_MeRequiresToken(t *testing.T) {
	e := newTestEnv(t)
	w, resp := serve(t, authRouter(e), http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTHENTICATION", resp.Error.Code)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	e := newTestEnv(t)
	r := authRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "nobody@glow.test"})
	require.Equal(t, http.StatusOK, w.Code)
	unknown := decodeData[ForgotPasswordResponse](t, resp)
	assert.Empty(t, unknown.ResetToken)

	w, resp = serve(t, r, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: ownerEmail})
	require.Equal(t, http.StatusOK, w.Code)
	forgot := decodeData[ForgotPasswordResponse](t, resp)
	assert.Equal(t, unknown.Message, forgot.Message)
	require.NotEmpty(t, forgot.ResetToken)

	w, _ = serve(t, r, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: forgot.ResetToken, Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(t, r, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: forgot.ResetToken, Password: "NewPassword456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = serve(t, r, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: forgot.ResetToken, Password: "OtherPassword789"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired reset token", resp.Error.Message)

	w, _ = serve(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: ownerEmail, Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = serve(t, r, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: ownerEmail, Password: "NewPassword456"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	e := newTestEnv(t)
	created, err := e.provisioning.EnsureAdmin(context.Background(), identity.AdminBootstrap{
		Name:     "Platform Admin",
		Email:    "admin@salon.test",
		Password: "AdminPassword1",
	})
	require.NoError(t, err)
	require.True(t, created)
	r := authRouter(e)

	w, resp := serve(t, r, http.MethodPost, "/api/admin/auth/login", "", LoginRequest{Email: "admin@salon.test", Password: "AdminPassword1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeData[loginData](t, resp).Token)

	w, _ = serve(t, r, http.MethodPost, "/api/admin/auth/login", "", LoginRequest{Email: ownerEmail, Password: testPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
