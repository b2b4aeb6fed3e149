// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqyim/valuation-backend/internal/config"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/utils"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	return NewAuthService(newTestDB(t), cfg)
}

func TestRegisterClient(t *testing.T) {
	svc := newAuthService(t)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Salim",
		Email:    "salim@example.com",
		Password: "password123",
		Role:     "client",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleClient, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, "client", claims.Role)
}

func TestRegisterCompanyCreatesProfile(t *testing.T) {
	svc := newAuthService(t)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Gulf Valuations",
		Email:    "info@gulf.example.com",
		Password: "password123",
		Role:     "company",
	})
	require.NoError(t, err)

	var profile models.CompanyProfile
	require.NoError(t, svc.db.Where("user_id = ?", resp.User.ID).First(&profile).Error)
	assert.Equal(t, "gulf-valuations", profile.Slug)
}

func TestRegisterBankCreatesProfile(t *testing.T) {
	svc := newAuthService(t)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Bank Dhofar",
		Email:    "info@dhofar.example.com",
		Password: "password123",
		Role:     "bank",
	})
	require.NoError(t, err)

	var profile models.BankProfile
	require.NoError(t, svc.db.Where("user_id = ?", resp.User.ID).First(&profile).Error)
	assert.Equal(t, "bank-dhofar", profile.Slug)
}

func TestRegisterRejectsAdminAndDuplicates(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "x", Email: "x@example.com", Password: "password123", Role: "admin",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))

	_, err = svc.Register(&RegisterRequest{
		Name: "x", Email: "x@example.com", Password: "password123", Role: "superuser",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.Register(&RegisterRequest{
		Name: "a", Email: "dup@example.com", Password: "password123", Role: "client",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Name: "b", Email: "dup@example.com", Password: "password123", Role: "client",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Name: "Salim", Email: "login@example.com", Password: "password123", Role: "client",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(&LoginRequest{Email: "login@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	registered, err := svc.Register(&RegisterRequest{
		Name: "Salim", Email: "refresh@example.com", Password: "password123", Role: "client",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("not-a-token")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}
