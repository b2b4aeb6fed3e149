// internal/utils/utils_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "bank-muscat", Slugify("Bank Muscat"))
	assert.Equal(t, "gulf-valuations-llc", Slugify("  Gulf Valuations, LLC "))
	assert.Equal(t, "co-2024", Slugify("Co 2024"))

	// Fully Arabic names reduce to nothing and get a random fallback.
	slug := Slugify("شركة التقييم")
	assert.True(t, strings.HasPrefix(slug, "org-"))
	assert.Greater(t, len(slug), len("org-"))
}

func TestJWTRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateJWT(userID, "Salim", "client", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Salim", claims.Name)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, "taqyim", claims.Issuer)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}
