// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	agentID := uuid.New()
	storeID := uuid.New().String()

	token, err := GenerateJWT(agentID, "agent_one", "agent", storeID, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, agentID.String(), claims.AgentID)
	assert.Equal(t, "agent_one", claims.Username)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, storeID, claims.StoreID)
}

func TestJWTExpired(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(uuid.New(), "agent_one", "agent", "", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "agent_one", "agent", "", 1)
	require.NoError(t, err)

	SetJWTSecret("other-secret")
	defer SetJWTSecret("test-secret")

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
