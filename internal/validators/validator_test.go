package validators

import (
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameRule(t *testing.T) {
	v := New()

	ok := models.CreateProfileRequest{Username: "alice_01", Name: "Alice"}
	assert.NoError(t, v.Struct(ok))

	bad := models.CreateProfileRequest{Username: "alice-01", Name: "Alice"}
	err := v.Struct(bad)
	require.Error(t, err)
	assert.Contains(t, Message(err), "letters, numbers and underscores")
}

func TestMessage_LengthLimits(t *testing.T) {
	v := New()
	req := models.CreateProfileRequest{
		Username: "abcdefghijabcdefghijabcdefghijX",
		Name:     "Alice",
	}
	err := v.Struct(req)
	require.Error(t, err)
	assert.Equal(t, "username must be at most 30 characters", Message(err))
}

func TestIsUsername(t *testing.T) {
	assert.True(t, IsUsername("Bob_42"))
	assert.False(t, IsUsername(""))
	assert.False(t, IsUsername("bob smith"))
}
