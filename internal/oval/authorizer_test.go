package oval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

func TestAuthorizer_DisabledWhenEmpty(t *testing.T) {
	a := NewAuthorizer("", nil)
	assert.False(t, a.Enabled())
	assert.NoError(t, a.Authorize(""))
	assert.NoError(t, a.Authorize("anyone"))

	err := a.Add("anyone", "other")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthorizer_OwnerAndCallers(t *testing.T) {
	a := NewAuthorizer("ops", []string{"dashboard", ""})
	assert.True(t, a.Enabled())

	assert.NoError(t, a.Authorize("ops"))
	assert.NoError(t, a.Authorize("dashboard"))
	assert.ErrorIs(t, a.Authorize("intruder"), domain.ErrUnauthorized)
	assert.ErrorIs(t, a.Authorize(""), domain.ErrUnauthorized)
}

func TestAuthorizer_OnlyOwnerMutates(t *testing.T) {
	a := NewAuthorizer("ops", []string{"dashboard"})

	assert.ErrorIs(t, a.Add("dashboard", "alerts"), domain.ErrUnauthorized)
	assert.ErrorIs(t, a.Remove("dashboard", "dashboard"), domain.ErrUnauthorized)

	require.NoError(t, a.Add("ops", "alerts"))
	assert.ErrorIs(t, a.Add("ops", ""), domain.ErrInvalidInputShape)
	assert.NoError(t, a.Authorize("alerts"))

	list, err := a.List("alerts")
	require.NoError(t, err)
	assert.Equal(t, []string{"alerts", "dashboard"}, list)

	require.NoError(t, a.Remove("ops", "dashboard"))
	require.NoError(t, a.Remove("ops", "unknown"))
	assert.ErrorIs(t, a.Authorize("dashboard"), domain.ErrUnauthorized)

	_, err = a.List("dashboard")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
