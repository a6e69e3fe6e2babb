package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTarget(t *testing.T) {
	name, admin, err := adminTarget("postgres://bot:pw@localhost:5432/match_publisher?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "match_publisher", name)
	assert.Equal(t, "postgres://bot:pw@localhost:5432/postgres?sslmode=disable", admin)

	name, _, err = adminTarget("postgres://bot:pw@localhost:5432/postgres")
	require.NoError(t, err)
	assert.Empty(t, name)

	_, _, err = adminTarget("postgres://bot:pw@local host:bad/x")
	assert.Error(t, err)
}
