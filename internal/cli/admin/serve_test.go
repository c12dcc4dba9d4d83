package admin

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationStatus(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		msg, err := migrationStatus(nil, nil, 1, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: applied successfully (version 1)", msg)
	})

	t.Run("no change", func(t *testing.T) {
		msg, err := migrationStatus(migrate.ErrNoChange, nil, 1, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: database is up to date (version 1)", msg)
	})

	t.Run("empty schema", func(t *testing.T) {
		msg, err := migrationStatus(migrate.ErrNoChange, migrate.ErrNilVersion, 0, false)
		require.NoError(t, err)
		assert.Equal(t, "migrations: database is up to date (no migrations applied)", msg)
	})

	t.Run("dirty", func(t *testing.T) {
		_, err := migrationStatus(nil, nil, 2, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dirty")
	})

	t.Run("version lookup failure", func(t *testing.T) {
		_, err := migrationStatus(nil, errors.New("connection reset"), 0, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration version")
	})
}
