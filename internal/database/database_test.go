package database

import (
	"testing"

	"authgate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err, "sqlite driver must be registered")

	require.NoError(t, Migrate(db))

	// schema is usable after migration
	require.NoError(t, db.Create(&domain.User{
		Email:        "schema@example.com",
		PasswordHash: "x",
		Name:         "Schema",
		Role:         domain.RoleUser,
	}).Error)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
