package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dkstore_back_end/internal/config"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "dkstore.db?"+sqlitePragmas, sqliteDSN("dkstore.db"))
	assert.Equal(t, "file:mem?mode=memory&cache=shared&"+sqlitePragmas, sqliteDSN("file:mem?mode=memory&cache=shared"))
}

func TestOpenSQLitePathWithParameters(t *testing.T) {
	db, err := Open(config.Database{Driver: "sqlite", SQLitePath: "file:dsn_params?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Ping(context.Background(), db))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	require.NoError(t, Migrate(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}
