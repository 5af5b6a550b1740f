package database

import (
	"path/filepath"
	"testing"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_Database(t *testing.T) {
	l := zap.NewNop()

	t.Run("Should open and migrate a sqlite database", func(t *testing.T) {
		db, err := Open(&config.DatabaseConfig{
			Driver:     config.DatabaseDriver_Sqlite,
			SqlitePath: filepath.Join(t.TempDir(), "staking.db"),
		}, l)
		require.Nil(t, err)
		defer Close(db) //nolint:errcheck

		for _, table := range []string{"processed_blocks", "settlements", "state_roots"} {
			assert.True(t, db.Migrator().HasTable(table), table)
		}
	})
	t.Run("Should reject unknown drivers", func(t *testing.T) {
		_, err := Open(&config.DatabaseConfig{Driver: "mysql"}, l)
		assert.Error(t, err)
	})
	t.Run("Should build postgres connection strings", func(t *testing.T) {
		dsn := PostgresConnectionString(&config.DatabaseConfig{
			Host:       "localhost",
			Port:       5432,
			User:       "sidecar",
			Password:   "secret",
			DbName:     "staking",
			SchemaName: "credits",
		})
		assert.Equal(t, "host=localhost user=sidecar password=secret dbname=staking port=5432 sslmode=disable TimeZone=UTC search_path=credits", dsn)

		dsn = PostgresConnectionString(&config.DatabaseConfig{Host: "db", Port: 5433, DbName: "staking"})
		assert.Equal(t, "host=db dbname=staking port=5433 sslmode=disable TimeZone=UTC", dsn)
	})
}
