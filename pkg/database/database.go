package database

import (
	"fmt"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/pkg/storage"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const SqliteInMemoryPath = "file::memory:?cache=shared"

// Open connects to the configured database and migrates the storage tables.
func Open(cfg *config.DatabaseConfig, l *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DatabaseDriver_Postgres:
		db, err = NewGormFromPostgres(cfg)
	case config.DatabaseDriver_Sqlite:
		db, err = NewGormFromSqlite(cfg.SqlitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.Driver)
	}
	if err != nil {
		l.Sugar().Errorw("Failed to open database", zap.String("driver", string(cfg.Driver)), zap.Error(err))
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(storage.AllTables()...); err != nil {
		return errors.Wrap(err, "failed to migrate tables")
	}
	return nil
}

func PostgresConnectionString(cfg *config.DatabaseConfig) string {
	authString := ""
	if cfg.User != "" {
		authString = fmt.Sprintf("%s user=%s", authString, cfg.User)
	}
	if cfg.Password != "" {
		authString = fmt.Sprintf("%s password=%s", authString, cfg.Password)
	}

	dsn := fmt.Sprintf("host=%s%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		cfg.Host,
		authString,
		cfg.DbName,
		cfg.Port,
	)
	if cfg.SchemaName != "" {
		dsn = fmt.Sprintf("%s search_path=%s", dsn, cfg.SchemaName)
	}
	return dsn
}

func NewGormFromPostgres(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(PostgresConnectionString(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup postgres database")
	}
	return db, nil
}

func NewGormFromSqlite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database '%s'", path)
	}

	pragmas := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA journal_mode = WAL;`,
	}
	for _, pragma := range pragmas {
		if res := db.Exec(pragma); res.Error != nil {
			return nil, res.Error
		}
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDb, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
