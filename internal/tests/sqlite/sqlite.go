package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NethermindEth/staking-sidecar/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetFileBasedSqliteDatabaseConnection creates a migrated sqlite database in a fresh
// temporary directory and returns its path.
func GetFileBasedSqliteDatabaseConnection() (string, *gorm.DB, error) {
	fileName, err := uuid.NewUUID()
	if err != nil {
		return "", nil, err
	}
	basePath := filepath.Join(os.TempDir(), fmt.Sprintf("staking-sidecar-%s", fileName))
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return "", nil, err
	}

	filePath := filepath.Join(basePath, "test.db")
	db, err := database.NewGormFromSqlite(filePath)
	if err != nil {
		return "", nil, err
	}
	if err := database.Migrate(db); err != nil {
		return "", nil, err
	}
	return filePath, db, nil
}

func DeleteTestSqliteDB(filePath string, db *gorm.DB) {
	_ = database.Close(db)
	_ = os.RemoveAll(filepath.Dir(filePath))
}
