package testutil

import (
	"os"
	"testing"

	"kudi/internal/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresDSNEnv names the database the integration tests run against.
const PostgresDSNEnv = "KUDI_TEST_POSTGRES_DSN"

// NewPostgresStore returns a Store over the database named by
// KUDI_TEST_POSTGRES_DSN with a multi-connection pool, so concurrent
// transactions contend on row locks. The test is skipped when it is unset.
func NewPostgresStore(t *testing.T) *repositories.Store {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(16)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return repositories.NewStore(db)
}
