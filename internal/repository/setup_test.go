package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SCGamer30/jam-match-sub001/internal/database"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

var dbSeq int64

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// createTestUser persists a minimal completed profile.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "hashed",
		Name:             username,
		PrimaryRole:      models.RoleGuitarist,
		Instruments:      models.StringList{"guitar"},
		Genres:           models.StringList{"rock"},
		Experience:       models.ExperienceIntermediate,
		Location:         "Austin",
		ProfileCompleted: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
