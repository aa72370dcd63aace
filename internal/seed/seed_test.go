package seed

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SCGamer30/jam-match-sub001/internal/database"
	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

var seedDBSeq int64

func seedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seed%d?mode=memory&cache=shared", atomic.AddInt64(&seedDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestFactory_CreateUser(t *testing.T) {
	db := seedTestDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.ProfileCompleted)
	assert.True(t, models.ValidRole(user.PrimaryRole))
	assert.True(t, user.Experience.Valid())
	assert.NotEmpty(t, user.Genres)
	assert.NotEmpty(t, user.Location)

	custom, err := f.CreateUser(func(u *models.User) {
		u.PrimaryRole = models.RoleSinger
		u.Location = "Memphis"
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSinger, custom.PrimaryRole)
	assert.Equal(t, "Memphis", custom.Location)
}

func TestFactory_PickReturnsDistinctValues(t *testing.T) {
	f := NewFactory(nil)

	vocab := []string{"rock", "jazz", "blues", "funk", "metal"}
	for i := 0; i < 20; i++ {
		picked := f.pick(vocab, 3)
		require.Len(t, picked, 3)

		seen := map[string]bool{}
		for _, v := range picked {
			assert.False(t, seen[v], "duplicate value %q", v)
			seen[v] = true
			assert.Contains(t, vocab, v)
		}
	}

	// Asking for more than the vocabulary holds returns everything once.
	all := f.pick(vocab, 10)
	assert.Len(t, all, len(vocab))
}

func TestRun_SeedsUsersScoresAndBands(t *testing.T) {
	db := seedTestDB(t)

	require.NoError(t, Run(db, Options{NumUsers: 8, ShouldClean: true, MinBandScore: 0}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(8), userCount)

	// Every pair gets scored.
	var scoreCount int64
	require.NoError(t, db.Model(&models.CompatibilityScore{}).Count(&scoreCount).Error)
	assert.Equal(t, int64(8*7/2), scoreCount)

	// Each seeded band carries its announcement plus one message per member.
	var bands []models.Band
	require.NoError(t, db.Find(&bands).Error)
	for _, band := range bands {
		var msgCount int64
		require.NoError(t, db.Model(&models.Message{}).Where("band_id = ?", band.ID).Count(&msgCount).Error)
		assert.Equal(t, int64(5), msgCount)
	}
}

func TestRun_CleanRemovesPreviousData(t *testing.T) {
	db := seedTestDB(t)

	require.NoError(t, Run(db, Options{NumUsers: 5, ShouldClean: true, MinBandScore: 100}))
	require.NoError(t, Run(db, Options{NumUsers: 5, ShouldClean: true, MinBandScore: 100}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(5), userCount)
}
