package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

func scoreRow(u1, u2 uint, final int) *models.CompatibilityScore {
	return &models.CompatibilityScore{
		User1ID:          u1,
		User2ID:          u2,
		AlgorithmicScore: final,
		FinalScore:       final,
		LocationScore:    50,
		GenreScore:       10,
		ExperienceScore:  20,
		CalculatedAt:     time.Now(),
	}
}

func TestScoreRepository_UpsertCreatesNormalizedPair(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")

	// Reversed pair order gets normalized on write.
	require.NoError(t, repo.Upsert(ctx, scoreRow(ben.ID, ana.ID, 80)))

	got, err := repo.GetByPair(ctx, ana.ID, ben.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ana.ID, got.User1ID)
	assert.Equal(t, ben.ID, got.User2ID)
	assert.Equal(t, 80, got.FinalScore)
}

func TestScoreRepository_UpsertReplacesExistingRow(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")

	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, ben.ID, 60)))
	first, err := repo.GetByPair(ctx, ana.ID, ben.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, ben.ID, 85)))
	second, err := repo.GetByPair(ctx, ana.ID, ben.ID)
	require.NoError(t, err)

	// Same row, updated columns.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 85, second.FinalScore)

	var count int64
	require.NoError(t, db.Model(&models.CompatibilityScore{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScoreRepository_GetByPair_OrderIndependent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")
	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, ben.ID, 72)))

	forward, err := repo.GetByPair(ctx, ana.ID, ben.ID)
	require.NoError(t, err)
	reversed, err := repo.GetByPair(ctx, ben.ID, ana.ID)
	require.NoError(t, err)

	require.NotNil(t, forward)
	require.NotNil(t, reversed)
	assert.Equal(t, forward.ID, reversed.ID)

	missing, err := repo.GetByPair(ctx, ana.ID, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScoreRepository_GetForUser_OrderedBestFirst(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")
	cal := createTestUser(t, db, "cal")
	dee := createTestUser(t, db, "dee")

	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, ben.ID, 55)))
	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, cal.ID, 90)))
	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, dee.ID, 70)))
	// A pair not involving ana must not appear.
	require.NoError(t, repo.Upsert(ctx, scoreRow(ben.ID, cal.ID, 99)))

	got, err := repo.GetForUser(ctx, ana.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 90, got[0].FinalScore)
	assert.Equal(t, 70, got[1].FinalScore)
	assert.Equal(t, 55, got[2].FinalScore)

	// Both profiles come preloaded.
	require.NotNil(t, got[0].User1)
	require.NotNil(t, got[0].User2)

	limited, err := repo.GetForUser(ctx, ana.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestScoreRepository_DeleteForUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana")
	ben := createTestUser(t, db, "ben")
	cal := createTestUser(t, db, "cal")

	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, ben.ID, 50)))
	require.NoError(t, repo.Upsert(ctx, scoreRow(ana.ID, cal.ID, 60)))
	require.NoError(t, repo.Upsert(ctx, scoreRow(ben.ID, cal.ID, 70)))

	require.NoError(t, repo.DeleteForUser(ctx, ana.ID))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ben.ID, all[0].User1ID)
	assert.Equal(t, cal.ID, all[0].User2ID)
}
