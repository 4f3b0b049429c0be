package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aidocs/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RunRecord{}, &models.ModelSetting{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRunRepository_CreateFinishList(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &models.RunRecord{ID: "p1", Kind: models.RunKindPlan, Status: models.RunRunning, StartedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.RunRecord{ID: "g1", Kind: models.RunKindGenerate, Status: models.RunRunning, StartedAt: base.Add(time.Minute)}))

	require.NoError(t, repo.Finish(ctx, "g1", models.RunSuccess, "7 sections", "", base.Add(2*time.Minute)))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.RunSuccess, got.Status)
	assert.Equal(t, "7 sections", got.Summary)
	require.NotNil(t, got.FinishedAt)

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "g1", all[0].ID)

	plans, err := repo.List(ctx, models.RunKindPlan, 0)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "p1", plans[0].ID)
}

func TestRunRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))

	assert.Error(t, repo.Create(ctx, &models.RunRecord{}))
	assert.Error(t, repo.Finish(ctx, "nope", models.RunError, "", "boom", time.Now()))

	got, err := repo.Get(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
