package repositories

import (
	"context"
	"errors"
	"fmt"

	"aidocs/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModelSettingRepository stores which catalog models may back an llmProfile.
type ModelSettingRepository interface {
	List(ctx context.Context) ([]models.ModelSetting, error)
	GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error)
	Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error)
	SetProviderEnabled(ctx context.Context, provider string, enabled bool) error
}

type modelSettingRepository struct {
	db *gorm.DB
}

func NewModelSettingRepository(db *gorm.DB) ModelSettingRepository {
	return &modelSettingRepository{db: db}
}

func (r *modelSettingRepository) List(ctx context.Context) ([]models.ModelSetting, error) {
	var settings []models.ModelSetting
	if err := r.db.WithContext(ctx).Order("provider, model_key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *modelSettingRepository) GetByKey(ctx context.Context, modelKey string) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	var setting models.ModelSetting
	if err := r.db.WithContext(ctx).Where("model_key = ?", modelKey).Take(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

func (r *modelSettingRepository) Upsert(ctx context.Context, modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	record := models.ModelSetting{
		ModelKey: modelKey,
		Provider: provider,
		Enabled:  enabled,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"enabled":    enabled,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("upsert model setting %s: %w", modelKey, err)
	}
	return &record, nil
}

func (r *modelSettingRepository) SetProviderEnabled(ctx context.Context, provider string, enabled bool) error {
	if provider == "" {
		return fmt.Errorf("provider is required")
	}
	return r.db.WithContext(ctx).Model(&models.ModelSetting{}).
		Where("provider = ?", provider).
		Update("enabled", enabled).Error
}
