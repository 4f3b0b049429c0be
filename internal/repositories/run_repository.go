package repositories

import (
	"context"
	"fmt"
	"time"

	"aidocs/internal/models"

	"gorm.io/gorm"
)

// RunRepository persists the local run ledger.
type RunRepository interface {
	Create(ctx context.Context, run *models.RunRecord) error
	Finish(ctx context.Context, id string, status models.RunStatus, summary, errMsg string, finishedAt time.Time) error
	Get(ctx context.Context, id string) (*models.RunRecord, error)
	List(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) Finish(ctx context.Context, id string, status models.RunStatus, summary, errMsg string, finishedAt time.Time) error {
	if id == "" {
		return fmt.Errorf("run id is required")
	}
	res := r.db.WithContext(ctx).Model(&models.RunRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"summary":     summary,
			"error":       errMsg,
			"finished_at": finishedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

func (r *runRepository) Get(ctx context.Context, id string) (*models.RunRecord, error) {
	var run models.RunRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List returns the newest runs first. An empty kind lists every kind.
func (r *runRepository) List(ctx context.Context, kind models.RunKind, limit int) ([]models.RunRecord, error) {
	q := r.db.WithContext(ctx).Order("started_at desc")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []models.RunRecord
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
