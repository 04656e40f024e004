package repositories

import (
	"context"

	"gorm.io/gorm"

	"planboard/internal/models"
)

type UpdateHistoryRepository interface {
	Create(ctx context.Context, h *models.UpdateHistory) error
	FindByPlan(ctx context.Context, planID int, f Filter, offset, count int) ([]models.UpdateHistory, error)
	CountByPlan(ctx context.Context, planID int, f Filter) (int64, error)
	DeleteByPlanIDs(ctx context.Context, planIDs []int) error
}

type updateHistoryRepository struct {
	db *gorm.DB
}

func NewUpdateHistoryRepository(db *gorm.DB) UpdateHistoryRepository {
	return &updateHistoryRepository{db: db}
}

func (r *updateHistoryRepository) Create(ctx context.Context, h *models.UpdateHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// FindByPlan returns a page of a plan's edit trail, newest first.
func (r *updateHistoryRepository) FindByPlan(ctx context.Context, planID int, f Filter, offset, count int) ([]models.UpdateHistory, error) {
	var history []models.UpdateHistory
	tx := f.apply(r.db.WithContext(ctx).Where("plan_id = ?", planID))
	err := tx.Order("created_at DESC").Offset(offset).Limit(count).Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (r *updateHistoryRepository) CountByPlan(ctx context.Context, planID int, f Filter) (int64, error) {
	var n int64
	tx := f.apply(r.db.WithContext(ctx).Model(&models.UpdateHistory{}).Where("plan_id = ?", planID))
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *updateHistoryRepository) DeleteByPlanIDs(ctx context.Context, planIDs []int) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("plan_id IN ?", planIDs).Delete(&models.UpdateHistory{}).Error
}
