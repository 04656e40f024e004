package repositories

import (
	"context"

	"gorm.io/gorm"

	"planboard/internal/models"
)

type PlanRepository interface {
	FindByID(ctx context.Context, id int) (*models.Plan, error)
	FindAll(ctx context.Context) ([]models.Plan, error)
	Find(ctx context.Context, f Filter, offset, count int) ([]models.Plan, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Create(ctx context.Context, plan *models.Plan) error
	Save(ctx context.Context, plan *models.Plan) error
	DeleteByIDs(ctx context.Context, ids []int) error
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) FindByID(ctx context.Context, id int) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) FindAll(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.db.WithContext(ctx).Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Find returns a page of plans ordered by ascending deadline.
func (r *planRepository) Find(ctx context.Context, f Filter, offset, count int) ([]models.Plan, error) {
	var plans []models.Plan
	tx := f.apply(r.db.WithContext(ctx).Model(&models.Plan{}))
	err := tx.Order("deadline ASC").Offset(offset).Limit(count).Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	tx := f.apply(r.db.WithContext(ctx).Model(&models.Plan{}))
	if err := tx.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) Save(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepository) DeleteByIDs(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Plan{}, ids).Error
}
