package repositories

import (
	"context"

	"gorm.io/gorm"

	"planboard/internal/models"
)

// SubmissionQuery narrows a submission search. Zero-valued members are
// ignored; Plan filters address columns of the joined plans table.
type SubmissionQuery struct {
	SubmitterID string
	Status      models.SubmitStatus
	Extras      []Filter
	PlanID      int
	Plan        Filter
	OrderBy     string
}

type SubmissionRepository interface {
	FindByID(ctx context.Context, id int) (*models.Submission, error)
	FindByPlanAndSubmitter(ctx context.Context, planID int, submitterID string) (*models.Submission, error)
	FindByPlan(ctx context.Context, planID int, f Filter) ([]models.Submission, error)
	Search(ctx context.Context, q SubmissionQuery, offset, count int) ([]models.Submission, error)
	CountSearch(ctx context.Context, q SubmissionQuery) (int64, error)
	Create(ctx context.Context, sub *models.Submission) error
	Save(ctx context.Context, sub *models.Submission) error
	DeleteByIDs(ctx context.Context, ids []int) error
	DeleteByPlanIDs(ctx context.Context, planIDs []int) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) FindByID(ctx context.Context, id int) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) FindByPlanAndSubmitter(ctx context.Context, planID int, submitterID string) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND submitter_id = ?", planID, submitterID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) FindByPlan(ctx context.Context, planID int, f Filter) ([]models.Submission, error) {
	var subs []models.Submission
	tx := r.db.WithContext(ctx).Where("plan_id = ?", planID)
	if err := f.apply(tx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepository) search(ctx context.Context, q SubmissionQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Submission{})
	if q.SubmitterID != "" {
		tx = tx.Where("submissions.submitter_id = ?", q.SubmitterID)
	}
	if q.Status != "" {
		tx = tx.Where("submissions.status = ?", q.Status)
	}
	for _, f := range q.Extras {
		if f.Field != "" {
			tx = tx.Where("submissions."+f.Field+" = ?", f.Value)
		}
	}
	if q.PlanID != 0 || q.Plan.Field != "" {
		tx = tx.Joins("JOIN plans ON plans.id = submissions.plan_id")
		if q.PlanID != 0 {
			tx = tx.Where("plans.id = ?", q.PlanID)
		}
		if q.Plan.Field != "" {
			tx = tx.Where("plans."+q.Plan.Field+" = ?", q.Plan.Value)
		}
	}
	return tx
}

func (r *submissionRepository) Search(ctx context.Context, q SubmissionQuery, offset, count int) ([]models.Submission, error) {
	order := q.OrderBy
	if order == "" {
		order = "submissions.created_at DESC"
	}
	var subs []models.Submission
	err := r.search(ctx, q).Preload("Plan").
		Order(order).Offset(offset).Limit(count).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepository) CountSearch(ctx context.Context, q SubmissionQuery) (int64, error) {
	var n int64
	if err := r.search(ctx, q).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepository) Save(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *submissionRepository) DeleteByIDs(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.Submission{}, ids).Error
}

func (r *submissionRepository) DeleteByPlanIDs(ctx context.Context, planIDs []int) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("plan_id IN ?", planIDs).Delete(&models.Submission{}).Error
}
