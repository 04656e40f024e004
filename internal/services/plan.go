package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"planboard/internal/filestore"
	"planboard/internal/identity"
	"planboard/internal/models"
	"planboard/internal/repositories"
	"planboard/pkg/planerrors"
)

// PlanService owns the plan lifecycle: creation, audited updates, locking,
// cascading deletion and the list views.
type PlanService struct {
	repos *repositories.Repositories
	files *filestore.Store
	names identity.Resolver
	now   func() time.Time
}

func NewPlanService(repos *repositories.Repositories, files *filestore.Store, names identity.Resolver) *PlanService {
	return &PlanService{repos: repos, files: files, names: names, now: time.Now}
}

type CreatePlanInput struct {
	Title    string
	Content  string
	Deadline time.Time
	File     *Upload
}

func (s *PlanService) Create(ctx context.Context, publisherID string, in CreatePlanInput) (*models.Plan, error) {
	publisher, err := s.names.UsernameByID(ctx, publisherID)
	if err != nil {
		return nil, err
	}

	plan := &models.Plan{
		Title:       in.Title,
		Content:     in.Content,
		Deadline:    in.Deadline,
		PublisherID: publisherID,
		Publisher:   publisher,
		Status:      models.PlanStatusNormal,
	}
	if in.File != nil {
		plan.PlanFile = &in.File.Name
	}
	if err := s.repos.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	if in.File != nil {
		if err := s.files.WriteExclusive(s.files.PlanDir(plan.ID), in.File.Name, in.File.Body); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

type UpdatePlanInput struct {
	ID       int
	Title    *string
	Content  *string
	Deadline *time.Time
	Comment  string
	File     *Upload
}

// Update applies only the fields present in the change set and appends one
// update-history row. Locked plans reject every edit.
func (s *PlanService) Update(ctx context.Context, updaterID string, in UpdatePlanInput) error {
	plan, err := s.repos.Plans.FindByID(ctx, in.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return planerrors.ErrPlanNotFound
	}
	if err != nil {
		return err
	}
	if plan.Status == models.PlanStatusLocked {
		return planerrors.ErrPlanLocked
	}

	var changed []string
	if in.Title != nil {
		plan.Title = *in.Title
		changed = append(changed, "title")
	}
	if in.Content != nil {
		plan.Content = *in.Content
		changed = append(changed, "content")
	}
	if in.Deadline != nil {
		plan.Deadline = *in.Deadline
		changed = append(changed, "deadline")
	}
	if in.File != nil {
		plan.PlanFile = &in.File.Name
		changed = append(changed, "file")
	}

	if err := s.repos.Plans.Save(ctx, plan); err != nil {
		return err
	}

	updater, err := s.names.UsernameByID(ctx, updaterID)
	if err != nil {
		return err
	}
	history := &models.UpdateHistory{
		PlanID:        plan.ID,
		UpdaterID:     updaterID,
		Updater:       updater,
		Comment:       in.Comment,
		ChangedFields: pq.StringArray(changed),
	}
	if err := s.repos.UpdateHistory.Create(ctx, history); err != nil {
		return err
	}

	if in.File != nil {
		if err := s.files.WriteExclusive(s.files.PlanDir(plan.ID), in.File.Name, in.File.Body); err != nil {
			return err
		}
	}
	return nil
}

// Lock freezes the given plans. The batch is validated as a whole; one
// unresolved id rejects everything.
func (s *PlanService) Lock(ctx context.Context, ids []int) error {
	return s.setStatus(ctx, ids, models.PlanStatusLocked)
}

func (s *PlanService) Unlock(ctx context.Context, ids []int) error {
	return s.setStatus(ctx, ids, models.PlanStatusNormal)
}

func (s *PlanService) setStatus(ctx context.Context, ids []int, status models.PlanStatus) error {
	var batch planerrors.BatchError
	plans := make([]*models.Plan, 0, len(ids))
	for _, id := range ids {
		plan, err := s.repos.Plans.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			batch.Add(id, planerrors.ErrPlanNotFound.Error())
			continue
		}
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}
	if batch.HasFailures() {
		return &batch
	}
	for _, plan := range plans {
		plan.Status = status
		if err := s.repos.Plans.Save(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the plans with their submissions, update history and stored
// files. Validation covers the whole batch before anything is touched;
// directory removal afterwards is best-effort.
func (s *PlanService) Delete(ctx context.Context, ids []int) error {
	var batch planerrors.BatchError
	accepted := make([]int, 0, len(ids))
	for _, id := range ids {
		plan, err := s.repos.Plans.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			batch.Add(id, planerrors.ErrPlanNotFound.Error())
			continue
		}
		if err != nil {
			return err
		}
		if plan.Status == models.PlanStatusLocked {
			batch.Add(id, planerrors.ErrPlanLocked.Error())
			continue
		}
		accepted = append(accepted, plan.ID)
	}
	if batch.HasFailures() {
		return &batch
	}

	if err := s.repos.Submissions.DeleteByPlanIDs(ctx, accepted); err != nil {
		return err
	}
	if err := s.repos.UpdateHistory.DeleteByPlanIDs(ctx, accepted); err != nil {
		return err
	}
	if err := s.repos.Plans.DeleteByIDs(ctx, accepted); err != nil {
		return err
	}

	for _, id := range accepted {
		s.files.RemoveDir(s.files.PlanDir(id))
		s.files.RemoveDir(s.files.PlanSubmitDir(id))
	}
	return nil
}

// List returns a page of plans ordered by ascending deadline.
func (s *PlanService) List(ctx context.Context, q ListQuery) (*PlanPage, error) {
	filter, err := s.planFilter(ctx, q.Field, q.Value)
	if err != nil {
		return nil, err
	}
	count, err := s.repos.Plans.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	plans, err := s.repos.Plans.Find(ctx, filter, q.Offset, q.Count)
	if err != nil {
		return nil, err
	}
	views, err := s.planViews(ctx, plans)
	if err != nil {
		return nil, err
	}
	return &PlanPage{Count: count, Plans: views}, nil
}

// AwaitSubmitPlans lists the plans the user has not yet submitted against.
func (s *PlanService) AwaitSubmitPlans(ctx context.Context, userID string, q ListQuery) (*PlanPage, error) {
	filter, err := s.planFilter(ctx, q.Field, q.Value)
	if err != nil {
		return nil, err
	}
	plans, err := s.repos.Plans.Find(ctx, filter, 0, -1)
	if err != nil {
		return nil, err
	}

	awaiting := make([]models.Plan, 0, len(plans))
	for _, plan := range plans {
		_, err := s.repos.Submissions.FindByPlanAndSubmitter(ctx, plan.ID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			awaiting = append(awaiting, plan)
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	total := int64(len(awaiting))
	views, err := s.planViews(ctx, pageOf(awaiting, q.Offset, q.Count))
	if err != nil {
		return nil, err
	}
	return &PlanPage{Count: total, Plans: views}, nil
}

// UpdateHistoryList returns a page of a plan's edit trail, newest first.
func (s *PlanService) UpdateHistoryList(ctx context.Context, planID int, q ListQuery) (*HistoryPage, error) {
	if _, err := s.repos.Plans.FindByID(ctx, planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, planerrors.ErrPlanNotFound
		}
		return nil, err
	}

	var filter repositories.Filter
	switch q.Field {
	case "":
	case "updater":
		id, err := s.names.IDByUsername(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		filter = repositories.Filter{Field: "updater_id", Value: id}
	default:
		return nil, fmt.Errorf("unsupported update history filter %q", q.Field)
	}

	count, err := s.repos.UpdateHistory.CountByPlan(ctx, planID, filter)
	if err != nil {
		return nil, err
	}
	history, err := s.repos.UpdateHistory.FindByPlan(ctx, planID, filter, q.Offset, q.Count)
	if err != nil {
		return nil, err
	}
	for i := range history {
		name, err := s.names.UsernameByID(ctx, history[i].UpdaterID)
		if err != nil {
			return nil, err
		}
		history[i].Updater = name
	}
	return &HistoryPage{Count: count, History: history}, nil
}

// CompleteStatus partitions plain users by whether they hold an approved
// submission on the plan and returns the requested half.
func (s *PlanService) CompleteStatus(ctx context.Context, planID int, complete bool, offset, count int) (*UserPage, error) {
	if _, err := s.repos.Plans.FindByID(ctx, planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, planerrors.ErrPlanNotFound
		}
		return nil, err
	}

	users, err := s.repos.Users.FindPlainUsers(ctx)
	if err != nil {
		return nil, err
	}
	approved, err := s.repos.Submissions.FindByPlan(ctx, planID,
		repositories.Filter{Field: "status", Value: string(models.SubmitStatusApproved)})
	if err != nil {
		return nil, err
	}

	approvedBy := make(map[string]bool, len(approved))
	for _, sub := range approved {
		approvedBy[sub.SubmitterID] = true
	}
	matched := make([]models.User, 0, len(users))
	for _, user := range users {
		if approvedBy[user.ID] == complete {
			matched = append(matched, user)
		}
	}
	return &UserPage{Count: int64(len(matched)), Users: pageOf(matched, offset, count)}, nil
}

func (s *PlanService) planFilter(ctx context.Context, field, value string) (repositories.Filter, error) {
	switch field {
	case "":
		return repositories.Filter{}, nil
	case "title":
		return repositories.Filter{Field: "title", Value: value}, nil
	case "status":
		return repositories.Filter{Field: "status", Value: value}, nil
	case "publisher":
		id, err := s.names.IDByUsername(ctx, value)
		if err != nil {
			return repositories.Filter{}, err
		}
		return repositories.Filter{Field: "publisher_id", Value: id}, nil
	}
	return repositories.Filter{}, fmt.Errorf("unsupported plan filter %q", field)
}

func (s *PlanService) planViews(ctx context.Context, plans []models.Plan) ([]PlanView, error) {
	views := make([]PlanView, 0, len(plans))
	for _, plan := range plans {
		name, err := s.names.UsernameByID(ctx, plan.PublisherID)
		if err != nil {
			return nil, err
		}
		plan.Publisher = name

		view := PlanView{Plan: plan}
		if left := plan.Deadline.Sub(s.now()); left > 0 {
			view.TimeLeft = durafmt.Parse(left.Round(time.Minute)).LimitFirstN(2).String()
		}
		views = append(views, view)
	}
	return views, nil
}

func pageOf[T any](items []T, offset, count int) []T {
	if offset >= len(items) || offset < 0 {
		return nil
	}
	end := offset + count
	if count < 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
