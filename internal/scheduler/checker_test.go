package scheduler

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"planboard/internal/models"
	"planboard/internal/repositories"
)

type memPlanRepo struct {
	plans map[int]*models.Plan
	saves int
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[int]*models.Plan)}
}

func (m *memPlanRepo) FindByID(_ context.Context, id int) (*models.Plan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *plan
	return &cp, nil
}

func (m *memPlanRepo) FindAll(_ context.Context) ([]models.Plan, error) {
	out := make([]models.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPlanRepo) Find(_ context.Context, _ repositories.Filter, _, _ int) ([]models.Plan, error) {
	return m.FindAll(context.Background())
}

func (m *memPlanRepo) Count(_ context.Context, _ repositories.Filter) (int64, error) {
	return int64(len(m.plans)), nil
}

func (m *memPlanRepo) Create(_ context.Context, plan *models.Plan) error {
	plan.ID = len(m.plans) + 1
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *memPlanRepo) Save(_ context.Context, plan *models.Plan) error {
	cp := *plan
	m.plans[plan.ID] = &cp
	m.saves++
	return nil
}

func (m *memPlanRepo) DeleteByIDs(_ context.Context, ids []int) error {
	for _, id := range ids {
		delete(m.plans, id)
	}
	return nil
}

func TestTickExpiresPastDeadline(t *testing.T) {
	repo := newMemPlanRepo()
	deadline := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{Title: "weekly report", Deadline: deadline, Status: models.PlanStatusNormal}
	if err := repo.Create(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	checker := NewChecker(repo, time.Minute)
	checker.now = func() time.Time { return deadline.AddDate(0, 0, 1) }

	if err := checker.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if repo.plans[plan.ID].Status != models.PlanStatusExpired {
		t.Errorf("status = %s, want expired", repo.plans[plan.ID].Status)
	}
}

func TestTickRevivesMovedDeadline(t *testing.T) {
	repo := newMemPlanRepo()
	deadline := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{Title: "weekly report", Deadline: deadline, Status: models.PlanStatusExpired}
	if err := repo.Create(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	checker := NewChecker(repo, time.Minute)
	checker.now = func() time.Time { return deadline.AddDate(0, 0, -1) }

	if err := checker.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if repo.plans[plan.ID].Status != models.PlanStatusNormal {
		t.Errorf("status = %s, want normal", repo.plans[plan.ID].Status)
	}
}

func TestTickExpiresLockedPlanPastDeadline(t *testing.T) {
	repo := newMemPlanRepo()
	deadline := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{Title: "weekly report", Deadline: deadline, Status: models.PlanStatusLocked}
	if err := repo.Create(context.Background(), plan); err != nil {
		t.Fatal(err)
	}

	checker := NewChecker(repo, time.Minute)
	checker.now = func() time.Time { return deadline.AddDate(0, 0, 1) }

	if err := checker.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if repo.plans[plan.ID].Status != models.PlanStatusExpired {
		t.Errorf("status = %s, want expired", repo.plans[plan.ID].Status)
	}
}

func TestTickSavesEveryPlan(t *testing.T) {
	repo := newMemPlanRepo()
	future := time.Now().Add(24 * time.Hour)
	for i := 0; i < 3; i++ {
		if err := repo.Create(context.Background(), &models.Plan{Deadline: future, Status: models.PlanStatusNormal}); err != nil {
			t.Fatal(err)
		}
	}

	checker := NewChecker(repo, time.Minute)
	if err := checker.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if repo.saves != 3 {
		t.Errorf("saves = %d, want one per plan", repo.saves)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	repo := newMemPlanRepo()
	checker := NewChecker(repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checker did not stop after cancel")
	}
}

func TestNewCheckerDefaultsInterval(t *testing.T) {
	checker := NewChecker(newMemPlanRepo(), 0)
	if checker.interval != DefaultInterval {
		t.Errorf("interval = %s", checker.interval)
	}
}
