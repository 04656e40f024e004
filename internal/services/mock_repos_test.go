package services

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"planboard/internal/filestore"
	"planboard/internal/identity"
	"planboard/internal/models"
	"planboard/internal/repositories"
)

// --- mock PlanRepository ---

type mockPlanRepo struct {
	plans  map[int]*models.Plan
	nextID int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[int]*models.Plan), nextID: 1}
}

func (m *mockPlanRepo) FindByID(_ context.Context, id int) (*models.Plan, error) {
	if p, ok := m.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) FindAll(_ context.Context) ([]models.Plan, error) {
	out := make([]models.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func planMatches(p *models.Plan, f repositories.Filter) bool {
	switch f.Field {
	case "":
		return true
	case "title":
		return p.Title == f.Value
	case "status":
		return string(p.Status) == f.Value
	case "publisher_id":
		return p.PublisherID == f.Value
	}
	return false
}

func (m *mockPlanRepo) Find(_ context.Context, f repositories.Filter, offset, count int) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range m.plans {
		if planMatches(p, f) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return pageOf(out, offset, count), nil
}

func (m *mockPlanRepo) Count(_ context.Context, f repositories.Filter) (int64, error) {
	var n int64
	for _, p := range m.plans {
		if planMatches(p, f) {
			n++
		}
	}
	return n, nil
}

func (m *mockPlanRepo) Create(_ context.Context, plan *models.Plan) error {
	plan.ID = m.nextID
	m.nextID++
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *mockPlanRepo) Save(_ context.Context, plan *models.Plan) error {
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *mockPlanRepo) DeleteByIDs(_ context.Context, ids []int) error {
	for _, id := range ids {
		delete(m.plans, id)
	}
	return nil
}

// --- mock SubmissionRepository ---

type mockSubmissionRepo struct {
	subs   map[int]*models.Submission
	plans  *mockPlanRepo
	nextID int
}

func newMockSubmissionRepo(plans *mockPlanRepo) *mockSubmissionRepo {
	return &mockSubmissionRepo{subs: make(map[int]*models.Submission), plans: plans, nextID: 1}
}

func (m *mockSubmissionRepo) withPlan(sub models.Submission) models.Submission {
	if p, ok := m.plans.plans[sub.PlanID]; ok {
		cp := *p
		sub.Plan = &cp
	}
	return sub
}

func (m *mockSubmissionRepo) FindByID(_ context.Context, id int) (*models.Submission, error) {
	if s, ok := m.subs[id]; ok {
		cp := m.withPlan(*s)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) FindByPlanAndSubmitter(_ context.Context, planID int, submitterID string) (*models.Submission, error) {
	for _, s := range m.subs {
		if s.PlanID == planID && s.SubmitterID == submitterID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func subMatches(s *models.Submission, f repositories.Filter) bool {
	switch f.Field {
	case "":
		return true
	case "status":
		return string(s.Status) == f.Value
	case "submitter_id":
		return s.SubmitterID == f.Value
	case "approver_id":
		return s.ApproverID != nil && *s.ApproverID == f.Value
	}
	return false
}

func (m *mockSubmissionRepo) FindByPlan(_ context.Context, planID int, f repositories.Filter) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.subs {
		if s.PlanID == planID && subMatches(s, f) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSubmissionRepo) matchQuery(s *models.Submission, q repositories.SubmissionQuery) bool {
	if q.SubmitterID != "" && s.SubmitterID != q.SubmitterID {
		return false
	}
	if q.Status != "" && s.Status != q.Status {
		return false
	}
	for _, f := range q.Extras {
		if !subMatches(s, f) {
			return false
		}
	}
	if q.PlanID != 0 && s.PlanID != q.PlanID {
		return false
	}
	if q.Plan.Field != "" {
		p, ok := m.plans.plans[s.PlanID]
		if !ok || !planMatches(p, q.Plan) {
			return false
		}
	}
	return true
}

func (m *mockSubmissionRepo) Search(_ context.Context, q repositories.SubmissionQuery, offset, count int) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range m.subs {
		if m.matchQuery(s, q) {
			out = append(out, m.withPlan(*s))
		}
	}
	if strings.Contains(q.OrderBy, "updated_at") {
		sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return pageOf(out, offset, count), nil
}

func (m *mockSubmissionRepo) CountSearch(_ context.Context, q repositories.SubmissionQuery) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if m.matchQuery(s, q) {
			n++
		}
	}
	return n, nil
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *models.Submission) error {
	sub.ID = m.nextID
	m.nextID++
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) Save(_ context.Context, sub *models.Submission) error {
	sub.UpdatedAt = time.Now()
	cp := *sub
	cp.Plan = nil
	m.subs[sub.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) DeleteByIDs(_ context.Context, ids []int) error {
	for _, id := range ids {
		delete(m.subs, id)
	}
	return nil
}

func (m *mockSubmissionRepo) DeleteByPlanIDs(_ context.Context, planIDs []int) error {
	for id, s := range m.subs {
		for _, planID := range planIDs {
			if s.PlanID == planID {
				delete(m.subs, id)
			}
		}
	}
	return nil
}

// --- mock UpdateHistoryRepository ---

type mockHistoryRepo struct {
	history []models.UpdateHistory
	nextID  int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{nextID: 1}
}

func (m *mockHistoryRepo) Create(_ context.Context, h *models.UpdateHistory) error {
	h.ID = m.nextID
	m.nextID++
	h.CreatedAt = time.Now()
	m.history = append(m.history, *h)
	return nil
}

func (m *mockHistoryRepo) FindByPlan(_ context.Context, planID int, f repositories.Filter, offset, count int) ([]models.UpdateHistory, error) {
	var out []models.UpdateHistory
	for _, h := range m.history {
		if h.PlanID != planID {
			continue
		}
		if f.Field == "updater_id" && h.UpdaterID != f.Value {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, offset, count), nil
}

func (m *mockHistoryRepo) CountByPlan(ctx context.Context, planID int, f repositories.Filter) (int64, error) {
	out, _ := m.FindByPlan(ctx, planID, f, 0, -1)
	return int64(len(out)), nil
}

func (m *mockHistoryRepo) DeleteByPlanIDs(_ context.Context, planIDs []int) error {
	var kept []models.UpdateHistory
	for _, h := range m.history {
		remove := false
		for _, planID := range planIDs {
			if h.PlanID == planID {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, h)
		}
	}
	m.history = kept
	return nil
}

// --- mock UserRepository ---

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindPlainUsers(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Status == models.UserStatusNormal && u.Role == models.RoleUser {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- test environment ---

type testEnv struct {
	plans   *mockPlanRepo
	subs    *mockSubmissionRepo
	history *mockHistoryRepo
	users   *mockUserRepo
	files   *filestore.Store
	planSvc *PlanService
	subSvc  *SubmissionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	files := filestore.New(filestore.Config{
		PlanRoot:   filepath.Join(dir, "plan"),
		SubmitRoot: filepath.Join(dir, "submit"),
	})

	plans := newMockPlanRepo()
	subs := newMockSubmissionRepo(plans)
	history := newMockHistoryRepo()
	users := newMockUserRepo()

	repos := &repositories.Repositories{
		Plans:         plans,
		Submissions:   subs,
		UpdateHistory: history,
		Users:         users,
	}
	names := identity.NewResolver(users, nil)

	return &testEnv{
		plans:   plans,
		subs:    subs,
		history: history,
		users:   users,
		files:   files,
		planSvc: NewPlanService(repos, files, names),
		subSvc:  NewSubmissionService(repos, files, names),
	}
}

func (e *testEnv) addUser(id, username, realName string, role models.Role) {
	e.users.users[id] = &models.User{
		ID:       id,
		Username: username,
		RealName: realName,
		Role:     role,
		Status:   models.UserStatusNormal,
	}
}

func (e *testEnv) addPlan(t *testing.T, publisherID string, deadline time.Time, status models.PlanStatus) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Title:       "weekly report",
		Content:     "summarize the week",
		Deadline:    deadline,
		PublisherID: publisherID,
		Status:      status,
	}
	if err := e.plans.Create(context.Background(), plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}
