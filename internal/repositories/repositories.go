package repositories

import "gorm.io/gorm"

// Filter is a single column predicate. An empty Field matches everything.
// Column names are whitelisted by the service layer before they reach a query.
type Filter struct {
	Field string
	Value string
}

func (f Filter) apply(tx *gorm.DB) *gorm.DB {
	if f.Field == "" {
		return tx
	}
	return tx.Where(f.Field+" = ?", f.Value)
}

// Repositories bundles every store the services need, so wiring and tests can
// swap implementations in one place.
type Repositories struct {
	Plans         PlanRepository
	Submissions   SubmissionRepository
	UpdateHistory UpdateHistoryRepository
	Users         UserRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Plans:         NewPlanRepository(db),
		Submissions:   NewSubmissionRepository(db),
		UpdateHistory: NewUpdateHistoryRepository(db),
		Users:         NewUserRepository(db),
	}
}
