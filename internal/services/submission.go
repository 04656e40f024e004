package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"planboard/internal/filestore"
	"planboard/internal/identity"
	"planboard/internal/models"
	"planboard/internal/repositories"
	"planboard/pkg/planerrors"
)

// SubmissionService owns the submission workflow: upload, audit, rename,
// deletion and the zip exports.
type SubmissionService struct {
	repos *repositories.Repositories
	files *filestore.Store
	names identity.Resolver
	now   func() time.Time
}

func NewSubmissionService(repos *repositories.Repositories, files *filestore.Store, names identity.Resolver) *SubmissionService {
	return &SubmissionService{repos: repos, files: files, names: names, now: time.Now}
}

// Submit stores the file against the plan. A repeat upload by the same
// submitter replaces the file reference of the existing record; the audit
// status never changes on re-upload.
func (s *SubmissionService) Submit(ctx context.Context, submitterID string, planID int, file Upload) error {
	plan, err := s.repos.Plans.FindByID(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return planerrors.ErrPlanNotFound
	}
	if err != nil {
		return err
	}
	if s.now().After(plan.Deadline) {
		return planerrors.ErrDeadlinePassed
	}
	if plan.Status == models.PlanStatusLocked {
		return planerrors.ErrPlanLocked
	}
	if file.Size > MaxUploadSize {
		return planerrors.ErrFileTooLarge
	}

	existing, err := s.repos.Submissions.FindByPlanAndSubmitter(ctx, planID, submitterID)
	switch {
	case err == nil:
		existing.File = file.Name
		if err := s.repos.Submissions.Save(ctx, existing); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		submitter, err := s.names.UsernameByID(ctx, submitterID)
		if err != nil {
			return err
		}
		sub := &models.Submission{
			PlanID:      planID,
			SubmitterID: submitterID,
			Submitter:   submitter,
			File:        file.Name,
			Status:      models.SubmitStatusAwaitAudit,
		}
		if err := s.repos.Submissions.Create(ctx, sub); err != nil {
			return err
		}
	default:
		return err
	}

	return s.files.WriteExclusive(s.files.SubmitDir(planID, submitterID), file.Name, file.Body)
}

func (s *SubmissionService) DownloadPlanFile(ctx context.Context, planID int) (*FileDownload, error) {
	plan, err := s.repos.Plans.FindByID(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, planerrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	if plan.PlanFile == nil {
		return nil, planerrors.ErrFileMissing
	}
	return s.openDownload(filepath.Join(s.files.PlanDir(planID), *plan.PlanFile), *plan.PlanFile)
}

// DownloadOwn streams the caller's own submission file. A submission owned by
// someone else is indistinguishable from a missing one.
func (s *SubmissionService) DownloadOwn(ctx context.Context, submitterID string, submissionID int) (*FileDownload, error) {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.SubmitterID != submitterID {
		return nil, planerrors.ErrSubmissionNotFound
	}
	return s.openDownload(s.submissionPath(sub), sub.File)
}

func (s *SubmissionService) DownloadAny(ctx context.Context, submissionID int) (*FileDownload, error) {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.openDownload(s.submissionPath(sub), sub.File)
}

// Audit sets the status and approver on every submission in the batch. Any
// missing or already-audited member rejects the whole batch untouched.
func (s *SubmissionService) Audit(ctx context.Context, approverID string, ids []int, status models.SubmitStatus) error {
	if status != models.SubmitStatusApproved && status != models.SubmitStatusUnapproved {
		return fmt.Errorf("audit status must be %q or %q", models.SubmitStatusApproved, models.SubmitStatusUnapproved)
	}

	var batch planerrors.BatchError
	subs := make([]*models.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := s.repos.Submissions.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			batch.Add(id, planerrors.ErrSubmissionNotFound.Error())
			continue
		}
		if err != nil {
			return err
		}
		if sub.Status != models.SubmitStatusAwaitAudit {
			batch.Add(id, planerrors.ErrAlreadyAudited.Error())
			continue
		}
		subs = append(subs, sub)
	}
	if batch.HasFailures() {
		return &batch
	}

	approver, err := s.names.UsernameByID(ctx, approverID)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		sub.Status = status
		sub.ApproverID = &approverID
		sub.Approver = approver
		if err := s.repos.Submissions.Save(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the submissions and their directories. Validation covers the
// whole batch first; directory removal is best-effort.
func (s *SubmissionService) Delete(ctx context.Context, ids []int) error {
	var batch planerrors.BatchError
	subs := make([]*models.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := s.repos.Submissions.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			batch.Add(id, planerrors.ErrSubmissionNotFound.Error())
			continue
		}
		if err != nil {
			return err
		}
		subs = append(subs, sub)
	}
	if batch.HasFailures() {
		return &batch
	}

	deleted := make([]int, 0, len(subs))
	for _, sub := range subs {
		deleted = append(deleted, sub.ID)
	}
	if err := s.repos.Submissions.DeleteByIDs(ctx, deleted); err != nil {
		return err
	}
	for _, sub := range subs {
		s.files.RemoveDir(s.files.SubmitDir(sub.PlanID, sub.SubmitterID))
	}
	return nil
}

// Rename moves the file on disk first and only then updates the record, so
// the record and the file never disagree after a partial failure.
func (s *SubmissionService) Rename(ctx context.Context, submissionID int, newName string) error {
	sub, err := s.findSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	dir := s.files.SubmitDir(sub.PlanID, sub.SubmitterID)
	oldPath := filepath.Join(dir, sub.File)
	if !s.files.Exists(oldPath) {
		return planerrors.ErrFileMissing
	}
	if err := s.files.Rename(oldPath, filepath.Join(dir, newName)); err != nil {
		return err
	}

	sub.File = newName
	return s.repos.Submissions.Save(ctx, sub)
}

// ListForUser pages through the caller's own submissions by audit status,
// most recently updated first.
func (s *SubmissionService) ListForUser(ctx context.Context, submitterID string, q ListQuery, status models.SubmitStatus) (*SubmissionPage, error) {
	planFilter, err := s.planSideFilter(ctx, q.Field, q.Value)
	if err != nil {
		return nil, err
	}
	query := repositories.SubmissionQuery{
		SubmitterID: submitterID,
		Status:      status,
		Plan:        planFilter,
		OrderBy:     "submissions.updated_at DESC",
	}
	return s.page(ctx, query, q.Offset, q.Count)
}

// AdminListQuery narrows the audit view: two submission-side options plus one
// plan-side option, all using caller-facing names.
type AdminListQuery struct {
	Offset      int
	Count       int
	SubmitField string
	SubmitValue string
	ExtraField  string
	ExtraValue  string
	PlanField   string
	PlanValue   string
}

func (s *SubmissionService) ListAll(ctx context.Context, q AdminListQuery) (*SubmissionPage, error) {
	query := repositories.SubmissionQuery{}

	for _, opt := range [][2]string{{q.SubmitField, q.SubmitValue}, {q.ExtraField, q.ExtraValue}} {
		f, err := s.submitSideFilter(ctx, opt[0], opt[1])
		if err != nil {
			return nil, err
		}
		if f.Field != "" {
			query.Extras = append(query.Extras, f)
		}
	}

	var err error
	query.Plan, err = s.planSideFilter(ctx, q.PlanField, q.PlanValue)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, query, q.Offset, q.Count)
}

// BulkZip packs the named submissions into one archive staged under the
// caller's scratch directory and streams it back.
func (s *SubmissionService) BulkZip(ctx context.Context, callerID string, ids []int) (*FileDownload, error) {
	entries := make([]filestore.ArchiveEntry, 0, len(ids))
	for _, id := range ids {
		sub, err := s.findSubmission(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, filestore.ArchiveEntry{Path: s.submissionPath(sub), Name: sub.File})
	}
	return s.archive(callerID, entries)
}

// ZipAllForPlan packs every matching submission of the plan.
func (s *SubmissionService) ZipAllForPlan(ctx context.Context, callerID string, planID int, field, value string) (*FileDownload, error) {
	filter, err := s.submitSideFilter(ctx, field, value)
	if err != nil {
		return nil, err
	}
	subs, err := s.repos.Submissions.FindByPlan(ctx, planID, filter)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, planerrors.ErrNoSubmissions
	}

	entries := make([]filestore.ArchiveEntry, 0, len(subs))
	for i := range subs {
		entries = append(entries, filestore.ArchiveEntry{Path: s.submissionPath(&subs[i]), Name: subs[i].File})
	}
	return s.archive(callerID, entries)
}

func (s *SubmissionService) archive(callerID string, entries []filestore.ArchiveEntry) (*FileDownload, error) {
	scratch := s.files.ScratchDir(callerID, s.now().Unix())
	dest := filepath.Join(scratch, "files.zip")
	if err := s.files.BuildArchive(dest, entries); err != nil {
		return nil, err
	}
	return s.openDownload(dest, "files.zip")
}

func (s *SubmissionService) page(ctx context.Context, query repositories.SubmissionQuery, offset, count int) (*SubmissionPage, error) {
	total, err := s.repos.Submissions.CountSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	subs, err := s.repos.Submissions.Search(ctx, query, offset, count)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if err := s.resolveNames(ctx, &subs[i]); err != nil {
			return nil, err
		}
	}
	return &SubmissionPage{Count: total, Submissions: subs}, nil
}

func (s *SubmissionService) resolveNames(ctx context.Context, sub *models.Submission) error {
	var err error
	if sub.Submitter, err = s.names.UsernameByID(ctx, sub.SubmitterID); err != nil {
		return err
	}
	if sub.ApproverID != nil {
		if sub.Approver, err = s.names.UsernameByID(ctx, *sub.ApproverID); err != nil {
			return err
		}
	}
	if sub.Plan != nil {
		if sub.Plan.Publisher, err = s.names.UsernameByID(ctx, sub.Plan.PublisherID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SubmissionService) findSubmission(ctx context.Context, id int) (*models.Submission, error) {
	sub, err := s.repos.Submissions.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, planerrors.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) submissionPath(sub *models.Submission) string {
	return filepath.Join(s.files.SubmitDir(sub.PlanID, sub.SubmitterID), sub.File)
}

func (s *SubmissionService) openDownload(path, name string) (*FileDownload, error) {
	if !s.files.Exists(path) {
		return nil, planerrors.ErrFileMissing
	}
	body, size, err := s.files.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Name: name, Size: size, Body: body}, nil
}

// submitSideFilter maps caller-facing option names onto submission columns,
// resolving usernames to ids.
func (s *SubmissionService) submitSideFilter(ctx context.Context, field, value string) (repositories.Filter, error) {
	switch field {
	case "":
		return repositories.Filter{}, nil
	case "status":
		return repositories.Filter{Field: "status", Value: value}, nil
	case "submitter":
		id, err := s.names.IDByUsername(ctx, value)
		if err != nil {
			return repositories.Filter{}, err
		}
		return repositories.Filter{Field: "submitter_id", Value: id}, nil
	case "approver":
		id, err := s.names.IDByUsername(ctx, value)
		if err != nil {
			return repositories.Filter{}, err
		}
		return repositories.Filter{Field: "approver_id", Value: id}, nil
	}
	return repositories.Filter{}, fmt.Errorf("unsupported submission filter %q", field)
}

func (s *SubmissionService) planSideFilter(ctx context.Context, field, value string) (repositories.Filter, error) {
	switch field {
	case "":
		return repositories.Filter{}, nil
	case "title":
		return repositories.Filter{Field: "title", Value: value}, nil
	case "publisher":
		id, err := s.names.IDByUsername(ctx, value)
		if err != nil {
			return repositories.Filter{}, err
		}
		return repositories.Filter{Field: "publisher_id", Value: id}, nil
	}
	return repositories.Filter{}, fmt.Errorf("unsupported plan filter %q", field)
}
