package planerrors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrPlanNotFound = errors.New("plan not found")

var ErrSubmissionNotFound = errors.New("submission not found")

var ErrAccountNotFound = errors.New("account not found")

var ErrPlanLocked = errors.New("plan is locked")

var ErrDeadlinePassed = errors.New("plan deadline has passed")

var ErrAlreadyAudited = errors.New("submission already audited")

var ErrFileTooLarge = errors.New("submitted file exceeds 100 MiB")

var ErrFileMissing = errors.New("backing file does not exist")

var ErrNoSubmissions = errors.New("plan has no submissions")

var ErrNoAccess = errors.New("no access")

var ErrAccountDisabled = errors.New("account is not in normal standing")

// BatchFailure is one rejected member of a batch operation.
type BatchFailure struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// BatchError reports every failed member of a batch operation. Batches are
// all-or-nothing: when a BatchError is returned nothing was mutated.
type BatchError struct {
	Failures []BatchFailure
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%d: %s", f.ID, f.Reason))
	}
	return "batch rejected: " + strings.Join(parts, "; ")
}

func (e *BatchError) Add(id int, reason string) {
	e.Failures = append(e.Failures, BatchFailure{ID: id, Reason: reason})
}

func (e *BatchError) HasFailures() bool {
	return len(e.Failures) > 0
}
