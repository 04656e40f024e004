package services

import (
	"io"

	"planboard/internal/models"
)

// MaxUploadSize caps submitted files at 100 MiB.
const MaxUploadSize int64 = 100 << 20

// Upload is one inbound file, streamed from the transport layer.
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

// ListQuery is pagination plus an optional single-field filter; Field uses the
// caller-facing option names ("title", "publisher", "status", "updater").
type ListQuery struct {
	Offset int
	Count  int
	Field  string
	Value  string
}

// PlanView is a plan enriched with display-only attributes.
type PlanView struct {
	models.Plan
	TimeLeft string `json:"timeLeft,omitempty"`
}

type PlanPage struct {
	Count int64      `json:"count"`
	Plans []PlanView `json:"plans"`
}

type SubmissionPage struct {
	Count       int64               `json:"count"`
	Submissions []models.Submission `json:"submissions"`
}

type HistoryPage struct {
	Count   int64                  `json:"count"`
	History []models.UpdateHistory `json:"history"`
}

type UserPage struct {
	Count int64         `json:"count"`
	Users []models.User `json:"users"`
}

// FileDownload streams a stored file back to the caller, who owns Body.
type FileDownload struct {
	Name string
	Size int64
	Body io.ReadCloser
}
