package models

import "time"

// Submission is one user's file deliverable against a plan. At most one row
// exists per (plan_id, submitter_id); a repeat upload replaces the file
// reference of the existing row.
type Submission struct {
	ID          int          `gorm:"primaryKey" json:"id"`
	PlanID      int          `gorm:"column:plan_id;not null;index;uniqueIndex:idx_plan_submitter" json:"planId"`
	Plan        *Plan        `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	SubmitterID string       `gorm:"column:submitter_id;not null;uniqueIndex:idx_plan_submitter" json:"submitterId"`
	Submitter   string       `json:"submitter"`
	File        string       `gorm:"not null" json:"file"`
	Status      SubmitStatus `gorm:"type:varchar(20);default:await_audit" json:"status"`
	ApproverID  *string      `gorm:"column:approver_id" json:"approverId"`
	Approver    string       `json:"approver"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

type SubmitStatus string

const (
	SubmitStatusAwaitAudit SubmitStatus = "await_audit"
	SubmitStatusApproved   SubmitStatus = "approved"
	SubmitStatusUnapproved SubmitStatus = "unapproved"
)
