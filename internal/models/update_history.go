package models

import (
	"time"

	"github.com/lib/pq"
)

// UpdateHistory is the audit trail of plan edits. Rows are written once per
// edit and never mutated; they only disappear with the owning plan.
type UpdateHistory struct {
	ID            int            `gorm:"primaryKey" json:"id"`
	PlanID        int            `gorm:"column:plan_id;not null;index" json:"planId"`
	Plan          *Plan          `gorm:"foreignKey:PlanID" json:"-"`
	UpdaterID     string         `gorm:"column:updater_id;not null" json:"updaterId"`
	Updater       string         `json:"updater"`
	Comment       string         `gorm:"column:change_comment" json:"comment"`
	ChangedFields pq.StringArray `gorm:"type:text[]" json:"changedFields"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

func (UpdateHistory) TableName() string {
	return "update_history"
}
