package models

import "time"

type Plan struct {
	ID          int        `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"type:varchar(1100)" json:"content"`
	PlanFile    *string    `gorm:"column:plan_file" json:"planFile"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	PublisherID string     `gorm:"column:publisher_id;not null" json:"publisherId"`
	Publisher   string     `json:"publisher"`
	Status      PlanStatus `gorm:"type:varchar(20);default:normal" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Submissions   []Submission    `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"-"`
	UpdateHistory []UpdateHistory `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Plan) TableName() string {
	return "plans"
}

type PlanStatus string

const (
	PlanStatusNormal  PlanStatus = "normal"
	PlanStatusLocked  PlanStatus = "locked"
	PlanStatusExpired PlanStatus = "expired"
)
