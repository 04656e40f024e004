package models

import "time"

// User rows are owned by the account subsystem; this service only reads them
// for identity resolution and the authorization gate.
type User struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"unique;not null" json:"username"`
	RealName  string     `gorm:"column:real_name" json:"realName"`
	Role      Role       `json:"role"`
	Status    UserStatus `gorm:"type:varchar(20)" json:"status"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Role is totally ordered: a larger value grants everything a smaller one does.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSuperAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "superadmin"
	}
	return "unknown"
}

type UserStatus string

const (
	UserStatusNormal        UserStatus = "normal"
	UserStatusAwaitAudit    UserStatus = "await_audit"
	UserStatusLocked        UserStatus = "locked"
	UserStatusPendingLogoff UserStatus = "pending_logoff"
)
