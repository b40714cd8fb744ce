package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	FailReasonBadCredentials = "bad_credentials"
	FailReasonUnknownUser    = "unknown_user"
	FailReasonLockedOut      = "locked_out"
)

// LoginAttempt is one row of the append-only login audit trail. Rows are
// written for every outcome and never updated. Lockout decisions are
// recomputed from these rows on every check, so there is no counter to
// reset or drift.
//
// The table is shared across tenants because an email address is counted
// platform wide. TenantID is informational only.
type LoginAttempt struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email      string     `gorm:"type:varchar(255);not null;index:email_created,priority:1"`
	IPAddress  string     `gorm:"type:varchar(45);not null;index:ip_created,priority:1"`
	Success    bool       `gorm:"not null"`
	FailReason string     `gorm:"type:varchar(50);not null;default:''"`
	TenantID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"not null;index:email_created,priority:2;index:ip_created,priority:2"`
}

func (LoginAttempt) TableName() string    { return "login_attempts" }
func (LoginAttempt) IsTenantScoped() bool { return false }

// CountsTowardLockout reports whether the attempt adds to the failure
// tally. Attempts rejected while already locked out are audited but do not
// extend the lockout, otherwise a probing client could hold an account
// locked forever.
func (a LoginAttempt) CountsTowardLockout() bool {
	return !a.Success && a.FailReason != FailReasonLockedOut
}
