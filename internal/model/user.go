package model

import (
	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/constants"
)

// User is a member of exactly one tenant. The email is unique within the
// tenant, not across the platform.
type User struct {
	AutoTimeModel

	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:tenant_email,priority:1"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:tenant_email,priority:2"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	Role         constants.Role `gorm:"type:varchar(50);not null;default:'MEMBER'"`
}

func (User) TableName() string    { return "users" }
func (User) IsTenantScoped() bool { return true }

func (u User) GetTenantID() uuid.UUID { return u.TenantID }

func (u *User) SetTenantID(id uuid.UUID) { u.TenantID = id }
