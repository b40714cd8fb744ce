package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tenant struct {
	AutoTimeModel

	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Slug      string         `gorm:"type:varchar(63);not null;unique"`
	Name      string         `gorm:"type:varchar(255);not null"`
	Status    TenantStatus   `gorm:"type:varchar(50);not null;default:'ACTIVE'"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Tenant) TableName() string    { return "tenants" }
func (Tenant) IsTenantScoped() bool { return false }

// IsServable reports whether requests may be routed to the tenant.
func (t Tenant) IsServable() bool {
	return t.Status == TenantStatusActive
}
