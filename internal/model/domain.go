package model

import (
	"time"

	"github.com/google/uuid"
)

// CustomDomain maps an externally owned hostname onto a tenant. The hostname
// is stored in normalized form and is unique across the whole platform.
type CustomDomain struct {
	AutoTimeModel
	TenantScoped

	ID                uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Hostname          string       `gorm:"type:varchar(253);not null;unique"`
	Status            DomainStatus `gorm:"type:varchar(50);not null;default:'PENDING'"`
	VerificationToken string       `gorm:"type:varchar(255);not null"`
	VerifiedAt        *time.Time
	LastError         string `gorm:"type:text"`
}

func (CustomDomain) TableName() string { return "custom_domains" }

// IsVerified reports whether the domain has passed DNS ownership verification.
func (d CustomDomain) IsVerified() bool {
	return d.Status == DomainStatusActive
}
