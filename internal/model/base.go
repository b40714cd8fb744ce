package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AutoTimeModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate ensures timestamps are set before creating a record
func (b *AutoTimeModel) BeforeCreate(_ *gorm.DB) error {
	now := time.Now().UTC()

	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	b.UpdatedAt = now

	return nil
}

// BeforeUpdate ensures UpdatedAt is set before updating a record
func (b *AutoTimeModel) BeforeUpdate(_ *gorm.DB) error {
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// TenantScoped marks a model as owned by exactly one tenant. Embedding it
// adds the tenant_id column and the accessors the repository uses to fence
// every operation to the calling tenant.
type TenantScoped struct {
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (TenantScoped) IsTenantScoped() bool { return true }

func (t TenantScoped) GetTenantID() uuid.UUID { return t.TenantID }

func (t *TenantScoped) SetTenantID(id uuid.UUID) { t.TenantID = id }
