package model

import (
	"strings"

	"github.com/google/uuid"
)

// RedirectRule rewrites one request path to a destination for a single
// tenant. The source path is unique per tenant, never across tenants, so
// TenantID is declared here instead of embedding TenantScoped to carry the
// composite unique index.
type RedirectRule struct {
	AutoTimeModel

	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:tenant_source,priority:1"`
	SourcePath     string    `gorm:"type:varchar(2048);not null;uniqueIndex:tenant_source,priority:2"`
	DestinationURL string    `gorm:"type:varchar(2048);not null"`
	// No gorm default tag: a default would swallow explicit false on
	// insert. The API layer decides the default for omitted values.
	IsActive bool `gorm:"not null"`
}

func (RedirectRule) TableName() string    { return "redirect_rules" }
func (RedirectRule) IsTenantScoped() bool { return true }

func (r RedirectRule) GetTenantID() uuid.UUID { return r.TenantID }

func (r *RedirectRule) SetTenantID(id uuid.UUID) { r.TenantID = id }

// HasLocalDestination reports whether the destination is a path on the same
// site rather than an absolute URL. Protocol relative destinations starting
// with "//" count as external.
func (r RedirectRule) HasLocalDestination() bool {
	return strings.HasPrefix(r.DestinationURL, "/") &&
		!strings.HasPrefix(r.DestinationURL, "//")
}
