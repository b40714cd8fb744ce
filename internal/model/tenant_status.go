package model

import (
	"errors"
)

var (
	ErrInvalidTenantStatus = errors.New("tenant status is not valid")

	validTenantStatuses = map[TenantStatus]struct{}{
		TenantStatusActive:    {},
		TenantStatusSuspended: {},
		TenantStatusArchived:  {},
	}
)

// TenantStatus represents the status of the tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
	TenantStatusArchived  TenantStatus = "ARCHIVED"
)

// Validate validates the given status of the tenant.
// Returns an error if the status is invalid.
func (s TenantStatus) Validate() error {
	if _, ok := validTenantStatuses[s]; !ok {
		return ErrInvalidTenantStatus
	}

	return nil
}
