package model

import (
	"errors"
)

var (
	ErrInvalidDomainStatus = errors.New("domain status is not valid")

	validDomainStatuses = map[DomainStatus]struct{}{
		DomainStatusPending: {},
		DomainStatusActive:  {},
		DomainStatusError:   {},
	}
)

// DomainStatus represents the verification state of a custom domain.
type DomainStatus string

const (
	DomainStatusPending DomainStatus = "PENDING"
	DomainStatusActive  DomainStatus = "ACTIVE"
	DomainStatusError   DomainStatus = "ERROR"
)

// Validate validates the given status of the domain.
// Returns an error if the status is invalid.
func (s DomainStatus) Validate() error {
	if _, ok := validDomainStatuses[s]; !ok {
		return ErrInvalidDomainStatus
	}

	return nil
}
