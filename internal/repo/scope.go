package repo

import (
	"github.com/google/uuid"
)

// Scope pins a repository call to one side of the tenancy fence. There is
// no ambient tenant: callers construct a scope explicitly and pass it with
// every operation. The zero value is invalid, so a forgotten scope fails
// loudly instead of silently widening a query.
type Scope struct {
	tenantID uuid.UUID
	platform bool
}

// ForTenant returns a scope restricted to a single tenant.
// ForTenant(uuid.Nil) yields an invalid scope.
func ForTenant(tenantID uuid.UUID) Scope {
	return Scope{tenantID: tenantID}
}

// Platform returns the scope for cross tenant work: shared resources, and
// read only lookups that legitimately span tenants such as resolving a
// hostname. It never permits mutating tenant scoped resources.
func Platform() Scope {
	return Scope{platform: true}
}

// IsValid reports whether the scope was constructed through ForTenant with
// a real tenant or through Platform.
func (s Scope) IsValid() bool {
	return s.platform || s.tenantID != uuid.Nil
}

func (s Scope) IsPlatform() bool {
	return s.platform
}

// TenantID returns the tenant of a tenant scope, uuid.Nil for the platform
// scope.
func (s Scope) TenantID() uuid.UUID {
	return s.tenantID
}

func (s Scope) String() string {
	if s.platform {
		return "platform"
	}

	return s.tenantID.String()
}

// Check validates the scope against a resource and reports whether the
// tenant predicate must be enforced on the operation. Both repository
// implementations share this policy.
func (s Scope) Check(resource Resource, mutating bool) (bool, error) {
	if !s.IsValid() {
		return false, ErrScopeRequired
	}

	if !resource.IsTenantScoped() {
		return false, nil
	}

	if s.platform {
		if mutating {
			return false, ErrTenantScopeRequired
		}

		return false, nil
	}

	return true, nil
}
