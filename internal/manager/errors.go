package manager

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrListTenants        = errors.New("failed to list tenants from database")
	ErrGetTenant          = errors.New("failed to get tenant from database")
	ErrCreateTenant       = errors.New("failed to create tenant")
	ErrUpdateTenant       = errors.New("failed to update tenant")
	ErrDeleteTenant       = errors.New("failed to delete tenant")
	ErrTenantExists       = errors.New("a tenant with this slug already exists")
	ErrInvalidSlug        = errors.New("slug must be lowercase letters, digits and hyphens")
	ErrSlugLength         = errors.New("slug must be between 3 and 63 characters")
	ErrNameCannotBeEmpty  = errors.New("name field cannot be empty")
	ErrSanitiseTenantData = errors.New("failed to sanitise tenant data")

	ErrCreateDomain        = errors.New("failed to create custom domain")
	ErrGetDomain           = errors.New("failed to get custom domain")
	ErrListDomains         = errors.New("failed to list custom domains")
	ErrDeleteDomain        = errors.New("failed to delete custom domain")
	ErrUpdateDomainStatus  = errors.New("failed to update custom domain status")
	ErrDomainExists        = errors.New("hostname is already registered")
	ErrInvalidHostname     = errors.New("hostname is not valid")
	ErrGenerateChallenge   = errors.New("failed to generate verification token")
	ErrHostnameNotAssigned = errors.New("hostname does not resolve to any tenant")

	ErrCreateRedirect     = errors.New("failed to create redirect rule")
	ErrGetRedirect        = errors.New("failed to get redirect rule")
	ErrListRedirects      = errors.New("failed to list redirect rules")
	ErrUpdateRedirect     = errors.New("failed to update redirect rule")
	ErrDeleteRedirect     = errors.New("failed to delete redirect rule")
	ErrRedirectExists     = errors.New("a rule for this source path already exists")
	ErrInvalidPath        = errors.New("path is not valid")
	ErrInvalidDestination = errors.New("destination is not valid")
	ErrNoRedirect         = errors.New("no redirect rule matches the path")
	ErrRedirectLoop       = errors.New("redirect chain loops back on itself")
	ErrRedirectTooDeep    = errors.New("redirect chain exceeds the hop bound")

	ErrRecordAttempt      = errors.New("failed to record login attempt")
	ErrCountAttempts      = errors.New("failed to count login attempts")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginLocked        = errors.New("too many failed login attempts")
	ErrIssueSessionToken  = errors.New("failed to issue session token")

	ErrGetUser      = errors.New("failed to get user from database")
	ErrCreateUser   = errors.New("failed to create user")
	ErrUserExists   = errors.New("a user with this email already exists")
	ErrInvalidEmail = errors.New("email is not valid")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	ErrInvalidRole  = errors.New("role is not valid")
	ErrHashPassword = errors.New("failed to hash password")
)

// LockoutError reports a denied login attempt together with the time left
// until the gate reopens, so the transport layer can set Retry-After.
type LockoutError struct {
	RetryAfter time.Duration
	Gate       Gate
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrLoginLocked, e.RetryAfter)
}

func (e *LockoutError) Unwrap() error {
	return ErrLoginLocked
}
