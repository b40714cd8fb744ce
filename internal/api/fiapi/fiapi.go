// Package fiapi holds the wire types of the HTTP API. Request and response
// bodies live here so handlers and clients agree on one shape; database
// models never cross this boundary directly.
package fiapi

import (
	"time"

	"github.com/google/uuid"
)

// DetailedError is the body of every error response.
type DetailedError struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Status    int             `json:"status"`
	RequestID *string         `json:"requestId,omitempty"`
	Context   *map[string]any `json:"context,omitempty"`
}

type ErrorMessage struct {
	Error DetailedError `json:"error"`
}

type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type TenantCreate struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type TenantStatusUpdate struct {
	Status string `json:"status"`
}

type TenantList struct {
	Value []Tenant `json:"value"`
	Count *int     `json:"count,omitempty"`
}

// DNSRecord is the TXT record a domain owner must publish to prove
// ownership of a hostname.
type DNSRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Domain struct {
	ID         uuid.UUID  `json:"id"`
	Hostname   string     `json:"hostname"`
	Status     string     `json:"status"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	LastError  *string    `json:"lastError,omitempty"`
	DNSRecord  DNSRecord  `json:"dnsRecord"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type DomainCreate struct {
	Hostname string `json:"hostname"`
}

type DomainList struct {
	Value []Domain `json:"value"`
	Count *int     `json:"count,omitempty"`
}

type RedirectRule struct {
	ID             uuid.UUID `json:"id"`
	SourcePath     string    `json:"sourcePath"`
	DestinationURL string    `json:"destinationUrl"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type RedirectRuleCreate struct {
	SourcePath     string `json:"sourcePath"`
	DestinationURL string `json:"destinationUrl"`

	// IsActive defaults to true when omitted.
	IsActive *bool `json:"isActive,omitempty"`
}

// RedirectRuleUpdate carries a partial update. Absent fields keep their
// stored value. The source path is immutable.
type RedirectRuleUpdate struct {
	DestinationURL *string `json:"destinationUrl,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

type RedirectRuleList struct {
	Value []RedirectRule `json:"value"`
	Count *int           `json:"count,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// TenantResolution answers the edge's hostname lookup. Tenant is the slug,
// or null when the hostname serves nobody.
type TenantResolution struct {
	Tenant *string `json:"tenant"`
}

// Reasons reported when a redirect chain is suppressed. Both mean "serve
// the path as content", the distinction is diagnostic only.
const (
	ReasonLoopDetected = "loop_detected"
	ReasonChainTooDeep = "chain_too_deep"
)

// RedirectResolution answers the edge's redirect lookup for one path.
// Destination is null when no redirect applies; Reason explains a
// suppressed chain.
type RedirectResolution struct {
	Destination *string `json:"destination"`
	Status      *int    `json:"status,omitempty"`
	Reason      *string `json:"reason,omitempty"`
}
