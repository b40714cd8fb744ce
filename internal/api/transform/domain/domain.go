package domain

import (
	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/utils/ptr"
)

// ToAPI converts a custom domain model into its API representation. The
// response always carries the TXT record the owner must publish, so the
// instructions stay retrievable long after registration.
func ToAPI(domain model.CustomDomain) (*fiapi.Domain, error) {
	api := &fiapi.Domain{
		ID:         domain.ID,
		Hostname:   domain.Hostname,
		Status:     string(domain.Status),
		VerifiedAt: domain.VerifiedAt,
		DNSRecord: fiapi.DNSRecord{
			Name:  dnsverify.RecordName(domain.Hostname),
			Value: dnsverify.RecordValue(domain.VerificationToken),
		},
		CreatedAt: domain.CreatedAt,
	}

	if domain.LastError != "" {
		api.LastError = ptr.PointTo(domain.LastError)
	}

	return api, nil
}
