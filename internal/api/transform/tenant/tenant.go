package tenant

import (
	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/utils/sanitise"
)

// ToAPI converts a tenant model into its API representation.
func ToAPI(tenant model.Tenant) (*fiapi.Tenant, error) {
	_, err := sanitise.Stringlikes(&tenant)
	if err != nil {
		return nil, err
	}

	return &fiapi.Tenant{
		ID:        tenant.ID,
		Slug:      tenant.Slug,
		Name:      tenant.Name,
		Status:    string(tenant.Status),
		CreatedAt: tenant.CreatedAt,
	}, nil
}
