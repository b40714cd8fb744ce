package redirect

import (
	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/model"
)

// ToAPI converts a redirect rule model into its API representation.
func ToAPI(rule model.RedirectRule) (*fiapi.RedirectRule, error) {
	return &fiapi.RedirectRule{
		ID:             rule.ID,
		SourcePath:     rule.SourcePath,
		DestinationURL: rule.DestinationURL,
		IsActive:       rule.IsActive,
		CreatedAt:      rule.CreatedAt,
		UpdatedAt:      rule.UpdatedAt,
	}, nil
}
