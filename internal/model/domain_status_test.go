package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faithinsite/core/internal/model"
)

func TestDomainStatusValidation(t *testing.T) {
	tests := map[string]struct {
		status    model.DomainStatus
		expectErr bool
	}{
		"Pending is valid": {
			status:    model.DomainStatusPending,
			expectErr: false,
		},
		"Active is valid": {
			status:    model.DomainStatusActive,
			expectErr: false,
		},
		"Error is valid": {
			status:    model.DomainStatusError,
			expectErr: false,
		},
		"Empty status": {
			status:    "",
			expectErr: true,
		},
		"Lowercase is not valid": {
			status:    "active",
			expectErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.status.Validate()
			if test.expectErr {
				assert.Error(t, err)
				assert.Equal(t, model.ErrInvalidDomainStatus, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDomainIsVerified(t *testing.T) {
	assert.True(t, model.CustomDomain{Status: model.DomainStatusActive}.IsVerified())
	assert.False(t, model.CustomDomain{Status: model.DomainStatusPending}.IsVerified())
	assert.False(t, model.CustomDomain{Status: model.DomainStatusError}.IsVerified())
}
