package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/testutils"
)

func TestValidateScheduler(t *testing.T) {
	t.Run("Should successfully validate", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{
				{
					TaskType: config.TypeLoginAttemptRetention,
					Cronspec: "@daily",
				},
				{
					TaskType: config.TypeDomainDNSAudit,
					Cronspec: "@every 1h",
				},
			},
		}
		assert.NoError(t, scheduler.Validate())
	})

	t.Run("Should fail validation for unknown task", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{
				{
					TaskType: "UnknownTask",
					Cronspec: "@daily",
				},
			},
		}
		assert.ErrorIs(t, scheduler.Validate(), config.ErrNonDefinedTaskType)
	})

	t.Run("Should fail validation for repeated task", func(t *testing.T) {
		scheduler := config.Scheduler{
			Tasks: []config.Task{
				{TaskType: config.TypeDomainDNSAudit, Cronspec: "@daily"},
				{TaskType: config.TypeDomainDNSAudit, Cronspec: "@hourly"},
			},
		}
		assert.ErrorIs(t, scheduler.Validate(), config.ErrRepeatedTaskType)
	})
}

func TestValidatePlatform(t *testing.T) {
	t.Run("Should successfully validate", func(t *testing.T) {
		platform := config.Platform{BaseDomain: "example.org"}
		assert.NoError(t, platform.Validate())
	})

	t.Run("Should fail validation without base domain", func(t *testing.T) {
		platform := config.Platform{}
		assert.ErrorIs(t, platform.Validate(), config.ErrEmptyBaseDomain)
	})
}

func TestValidateLoginGuard(t *testing.T) {
	mutator := testutils.NewMutator(func() config.LoginGuard {
		return config.LoginGuard{
			MaxFailures:     5,
			IPMultiplier:    4,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		}
	})

	tests := []struct {
		name   string
		config config.LoginGuard
		expErr error
	}{
		{
			name:   "Valid configuration",
			config: mutator(),
		},
		{
			name: "Zero max failures",
			config: mutator(func(g *config.LoginGuard) {
				g.MaxFailures = 0
			}),
			expErr: config.ErrNonPositiveGuardValue,
		},
		{
			name: "Negative IP multiplier",
			config: mutator(func(g *config.LoginGuard) {
				g.IPMultiplier = -1
			}),
			expErr: config.ErrNonPositiveGuardValue,
		},
		{
			name: "Zero window",
			config: mutator(func(g *config.LoginGuard) {
				g.Window = 0
			}),
			expErr: config.ErrNonPositiveGuardValue,
		},
		{
			name: "Zero lockout duration",
			config: mutator(func(g *config.LoginGuard) {
				g.LockoutDuration = 0
			}),
			expErr: config.ErrNonPositiveGuardValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expErr != nil {
				assert.ErrorIs(t, err, tt.expErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidateRetention(t *testing.T) {
	t.Run("Should successfully validate", func(t *testing.T) {
		retention := config.Retention{MaxAge: 720 * time.Hour, BatchSize: 500}
		assert.NoError(t, retention.Validate())
	})

	t.Run("Should fail validation for zero max age", func(t *testing.T) {
		retention := config.Retention{BatchSize: 500}
		assert.ErrorIs(t, retention.Validate(), config.ErrNonPositiveRetentionValue)
	})

	t.Run("Should fail validation for zero batch size", func(t *testing.T) {
		retention := config.Retention{MaxAge: time.Hour}
		assert.ErrorIs(t, retention.Validate(), config.ErrNonPositiveRetentionValue)
	})
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Run("Should parse the configured ranges", func(t *testing.T) {
		server := config.HTTPServer{TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"}}

		prefixes, err := server.TrustedProxyPrefixes()
		assert.NoError(t, err)
		assert.Len(t, prefixes, 2)
	})

	t.Run("Should accept an empty list", func(t *testing.T) {
		server := config.HTTPServer{}

		prefixes, err := server.TrustedProxyPrefixes()
		assert.NoError(t, err)
		assert.Empty(t, prefixes)
	})

	t.Run("Should fail on a bare address", func(t *testing.T) {
		server := config.HTTPServer{TrustedProxies: []string{"10.0.0.1"}}

		_, err := server.TrustedProxyPrefixes()
		assert.ErrorIs(t, err, config.ErrBadTrustedProxy)
	})
}

func TestValidateConfig(t *testing.T) {
	cfg := config.Config{
		Platform: config.Platform{BaseDomain: "example.org"},
		LoginGuard: config.LoginGuard{
			MaxFailures:     5,
			IPMultiplier:    4,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		},
		Retention: config.Retention{MaxAge: 720 * time.Hour, BatchSize: 500},
	}

	assert.NoError(t, cfg.Validate())

	cfg.Scheduler.Tasks = []config.Task{{TaskType: "UnknownTask"}}
	assert.ErrorIs(t, cfg.Validate(), config.ErrConfigurationValuesError)

	cfg.Scheduler.Tasks = nil
	cfg.HTTP.TrustedProxies = []string{"not-a-range"}
	assert.ErrorIs(t, cfg.Validate(), config.ErrConfigurationValuesError)
}
