package testutils

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/faithinsite/core/internal/config"
)

const postgresContainer = "testcontainers-postgresql-shared"

func StartPostgresSQL(
	tb testing.TB,
	cfg *config.Database,
	opts ...testcontainers.ContainerCustomizer,
) {
	tb.Helper()

	var name string
	var user, secret commoncfg.SourceRef
	if cfg != nil && *cfg != (config.Database{}) {
		name = cfg.Name
		user = cfg.User
		secret = cfg.Secret
	} else {
		name = TestDB.Name
		user = TestDB.User
		secret = TestDB.Secret
	}

	// Do it like this so the user specified override the defaults
	options := append([]testcontainers.ContainerCustomizer{
		postgres.WithDatabase(name),
		postgres.WithUsername(user.Value),
		postgres.WithPassword(secret.Value),
		postgres.BasicWaitStrategies(),
		testcontainers.WithStartupCommand(testcontainers.NewRawCommand([]string{
			"postgres",
			"-c", "max_connections=1000",
		})),
		testcontainers.WithReuseByName(postgresContainer),
	}, opts...)

	service, err := postgres.Run(tb.Context(),
		"postgres:16-alpine",
		options...,
	)
	assert.NoError(tb, err)

	if cfg != nil {
		p, err := service.MappedPort(tb.Context(), nat.Port("5432"))
		assert.NoError(tb, err)

		host, err := service.Host(tb.Context())
		assert.NoError(tb, err)

		cfg.Port = p.Port()
		cfg.Name = name
		cfg.User = user
		cfg.Secret = secret
		cfg.Host = commoncfg.SourceRef{
			Value:  host,
			Source: commoncfg.EmbeddedSourceValue,
		}
	}
}
