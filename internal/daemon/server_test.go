package daemon_test

import (
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/daemon"
	"github.com/faithinsite/core/internal/testutils"
)

func embedded(value string) commoncfg.SourceRef {
	return commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  value,
	}
}

func TestServer(t *testing.T) {
	dbCon := testutils.NewTestDB(t, testutils.TestDBConfig{})

	cfg := &config.Config{
		HTTP: config.HTTPServer{
			Address:         "localhost:8081",
			ShutdownTimeout: time.Second,
		},
		Platform: config.Platform{
			BaseDomain: "example.test",
		},
		Session: config.Session{
			JWTSecret: embedded("test-signing-secret"),
			TokenTTL:  time.Hour,
		},
		InternalAuth: config.InternalAuth{
			Secret: embedded("edge-proxy-secret"),
		},
	}

	t.Run("Should create the API server", func(t *testing.T) {
		s, err := daemon.NewFIServer(t.Context(), cfg, dbCon)
		assert.NoError(t, err)
		assert.NotNil(t, s)

		err = s.Start(t.Context())
		assert.NoError(t, err)
		err = s.Close(t.Context())
		assert.NoError(t, err)
	})

	t.Run("Should refuse an empty internal auth secret", func(t *testing.T) {
		broken := *cfg
		broken.InternalAuth.Secret = embedded("")

		s, err := daemon.NewFIServer(t.Context(), &broken, dbCon)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}
