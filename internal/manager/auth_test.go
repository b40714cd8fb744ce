package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/mock"
	"github.com/faithinsite/core/internal/sessiontoken"
)

const sessionSecret = "test-signing-secret"

// attemptSinkRepo drops writes to the login attempt trail, standing in for
// an audit store that is down while the rest of the database still answers.
type attemptSinkRepo struct {
	repo.Repo
}

func (r *attemptSinkRepo) Create(ctx context.Context, scope repo.Scope, resource repo.Resource) error {
	if _, ok := resource.(*model.LoginAttempt); ok {
		return repo.ErrCreateResource
	}

	return r.Repo.Create(ctx, scope, resource)
}

func SetupManager(t *testing.T) (*manager.Manager, repo.Repo) {
	t.Helper()

	r := mock.NewInMemoryRepository()

	cfg := &config.Config{
		Platform: config.Platform{BaseDomain: baseDomain},
		Session: config.Session{
			JWTSecret: commoncfg.SourceRef{
				Source: commoncfg.EmbeddedSourceValue,
				Value:  sessionSecret,
			},
			TokenTTL: time.Hour,
		},
		LoginGuard: guardCfg,
	}

	verifier := dnsverify.New(&stubResolver{records: map[string][]string{}}, time.Second)

	m, err := manager.New(r, cfg, verifier)
	require.NoError(t, err)

	return m, r
}

func TestCreateUser(t *testing.T) {
	m, r := SetupManager(t)
	ctx := t.Context()

	grace := seedTenant(t, r, "grace", model.TenantStatusActive)
	hope := seedTenant(t, r, "hope", model.TenantStatusActive)

	t.Run("Should create a user with a hashed password", func(t *testing.T) {
		user, err := m.Auth.CreateUser(ctx, grace.ID, "Pastor@Grace.Church", "sermon-notes-8", constants.TenantOperatorRole)
		require.NoError(t, err)
		assert.Equal(t, "pastor@grace.church", user.Email)
		assert.Equal(t, constants.TenantOperatorRole, user.Role)
		assert.Equal(t, grace.ID, user.TenantID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("sermon-notes-8")))
	})

	t.Run("Should default the role to member", func(t *testing.T) {
		user, err := m.Auth.CreateUser(ctx, grace.ID, "member@grace.church", "quiet-pews-9", "")
		require.NoError(t, err)
		assert.Equal(t, constants.MemberRole, user.Role)
	})

	t.Run("Should reject a weak password", func(t *testing.T) {
		_, err := m.Auth.CreateUser(ctx, grace.ID, "weak@grace.church", "short", constants.MemberRole)
		assert.ErrorIs(t, err, manager.ErrWeakPassword)
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		_, err := m.Auth.CreateUser(ctx, grace.ID, "not-an-email", "long-enough-8", constants.MemberRole)
		assert.ErrorIs(t, err, manager.ErrInvalidEmail)
	})

	t.Run("Should reject an unknown role", func(t *testing.T) {
		_, err := m.Auth.CreateUser(ctx, grace.ID, "who@grace.church", "long-enough-8", constants.Role("OVERLORD"))
		assert.ErrorIs(t, err, manager.ErrInvalidRole)
	})

	t.Run("Should reject a duplicated email for the tenant", func(t *testing.T) {
		_, err := m.Auth.CreateUser(ctx, grace.ID, "pastor@grace.church", "another-pass-8", constants.MemberRole)
		assert.ErrorIs(t, err, manager.ErrUserExists)
	})

	t.Run("Should allow the same email for another tenant", func(t *testing.T) {
		user, err := m.Auth.CreateUser(ctx, hope.ID, "pastor@grace.church", "other-tenant-8", constants.MemberRole)
		require.NoError(t, err)
		assert.Equal(t, hope.ID, user.TenantID)
	})
}

func TestLogin(t *testing.T) {
	m, r := SetupManager(t)
	ctx := t.Context()

	grace := seedTenant(t, r, "grace", model.TenantStatusActive)
	host := "grace." + baseDomain

	pastor, err := m.Auth.CreateUser(ctx, grace.ID, "pastor@grace.church", "sermon-notes-8", constants.TenantOperatorRole)
	require.NoError(t, err)

	_, err = m.Auth.CreateUser(ctx, grace.ID, "deacon@grace.church", "offering-tray-7", constants.MemberRole)
	require.NoError(t, err)

	lastAttempt := func(t *testing.T, email string) *model.LoginAttempt {
		t.Helper()

		var attempts []*model.LoginAttempt

		ck := repo.NewCompositeKey().Where(repo.EmailField, email)

		_, err := r.List(ctx, repo.Platform(), model.LoginAttempt{}, &attempts,
			*repo.NewQuery().
				Where(repo.NewCompositeKeyGroup(ck)).
				Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc}).
				SetLimit(1),
		)
		require.NoError(t, err)
		require.NotEmpty(t, attempts)

		return attempts[0]
	}

	t.Run("Should issue a session token", func(t *testing.T) {
		result, err := m.Auth.Login(ctx, host, "pastor@grace.church", "sermon-notes-8", "203.0.113.1")
		require.NoError(t, err)
		assert.Equal(t, pastor.ID, result.User.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

		claims, err := sessiontoken.NewService([]byte(sessionSecret), time.Hour).Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "pastor@grace.church", claims.Email)
		assert.Equal(t, string(constants.TenantOperatorRole), claims.Role)

		tenantID, err := claims.Tenant()
		require.NoError(t, err)
		assert.Equal(t, grace.ID, tenantID)

		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, pastor.ID, userID)

		attempt := lastAttempt(t, "pastor@grace.church")
		assert.True(t, attempt.Success)
		require.NotNil(t, attempt.TenantID)
		assert.Equal(t, grace.ID, *attempt.TenantID)
	})

	t.Run("Should treat the email case insensitively", func(t *testing.T) {
		result, err := m.Auth.Login(ctx, host, " PASTOR@Grace.Church ", "sermon-notes-8", "203.0.113.2")
		require.NoError(t, err)
		assert.Equal(t, pastor.ID, result.User.ID)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		_, err := m.Auth.Login(ctx, host, "pastor@grace.church", "wrong-guess-1", "203.0.113.3")
		assert.ErrorIs(t, err, manager.ErrInvalidCredentials)

		attempt := lastAttempt(t, "pastor@grace.church")
		assert.False(t, attempt.Success)
		assert.Equal(t, model.FailReasonBadCredentials, attempt.FailReason)
	})

	t.Run("Should reject an unknown email", func(t *testing.T) {
		_, err := m.Auth.Login(ctx, host, "stranger@grace.church", "whatever-pw-1", "203.0.113.4")
		assert.ErrorIs(t, err, manager.ErrInvalidCredentials)

		attempt := lastAttempt(t, "stranger@grace.church")
		assert.Equal(t, model.FailReasonUnknownUser, attempt.FailReason)
		require.NotNil(t, attempt.TenantID)
		assert.Equal(t, grace.ID, *attempt.TenantID)
	})

	t.Run("Should reject an unknown host", func(t *testing.T) {
		_, err := m.Auth.Login(ctx, "nowhere.example", "pastor@grace.church", "sermon-notes-8", "203.0.113.5")
		assert.ErrorIs(t, err, manager.ErrInvalidCredentials)

		attempt := lastAttempt(t, "pastor@grace.church")
		assert.Equal(t, model.FailReasonUnknownUser, attempt.FailReason)
		assert.Nil(t, attempt.TenantID)
	})

	t.Run("Should reject an empty password", func(t *testing.T) {
		_, err := m.Auth.Login(ctx, host, "pastor@grace.church", "", "203.0.113.6")
		assert.ErrorIs(t, err, manager.ErrInvalidCredentials)
	})

	t.Run("Should lock the email after repeated failures", func(t *testing.T) {
		for range guardCfg.MaxFailures {
			_, err := m.Auth.Login(ctx, host, "deacon@grace.church", "wrong-guess-1", "203.0.113.7")
			assert.ErrorIs(t, err, manager.ErrInvalidCredentials)
		}

		// The correct password no longer helps while the lockout holds.
		_, err := m.Auth.Login(ctx, host, "deacon@grace.church", "offering-tray-7", "203.0.113.7")
		require.ErrorIs(t, err, manager.ErrLoginLocked)

		var lockout *manager.LockoutError
		require.ErrorAs(t, err, &lockout)
		assert.Equal(t, manager.GateEmail, lockout.Gate)
		assert.Greater(t, lockout.RetryAfter, time.Duration(0))

		attempt := lastAttempt(t, "deacon@grace.church")
		assert.Equal(t, model.FailReasonLockedOut, attempt.FailReason)
	})
}

func TestLoginAuditUnavailable(t *testing.T) {
	inner := mock.NewInMemoryRepository()

	cfg := &config.Config{
		Platform: config.Platform{BaseDomain: baseDomain},
		Session: config.Session{
			JWTSecret: commoncfg.SourceRef{
				Source: commoncfg.EmbeddedSourceValue,
				Value:  sessionSecret,
			},
			TokenTTL: time.Hour,
		},
		LoginGuard: guardCfg,
	}

	verifier := dnsverify.New(&stubResolver{records: map[string][]string{}}, time.Second)

	m, err := manager.New(&attemptSinkRepo{Repo: inner}, cfg, verifier)
	require.NoError(t, err)

	ctx := t.Context()
	grace := seedTenant(t, inner, "grace", model.TenantStatusActive)
	host := "grace." + baseDomain

	pastor, err := m.Auth.CreateUser(ctx, grace.ID, "pastor@grace.church", "sermon-notes-8", constants.TenantOperatorRole)
	require.NoError(t, err)

	// The throttle rejects excess attempts; its bookkeeping failing must
	// not turn a decided outcome into an error.
	t.Run("Should still issue a session token", func(t *testing.T) {
		result, err := m.Auth.Login(ctx, host, "pastor@grace.church", "sermon-notes-8", "203.0.113.1")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, pastor.ID, result.User.ID)
	})

	t.Run("Should still decide a failure on the credentials", func(t *testing.T) {
		_, err := m.Auth.Login(ctx, host, "pastor@grace.church", "wrong-guess-1", "203.0.113.1")
		assert.ErrorIs(t, err, manager.ErrInvalidCredentials)
	})

	t.Run("Should have written nothing to the trail", func(t *testing.T) {
		var attempts []*model.LoginAttempt

		count, err := inner.List(ctx, repo.Platform(), model.LoginAttempt{}, &attempts, *repo.NewQuery())
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
