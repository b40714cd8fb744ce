package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/sessiontoken"
)

const minPasswordLength = 8

var validRoles = map[constants.Role]struct{}{
	constants.PlatformAdminRole:  {},
	constants.TenantOperatorRole: {},
	constants.MemberRole:         {},
}

// AuthManager runs the login flow: guard check, tenant resolution from the
// request host, credential verification and session token issue.
type AuthManager struct {
	repo    repo.Repo
	guard   *LoginGuard
	domains *DomainManager
	tokens  *sessiontoken.Service
}

// LoginResult carries the issued session token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthManager(
	repo repo.Repo,
	guard *LoginGuard,
	domains *DomainManager,
	tokens *sessiontoken.Service,
) *AuthManager {
	return &AuthManager{
		repo:    repo,
		guard:   guard,
		domains: domains,
		tokens:  tokens,
	}
}

// Login authenticates an email and password for the tenant serving the
// given host. Every outcome is appended to the audit trail. Bad
// credentials, an unknown user and an unservable host all report the same
// ErrInvalidCredentials so a caller cannot probe which accounts exist.
func (m *AuthManager) Login(ctx context.Context, host, email, password, ip string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	verdict := m.guard.Check(ctx, email, ip)
	if !verdict.Allowed {
		m.record(ctx, &model.LoginAttempt{
			Email:      email,
			IPAddress:  ip,
			FailReason: model.FailReasonLockedOut,
		})

		return nil, &LockoutError{RetryAfter: verdict.RetryAfter, Gate: verdict.Gate}
	}

	tenant, err := m.domains.ResolveTenant(ctx, host)
	if err != nil {
		if errors.Is(err, ErrHostnameNotAssigned) || errors.Is(err, ErrInvalidHostname) {
			m.record(ctx, &model.LoginAttempt{
				Email:      email,
				IPAddress:  ip,
				FailReason: model.FailReasonUnknownUser,
			})

			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	user := &model.User{}
	ck := repo.NewCompositeKey().Where(repo.EmailField, email)

	_, err = m.repo.First(ctx, repo.ForTenant(tenant.ID), user,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			m.record(ctx, &model.LoginAttempt{
				Email:      email,
				IPAddress:  ip,
				FailReason: model.FailReasonUnknownUser,
				TenantID:   &tenant.ID,
			})

			return nil, ErrInvalidCredentials
		}

		return nil, errs.Wrap(ErrGetUser, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		m.record(ctx, &model.LoginAttempt{
			Email:      email,
			IPAddress:  ip,
			FailReason: model.FailReasonBadCredentials,
			TenantID:   &tenant.ID,
		})

		return nil, ErrInvalidCredentials
	}

	m.record(ctx, &model.LoginAttempt{
		Email:     email,
		IPAddress: ip,
		Success:   true,
		TenantID:  &tenant.ID,
	})

	sessionToken, expiresAt, err := m.tokens.Issue(user.ID, tenant.ID, user.Email, user.Role)
	if err != nil {
		return nil, errs.Wrap(ErrIssueSessionToken, err)
	}

	return &LoginResult{Token: sessionToken, ExpiresAt: expiresAt, User: user}, nil
}

// CreateUser provisions a member for a tenant. There is no self service
// signup, users come from operator tooling.
func (m *AuthManager) CreateUser(
	ctx context.Context,
	tenantID uuid.UUID,
	email, password string,
	role constants.Role,
) (*model.User, error) {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, errs.Wrap(ErrCreateUser, ErrInvalidEmail)
	}

	if len(password) < minPasswordLength {
		return nil, errs.Wrap(ErrCreateUser, ErrWeakPassword)
	}

	if role == "" {
		role = constants.MemberRole
	}

	if _, ok := validRoles[role]; !ok {
		return nil, errs.Wrap(ErrCreateUser, ErrInvalidRole)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(ErrHashPassword, err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	err = m.repo.Create(ctx, repo.ForTenant(tenantID), user)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return nil, errs.Wrap(ErrUserExists, err)
		}

		return nil, errs.Wrap(ErrCreateUser, err)
	}

	return user, nil
}

// record appends to the audit trail. A bookkeeping failure is logged and
// swallowed, it must not turn a decided login outcome into an error.
func (m *AuthManager) record(ctx context.Context, attempt *model.LoginAttempt) {
	err := m.guard.Record(ctx, attempt)
	if err != nil {
		log.Error(ctx, "Failed to record login attempt", err)
	}
}
