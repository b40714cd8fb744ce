package manager

import (
	"errors"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/sessiontoken"
)

var ErrLoadSessionSecret = errors.New("failed to load session signing secret")

type Manager struct {
	Tenants   Tenant
	Domains   *DomainManager
	Redirects *RedirectManager
	Guard     *LoginGuard
	Auth      *AuthManager

	// Tokens is shared with the session middleware so the tokens issued
	// here are parsed with the same key and TTL there.
	Tokens *sessiontoken.Service
}

func New(repo repo.Repo, cfg *config.Config, verifier *dnsverify.Verifier) (*Manager, error) {
	jwtSecret, err := commoncfg.LoadValueFromSourceRef(cfg.Session.JWTSecret)
	if err != nil {
		return nil, errs.Wrap(ErrLoadSessionSecret, err)
	}

	tokens := sessiontoken.NewService(jwtSecret, cfg.Session.TokenTTL)
	guard := NewLoginGuard(repo, cfg.LoginGuard)
	domains := NewDomainManager(repo, verifier, cfg.Platform.BaseDomain)

	return &Manager{
		Tenants:   NewTenantManager(repo),
		Domains:   domains,
		Redirects: NewRedirectManager(repo),
		Guard:     guard,
		Auth:      NewAuthManager(repo, guard, domains, tokens),
		Tokens:    tokens,
	}, nil
}
