package manager

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	ficontext "github.com/faithinsite/core/utils/context"
)

// MaxRedirectHops bounds how many rules a chain may pass through before it
// is reported as too deep.
const MaxRedirectHops = 5

// RedirectStatusCode is the status served for every resolved redirect.
// Destinations change rarely and edges may cache the answer.
const RedirectStatusCode = http.StatusMovedPermanently

// Redirect is a resolved answer for one request path.
type Redirect struct {
	Destination string
	StatusCode  int
}

type RedirectManager struct {
	repo repo.Repo
}

func NewRedirectManager(repo repo.Repo) *RedirectManager {
	return &RedirectManager{repo: repo}
}

// NormalizePath brings a request path into the canonical form rules are
// stored in: a leading slash, no trailing slash except for the root itself.
func NormalizePath(raw string) (string, error) {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return "", ErrInvalidPath
	}

	for _, r := range raw {
		if r < ' ' || r == 0x7f {
			return "", errs.Wrapf(ErrInvalidPath, "control characters are not allowed")
		}
	}

	if raw != "/" {
		raw = strings.TrimSuffix(raw, "/")
	}

	return raw, nil
}

// validateDestination accepts a site local path or an absolute http(s) URL.
func validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}

	for _, r := range dest {
		if r < ' ' || r == 0x7f {
			return errs.Wrapf(ErrInvalidDestination, "control characters are not allowed")
		}
	}

	if strings.HasPrefix(dest, "/") && !strings.HasPrefix(dest, "//") {
		return nil
	}

	u, err := url.Parse(dest)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}

func (m *RedirectManager) CreateRule(ctx context.Context, rule *model.RedirectRule) error {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return err
	}

	normalized, err := NormalizePath(rule.SourcePath)
	if err != nil {
		return err
	}

	rule.SourcePath = normalized

	err = validateDestination(rule.DestinationURL)
	if err != nil {
		return err
	}

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	err = m.repo.Create(ctx, repo.ForTenant(tenantID), rule)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return errs.Wrap(ErrRedirectExists, err)
		}

		return errs.Wrap(ErrCreateRedirect, err)
	}

	ctx = model.LogInjectRedirectRule(ctx, rule)
	log.Info(ctx, "Redirect rule created")

	return nil
}

func (m *RedirectManager) GetRule(ctx context.Context, id uuid.UUID) (*model.RedirectRule, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rule := &model.RedirectRule{ID: id}

	_, err = m.repo.First(ctx, repo.ForTenant(tenantID), rule, *repo.NewQuery())
	if err != nil {
		return nil, errs.Wrap(ErrGetRedirect, err)
	}

	return rule, nil
}

func (m *RedirectManager) ListRules(ctx context.Context, skip int, top int) ([]*model.RedirectRule, int, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}

	var rules []*model.RedirectRule

	query := repo.NewQuery().SetLimit(top).SetOffset(skip).
		Order(repo.OrderField{Field: repo.SourcePathField, Direction: repo.Asc})

	count, err := m.repo.List(ctx, repo.ForTenant(tenantID), model.RedirectRule{}, &rules, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListRedirects, err)
	}

	return rules, count, nil
}

// UpdateRule rewrites the destination and active flag of an existing rule.
// The source path is immutable, replacing it is a delete plus create.
func (m *RedirectManager) UpdateRule(ctx context.Context, rule *model.RedirectRule) error {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return err
	}

	err = validateDestination(rule.DestinationURL)
	if err != nil {
		return err
	}

	updated, err := m.repo.Patch(ctx, repo.ForTenant(tenantID), rule,
		*repo.NewQuery().Update(repo.DestinationURLField, repo.IsActiveField),
	)
	if err != nil {
		return errs.Wrap(ErrUpdateRedirect, err)
	}

	if !updated {
		return errs.Wrap(ErrUpdateRedirect, repo.ErrNotFound)
	}

	return nil
}

func (m *RedirectManager) DeleteRule(ctx context.Context, id uuid.UUID) error {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return err
	}

	deleted, err := m.repo.Delete(ctx, repo.ForTenant(tenantID), &model.RedirectRule{ID: id}, *repo.NewQuery())
	if err != nil {
		return errs.Wrap(ErrDeleteRedirect, err)
	}

	if !deleted {
		return errs.Wrap(ErrDeleteRedirect, repo.ErrNotFound)
	}

	return nil
}

// Resolve answers whether a tenant redirects the given path. The first
// matching rule alone decides the destination, the walk behind it only
// validates the chain: a loop or a chain of more than MaxRedirectHops rules
// suppresses the redirect entirely.
//
// ErrRedirectLoop and ErrRedirectTooDeep both mean "serve the path as
// content". They stay distinct errors so diagnostics can tell them apart.
func (m *RedirectManager) Resolve(ctx context.Context, slug string, rawPath string) (*Redirect, error) {
	path, err := NormalizePath(rawPath)
	if err != nil {
		return nil, err
	}

	tenant := &model.Tenant{}
	ck := repo.NewCompositeKey().Where(repo.SlugField, slug)

	_, err = m.repo.First(ctx, repo.Platform(), tenant,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoRedirect
		}

		return nil, errs.Wrap(ErrGetTenant, err)
	}

	if !tenant.IsServable() {
		return nil, ErrNoRedirect
	}

	scope := repo.ForTenant(tenant.ID)

	first, err := m.activeRule(ctx, scope, path)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoRedirect
		}

		return nil, errs.Wrap(ErrGetRedirect, err)
	}

	err = m.walkChain(ctx, scope, path, first)
	if err != nil {
		return nil, err
	}

	return &Redirect{
		Destination: first.DestinationURL,
		StatusCode:  RedirectStatusCode,
	}, nil
}

// walkChain follows local destinations from rule to rule. An external
// destination or a path without an active rule ends the chain as valid.
func (m *RedirectManager) walkChain(
	ctx context.Context,
	scope repo.Scope,
	path string,
	first *model.RedirectRule,
) error {
	seen := map[string]bool{path: true}
	current := first

	for hops := 1; ; hops++ {
		if !current.HasLocalDestination() {
			return nil
		}

		next, err := NormalizePath(current.DestinationURL)
		if err != nil {
			return nil
		}

		if seen[next] {
			return errs.Wrapf(ErrRedirectLoop, "at "+next)
		}

		seen[next] = true

		nextRule, err := m.activeRule(ctx, scope, next)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}

			return errs.Wrap(ErrGetRedirect, err)
		}

		if hops+1 > MaxRedirectHops {
			return errs.Wrapf(ErrRedirectTooDeep, "at "+next)
		}

		current = nextRule
	}
}

func (m *RedirectManager) activeRule(ctx context.Context, scope repo.Scope, path string) (*model.RedirectRule, error) {
	rule := &model.RedirectRule{}
	ck := repo.NewCompositeKey().
		Where(repo.SourcePathField, path).
		Where(repo.IsActiveField, true)

	_, err := m.repo.First(ctx, scope, rule,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		return nil, err
	}

	return rule, nil
}
