package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/lifecycle"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	ficontext "github.com/faithinsite/core/utils/context"
	"github.com/faithinsite/core/utils/token"
)

// maxHostnameLength is the DNS limit on a full hostname.
const maxHostnameLength = 253

// DomainManager owns the custom domain records of a tenant and the
// hostname to tenant resolution used by the edge.
type DomainManager struct {
	repo       repo.Repo
	verifier   *dnsverify.Verifier
	baseDomain string
}

func NewDomainManager(repo repo.Repo, verifier *dnsverify.Verifier, baseDomain string) *DomainManager {
	return &DomainManager{
		repo:       repo,
		verifier:   verifier,
		baseDomain: strings.ToLower(baseDomain),
	}
}

// NormalizeHostname lowercases a hostname and strips one trailing dot, the
// form DNS answers and browsers may carry. Control characters and oversized
// names are rejected before any lookup happens.
func NormalizeHostname(raw string) (string, error) {
	hostname := strings.ToLower(strings.TrimSuffix(raw, "."))

	if hostname == "" || len(hostname) > maxHostnameLength {
		return "", ErrInvalidHostname
	}

	for _, r := range hostname {
		if r < ' ' || r == 0x7f {
			return "", errs.Wrapf(ErrInvalidHostname, "control characters are not allowed")
		}
	}

	return hostname, nil
}

// CreateDomain registers a hostname for the calling tenant and attaches a
// fresh verification token. The domain starts PENDING and does not resolve
// until it has been verified.
func (m *DomainManager) CreateDomain(ctx context.Context, hostname string) (*model.CustomDomain, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	normalized, err := NormalizeHostname(hostname)
	if err != nil {
		return nil, err
	}

	challenge, err := token.NewVerificationToken()
	if err != nil {
		return nil, errs.Wrap(ErrGenerateChallenge, err)
	}

	domain := &model.CustomDomain{
		ID:                uuid.New(),
		Hostname:          normalized,
		Status:            model.DomainStatusPending,
		VerificationToken: challenge,
	}

	err = m.repo.Create(ctx, repo.ForTenant(tenantID), domain)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return nil, errs.Wrap(ErrDomainExists, err)
		}

		return nil, errs.Wrap(ErrCreateDomain, err)
	}

	return domain, nil
}

func (m *DomainManager) GetDomain(ctx context.Context, id uuid.UUID) (*model.CustomDomain, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	domain := &model.CustomDomain{ID: id}

	_, err = m.repo.First(ctx, repo.ForTenant(tenantID), domain, *repo.NewQuery())
	if err != nil {
		return nil, errs.Wrap(ErrGetDomain, err)
	}

	return domain, nil
}

func (m *DomainManager) ListDomains(ctx context.Context, skip int, top int) ([]*model.CustomDomain, int, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}

	var domains []*model.CustomDomain

	query := repo.NewQuery().SetLimit(top).SetOffset(skip).
		Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc})

	count, err := m.repo.List(ctx, repo.ForTenant(tenantID), model.CustomDomain{}, &domains, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListDomains, err)
	}

	return domains, count, nil
}

func (m *DomainManager) DeleteDomain(ctx context.Context, id uuid.UUID) error {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return err
	}

	deleted, err := m.repo.Delete(ctx, repo.ForTenant(tenantID), &model.CustomDomain{ID: id}, *repo.NewQuery())
	if err != nil {
		return errs.Wrap(ErrDeleteDomain, err)
	}

	if !deleted {
		return errs.Wrap(ErrDeleteDomain, repo.ErrNotFound)
	}

	return nil
}

// VerifyDomain runs the DNS ownership check for a pending or failed domain
// and persists the outcome. A domain that is already ACTIVE is returned as
// is: verification is idempotent and never demotes.
//
// A failed proof is not an error. The returned domain carries status ERROR
// and a human readable reason in LastError, and the next call may still
// succeed once the owner has published the record.
func (m *DomainManager) VerifyDomain(ctx context.Context, id uuid.UUID) (*model.CustomDomain, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	scope := repo.ForTenant(tenantID)
	domain := &model.CustomDomain{ID: id}

	_, err = m.repo.First(ctx, scope, domain, *repo.NewQuery())
	if err != nil {
		return nil, errs.Wrap(ErrGetDomain, err)
	}

	if domain.IsVerified() {
		return domain, nil
	}

	ctx = model.LogInjectDomain(ctx, domain)
	lc := lifecycle.NewLifecycle(domain)

	verifyErr := m.verifier.Verify(ctx, domain.Hostname, domain.VerificationToken)
	if verifyErr != nil {
		domain.LastError = verifyErr.Error()

		err = lc.ApplyTransition(ctx, lifecycle.TransitionFail)
	} else {
		now := time.Now().UTC()
		domain.VerifiedAt = &now
		domain.LastError = ""

		err = lc.ApplyTransition(ctx, lifecycle.TransitionActivate)
	}

	if err != nil {
		return nil, errs.Wrap(ErrUpdateDomainStatus, err)
	}

	_, err = m.repo.Patch(ctx, scope, domain,
		*repo.NewQuery().Update(repo.StatusField, repo.VerifiedAtField, repo.LastErrorField),
	)
	if err != nil {
		return nil, errs.Wrap(ErrUpdateDomainStatus, err)
	}

	if verifyErr != nil {
		log.Warn(ctx, "Domain verification failed",
			log.ErrorAttr(verifyErr),
		)
	} else {
		log.Info(ctx, "Domain verified")
	}

	return domain, nil
}

// ResolveTenant maps a request hostname onto the tenant it serves. A
// verified custom domain wins over the subdomain form, so a tenant can
// move a hostname it owns without a gap.
//
// Only ACTIVE domains and ACTIVE tenants resolve. Anything else reports
// ErrHostnameNotAssigned, indistinguishable from a hostname that was never
// registered.
func (m *DomainManager) ResolveTenant(ctx context.Context, rawHostname string) (*model.Tenant, error) {
	hostname, err := NormalizeHostname(rawHostname)
	if err != nil {
		return nil, err
	}

	domain := &model.CustomDomain{}
	ck := repo.NewCompositeKey().
		Where(repo.HostnameField, hostname).
		Where(repo.StatusField, model.DomainStatusActive)

	_, err = m.repo.First(ctx, repo.Platform(), domain,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)

	switch {
	case err == nil:
		return m.servableTenant(ctx, &model.Tenant{ID: domain.TenantID})
	case errors.Is(err, repo.ErrNotFound):
		return m.resolveSubdomain(ctx, hostname)
	default:
		return nil, errs.Wrap(ErrGetDomain, err)
	}
}

func (m *DomainManager) resolveSubdomain(ctx context.Context, hostname string) (*model.Tenant, error) {
	slug, found := strings.CutSuffix(hostname, "."+m.baseDomain)
	if !found || slug == "" || strings.Contains(slug, ".") {
		return nil, ErrHostnameNotAssigned
	}

	tenant := &model.Tenant{}
	ck := repo.NewCompositeKey().Where(repo.SlugField, slug)

	_, err := m.repo.First(ctx, repo.Platform(), tenant,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrHostnameNotAssigned
		}

		return nil, errs.Wrap(ErrGetTenant, err)
	}

	if !tenant.IsServable() {
		return nil, ErrHostnameNotAssigned
	}

	return tenant, nil
}

func (m *DomainManager) servableTenant(ctx context.Context, tenant *model.Tenant) (*model.Tenant, error) {
	_, err := m.repo.First(ctx, repo.Platform(), tenant, *repo.NewQuery())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrHostnameNotAssigned
		}

		return nil, errs.Wrap(ErrGetTenant, err)
	}

	if !tenant.IsServable() {
		return nil, ErrHostnameNotAssigned
	}

	return tenant, nil
}
