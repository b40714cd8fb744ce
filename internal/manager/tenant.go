package manager

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	ficontext "github.com/faithinsite/core/utils/context"
	"github.com/faithinsite/core/utils/sanitise"
)

const (
	minSlugLength = 3
	maxSlugLength = 63
)

// slugPattern mirrors a DNS label, since every slug is served as a
// subdomain of the platform base domain.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

type Tenant interface {
	GetTenant(ctx context.Context) (*model.Tenant, error) // Get tenant from context
	GetTenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	ListTenants(ctx context.Context, skip int, top int) ([]*model.Tenant, int, error)
	CreateTenant(ctx context.Context, tenant *model.Tenant) error
	UpdateTenantStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) error
	DeleteTenant(ctx context.Context, id uuid.UUID) error
}

type TenantManager struct {
	repo repo.Repo
}

func NewTenantManager(repo repo.Repo) *TenantManager {
	return &TenantManager{repo: repo}
}

// GetTenant returns the tenant of the calling session.
func (m *TenantManager) GetTenant(ctx context.Context) (*model.Tenant, error) {
	tenantID, err := ficontext.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	return m.GetTenantByID(ctx, tenantID)
}

// GetTenantByID looks a tenant up by primary key regardless of the calling
// session. Platform surfaces use this, tenant sessions go through GetTenant.
func (m *TenantManager) GetTenantByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	tenant := &model.Tenant{ID: id}

	_, err := m.repo.First(ctx, repo.Platform(), tenant, *repo.NewQuery())
	if err != nil {
		return nil, errs.Wrap(ErrGetTenant, err)
	}

	return tenant, nil
}

func (m *TenantManager) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	tenant := &model.Tenant{}
	ck := repo.NewCompositeKey().Where(repo.SlugField, slug)

	_, err := m.repo.First(ctx, repo.Platform(), tenant,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		return nil, errs.Wrap(ErrGetTenant, err)
	}

	return tenant, nil
}

func (m *TenantManager) ListTenants(ctx context.Context, skip int, top int) ([]*model.Tenant, int, error) {
	var tenants []*model.Tenant

	query := repo.NewQuery().SetLimit(top).SetOffset(skip).
		Order(repo.OrderField{Field: repo.SlugField, Direction: repo.Asc})

	count, err := m.repo.List(ctx, repo.Platform(), model.Tenant{}, &tenants, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListTenants, err)
	}

	return tenants, count, nil
}

func (m *TenantManager) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	err := validateSlug(tenant.Slug)
	if err != nil {
		return errs.Wrap(ErrCreateTenant, err)
	}

	if tenant.Name == "" {
		return errs.Wrap(ErrCreateTenant, ErrNameCannotBeEmpty)
	}

	_, err = sanitise.Stringlikes(tenant)
	if err != nil {
		return errs.Wrap(ErrSanitiseTenantData, err)
	}

	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}

	if tenant.Status == "" {
		tenant.Status = model.TenantStatusActive
	}

	err = tenant.Status.Validate()
	if err != nil {
		return errs.Wrap(ErrCreateTenant, err)
	}

	err = m.repo.Create(ctx, repo.Platform(), tenant)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return errs.Wrap(ErrTenantExists, err)
		}

		return errs.Wrap(ErrCreateTenant, err)
	}

	ctx = model.LogInjectTenant(ctx, tenant)
	log.Info(ctx, "Tenant created")

	return nil
}

func (m *TenantManager) UpdateTenantStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) error {
	err := status.Validate()
	if err != nil {
		return errs.Wrap(ErrUpdateTenant, err)
	}

	tenant := &model.Tenant{ID: id, Status: status}

	updated, err := m.repo.Patch(ctx, repo.Platform(), tenant,
		*repo.NewQuery().Update(repo.StatusField),
	)
	if err != nil {
		return errs.Wrap(ErrUpdateTenant, err)
	}

	if !updated {
		return errs.Wrap(ErrUpdateTenant, repo.ErrNotFound)
	}

	return nil
}

// DeleteTenant soft deletes a tenant. The row stays behind so historic
// audit entries keep a referent, but the tenant no longer resolves.
func (m *TenantManager) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	deleted, err := m.repo.Delete(ctx, repo.Platform(), &model.Tenant{ID: id}, *repo.NewQuery())
	if err != nil {
		return errs.Wrap(ErrDeleteTenant, err)
	}

	if !deleted {
		return errs.Wrap(ErrDeleteTenant, repo.ErrNotFound)
	}

	return nil
}

func validateSlug(slug string) error {
	if len(slug) < minSlugLength || len(slug) > maxSlugLength {
		return ErrSlugLength
	}

	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}

	return nil
}
