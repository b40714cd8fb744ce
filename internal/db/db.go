package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
)

var (
	ErrEmptyTenantSlug = errors.New("initial tenant slug cannot be empty")
	ErrEmptyTenantName = errors.New("initial tenant name cannot be empty")
	ErrSeedTenant      = errors.New("failed to save initial tenant")
)

const DBLogDomain = "db"

// Models lists every persisted model, parents before children, so the
// slice can drive schema creation in foreign key order.
func Models() []any {
	return []any{
		&model.Tenant{},
		&model.User{},
		&model.CustomDomain{},
		&model.RedirectRule{},
		&model.LoginAttempt{},
	}
}

// StartDB starts the DB connection and provisions the initial tenant when
// one is configured.
func StartDB(
	ctx context.Context,
	cfg *config.Config,
) (*gorm.DB, error) {
	log.Info(ctx, "Starting DB connection ")

	dbCon, err := StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to initialize DB Connection")
	}

	err = addTenantFromConfig(ctx, dbCon, cfg.Provisioning.InitTenant)
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to add initial tenant")
	}

	return dbCon, nil
}

func validateInitTenant(initTenant config.InitTenantConfig) error {
	if initTenant.Slug == "" {
		return ErrEmptyTenantSlug
	}

	if initTenant.Name == "" {
		return ErrEmptyTenantName
	}

	return nil
}

// addTenantFromConfig creates the configured bootstrap tenant. An existing
// tenant with the same slug is left as is.
func addTenantFromConfig(
	ctx context.Context,
	db *gorm.DB,
	initTenant config.InitTenantConfig,
) error {
	if !initTenant.Enabled {
		log.Info(ctx, "Initial tenant will not be provisioned")
		return nil
	}

	err := validateInitTenant(initTenant)
	if err != nil {
		return err
	}

	tenant := &model.Tenant{
		ID:     uuid.New(),
		Slug:   initTenant.Slug,
		Name:   initTenant.Name,
		Status: model.TenantStatusActive,
	}

	err = db.WithContext(ctx).Create(tenant).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Wrap(ErrSeedTenant, err)
	}

	return nil
}
