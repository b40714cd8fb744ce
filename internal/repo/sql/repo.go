package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/violations"
)

var (
	ErrUnsupportedOrderDirective = errors.New("unsupported order directive")
	ErrUnsupportedOperation      = errors.New("unsupported comparison operation")
)

// ResourceRepository represents the repository for managing Resource data.
type ResourceRepository struct {
	db *gorm.DB
}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{
		db: db,
	}
}

// Create adds meta information and stores a Resource. On tenant scoped
// resources the scope's tenant overwrites whatever the caller put on the
// struct.
func (r *ResourceRepository) Create(ctx context.Context, scope repo.Scope, resource repo.Resource) error {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return err
	}

	if fence {
		owned, ok := resource.(repo.TenantOwned)
		if !ok {
			return repo.ErrTenantAccessor
		}

		owned.SetTenantID(scope.TenantID())
	}

	err = r.db.WithContext(ctx).Create(resource).Error
	if err != nil {
		log.Error(ctx, "error creating resource", err)

		if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
			return errs.Wrap(repo.ErrUniqueConstraint, err)
		}

		return errs.Wrap(repo.ErrCreateResource, err)
	}

	return nil
}

// List retrieves records from the database based on the provided query parameters and model.
// Result is an address
func (r *ResourceRepository) List(
	ctx context.Context,
	scope repo.Scope,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return 0, err
	}

	var count int64

	db := r.db.WithContext(ctx).Model(resource)

	db, err = applyQuery(db, query)
	if err != nil {
		return 0, err
	}

	if fence {
		db = db.Where(repo.TenantIDField+" = ?", scope.TenantID())
	}

	db = db.Count(&count)
	if db.Error != nil {
		return 0, errs.Wrap(repo.ErrGetResource, db.Error)
	}

	for _, order := range query.OrderFields {
		switch order.Direction {
		case repo.Desc:
			db = db.Order(order.Field + " desc")
		case repo.Asc:
			db = db.Order(order.Field + " asc")
		default:
			return 0, ErrUnsupportedOrderDirective
		}
	}

	res := applyPagination(db, query).Find(result)
	if res.Error != nil {
		return 0, errs.Wrap(repo.ErrGetResource, res.Error)
	}

	return int(count), nil
}

// Count returns the number of records matching the query without fetching
// any rows.
func (r *ResourceRepository) Count(
	ctx context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (int, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return 0, err
	}

	var count int64

	db := r.db.WithContext(ctx).Model(resource)

	db, err = applyQuery(db, query)
	if err != nil {
		return 0, err
	}

	if fence {
		db = db.Where(repo.TenantIDField+" = ?", scope.TenantID())
	}

	err = db.Count(&count).Error
	if err != nil {
		log.Error(ctx, "error counting resources", err)
		return 0, errs.Wrap(repo.ErrCountResource, err)
	}

	return int(count), nil
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
// If no query is provided it deletes the item by the primaryKey
func (r *ResourceRepository) Delete(
	ctx context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return false, err
	}

	db, err := applyQuery(
		r.db.WithContext(ctx).Clauses(clause.Returning{}),
		query,
	)
	if err != nil {
		return false, err
	}

	if fence {
		db = db.Where(repo.TenantIDField+" = ?", scope.TenantID())
	}

	result := db.Delete(resource)
	if result.Error != nil {
		log.Error(ctx, "error deleting resource", result.Error)
		return false, errs.Wrap(repo.ErrDeleteResource, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// First fill given Resource with data, if found. Given Resource is used as query data.
// It will find the resource with the primary key as the where condition by omition
func (r *ResourceRepository) First(
	ctx context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return false, err
	}

	db := r.db.WithContext(ctx).Model(resource)

	db, err = applyQuery(db, query)
	if err != nil {
		return false, err
	}

	if fence {
		db = db.Where(repo.TenantIDField+" = ?", scope.TenantID())
	}

	res := db.First(resource)
	if res.Error != nil {
		log.Error(ctx, "error finding the resource", res.Error)

		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return false, errs.Wrap(repo.ErrNotFound, res.Error)
		}

		return false, errs.Wrap(repo.ErrGetResource, res.Error)
	}

	if fence {
		owned, ok := resource.(repo.TenantOwned)
		if !ok {
			return false, repo.ErrTenantAccessor
		}

		// A row owned by a foreign tenant is reported as not found, never
		// as a distinct outcome.
		if owned.GetTenantID() != scope.TenantID() {
			log.Warn(ctx, "cross tenant read collapsed to not found",
				slog.String("table", resource.TableName()),
				slog.String("scope", scope.String()),
			)

			return false, repo.ErrNotFound
		}
	}

	return res.RowsAffected > 0, nil
}

// Patch will patch the resource with primary key as the where condition.
//
// It returns true if a record was patched successfully,
// and error if there was an error during the patch.
func (r *ResourceRepository) Patch(
	ctx context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return false, err
	}

	db := applyUpdateQuery(
		r.db.WithContext(ctx).Model(resource).Clauses(clause.Returning{}),
		query,
	)

	db, err = applyQuery(db, query)
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	if fence {
		db = db.Where(repo.TenantIDField+" = ?", scope.TenantID())
	}

	res := db.Updates(resource)
	if res.Error != nil {
		log.Error(ctx, "error updating resource", res.Error)

		if violations.IsUniqueConstraint(res.Error) ||
			errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, errs.Wrap(repo.ErrUniqueConstraint, res.Error)
		}

		return false, errs.Wrap(repo.ErrUpdateResource, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// Set will create an item or update it if it already exists
// It returns an error if there was an error during the operation
func (r *ResourceRepository) Set(ctx context.Context, scope repo.Scope, resource repo.Resource) error {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return err
	}

	onConflict := clause.OnConflict{UpdateAll: true}

	if fence {
		owned, ok := resource.(repo.TenantOwned)
		if !ok {
			return repo.ErrTenantAccessor
		}

		owned.SetTenantID(scope.TenantID())

		// A conflicting row of a foreign tenant is left untouched.
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{
				SQL:  fmt.Sprintf("%s.%s = ?", resource.TableName(), repo.TenantIDField),
				Vars: []any{scope.TenantID()},
			},
		}}
	}

	err = r.db.WithContext(ctx).Clauses(onConflict).Create(resource).Error
	if err != nil {
		log.Error(ctx, "error setting the resource", err)
		return errs.Wrap(repo.ErrSetResource, err)
	}

	return nil
}

// Transaction wraps a function inside a database transaction.
// txFunc is a type TransactionFunc where we can define the transactional logic.
// if txFunc return no error then transaction is committed,
// else if txFunc return error then transaction is rolled back.
// Note: please dont use Goroutines inside the txFunc as this might lead to panic.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := r.db.WithContext(ctx).Transaction(
		func(tx *gorm.DB) error {
			errorChan := make(chan error, 1)

			go func() {
				errorChan <- txFunc(
					ctx,
					NewRepository(tx),
				)
			}()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-errorChan:
				return err
			}
		},
	)
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

// apply update operations on the db action
//
//nolint:unqueryvet
func applyUpdateQuery(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.UpdateFields.All {
		db = db.Select("*")
	}

	if !query.UpdateFields.All && len(query.UpdateFields.Fields) > 0 {
		sel := make([]string, len(query.UpdateFields.Fields))
		copy(sel, query.UpdateFields.Fields)

		db = db.Select(sel)
	}

	return db
}

// applyQuery applies the query to the database.
func applyQuery(db *gorm.DB, query repo.Query) (*gorm.DB, error) {
	if len(query.CompositeKeyGroup) > 0 {
		baseQuery := db.Session(&gorm.Session{NewDB: true})

		for i, ck := range query.CompositeKeyGroup {
			tk, err := handleCompositeKey(db, ck.CompositeKey)
			if err != nil {
				return nil, err
			}

			if i == 0 {
				baseQuery = baseQuery.Where(tk)
				continue
			}

			if ck.IsStrict {
				baseQuery = baseQuery.Where(tk)
			} else {
				baseQuery = baseQuery.Or(tk)
			}
		}

		db = db.Where(baseQuery)
	}

	return db, nil
}

func applyPagination(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.Limit <= 0 {
		query.Limit = repo.DefaultLimit
	}

	return db.Offset(query.Offset).Limit(query.Limit)
}

// handleCompositeKey applies the composite key to the query.
func handleCompositeKey(db *gorm.DB, compositeKey repo.CompositeKey) (*gorm.DB, error) {
	tx := db.Session(&gorm.Session{NewDB: true})

	for _, cond := range compositeKey.Conds {
		entry := cond.Value
		if entry.Err != nil {
			return nil, entry.Err
		}

		var err error

		tx, err = applyFieldCondition(tx, cond.Field, entry.Key, compositeKey.IsStrict)
		if err != nil {
			return nil, err
		}
	}

	return tx, nil
}

func applyFieldCondition(tx *gorm.DB, field string, key repo.Key, isStrict bool) (*gorm.DB, error) {
	switch key.Operation {
	case repo.GreaterThan, repo.LessThan, repo.NotEqual:
		return applyCondition(tx, field, string(key.Operation), key.Value, isStrict), nil
	case repo.Equal:
		return applyFieldEqualCondition(tx, field, key, isStrict), nil
	}

	return nil, ErrUnsupportedOperation
}

func applyFieldEqualCondition(tx *gorm.DB, field string, key repo.Key, isStrict bool) *gorm.DB {
	switch key.Value {
	case repo.NotEmpty:
		return tx.Where(field + " IS NOT NULL").Where(field+" != ?", "")
	case repo.Empty:
		return tx.Where(field+" IS NULL OR "+field+" = ?", "")
	default:
		v := reflect.ValueOf(key.Value)
		isSlice := (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type() != reflect.TypeFor[uuid.UUID]()

		if isSlice {
			return applyCondition(tx, field, "IN", key.Value, isStrict)
		}

		return applyCondition(tx, field, "=", key.Value, isStrict)
	}
}

func applyCondition(tx *gorm.DB, field, operator string, value any, isStrict bool) *gorm.DB {
	if isStrict {
		return tx.Where(fmt.Sprintf("%s %s (?)", field, operator), value)
	}

	return tx.Or(fmt.Sprintf("%s %s ?", field, operator), value)
}
