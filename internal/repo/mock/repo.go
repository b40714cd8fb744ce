package mock

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/repo"
)

// InMemoryRepository implements repo.Repo on top of an InMemoryDB. It
// applies the same tenant fencing as the SQL repository, so tests see
// identical cross tenant behavior without a running database.
type InMemoryRepository struct {
	db *InMemoryDB
}

var _ repo.Repo = &InMemoryRepository{}

// NewRepository creates a repository over the given store. Repositories
// sharing a store see each other's writes.
func NewRepository(db *InMemoryDB) *InMemoryRepository {
	return &InMemoryRepository{
		db: db,
	}
}

// NewInMemoryRepository creates a repository with its own empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewRepository(NewInMemoryDB())
}

func (r *InMemoryRepository) Create(_ context.Context, scope repo.Scope, resource repo.Resource) error {
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

	err = r.db.insert(resource)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return err
		}

		return errs.Wrap(repo.ErrCreateResource, err)
	}

	return nil
}

func (r *InMemoryRepository) List(
	_ context.Context,
	scope repo.Scope,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return 0, err
	}

	rows, total, err := r.db.selectRows(resource.TableName(), query, fence, scope.TenantID())
	if err != nil {
		return 0, errs.Wrap(repo.ErrGetResource, err)
	}

	err = assignRows(result, rows)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *InMemoryRepository) Count(
	_ context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (int, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return 0, err
	}

	_, total, err := r.db.selectRows(resource.TableName(), query, fence, scope.TenantID())
	if err != nil {
		return 0, errs.Wrap(repo.ErrCountResource, err)
	}

	return total, nil
}

func (r *InMemoryRepository) Delete(
	_ context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return false, err
	}

	structVal, err := structValue(resource)
	if err != nil {
		return false, err
	}

	q := query
	if group, ok := primaryKeyGroup(structVal); ok {
		q.CompositeKeyGroup = appendGroup(query.CompositeKeyGroup, group)
	}

	deleted, err := r.db.deleteRows(resource.TableName(), q, fence, scope.TenantID())
	if err != nil {
		return false, errs.Wrap(repo.ErrDeleteResource, err)
	}

	return deleted > 0, nil
}

func (r *InMemoryRepository) First(
	_ context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, false)
	if err != nil {
		return false, err
	}

	structVal, err := structValue(resource)
	if err != nil {
		return false, err
	}

	pkColumn := primaryKeyColumn(structVal.Type())

	q := query
	if group, ok := primaryKeyGroup(structVal); ok {
		q.CompositeKeyGroup = appendGroup(query.CompositeKeyGroup, group)
	}

	q.OrderFields = nil
	if pkColumn != "" {
		q.OrderFields = []repo.OrderField{{Field: pkColumn, Direction: repo.Asc}}
	}

	q.Offset = 0
	q.Limit = 1

	rows, _, err := r.db.selectRows(resource.TableName(), q, fence, scope.TenantID())
	if err != nil {
		return false, errs.Wrap(repo.ErrGetResource, err)
	}

	if len(rows) == 0 {
		return false, repo.ErrNotFound
	}

	structVal.Set(rows[0])

	if fence {
		owned, ok := resource.(repo.TenantOwned)
		if !ok {
			return false, repo.ErrTenantAccessor
		}

		// A row owned by a foreign tenant is reported as not found, never
		// as a distinct outcome.
		if owned.GetTenantID() != scope.TenantID() {
			return false, repo.ErrNotFound
		}
	}

	return true, nil
}

func (r *InMemoryRepository) Patch(
	_ context.Context,
	scope repo.Scope,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	fence, err := scope.Check(resource, true)
	if err != nil {
		return false, err
	}

	structVal, err := structValue(resource)
	if err != nil {
		return false, err
	}

	pkColumn := primaryKeyColumn(structVal.Type())

	q := query
	if group, ok := primaryKeyGroup(structVal); ok {
		q.CompositeKeyGroup = appendGroup(query.CompositeKeyGroup, group)
	}

	var first reflect.Value

	touched, err := r.db.mutateRows(resource.TableName(), q, fence, scope.TenantID(),
		func(row reflect.Value) error {
			err := applyUpdate(row, structVal, query.UpdateFields, pkColumn)
			if err != nil {
				return err
			}

			autoTimestamps(row, false)

			if !first.IsValid() {
				first = cloneValue(row)
			}

			return nil
		})
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	if first.IsValid() {
		structVal.Set(first)
	}

	return touched > 0, nil
}

func (r *InMemoryRepository) Set(_ context.Context, scope repo.Scope, resource repo.Resource) error {
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

	err = r.db.upsert(resource, fence, scope.TenantID())
	if err != nil {
		return errs.Wrap(repo.ErrSetResource, err)
	}

	return nil
}

// Transaction runs txFunc against the same store. There is no rollback:
// changes made before a failing txFunc stay applied.
func (r *InMemoryRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := txFunc(ctx, r)
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

func primaryKeyGroup(structVal reflect.Value) (repo.CompositeKeyGroup, bool) {
	pkColumn := primaryKeyColumn(structVal.Type())
	if pkColumn == "" {
		return repo.CompositeKeyGroup{}, false
	}

	field, ok := columnValue(structVal, pkColumn)
	if !ok || field.IsZero() {
		return repo.CompositeKeyGroup{}, false
	}

	key := repo.NewCompositeKey().Where(pkColumn, field.Interface())

	return repo.NewCompositeKeyGroup(key), true
}

func appendGroup(groups []repo.CompositeKeyGroup, extra repo.CompositeKeyGroup) []repo.CompositeKeyGroup {
	out := make([]repo.CompositeKeyGroup, 0, len(groups)+1)
	out = append(out, groups...)

	return append(out, extra)
}

func assignRows(result any, rows []reflect.Value) error {
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrMustPointerToSlice
	}

	slice := rv.Elem()
	if slice.Kind() != reflect.Slice {
		return ErrMustBeSlice
	}

	elemType := slice.Type().Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(rows))

	for _, row := range rows {
		switch {
		case elemType == row.Type():
			out = reflect.Append(out, row)
		case elemType.Kind() == reflect.Pointer && elemType.Elem() == row.Type():
			item := reflect.New(row.Type())
			item.Elem().Set(row)
			out = reflect.Append(out, item)
		default:
			return errs.Wrap(ErrItemNotAssignable, fmt.Errorf("%s into %s", row.Type(), elemType))
		}
	}

	slice.Set(out)

	return nil
}
