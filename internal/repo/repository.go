package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// TransactionFunc is func signature for ExecTransaction.
type TransactionFunc func(context.Context, Repo) error

// Repo defines an interface for Repository operations.
//
// Every call carries a Scope. Tenant scoped resources are fenced to the
// scope's tenant no matter what the query asks for: the tenant predicate is
// merged into reads, updates and deletes, and creates are stamped with the
// scope's tenant. Point lookups additionally verify the ownership of the
// returned row and report a foreign row as not found.
type Repo interface {
	Create(ctx context.Context, scope Scope, resource Resource) error
	List(ctx context.Context, scope Scope, resource Resource, result any, query Query) (int, error)
	Count(ctx context.Context, scope Scope, resource Resource, query Query) (int, error)
	Delete(ctx context.Context, scope Scope, resource Resource, query Query) (bool, error)
	First(ctx context.Context, scope Scope, resource Resource, query Query) (bool, error)
	Patch(ctx context.Context, scope Scope, resource Resource, query Query) (bool, error)
	Set(ctx context.Context, scope Scope, resource Resource) error
	Transaction(ctx context.Context, txFunc TransactionFunc) error
}

// Resource defines the interface for Resource operations.
type Resource interface {
	IsTenantScoped() bool
	TableName() string
}

// TenantOwned is implemented by tenant scoped resources. The repository
// uses the accessors to stamp new rows and to verify row ownership.
type TenantOwned interface {
	Resource
	GetTenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// UniqueConstraintError represents an error caused by a violation of a unique constraint in the database.
type UniqueConstraintError struct {
	Detail string
}

// Error returns an error message describing the unique constraint violation.
func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}

const DefaultLimit = 100

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUniqueConstraint    = errors.New("unique constraint violation")
	ErrCreateResource      = errors.New("failed to create resource")
	ErrUpdateResource      = errors.New("failed to update resource")
	ErrDeleteResource      = errors.New("failed to delete resource")
	ErrGetResource         = errors.New("failed to get resource")
	ErrCountResource       = errors.New("failed to count resources")
	ErrSetResource         = errors.New("failed to set resource")
	ErrTransaction         = errors.New("failed to execute transaction")
	ErrInvalidFieldName    = errors.New("invalid field name")
	ErrScopeRequired       = errors.New("a valid repository scope is required")
	ErrTenantScopeRequired = errors.New("a tenant scope is required to mutate tenant scoped resources")
	ErrTenantAccessor      = errors.New("tenant scoped resource is missing tenant accessors")
)

// ProcessInBatch retrieves and processes records in batches from the database based on the provided query parameters.
// It iterates through all matching records using pagination to avoid loading large datasets into memory.
// The processFunc is called on the records, allowing custom processing logic.
// Processing stops immediately if processFunc returns an error.
func ProcessInBatch[T Resource](
	ctx context.Context,
	repo Repo,
	scope Scope,
	baseQuery *Query,
	batchSize int,
	processFunc func([]*T) error,
) error {
	offset := 0

	for {
		var items []*T

		query := baseQuery.SetLimit(batchSize).SetOffset(offset)

		count, err := repo.List(ctx, scope, *new(T), &items, *query)
		if err != nil {
			return err
		}

		err = processFunc(items)
		if err != nil {
			return err
		}

		offset += batchSize

		if offset >= count {
			break
		}
	}

	return nil
}
