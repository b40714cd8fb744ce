package repo_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/mock"
)

func TestProcessInBatch(t *testing.T) {
	// Arrange
	ctx := t.Context()
	mockRepo := mock.NewInMemoryRepository()

	tenantID := uuid.New()
	scope := repo.ForTenant(tenantID)
	total := 7

	for i := range total {
		err := mockRepo.Create(ctx, scope, &model.RedirectRule{
			ID:             uuid.New(),
			SourcePath:     fmt.Sprintf("/old-%d", i),
			DestinationURL: "/new",
		})
		require.NoError(t, err)
	}

	// Act
	var seen int

	batchSizes := []int{}

	err := repo.ProcessInBatch(ctx, mockRepo, scope, repo.NewQuery(), 3,
		func(rules []*model.RedirectRule) error {
			batchSizes = append(batchSizes, len(rules))
			seen += len(rules)

			return nil
		})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, total, seen)
	assert.Equal(t, []int{3, 3, 1}, batchSizes)
}

func TestProcessInBatch_StopsOnError(t *testing.T) {
	// Arrange
	ctx := t.Context()
	mockRepo := mock.NewInMemoryRepository()

	tenantID := uuid.New()
	scope := repo.ForTenant(tenantID)

	for i := range 4 {
		err := mockRepo.Create(ctx, scope, &model.RedirectRule{
			ID:             uuid.New(),
			SourcePath:     fmt.Sprintf("/old-%d", i),
			DestinationURL: "/new",
		})
		require.NoError(t, err)
	}

	// Act
	calls := 0

	err := repo.ProcessInBatch(ctx, mockRepo, scope, repo.NewQuery(), 2,
		func([]*model.RedirectRule) error {
			calls++
			return assert.AnError
		})

	// Assert
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}
