package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
)

// LoginAttemptSweeper deletes login attempts older than the retention cutoff.
// Each run removes at most one batch so a large backlog never holds a long
// transaction, the next scheduled run picks up the rest.
type LoginAttemptSweeper struct {
	repo repo.Repo
	cfg  config.Retention
}

func NewLoginAttemptSweeper(repo repo.Repo, cfg config.Retention) *LoginAttemptSweeper {
	return &LoginAttemptSweeper{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *LoginAttemptSweeper) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info(ctx, "Starting login attempt retention sweep")

	cutoff := time.Now().UTC().Add(-s.cfg.MaxAge)

	var expired []*model.LoginAttempt

	ck := repo.NewCompositeKey().Where(repo.CreatedField, cutoff, repo.Lt)

	total, err := s.repo.List(ctx, repo.Platform(), model.LoginAttempt{}, &expired,
		*repo.NewQuery().
			Where(repo.NewCompositeKeyGroup(ck)).
			Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Asc}).
			SetLimit(s.cfg.BatchSize),
	)
	if err != nil {
		log.Error(ctx, "Listing expired login attempts", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	if len(expired) == 0 {
		log.Debug(ctx, "No expired login attempts")
		return nil
	}

	ids := make([]uuid.UUID, len(expired))
	for i, attempt := range expired {
		ids[i] = attempt.ID
	}

	// Postgres cannot LIMIT a DELETE, so the batch is selected first and
	// removed by ID.
	_, err = s.repo.Delete(ctx, repo.Platform(), &model.LoginAttempt{},
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.IDField, ids),
		)),
	)
	if err != nil {
		log.Error(ctx, "Deleting expired login attempts", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Swept expired login attempts",
		slog.Int("deleted", len(ids)),
		slog.Int("remaining", total-len(ids)))

	return nil
}

func (s *LoginAttemptSweeper) TaskType() string {
	return config.TypeLoginAttemptRetention
}
