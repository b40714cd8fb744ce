package manager

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
)

// Gate names the throttle that denied an attempt.
type Gate string

const (
	GateEmail Gate = "email"
	GateIP    Gate = "ip"
)

// Verdict is the outcome of one lockout check. RetryAfter and Gate are only
// meaningful when Allowed is false.
type Verdict struct {
	Allowed    bool
	RetryAfter time.Duration
	Gate       Gate
}

// LoginGuard throttles failed logins. It keeps no state of its own: every
// check counts LoginAttempt rows inside the trailing window, so there is no
// counter that could drift or need resetting.
type LoginGuard struct {
	repo repo.Repo
	cfg  config.LoginGuard
}

func NewLoginGuard(repo repo.Repo, cfg config.LoginGuard) *LoginGuard {
	return &LoginGuard{repo: repo, cfg: cfg}
}

// NormalizeEmail trims and lowercases an address so that counting and user
// lookup agree on one spelling.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Check decides whether a login attempt for the email from the address may
// proceed. The email gate slides with the most recent counted failure, the
// address gate spans all emails behind the address.
//
// A failing count read allows the attempt: the password check still stands
// between the caller and a session, and an infrastructure problem must not
// lock out legitimate users.
func (g *LoginGuard) Check(ctx context.Context, email string, ip string) Verdict {
	email = NormalizeEmail(email)
	now := time.Now().UTC()
	windowStart := now.Add(-g.cfg.Window)

	verdict := g.checkEmailGate(ctx, email, now, windowStart)
	if !verdict.Allowed {
		return verdict
	}

	return g.checkIPGate(ctx, ip, windowStart)
}

func (g *LoginGuard) checkEmailGate(
	ctx context.Context,
	email string,
	now time.Time,
	windowStart time.Time,
) Verdict {
	var failures []*model.LoginAttempt

	ck := countedFailures(windowStart).Where(repo.EmailField, email)

	count, err := g.repo.List(ctx, repo.Platform(), model.LoginAttempt{}, &failures,
		*repo.NewQuery().
			Where(repo.NewCompositeKeyGroup(ck)).
			Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc}).
			SetLimit(1),
	)
	if err != nil {
		log.Error(ctx, "Failed to count login failures, allowing attempt", err)
		return Verdict{Allowed: true}
	}

	if count < g.cfg.MaxFailures || len(failures) == 0 {
		return Verdict{Allowed: true}
	}

	lockedUntil := failures[0].CreatedAt.Add(g.cfg.LockoutDuration)
	if now.Before(lockedUntil) {
		return Verdict{RetryAfter: lockedUntil.Sub(now), Gate: GateEmail}
	}

	return Verdict{Allowed: true}
}

func (g *LoginGuard) checkIPGate(ctx context.Context, ip string, windowStart time.Time) Verdict {
	ck := countedFailures(windowStart).Where(repo.IPAddressField, ip)

	count, err := g.repo.Count(ctx, repo.Platform(), &model.LoginAttempt{},
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(ck)),
	)
	if err != nil {
		log.Error(ctx, "Failed to count login failures by address, allowing attempt", err)
		return Verdict{Allowed: true}
	}

	if count >= g.cfg.MaxFailures*g.cfg.IPMultiplier {
		// The address gate has no single account to slide from, so the
		// retry hint is simply the lockout duration.
		return Verdict{RetryAfter: g.cfg.LockoutDuration, Gate: GateIP}
	}

	return Verdict{Allowed: true}
}

// Record appends one attempt to the audit trail. Rows are never updated or
// consolidated, the trail is the source of truth for every later check.
func (g *LoginGuard) Record(ctx context.Context, attempt *model.LoginAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	attempt.Email = NormalizeEmail(attempt.Email)

	err := g.repo.Create(ctx, repo.Platform(), attempt)
	if err != nil {
		return errs.Wrap(ErrRecordAttempt, err)
	}

	return nil
}

// countedFailures selects the failures that add to the lockout tally.
// Attempts rejected while already locked out are excluded, otherwise a
// probing client could extend a lockout forever.
func countedFailures(windowStart time.Time) repo.CompositeKey {
	return repo.NewCompositeKey().
		Where(repo.SuccessField, false).
		Where(repo.FailReasonField, model.FailReasonLockedOut, repo.NotEq).
		Where(repo.CreatedField, windowStart, repo.Gt)
}
