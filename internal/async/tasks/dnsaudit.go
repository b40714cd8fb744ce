package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
)

var dnsDriftTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fi_domain_dns_drift_total",
	Help: "Active custom domains whose verification TXT record no longer carries the expected token",
}, []string{"reason"})

const auditBatchSize = 100

// DomainVerifier re-checks the DNS ownership proof of a hostname.
type DomainVerifier interface {
	Verify(ctx context.Context, hostname, token string) error
}

// DomainDNSAuditor re-checks the TXT records of active custom domains.
// Drift is logged and counted, never acted on: a withdrawn record must not
// take a serving domain down. Operators decide what to do with the signal.
type DomainDNSAuditor struct {
	repo     repo.Repo
	verifier DomainVerifier
}

func NewDomainDNSAuditor(repo repo.Repo, verifier DomainVerifier) *DomainDNSAuditor {
	return &DomainDNSAuditor{
		repo:     repo,
		verifier: verifier,
	}
}

func (a *DomainDNSAuditor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info(ctx, "Starting domain DNS audit")

	ck := repo.NewCompositeKey().Where(repo.StatusField, model.DomainStatusActive)

	// Ordered by the unique hostname so the batch pages are stable.
	query := repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(ck)).
		Order(repo.OrderField{Field: repo.HostnameField, Direction: repo.Asc})

	checked := 0
	drifted := 0

	err := repo.ProcessInBatch(ctx, a.repo, repo.Platform(), query, auditBatchSize,
		func(domains []*model.CustomDomain) error {
			for _, domain := range domains {
				checked++

				err := a.verifier.Verify(ctx, domain.Hostname, domain.VerificationToken)
				if err == nil {
					continue
				}

				drifted++
				reason := driftReason(err)
				dnsDriftTotal.WithLabelValues(reason).Inc()

				domainCtx := model.LogInjectDomain(ctx, domain)
				log.Warn(domainCtx, "Active domain failed DNS re-check",
					slog.String("reason", reason))
			}

			return nil
		})
	if err != nil {
		log.Error(ctx, "Listing active domains for DNS audit", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Completed domain DNS audit",
		slog.Int("checked", checked),
		slog.Int("drifted", drifted))

	return nil
}

func (a *DomainDNSAuditor) TaskType() string {
	return config.TypeDomainDNSAudit
}

func driftReason(err error) string {
	switch {
	case errors.Is(err, dnsverify.ErrTokenMismatch):
		return "token_mismatch"
	case errors.Is(err, dnsverify.ErrLookupFailed):
		return "lookup_failed"
	default:
		return "unknown"
	}
}
