package model

import (
	"context"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"

	ficontext "github.com/faithinsite/core/utils/context"
)

func LogInjectTenant(ctx context.Context, tenant *Tenant) context.Context {
	return slogctx.With(ctx,
		slog.String("tenantId", tenant.ID.String()),
		slog.Group("tenantData",
			slog.String("slug", tenant.Slug),
			slog.String("status", string(tenant.Status)),
		),
	)
}

func WithLogInjectTenant(tenant *Tenant) ficontext.Opt {
	return func(ctx context.Context) context.Context {
		return LogInjectTenant(ctx, tenant)
	}
}

func LogInjectDomain(ctx context.Context, domain *CustomDomain) context.Context {
	return slogctx.With(ctx,
		slog.Group("domainData",
			slog.String("id", domain.ID.String()),
			slog.String("hostname", domain.Hostname),
			slog.String("status", string(domain.Status)),
		),
	)
}

func WithLogInjectDomain(domain *CustomDomain) ficontext.Opt {
	return func(ctx context.Context) context.Context {
		return LogInjectDomain(ctx, domain)
	}
}

func LogInjectRedirectRule(ctx context.Context, rule *RedirectRule) context.Context {
	return slogctx.With(ctx,
		slog.Group("redirectData",
			slog.String("id", rule.ID.String()),
			slog.String("sourcePath", rule.SourcePath),
		),
	)
}

func WithLogInjectRedirectRule(rule *RedirectRule) ficontext.Opt {
	return func(ctx context.Context) context.Context {
		return LogInjectRedirectRule(ctx, rule)
	}
}
