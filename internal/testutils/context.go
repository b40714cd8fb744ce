package testutils

import (
	"context"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/constants"
	ficontext "github.com/faithinsite/core/utils/context"
)

// CtxWithSession adds an authenticated session to the context for testing.
func CtxWithSession(ctx context.Context, userID, tenantID uuid.UUID, email string, role constants.Role) context.Context {
	return ficontext.InjectSession(ctx, &ficontext.Session{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
		Role:     role,
	})
}

// CtxWithTenant adds a member session for the given tenant to the context.
func CtxWithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return CtxWithSession(ctx, uuid.New(), tenantID, "member@test.example", constants.MemberRole)
}
