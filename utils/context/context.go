package context

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/errs"
)

var (
	ErrExtractTenantID = errors.New("could not extract tenant ID from context")
	ErrGetRequestID    = errors.New("no requestID found in context")
	ErrExtractSession  = errors.New("could not extract session from context")
)

// Session carries the authenticated caller identity for one request.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     constants.Role
}

type Opt func(ctx context.Context) context.Context

//nolint:fatcontext
func New(ctx context.Context, opts ...Opt) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, opt := range opts {
		ctx = opt(ctx)
	}
	return ctx
}

type key string

const (
	requestID = key("requestID")
	session   = key("session")
)

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestID, uuid.NewString())
}

func GetRequestID(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestID).(string)
	if !ok || requestID == "" {
		return "", ErrGetRequestID
	}

	return requestID, nil
}

func InjectSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, session, s)
}

func WithSession(s *Session) Opt {
	return func(ctx context.Context) context.Context {
		return InjectSession(ctx, s)
	}
}

func ExtractSession(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(session).(*Session)
	if !ok || s == nil {
		return nil, ErrExtractSession
	}

	return s, nil
}

func ExtractTenantID(ctx context.Context) (uuid.UUID, error) {
	s, err := ExtractSession(ctx)
	if err != nil {
		return uuid.Nil, errs.Wrap(ErrExtractTenantID, err)
	}

	return s.TenantID, nil
}

func IsPlatformAdmin(ctx context.Context) bool {
	s, err := ExtractSession(ctx)
	if err != nil {
		return false
	}

	return s.Role == constants.PlatformAdminRole
}
