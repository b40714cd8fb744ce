package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/daemon"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/handlers"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/sql"
	"github.com/faithinsite/core/internal/sessiontoken"
)

const TestHostPrefix = "https://core.fi.test"

const (
	TestBaseDomain     = "fi.test"
	TestJWTSecret      = "test-session-signing-secret"
	TestInternalSecret = "test-edge-proxy-secret"

	// TestProxyAddr is the socket peer requests appear to come from. It
	// sits inside the test server's trusted proxy range, so forwarded
	// headers set by tests are honored unless a test overrides the peer.
	TestProxyAddr = "127.0.0.1:41000"
)

// TXTResolverMap serves TXT lookups from a map, standing in for live DNS.
// Names without an entry resolve to no records.
type TXTResolverMap map[string][]string

func (m TXTResolverMap) LookupTXT(_ context.Context, name string) ([]string, error) {
	return m[name], nil
}

type TestAPIServerConfig struct {
	Config   config.Config
	Resolver dnsverify.TXTResolver // stub DNS records, only set if needed
}

// NewAPIServer creates the full API handler with the given database
// connection. Secrets are pinned to the test values so tokens minted with
// NewTestSessionToken and the TestInternalSecret header are accepted.
func NewAPIServer(
	tb testing.TB,
	db *gorm.DB,
	testCfg TestAPIServerConfig,
) http.Handler {
	tb.Helper()

	cfg := testCfg.Config

	cfg.Database = TestDB
	cfg.Session.JWTSecret = commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  TestJWTSecret,
	}

	if cfg.Session.TokenTTL == 0 {
		cfg.Session.TokenTTL = time.Hour
	}

	if cfg.Platform.BaseDomain == "" {
		cfg.Platform.BaseDomain = TestBaseDomain
	}

	// A zero guard locks every attempt, so tests always get workable
	// thresholds unless they tightened them on purpose.
	if cfg.LoginGuard.MaxFailures == 0 {
		cfg.LoginGuard = config.LoginGuard{
			MaxFailures:     5,
			IPMultiplier:    4,
			Window:          15 * time.Minute,
			LockoutDuration: 15 * time.Minute,
		}
	}

	if len(cfg.HTTP.TrustedProxies) == 0 {
		cfg.HTTP.TrustedProxies = []string{"127.0.0.1/32"}
	}

	r := sql.NewRepository(db)
	verifier := dnsverify.New(testCfg.Resolver, time.Second)

	mgr, err := manager.New(r, &cfg, verifier)
	require.NoError(tb, err)

	trustedProxies, err := cfg.HTTP.TrustedProxyPrefixes()
	require.NoError(tb, err)

	return daemon.NewHandler(handlers.NewController(mgr, trustedProxies), mgr.Tokens, TestInternalSecret)
}

// NewTestSessionToken mints a session token the test server accepts.
func NewTestSessionToken(
	tb testing.TB,
	userID, tenantID uuid.UUID,
	email string,
	role constants.Role,
) string {
	tb.Helper()

	svc := sessiontoken.NewService([]byte(TestJWTSecret), time.Hour)

	token, _, err := svc.Issue(userID, tenantID, email, role)
	assert.NoError(tb, err)

	return token
}

// CreateTestUser stores a user with a real bcrypt hash so the password can
// be presented to the login endpoint. MinCost keeps the hashing cheap.
func CreateTestUser(
	ctx context.Context,
	tb testing.TB,
	r repo.Repo,
	tenantID uuid.UUID,
	email, password string,
	role constants.Role,
) *model.User {
	tb.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(tb, err)

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(tb, r.Create(ctx, repo.ForTenant(tenantID), user))

	return user
}

func GetTestURL(tb testing.TB, path string) string {
	tb.Helper()

	u, err := url.JoinPath(TestHostPrefix, path)
	assert.NoError(tb, err)

	uHex, err := url.PathUnescape(u)
	assert.NoError(tb, err)

	return uHex
}

type RequestOptions struct {
	Method     string // HTTP Method
	Endpoint   string
	Token      string    // Session token, sent as a bearer Authorization header
	Internal   bool      // Send the internal auth header the test server accepts
	Host       string    // Overrides the addressed host, for routes that resolve the tenant from it
	RemoteAddr string    // Overrides the socket peer, defaults to TestProxyAddr
	Body       io.Reader // Only need to be set for POST/PATCH Methods. Used with the WithString and WithJSON methods
	Headers    map[string]string
}

// WithString is a helper function that converts a string to an io.Reader.
// It is intended to be used as the Body field in RequestOptions when making HTTP requests in tests.
func WithString(tb testing.TB, i any) io.Reader {
	tb.Helper()

	str, ok := i.(string)
	if !ok {
		assert.Fail(tb, "Must provide a string")
	}

	return strings.NewReader(str)
}

// WithJSON is a helper function that marshals an object to JSON and returns an io.Reader.
// It is intended to be used as the Body field in RequestOptions when making HTTP requests in tests.
func WithJSON(tb testing.TB, i any) io.Reader {
	tb.Helper()

	bs, err := json.Marshal(i)
	assert.NoError(tb, err)

	return bytes.NewReader(bs)
}

// GetJSONBody is used to get a response out of an HTTP Body encoded as JSON
// For error responses use fiapi.ErrorMessage as it's type
func GetJSONBody[t any](tb testing.TB, w *httptest.ResponseRecorder) t {
	tb.Helper()

	var typ t

	err := json.Unmarshal(w.Body.Bytes(), &typ)
	assert.NoError(tb, err)

	return typ
}

// NewHTTPRequest builds an HTTP Request it sets default content-types for certain Methods
func NewHTTPRequest(tb testing.TB, opt RequestOptions) *http.Request {
	tb.Helper()

	r, err := http.NewRequestWithContext(
		tb.Context(),
		opt.Method,
		GetTestURL(tb, opt.Endpoint),
		opt.Body,
	)
	assert.NoError(tb, err)

	switch opt.Method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		r.Header.Set("Content-Type", "application/json")
	default:
		assert.Fail(tb, "HTTP Method not supported!")
	}

	if opt.Token != "" {
		r.Header.Set(constants.AuthorizationHeader, constants.BearerPrefix+opt.Token)
	}

	if opt.Host != "" {
		r.Host = opt.Host
	}

	r.RemoteAddr = TestProxyAddr
	if opt.RemoteAddr != "" {
		r.RemoteAddr = opt.RemoteAddr
	}

	if opt.Internal {
		r.Header.Set(constants.InternalAuthHeader, TestInternalSecret)
	}

	for k, v := range opt.Headers {
		r.Header.Add(k, v)
	}

	return r
}

// MakeHTTPRequest creates an HTTP method and gets its response for it
// On POST/PATCH methods, RequestOptions body should use WithString/WithJSON methods
func MakeHTTPRequest(tb testing.TB, server http.Handler, opt RequestOptions) *httptest.ResponseRecorder {
	tb.Helper()

	req := NewHTTPRequest(tb, opt)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	return w
}
