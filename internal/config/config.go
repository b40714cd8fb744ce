package config

import (
	"errors"
	"net/netip"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/faithinsite/core/internal/errs"
)

var (
	ErrConfigurationValuesError  = errors.New("configuration value error")
	ErrNonDefinedTaskType        = errors.New("task type is unknown")
	ErrRepeatedTaskType          = errors.New("task type is specified more than once")
	ErrEmptyBaseDomain           = errors.New("platform base domain must be specified")
	ErrNonPositiveGuardValue     = errors.New("login guard values must be positive")
	ErrNonPositiveRetentionValue = errors.New("retention values must be positive")
	ErrBadTrustedProxy           = errors.New("trusted proxy must be a CIDR range")
	ErrLoadMTLSConfig            = errors.New("error loading mTLS config")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database     `yaml:"database"`
	DatabaseReplicas []Database   `yaml:"databaseReplicas"`
	Scheduler        Scheduler    `yaml:"scheduler"`
	HTTP             HTTPServer   `yaml:"http"`
	Platform         Platform     `yaml:"platform"`
	InternalAuth     InternalAuth `yaml:"internalAuth"`
	Session          Session      `yaml:"session"`
	LoginGuard       LoginGuard   `yaml:"loginGuard"`
	Retention        Retention    `yaml:"retention"`
	Provisioning     Provisioning `yaml:"provisioning"`
}

func (c *Config) Validate() error {
	err := c.Scheduler.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Platform.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.LoginGuard.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Retention.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	_, err = c.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	return nil
}

// Platform describes how the platform itself is reached.
type Platform struct {
	// BaseDomain is the apex under which tenant subdomains are served,
	// e.g. "example.org" serves "<slug>.example.org".
	BaseDomain string `yaml:"baseDomain"`
	DNS        DNS    `yaml:"dns"`

	// StatsInterval paces the serving stats gauge refresh.
	StatsInterval time.Duration `yaml:"statsInterval" default:"1m"`
}

func (p *Platform) Validate() error {
	if p.BaseDomain == "" {
		return ErrEmptyBaseDomain
	}

	return nil
}

// DNS holds settings for the TXT record lookups behind domain verification.
type DNS struct {
	Timeout time.Duration `yaml:"timeout" default:"5s"`
}

// InternalAuth protects the resolution endpoints reserved for the edge
// proxy. The secret is shared out of band.
type InternalAuth struct {
	Secret commoncfg.SourceRef `yaml:"secret"`
}

// Session holds the signing material and lifetime of issued session tokens.
type Session struct {
	JWTSecret commoncfg.SourceRef `yaml:"jwtSecret"`
	TokenTTL  time.Duration       `yaml:"tokenTTL" default:"1h"`
}

// LoginGuard holds the thresholds of the failed login throttle.
type LoginGuard struct {
	// MaxFailures locks an email after this many counted failures inside
	// the window.
	MaxFailures int `yaml:"maxFailures" default:"5"`

	// IPMultiplier sets the per address gate at MaxFailures times this
	// factor, spanning all emails behind that address.
	IPMultiplier int `yaml:"ipMultiplier" default:"4"`

	Window          time.Duration `yaml:"window" default:"15m"`
	LockoutDuration time.Duration `yaml:"lockoutDuration" default:"15m"`
}

func (g *LoginGuard) Validate() error {
	if g.MaxFailures <= 0 || g.IPMultiplier <= 0 {
		return ErrNonPositiveGuardValue
	}

	if g.Window <= 0 || g.LockoutDuration <= 0 {
		return ErrNonPositiveGuardValue
	}

	return nil
}

// Retention bounds how long login attempt rows are kept.
type Retention struct {
	MaxAge    time.Duration `yaml:"maxAge" default:"720h"`
	BatchSize int           `yaml:"batchSize" default:"500"`
}

func (r *Retention) Validate() error {
	if r.MaxAge <= 0 || r.BatchSize <= 0 {
		return ErrNonPositiveRetentionValue
	}

	return nil
}

// Provisioning config of application
type Provisioning struct {
	InitTenant InitTenantConfig `yaml:"initTenant"`
}

// InitTenantConfig describes a tenant created at boot so a fresh install
// has something to log into.
type InitTenantConfig struct {
	Enabled bool   `yaml:"enabled"`
	Slug    string `yaml:"slug"`
	Name    string `yaml:"name"`
}

// Scheduler holds a scheduler config
type Scheduler struct {
	TaskQueue Redis
	Tasks     []Task
}

func (s *Scheduler) Validate() error {
	checkedTasks := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		_, found := DefinedTasks[task.TaskType]
		if !found {
			return ErrNonDefinedTaskType
		}

		_, found = checkedTasks[task.TaskType]
		if found {
			return ErrRepeatedTaskType
		}

		checkedTasks[task.TaskType] = struct{}{}
	}

	return nil
}

// Task holds a task config
type Task struct {
	Cronspec string
	TaskType string
	Retries  int
}

// Redis holds Redis client config
type Redis struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	Port      string              `yaml:"port"`
	ACL       RedisACL            `yaml:"acl"`
	SecretRef commoncfg.SecretRef
}

type RedisACL struct {
	Enabled  bool                `yaml:"enabled"`
	Password commoncfg.SourceRef `yaml:"password"`
	Username commoncfg.SourceRef `yaml:"username"`
}

// Database holds database config
type Database struct {
	Name       string              `yaml:"name"`
	Port       string              `yaml:"port"`
	Host       commoncfg.SourceRef `yaml:"host"`
	User       commoncfg.SourceRef `yaml:"user"`
	Secret     commoncfg.SourceRef `yaml:"secret"`
	Migrations string              `yaml:"migrations" default:"migrations/sql"`
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`

	// TrustedProxies lists the CIDR ranges of the edge proxies whose
	// X-Forwarded-For header may stand in for the socket peer. Requests
	// from any other peer are keyed on the socket address, so a client
	// talking to us directly cannot pick the address the login throttle
	// counts against.
	TrustedProxies []string `yaml:"trustedProxies"`
}

// TrustedProxyPrefixes parses the configured proxy ranges.
func (h *HTTPServer) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(h.TrustedProxies))

	for _, raw := range h.TrustedProxies {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, errs.Wrap(ErrBadTrustedProxy, err)
		}

		prefixes = append(prefixes, prefix.Masked())
	}

	return prefixes, nil
}
