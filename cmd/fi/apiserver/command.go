package apiserver

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/daemon"
	"github.com/faithinsite/core/internal/db"
	"github.com/faithinsite/core/internal/db/dsn"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo"
	"github.com/faithinsite/core/internal/repo/sql"
)

const (
	healthStatusTimeoutS = 5 * time.Second
	postgresDriverName   = "pgx"
	labelEntity          = "entity"
	entityTenants        = "tenants"
	entityDomains        = "domains"
)

var defaultConfig = map[string]any{"Database": map[string]string{"Port": "5432"}}

var servingGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "fi_serving_entities",
		Help: "The number of active tenants and verified custom domains",
	},
	[]string{
		labelEntity,
	},
)

// - Starts the status server
// - Starts the FI API Server
func Run(ctx context.Context, cfg *config.Config) error {
	// LoggerConfig initialisation
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	log.Debug(ctx, "Starting the application", slog.Any("config", cfg))

	// OpenTelemetry initialisation
	err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to load the telemetry")
	}

	// Start status server
	startStatusServer(ctx, cfg)

	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting database connection")
	}

	// Create and start FI Server
	s, err := daemon.NewFIServer(ctx, cfg, dbCon)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating fi server")
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting fi api server")
	}

	<-ctx.Done()

	err = s.Close(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

// MonitorServingStats refreshes the serving gauges from the database. Only
// ACTIVE tenants and ACTIVE custom domains are servable, so only those are
// counted.
func MonitorServingStats(
	ctx context.Context,
	cfg config.Config,
) {
	log.Debug(ctx, "Registering serving stats gauge metric")

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		log.Error(ctx, "failed to initialize DB Connection", err)
		return
	}

	r := sql.NewRepository(dbCon)

	ticker := time.NewTicker(cfg.Platform.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "stopping serving stats monitoring")
			return
		case <-ticker.C:
			setServingGauge(ctx, r, entityTenants, &model.Tenant{}, model.TenantStatusActive)
			setServingGauge(ctx, r, entityDomains, &model.CustomDomain{}, model.DomainStatusActive)
		}
	}
}

func setServingGauge(
	ctx context.Context,
	r repo.Repo,
	entity string,
	resource repo.Resource,
	status any,
) {
	count, err := r.Count(ctx, repo.Platform(), resource,
		*repo.NewQuery().Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.StatusField, status),
		)),
	)
	if err != nil {
		log.Error(ctx, "failed to count serving entities", err, slog.String(labelEntity, entity))
		return
	}

	servingGauge.WithLabelValues(entity).Set(float64(count))
	log.Debug(ctx, "serving entities", slog.String(labelEntity, entity), slog.Int("count", count))
}

func startStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions := make([]health.Option, 0)
	healthOptions = append(healthOptions,
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeoutS),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "readiness status changed", slog.String("status", string(state.Status)))
		}),
	)

	dsnFromConfig, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		log.Error(ctx, "Could not load DSN from database config", err)
	}

	healthOptions = append(healthOptions,
		health.WithDatabaseChecker(
			postgresDriverName,
			dsnFromConfig,
		),
	)

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	if cfg.Telemetry.Metrics.Prometheus.Enabled {
		go MonitorServingStats(ctx, *cfg)
	}

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Failure on the status server", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	loader := commoncfg.NewLoader(
		cfg,
		commoncfg.WithDefaults(defaultConfig),
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
		commoncfg.WithEnvOverride(constants.APIName),
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to load config")
	}

	// Update Version
	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

func Cmd(buildInfo string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "apiserver",
		Short: "FI API Server",
		Long: "FI API Server serves the tenant admin API and the resolution " +
			"endpoints the edge proxy routes by.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load config")
			}

			err = Run(cmd.Context(), cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to run the api server")
			}

			return err
		},
	}

	return cmd
}
