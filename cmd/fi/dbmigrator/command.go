package dbmigrator

import (
	"context"
	"strconv"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/db"
)

// Run applies migrations against the configured database. A zero version
// migrates to the latest, any other version becomes the target.
func Run(ctx context.Context, cfg *config.Config, migration db.Migration, version int64) error {
	m, err := db.NewMigrator(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating migrator")
	}

	if version != 0 {
		return m.MigrateTo(ctx, migration, version)
	}

	return m.MigrateToLatest(ctx, migration)
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	loader := commoncfg.NewLoader(
		cfg,
		commoncfg.WithDefaults(map[string]any{}),
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

	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	return cfg, nil
}

func upCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			return Run(cmd.Context(), cfg, db.Migration{}, 0)
		},
	}
}

func downCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			return Run(cmd.Context(), cfg, db.Migration{Downgrade: true}, 0)
		},
	}
}

func upToCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "up-to <version>",
		Short: "Apply migrations up to and including a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return oops.In("main").Wrapf(err, "parsing migration version %q", args[0])
			}

			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			return Run(cmd.Context(), cfg, db.Migration{}, version)
		},
	}
}

func statusCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			m, err := db.NewMigrator(cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "creating migrator")
			}

			return m.Status(cmd.Context())
		},
	}
}

func createCmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			m, err := db.NewMigrator(cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "creating migrator")
			}

			return m.Create(args[0])
		},
	}
}

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbmigrator",
		Short: "FI DB Migrator",
		Long:  "FI DB Migrator - Manages the database schema with goose migrations.",
	}

	cmd.AddCommand(
		upCmd(buildInfo),
		downCmd(buildInfo),
		upToCmd(buildInfo),
		statusCmd(buildInfo),
		createCmd(buildInfo),
	)

	return cmd
}
