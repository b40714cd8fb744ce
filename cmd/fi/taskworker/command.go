package taskworker

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/faithinsite/core/internal/async"
	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/log"
)

func Cmd(buildInfo string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "taskworker",
		Short: "FI Task Worker",
		Long:  "FI Task Worker - A background service that processes tasks asynchronously.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			defaultValues := map[string]any{}
			cfg := &config.Config{}

			loader := commoncfg.NewLoader(
				cfg,
				commoncfg.WithDefaults(defaultValues),
				commoncfg.WithPaths(
					constants.DefaultConfigPath1,
					constants.DefaultConfigPath2,
					".",
				),
				commoncfg.WithEnvOverride(constants.APIName),
			)

			err := loader.LoadConfig()
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load the config")
			}

			// Update Version
			err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
			if err != nil {
				return oops.In("main").
					Wrapf(err, "Failed to update the version configuration")
			}

			// LoggerConfig initialisation
			err = logger.InitAsDefault(cfg.Logger, cfg.Application)
			if err != nil {
				return oops.In("main").
					Wrapf(err, "Failed to initialise the logger")
			}

			worker, err := async.New(ctx, cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to create the worker")
			}

			err = worker.RunWorker(ctx)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to start the worker")
			}

			<-ctx.Done()

			err = worker.Shutdown(ctx)
			if err != nil {
				return oops.In("main").Wrapf(err, "%s", async.ErrClientShutdown.Error())
			}

			log.Info(ctx, "shutting down worker")

			return nil
		},
	}

	return cmd
}
