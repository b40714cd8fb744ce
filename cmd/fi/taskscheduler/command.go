package taskscheduler

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
		Use:   "taskscheduler",
		Short: "FI Task Scheduler",
		Long:  "FI Task Scheduler - Enqueues the periodic maintenance tasks on their cron schedules.",
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

			scheduler, err := async.New(ctx, cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to create the scheduler")
			}

			err = scheduler.RunScheduler()
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to start the scheduler job")
			}

			<-ctx.Done()

			err = scheduler.Shutdown(ctx)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to shutdown the scheduler")
			}

			log.Info(ctx, "shutting down scheduler")

			return err
		},
	}

	return cmd
}
