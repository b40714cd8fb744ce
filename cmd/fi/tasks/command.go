package tasks

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/faithinsite/core/internal/async"
	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
)

// Enqueuer is the slice of the async app the invoke command needs.
type Enqueuer interface {
	EnqueueTask(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuerFactory builds the enqueuer when the command actually runs, so
// config loading and queue connections only happen once the arguments
// have been validated.
type EnqueuerFactory func(ctx context.Context) (Enqueuer, error)

// NewInvokeCmd builds the invoke subcommand around the given factory.
func NewInvokeCmd(newEnqueuer EnqueuerFactory) *cobra.Command {
	var taskName string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invoke a scheduled task immediately. Usage: fi tasks invoke --task [task type]",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, found := config.DefinedTasks[taskName]
			if !found {
				cmd.PrintErrf("Unknown task type: %s\n", taskName)
				return nil
			}

			enqueuer, err := newEnqueuer(cmd.Context())
			if err != nil {
				return err
			}

			info, err := enqueuer.EnqueueTask(cmd.Context(), asynq.NewTask(taskName, nil))
			if err != nil {
				cmd.PrintErrf("Failed to enqueue task: %v\n", err)
				return err
			}

			cmd.Printf("Task %s enqueued with ID: %s\n", taskName, info.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&taskName, "task", "", "Task type to invoke")

	err := cmd.MarkFlagRequired("task")
	if err != nil {
		cmd.PrintErrf("failed to mark flag 'task' as required: %v\n", err)
	}

	return cmd
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

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "FI Task Tools",
		Long:  "FI Task Tools - Invoke the asynchronous background tasks on demand.",
	}

	cmd.AddCommand(NewInvokeCmd(func(ctx context.Context) (Enqueuer, error) {
		cfg, err := loadConfig(buildInfo)
		if err != nil {
			return nil, err
		}

		return async.New(ctx, cfg)
	}))

	return cmd
}
