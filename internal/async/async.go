package async

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/hibiken/asynq"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"gorm.io/gorm"

	"github.com/faithinsite/core/internal/async/tasks"
	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/db"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/repo/sql"
)

const (
	// syncInterval is the interval at which the scheduled task manager will check for config changes.
	syncInterval = 10 * time.Second
)

var (
	ErrLoadingTaskQueueHost = errors.New("error loading task queue host")
	ErrMTLSRedisClientOpt   = errors.New("error redis client opt")
	ErrSecretTypeQueue      = errors.New("unsupported secret type for task queue")
	ErrACLPassword          = errors.New("ACL is not load password for redis client")
	ErrACLUsername          = errors.New("ACL is not load username for redis client")
)

// TaskHandler defines the interface for handling async
type TaskHandler interface {
	ProcessTask(ctx context.Context, task *asynq.Task) error
	TaskType() string
}

// App manages task processing, scheduling, and worker functionality
type App struct {
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqServerCfg asynq.Config
	taskQueueCfg   asynq.RedisClientOpt
	tasks          map[string]TaskHandler
	cfg            *config.Config
	dbCon          *gorm.DB
}

// New creates a new instance of App
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	taskQueueCfg := cfg.Scheduler.TaskQueue

	taskQueueHost, err := commoncfg.LoadValueFromSourceRef(taskQueueCfg.Host)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingTaskQueueHost, err)
	}

	var redisOpts asynq.RedisClientOpt

	switch taskQueueCfg.SecretRef.Type {
	case commoncfg.InsecureSecretType:
		taskQueueUsername, taskQueuePassword, err := loadACLAuthFromConfig(taskQueueCfg)
		if err != nil {
			return nil, err
		}

		redisOpts = asynq.RedisClientOpt{
			Addr:     net.JoinHostPort(string(taskQueueHost), taskQueueCfg.Port),
			Password: string(taskQueuePassword),
			Username: string(taskQueueUsername),
		}
	case commoncfg.MTLSSecretType:
		redisOpts, err = buildMTLSRedisClientOpt(taskQueueCfg, taskQueueHost)
		if err != nil {
			return nil, errs.Wrap(ErrMTLSRedisClientOpt, err)
		}
	case commoncfg.ApiTokenSecretType, commoncfg.BasicSecretType, commoncfg.OAuth2SecretType:
		return nil, ErrSecretTypeQueue
	default:
		return nil, ErrSecretTypeQueue
	}

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, errs.Wrap(db.ErrStartingDBCon, err)
	}

	return &App{
		taskQueueCfg: redisOpts,
		asynqClient:  asynq.NewClient(redisOpts),
		tasks:        make(map[string]TaskHandler),
		dbCon:        dbCon,
		cfg:          cfg,
	}, nil
}

// GetTaskQueueCfg exposes the resolved Redis client options.
func (a *App) GetTaskQueueCfg() asynq.RedisClientOpt {
	return a.taskQueueCfg
}

// RegisterTasks registers multiple task handlers
func (a *App) RegisterTasks(ctx context.Context, handlers []TaskHandler) {
	for _, handler := range handlers {
		taskType := handler.TaskType()
		a.tasks[taskType] = handler
		log.Info(ctx, "Registered task", slog.String("Name", taskType))
	}
}

// RunWorker starts the worker process to process the tasks
func (a *App) RunWorker(ctx context.Context) error {
	log.Info(ctx, "Starting async worker")

	r := sql.NewRepository(a.dbCon)
	verifier := dnsverify.New(nil, a.cfg.Platform.DNS.Timeout)

	log.Info(ctx, "Registering Tasks")
	a.RegisterTasks(ctx,
		[]TaskHandler{
			tasks.NewLoginAttemptSweeper(r, a.cfg.Retention),
			tasks.NewDomainDNSAuditor(r, verifier),
		})

	a.asynqServer = asynq.NewServer(a.taskQueueCfg, a.asynqServerCfg)

	// Create a new mux and register all task handlers
	mux := asynq.NewServeMux()

	for taskName, handler := range a.tasks {
		h := handler // Create a local copy to avoid closure problems

		mux.HandleFunc(taskName, func(ctx context.Context, task *asynq.Task) error {
			return h.ProcessTask(ctx, task)
		})
	}

	log.Info(ctx, "Starting worker server")

	err := a.asynqServer.Run(mux)
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	return nil
}

// RunScheduler starts the cron job scheduling
// It starts the cron related tasks defined in the schedulerTasksConfig
func (a *App) RunScheduler() error {
	provider := &ScheduledTaskConfigProvider{a.cfg}

	mgr, err := asynq.NewPeriodicTaskManager(
		asynq.PeriodicTaskManagerOpts{
			RedisConnOpt:               a.taskQueueCfg,
			PeriodicTaskConfigProvider: provider,
			SyncInterval:               syncInterval,
		})
	if err != nil {
		return errs.Wrap(ErrCreatingScheduler, err)
	}

	err = mgr.Run()
	if err != nil {
		return errs.Wrap(ErrRunningScheduler, err)
	}

	return nil
}

// EnqueueTask is used to run tasks
func (a *App) EnqueueTask(
	ctx context.Context,
	task *asynq.Task,
	opts ...asynq.Option,
) (*asynq.TaskInfo, error) {
	ctx = log.InjectTask(ctx, task)
	log.Debug(ctx, "Enqueuing task to be processed")

	info, err := a.asynqClient.Enqueue(task, opts...)
	if err != nil {
		return nil, errs.Wrap(ErrEnqueueingTask, err)
	}

	log.Debug(ctx, "Enqueued task")

	return info, nil
}

// Shutdown gracefully shuts down the worker and scheduler
func (a *App) Shutdown(ctx context.Context) error {
	log.Info(ctx, "Starting async app shutdown")

	if a.asynqServer != nil {
		a.asynqServer.Shutdown()
	}

	if a.asynqClient != nil {
		err := a.asynqClient.Close()
		if err != nil {
			return errs.Wrap(ErrClientShutdown, err)
		}
	}

	log.Info(ctx, "Async app shutdown completed")

	return nil
}

func buildMTLSRedisClientOpt(
	taskQueueCfg config.Redis,
	taskQueueHost []byte,
) (asynq.RedisClientOpt, error) {
	tlsConfig, err := commoncfg.LoadMTLSConfig(&taskQueueCfg.SecretRef.MTLS)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(config.ErrLoadMTLSConfig, err)
	}

	clientOps := asynq.RedisClientOpt{
		Addr:      net.JoinHostPort(string(taskQueueHost), taskQueueCfg.Port),
		TLSConfig: tlsConfig,
	}

	if taskQueueCfg.ACL.Enabled {
		taskQueueUsername, taskQueuePassword, err := loadACLAuthFromConfig(taskQueueCfg)
		if err != nil {
			return asynq.RedisClientOpt{}, err
		}

		clientOps.Username = string(taskQueueUsername)
		clientOps.Password = string(taskQueuePassword)
	}

	return clientOps, nil
}

func loadACLAuthFromConfig(cfg config.Redis) ([]byte, []byte, error) {
	username, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Username)
	if err != nil {
		return nil, nil, ErrACLUsername
	}

	password, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Password)
	if err != nil {
		return nil, nil, ErrACLPassword
	}

	return username, password, nil
}
