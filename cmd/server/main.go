package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/credentials"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/tasktracker/internal/infrastructure/sqlite"
	"github.com/fastygo/tasktracker/internal/lifecycle"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/repository/postgres"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	"github.com/fastygo/tasktracker/repository/sqlite"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

type storage struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	instance repository.InstanceRepository
	probe    monitor.Probe
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.LogEncoding(),
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage initialisation failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	probes := []monitor.Probe{store.probe}

	var identityCache repository.IdentityCache
	if cfg.RedisEnabled() {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", redisClient)
		instanceID, err := store.instance.InstanceID(appCtx)
		if err != nil {
			zapLogger.Fatal("store instance lookup failed", zap.Error(err))
		}
		identityCache = redisRepo.NewIdentityCache(redisClient, instanceID, cfg.Redis.CacheTTL)
		probes = append(probes, monitor.Probe{
			Name:     "redis",
			Required: true,
			Check:    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	mon := monitor.New(cfg.Monitor.Interval, zapLogger, probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	tokens, err := credentials.NewTokenManager(cfg.JWT.Secret,
		credentials.WithIssuer(cfg.JWT.Issuer),
		credentials.WithTTL(cfg.JWT.TTL))
	if err != nil {
		zapLogger.Fatal("token manager", zap.Error(err))
	}
	hasher := credentials.NewHasher(cfg.JWT.BcryptCost)

	authUseCase := authUC.New(store.users, identityCache, hasher, tokens, zapLogger)
	taskUseCase := taskUC.New(store.tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(authUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger, r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("environment", cfg.Environment),
			zap.String("driver", cfg.Database.Driver),
			zap.Bool("identity_cache", identityCache != nil))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, log *zap.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(ctx, cfg.Database.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		manager.RegisterCloser("sqlite", db)
		if cfg.Migrations.Enabled {
			if err := sqliteInfra.RunMigrations(cfg.Database.SQLitePath, cfg.Migrations.Path, log); err != nil {
				return nil, err
			}
		}
		return &storage{
			users:    sqlite.NewUserRepository(db),
			tasks:    sqlite.NewTaskRepository(db),
			instance: sqlite.NewInstanceRepository(db),
			probe:    monitor.Probe{Name: "sqlite", Required: true, Check: db.PingContext},
		}, nil
	default:
		if err := pgInfra.RunMigrations(cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		return &storage{
			users:    postgres.NewUserRepository(pool),
			tasks:    postgres.NewTaskRepository(pool),
			instance: postgres.NewInstanceRepository(pool),
			probe:    monitor.Probe{Name: "postgresql", Required: true, Check: pool.Ping},
		}, nil
	}
}
