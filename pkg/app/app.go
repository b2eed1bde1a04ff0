// Package app 提供应用程序的装配：配置、存储、路由、后台任务与状态消费者.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appcache "github.com/lostyway/cloud-file-storage/pkg/cache"
	"github.com/lostyway/cloud-file-storage/pkg/configs"
	"github.com/lostyway/cloud-file-storage/pkg/internal/consumer"
	"github.com/lostyway/cloud-file-storage/pkg/internal/jobs"
	"github.com/lostyway/cloud-file-storage/pkg/internal/router"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage"
	"github.com/lostyway/cloud-file-storage/pkg/log"
	"github.com/lostyway/cloud-file-storage/pkg/metrics"
	"github.com/lostyway/cloud-file-storage/pkg/middleware"
	"github.com/lostyway/cloud-file-storage/pkg/scheduler"
)

const shutdownTimeout = 10 * time.Second

// App 聚合 HTTP 引擎、后台调度器与状态消费者的生命周期.
type App struct {
	Engine *gin.Engine

	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler

	consumerCancel contextPkg.CancelFunc
	consumerDone   chan struct{}
}

// NewApp 按配置装配整个网关.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	log.Init()

	config := configs.GetConfig()
	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.StorageMiddleware(manager),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.PrometheusMiddleware(),
		// 下载接口返回 zip 或原始字节流，不做二次压缩
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`.*/download.*`})),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.Breaker),
		middleware.AuthMiddleware(config.Auth),
	)

	if config.Metrics.Enabled {
		metrics.RegisterRoutes(config.Metrics, engine)
	}

	app := &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	app.sched = sched
	engine.Use(middleware.SchedulerMiddleware(sched))

	base := engine.Group(config.Server.BasePath)
	router.Register(base, router.Options{ResponseCache: app.responseCache()})

	return app
}

// responseCache 读缓存启用时构造响应缓存中间件.
func (a *App) responseCache() gin.HandlerFunc {
	if !a.config.Cache.Enabled {
		return nil
	}

	kvClient := a.manager.GetKVClient()
	if kvClient == nil {
		return nil
	}

	cfg := middleware.DefaultCacheConfig(appcache.NewCache(kvClient))
	if a.config.Cache.TTL > 0 {
		cfg.TTL = a.config.Cache.TTL
	}

	return middleware.CacheMiddleware(cfg)
}

// Run 启动后台任务、状态消费者与 HTTP 服务，阻塞直到服务退出.
func (a *App) Run() error {
	l := log.Logger()

	if err := jobs.RegisterJobs(a.sched, a.manager); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	a.sched.Start()

	a.startStatusConsumer()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	l.Info().Str("addr", addr).Str("base_path", a.config.Server.BasePath).Msg("gateway listening")

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// startStatusConsumer 在后台订阅状态更新主题.
func (a *App) startStatusConsumer() {
	l := log.Logger()

	bus := a.manager.GetMQClient()
	if bus == nil {
		l.Warn().Msg("mq client not initialized, status consumer disabled")
		return
	}

	ctx, cancel := contextPkg.WithCancel(contextPkg.Background())
	a.consumerCancel = cancel
	a.consumerDone = make(chan struct{})

	sc := consumer.NewStatusConsumer(a.manager.GetDBClient().GetDB(), bus)

	go func() {
		defer close(a.consumerDone)

		if err := sc.Run(ctx); err != nil && !errors.Is(err, contextPkg.Canceled) {
			l.Error().Err(err).Msg("status consumer stopped")
		}
	}()
}

// Shutdown 停止后台组件并释放存储连接.
func (a *App) Shutdown() {
	l := log.Logger()

	if a.consumerCancel != nil {
		a.consumerCancel()

		select {
		case <-a.consumerDone:
		case <-time.After(shutdownTimeout):
			l.Warn().Msg("status consumer shutdown timed out")
		}
	}

	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			l.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			l.Warn().Err(err).Msg("storage shutdown failed")
		}
	}
}
