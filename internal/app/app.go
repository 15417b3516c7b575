// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/internal/relay"
	"github.com/haierkeys/interview-link-service/internal/service"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/timex"
	"github.com/haierkeys/interview-link-service/pkg/workerpool"
	"github.com/haierkeys/interview-link-service/pkg/writequeue"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	clock  timex.Clock
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	LinkRepo    domain.LinkRepository
	SessionRepo domain.SessionRepository
	IssueRepo   domain.IssueRepository

	// Service 层
	LinkService       service.LinkService
	SessionService    service.SessionService
	ErrorService      service.ErrorService
	InvitationService service.InvitationService

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	Metrics      *service.Metrics
	Hub          *relay.Hub
	Mailer       mailer.Sender

	StartTime time.Time

	dialer     relay.Dialer
	registerer prometheus.Registerer

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option 容器选项，测试时用来替换外部依赖
type Option func(*App)

// WithClock 注入时钟
func WithClock(c timex.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithMailer 注入邮件发送器
func WithMailer(s mailer.Sender) Option {
	return func(a *App) { a.Mailer = s }
}

// WithDialer 注入上游 AI 服务拨号器
func WithDialer(d relay.Dialer) Option {
	return func(a *App) { a.dialer = d }
}

// WithRegisterer 注入 Prometheus 注册器，默认使用全局注册器
func WithRegisterer(r prometheus.Registerer) Option {
	return func(a *App) { a.registerer = r }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		clock:      timex.System,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
		registerer: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(a)
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(cfg.DaoConfig()),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey:     cfg.Security.LinkTokenKey,
		RoomSecretKey: cfg.RoomTokenKey(),
		Issuer:        pkgapp.DefaultTokenIssuer,
		Now:           a.clock.Now,
	})

	// 初始化 Repository 层
	a.LinkRepo = dao.NewLinkRepository(a.Dao)
	a.SessionRepo = dao.NewSessionRepository(a.Dao)
	a.IssueRepo = dao.NewIssueRepository(a.Dao)

	a.Metrics = service.NewMetrics(a.registerer)
	if a.Mailer == nil {
		a.Mailer = mailer.NewSender(cfg.GetSMTPConfig(), logger)
	}

	svcConfig := cfg.GetServiceConfig()

	// 初始化 Service 层（依赖注入）
	a.ErrorService = service.NewErrorService(a.IssueRepo, a.clock, logger, a.Metrics, svcConfig.ErrorHistory)

	a.Hub = relay.NewHub(cfg.GetRelayConfig(), relay.Deps{
		Dialer:  a.dialer,
		Errors:  a.ErrorService,
		Metrics: a.Metrics,
		Clock:   a.clock,
		Logger:  logger,
	})

	a.LinkService = service.NewLinkService(service.LinkServiceDeps{
		Links:    a.LinkRepo,
		Sessions: a.SessionRepo,
		Tokens:   a.TokenManager,
		Writer:   a.Dao,
		Clock:    a.clock,
		Logger:   logger,
		Metrics:  a.Metrics,
	}, svcConfig.Link)

	a.SessionService = service.NewSessionService(service.SessionServiceDeps{
		Links:    a.LinkService,
		LinkRepo: a.LinkRepo,
		Sessions: a.SessionRepo,
		Tokens:   a.TokenManager,
		Presence: a.Hub,
		Writer:   a.Dao,
		Clock:    a.clock,
		Logger:   logger,
		Metrics:  a.Metrics,
	}, &svcConfig)

	a.InvitationService = service.NewInvitationService(service.InvitationServiceDeps{
		Links:    a.LinkService,
		LinkRepo: a.LinkRepo,
		Sessions: a.SessionService,
		Sender:   a.Mailer,
		Pool:     a.workerPool,
		Writer:   a.Dao,
		Clock:    a.clock,
		Logger:   logger,
		Metrics:  a.Metrics,
	}, svcConfig.Invitation)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// NewFlow 创建候选人面试页面流程
func (a *App) NewFlow(sessionID, token string) *service.Flow {
	return service.NewFlow(sessionID, token, service.FlowDeps{
		Links:    a.LinkService,
		Sessions: a.SessionService,
		Errors:   a.ErrorService,
		Clock:    a.clock,
		Logger:   a.logger,
		Config:   a.config.GetServiceConfig().Flow,
	})
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Clock 获取时钟
func (a *App) Clock() timex.Clock {
	return a.clock
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Relay Hub -> Worker Pool -> Write Queue Manager -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 0. 断开所有 AI 面试官连接
	if a.Hub != nil {
		a.logger.Info("Shutting down relay hub...")
		if err := a.Hub.Shutdown(ctx); err != nil {
			a.logger.Warn("Relay hub shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("relay hub shutdown: %w", err))
		}
	}

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
