package routers

import (
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/middleware"
	"github.com/haierkeys/interview-link-service/internal/routers/api_router"
	"github.com/haierkeys/interview-link-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

// 候选人接口按客户端 IP 限流，校验接口单独收紧
var clientLimiters = limiter.NewClientLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/interviews",
		FillInterval: time.Second,
		Capacity:     30,
		Quantum:      30,
	},
	limiter.BucketRule{
		Key:          "/api/interviews/validate",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     false,        // 同一连接的音频帧必须按序转发
			Recovery:            gws.Recovery, // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true},
			ReadMaxPayloadSize:  1024 * 1024 * 4, // 单帧音频最大 4MB
			WriteMaxPayloadSize: 1024 * 1024 * 4,
		},
		Logger: appContainer.Logger(),
	})
	websocket_router.NewRoomWSHandler(appContainer).Register(wss)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(clientLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		interviewHandler := api_router.NewInterviewHandler(appContainer)
		adminHandler := api_router.NewAdminHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		// 候选人接口（无需认证，凭邀请 token）
		api.GET("/interviews/browser-check", interviewHandler.BrowserCheck)
		api.GET("/interviews/validate/:sessionId", interviewHandler.Validate)
		api.GET("/interviews/:sessionId", interviewHandler.Details)
		api.POST("/interviews/:sessionId/join", interviewHandler.Join)
		api.POST("/interviews/:sessionId/end", interviewHandler.End)
		api.POST("/interviews/:sessionId/report-issue", interviewHandler.ReportIssue)
		api.GET("/interviews/:sessionId/room-status", interviewHandler.RoomStatus)
		api.GET("/interviews/:sessionId/questions", interviewHandler.Questions)
		api.POST("/interviews/:sessionId/errors", interviewHandler.LogError)

		// 音频通道，凭 Join 返回的房间 token
		api.GET("/interview/ws", wss.Run())

		// 管理员接口
		admin := api.Group("/admin", middleware.AdminAuthToken(cfg.Security.AdminToken))
		{
			admin.POST("/links", adminHandler.GenerateLink)
			admin.POST("/links/:sessionId/regenerate", adminHandler.RegenerateLink)
			admin.POST("/sessions/:sessionId/cancel", adminHandler.CancelSession)
			admin.POST("/send-invitations", adminHandler.SendInvitations)
			admin.GET("/errors", adminHandler.ErrorHistory)
			admin.DELETE("/errors", adminHandler.ClearErrors)
		}
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
