package server

import (
	"bridge-core/internal/handler"
	"bridge-core/internal/handler/response"

	"bridge-core/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(walletHandler *handler.WalletHandler, modalHandler *handler.ModalHandler) *gin.Engine {
	// 0. 初始化监控指标
	monitor.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		// 模态框事件: 前端把用户动作推过来
		m := api.Group("/modal")
		{
			m.POST("/code", modalHandler.SubmitCode)
			m.POST("/retry", modalHandler.Retry)
			m.POST("/close", modalHandler.Close)
			m.GET("/state", modalHandler.State)
		}

		// 钱包流程
		w := api.Group("/wallet")
		{
			w.POST("/connect", walletHandler.Connect)
			w.POST("/disconnect", walletHandler.Disconnect)
			w.GET("/status", walletHandler.Status)
			w.POST("/sign", walletHandler.Sign)
			w.POST("/process", walletHandler.Process)
		}
	}

	return r
}
