package main

import (
	"fmt"

	"bridge-core/internal/bridge"
	"bridge-core/internal/client"
	"bridge-core/internal/handler"
	"bridge-core/internal/modal"
	"bridge-core/internal/model"
	"bridge-core/internal/server"
	"bridge-core/internal/service/mq"
	"bridge-core/internal/session"

	"bridge-core/pkg/config"
	"bridge-core/pkg/database"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 选择会话存储后端
	var store storage.Store
	var db *gorm.DB

	switch config.Global.Storage.Backend {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			config.Global.DB.Host,
			config.Global.DB.User,
			config.Global.DB.Password,
			config.Global.DB.Name,
			config.Global.DB.Port,
		)
		var err error
		db, err = database.ConnectPostgres(dsn)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}

		// AutoMigrate 只在开发环境跑
		if config.Global.App.Env == "development" {
			logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
			if err := db.AutoMigrate(model.AllModels()...); err != nil {
				logger.Fatal("数据库自动迁移失败", zap.Error(err))
			}
			logger.Info("数据库自动迁移完成 (Dev Mode)")
		} else {
			logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
		}
		store = storage.NewGormStore(db)

	case "redis":
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		store = storage.NewRedisStore(rdb)

	default:
		logger.Info("使用内存会话存储 (重启即失效)")
		store = storage.NewMemoryStore()
	}

	// 3. 初始化消息队列
	var producer mq.Producer
	switch config.Global.Redis.MQType {
	case "kafka":
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers, "bridge_events_wallet")
	case "redis":
		logger.Info("使用 Redis Streams 作为消息队列...")
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		producer = mq.NewRedisProducer(rdb)
	default:
		producer = mq.NewNoopProducer()
	}

	// 4. 协议客户端 + 会话 + 模态框
	relay := client.NewHTTPClient(config.Global.Relay.BaseURL)

	sessions, err := session.NewStore(store, relay,
		session.WithTTL(config.Global.Bridge.SessionTTL),
		session.WithSubmitTimeout(config.Global.Relay.SubmitTimeout),
		session.WithStorageKey(config.Global.Bridge.StorageKey),
		session.WithSiteMeta(config.Global.Bridge.SiteName, config.Global.Bridge.Favicon),
	)
	if err != nil {
		logger.Fatal("初始化会话存储失败", zap.Error(err))
	}

	controller := modal.NewController()

	// 5. 核心编排服务
	svc, err := bridge.NewService(bridge.Config{
		Origin:        config.Global.Bridge.Origin,
		SiteName:      config.Global.Bridge.SiteName,
		Favicon:       config.Global.Bridge.Favicon,
		SubmitTimeout: config.Global.Relay.SubmitTimeout,
	}, sessions, relay, controller, producer)
	if err != nil {
		logger.Fatal("初始化 Bridge 服务失败", zap.Error(err))
	}

	// 6. HTTP Router
	r := server.NewHTTPRouter(handler.NewWalletHandler(svc), handler.NewModalHandler(controller))

	// 7. 启动应用
	app, err := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	if err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}

	// 运行 (阻塞)
	app.Run()

	// 8. 退出后资源清理
	if db != nil {
		logger.Info("正在关闭数据库连接...")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Info("系统已退出")
}
