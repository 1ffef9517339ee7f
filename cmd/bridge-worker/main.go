package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridge-core/internal/model"
	"bridge-core/internal/service/audit"
	"bridge-core/internal/service/mq"

	"bridge-core/pkg/config"
	"bridge-core/pkg/database"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/monitor"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 独立运行的审计 worker: 消费钱包事件, 写审计表。
// 和 API 服务分开部署, 挂掉不影响连接/签名主流程。
func main() {
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	logger.Info("启动审计服务 (Audit Worker)...", zap.String("env", config.Global.App.Env))
	monitor.Init()

	// 审计表在 Postgres; 其他存储后端下只记日志
	var db *gorm.DB
	if config.Global.Storage.Backend == "postgres" {
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
		if config.Global.App.Env == "development" {
			if err := db.AutoMigrate(model.AllModels()...); err != nil {
				logger.Fatal("数据库自动迁移失败", zap.Error(err))
			}
		}
	} else {
		logger.Info("非 Postgres 存储后端, 审计事件只记日志不落库")
	}

	var consumer mq.Consumer
	switch config.Global.Redis.MQType {
	case "kafka":
		logger.Info("MQ Mode: Kafka Consumer", zap.Strings("brokers", config.Global.Kafka.Brokers))
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "bridge_audit_group")
	case "redis":
		logger.Info("MQ Mode: Redis Streams Consumer")
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		consumer = mq.NewRedisConsumer(rdb, "bridge_audit", "auditor-0")
	default:
		logger.Fatal("审计 worker 需要消息队列, 请配置 redis.mq_type 为 redis 或 kafka")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("⚠️  Shutting down audit worker...")
		cancel()
	}()

	auditor := audit.NewAuditor(db, consumer)
	if err := auditor.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Auditor 运行出错", zap.Error(err))
	}
	// Kafka 的 Subscribe 不阻塞, 统一在这里等退出信号
	<-ctx.Done()

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Info("审计服务已退出")
}
