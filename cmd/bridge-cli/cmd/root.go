package cmd

import (
	"fmt"
	"os"

	"bridge-core/internal/bridge"
	"bridge-core/internal/client"
	"bridge-core/internal/modal"
	"bridge-core/internal/session"

	"bridge-core/pkg/config"
	"bridge-core/pkg/database"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/storage"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "bridge-cli",
	Short: "Action code 钱包桥命令行工具",
	Long: `在终端里驱动钱包桥: 输入 action code 完成连接、
查询会话状态、断开连接。会话跨命令保留需要 redis 或 postgres 存储后端。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// 在这里可以定义全局标志 (Global Flags)
}

// buildBridge 按配置装配整套桥: 存储 -> 会话 -> 编排服务。
// CLI 不接消息队列。
func buildBridge() (*bridge.Service, *modal.Controller, error) {
	config.Init()
	logger.Init(config.Global.App.Env)

	var store storage.Store
	switch config.Global.Storage.Backend {
	case "redis":
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		store = storage.NewRedisStore(rdb)
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			config.Global.DB.Host,
			config.Global.DB.User,
			config.Global.DB.Password,
			config.Global.DB.Name,
			config.Global.DB.Port,
		)
		db, err := database.ConnectPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		store = storage.NewGormStore(db)
	default:
		// 内存存储只在单条命令内有效
		store = storage.NewMemoryStore()
	}

	relay := client.NewHTTPClient(config.Global.Relay.BaseURL)

	sessions, err := session.NewStore(store, relay,
		session.WithTTL(config.Global.Bridge.SessionTTL),
		session.WithSubmitTimeout(config.Global.Relay.SubmitTimeout),
		session.WithStorageKey(config.Global.Bridge.StorageKey),
		session.WithSiteMeta(config.Global.Bridge.SiteName, config.Global.Bridge.Favicon),
	)
	if err != nil {
		return nil, nil, err
	}

	controller := modal.NewController()

	svc, err := bridge.NewService(bridge.Config{
		Origin:        config.Global.Bridge.Origin,
		SiteName:      config.Global.Bridge.SiteName,
		Favicon:       config.Global.Bridge.Favicon,
		SubmitTimeout: config.Global.Relay.SubmitTimeout,
	}, sessions, relay, controller, nil)
	if err != nil {
		return nil, nil, err
	}
	return svc, controller, nil
}
