package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

// RelayConfig 远端 Action Code 服务的连接配置
type RelayConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"` // 0 表示不限时
}

// StorageConfig selects the session storage backend: memory, redis or postgres.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis", "kafka" or "none"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// BridgeConfig 本站点的展示信息，用于构造 ActionContext
type BridgeConfig struct {
	Origin     string        `mapstructure:"origin"`
	SiteName   string        `mapstructure:"site_name"`
	Favicon    string        `mapstructure:"favicon"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	StorageKey string        `mapstructure:"storage_key"`
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("relay.base_url", "https://relay.actioncodes.io/v1")
	viper.SetDefault("relay.submit_timeout", "60s")

	viper.SetDefault("storage.backend", "memory")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "bridge_user")
	viper.SetDefault("db.password", "bridge_password")
	viper.SetDefault("db.name", "bridge_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "none")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("bridge.origin", "localhost")
	viper.SetDefault("bridge.site_name", "Action Bridge")
	viper.SetDefault("bridge.session_ttl", "24h")
	viper.SetDefault("bridge.storage_key", "actionbridge:session")
}
