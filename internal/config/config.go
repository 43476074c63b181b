package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DB       *DBconfig       `mapstructure:"db"`
	RabbitMq *RabbitMqconfig `mapstructure:"rabbitmq"`
	Redis    *Redisconfig    `mapstructure:"redis"`
	App      *Appconfig      `mapstructure:"app"`
	Dispatch *Dispatchconfig `mapstructure:"dispatch"`
	Srv      *Serviceconfig  `mapstructure:"service"`
	Log      *Loggerconfig   `mapstructure:"log"`
}

type DBconfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type RabbitMqconfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
}

type Redisconfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Appconfig struct {
	JwtSecret string `mapstructure:"jwt_secret"`
}

type Dispatchconfig struct {
	// MaxDistanceMeters bounds the matcher radius; callers may narrow it
	// per query but never widen it.
	MaxDistanceMeters float64 `mapstructure:"max_distance_meters"`
	PageLimit         int     `mapstructure:"page_limit"`

	// Creation rate limit: at most CreateLimit requests per customer per
	// CreateWindowSeconds.
	CreateLimit         int `mapstructure:"create_limit"`
	CreateWindowSeconds int `mapstructure:"create_window_seconds"`
}

type Serviceconfig struct {
	DispatchServicePort string `mapstructure:"dispatch_service_port"`
}

type Loggerconfig struct {
	Level string `mapstructure:"level"`
}

// New loads configuration from configs/config.yaml (if present) with
// environment-variable overrides, falling back to defaults.
func New() (*Config, error) {
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.user", "instantfix_user")
	viper.SetDefault("db.password", "instantfix_pass")
	viper.SetDefault("db.database", "instantfix_db")

	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.vhost", "")

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("app.jwt_secret", "dev-secret")

	viper.SetDefault("dispatch.max_distance_meters", 10000.0)
	viper.SetDefault("dispatch.page_limit", 10)
	viper.SetDefault("dispatch.create_limit", 10)
	viper.SetDefault("dispatch.create_window_seconds", 3600)

	viper.SetDefault("service.dispatch_service_port", "3000")
	viper.SetDefault("log.level", "INFO")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no file is fine, defaults + env carry the day
	}

	cnf := &Config{}
	if err := viper.Unmarshal(cnf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cnf, nil
}
