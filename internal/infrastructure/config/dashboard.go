package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Dashboard holds the KPI dashboard's configuration, aggregated from
// environment variables and an optional config file. Command-line flags are
// applied on top by the entrypoint.
type Dashboard struct {
	Server struct {
		Addr string
	}
	Auth struct {
		// Disabled bypasses the access gate entirely.
		Disabled bool
		// LoginURL is where unauthorized visitors are sent to sign in.
		LoginURL string
		// ExchangeURL and VerifyURL are the IDMS token endpoints. When
		// ExchangeURL is empty a local jwt-backed provider is used instead.
		ExchangeURL string
		VerifyURL   string
		// LocalSecret signs tokens for the local development provider.
		LocalSecret string
	}
	Queue struct {
		// SQSQueueName is carried for job-submission tooling; nothing in the
		// dashboard itself consumes the queue.
		SQSQueueName string
	}
	Log struct {
		FileDir string
		Level   string
	}
	Mongo MongoConfig
	Redis RedisConfig
}

// LoadDashboard reads dashboard configuration with viper. The config file is
// optional unless an explicit path is given.
func LoadDashboard(configFile string) (*Dashboard, error) {
	v := viper.New()
	v.SetEnvPrefix("KPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:10004")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("auth.loginurl", "")
	v.SetDefault("auth.exchangeurl", "")
	v.SetDefault("auth.verifyurl", "")
	v.SetDefault("auth.localsecret", "dev-only-secret")
	v.SetDefault("queue.sqsqueuename", "")
	v.SetDefault("log.filedir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "kpitools")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("kpiserver")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Dashboard
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
