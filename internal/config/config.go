package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"market_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"market_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"market_db"`

	TrendingMinViews  int64  `env:"TRENDING_MIN_VIEWS"  envDefault:"10" validate:"min=0"`
	TrendingMaxSlots  int64  `env:"TRENDING_MAX_SLOTS"  envDefault:"0"  validate:"min=0"`
	TrendingSweepCron string `env:"TRENDING_SWEEP_CRON" envDefault:"*/1 * * * *"`

	ReevalDelayMs        int64 `env:"REEVAL_DELAY_MS"         envDefault:"5000" validate:"min=0"`
	ReevalMaxAttempts    int   `env:"REEVAL_MAX_ATTEMPTS"     envDefault:"5"    validate:"min=1"`
	ReevalBackoffBaseMs  int64 `env:"REEVAL_BACKOFF_BASE_MS"  envDefault:"1000" validate:"min=1"`
	ReevalWorkers        int   `env:"REEVAL_WORKERS"          envDefault:"4"    validate:"min=1"`
	ReevalPollIntervalMs int64 `env:"REEVAL_POLL_INTERVAL_MS" envDefault:"500"  validate:"min=50"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
