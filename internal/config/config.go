package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL    string `env:"DATABASE_URL,required"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required"`
	MerchantID     string `env:"MERCHANT_ID,required"`

	InvoicerBaseURL  string `env:"INVOICER_BASE_URL" envDefault:"http://mock-invoicer:8081"`
	CallbackSecret   string `env:"CALLBACK_SECRET,required"`
	CallbackURL      string `env:"CALLBACK_URL" envDefault:"http://gateway:8080/api/v1/callbacks/invoicer"`
	LinkbackURL      string `env:"LINKBACK_URL" envDefault:"http://shop:3000/checkout/complete"`
	InvoicerTimeoutS int    `env:"INVOICER_TIMEOUT_S" envDefault:"5"`

	SweepIntervalS    int `env:"SWEEP_INTERVAL_S" envDefault:"60"`
	SweepGraceMinutes int `env:"SWEEP_GRACE_MINUTES" envDefault:"10"`

	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
