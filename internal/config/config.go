package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Payouter"`
		Port int    `envconfig:"PORT" default:"3000"`
	}

	Store struct {
		// Driver selects the Repository implementation: "file" or "postgres".
		Driver string `envconfig:"STORE_DRIVER" default:"file"`
		Path   string `envconfig:"STORE_PATH" default:"data/invoices.json"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"payouter"`
	}

	Payouter struct {
		BaseURL       string `envconfig:"BASE_URL" default:"https://api.payouter.com"`
		MerchantID    string `envconfig:"MERCHANT_ID"`
		PaymentAPIKey string `envconfig:"PAYMENT_API_KEY"`
		PayoutAPIKey  string `envconfig:"PAYOUT_API_KEY"`

		CallbackURL string `envconfig:"CALLBACK_URL"`
		SuccessURL  string `envconfig:"SUCCESS_URL"`
		ErrorURL    string `envconfig:"ERROR_URL"`
		PayoutCard  string `envconfig:"PAYOUT_CARD"`

		TestMode bool          `envconfig:"TEST_MODE" default:"false"`
		Timeout  time.Duration `envconfig:"PAYOUTER_TIMEOUT" default:"10s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
