package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type FulfillmentConfig struct {
	Env             string `yaml:"env"`
	HTTPServer      `yaml:"http_server"`
	FulfillmentDB   `yaml:"fulfillment_db"`
	LogConfig       `yaml:"log_config"`
	BookingProvider `yaml:"booking-provider"`
	PaymentProvider `yaml:"payment-provider"`
	KafkaService    `yaml:"kafka-service"`
	RedisService    `yaml:"redis-service"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type FulfillmentDB struct {
	Dsn string `yaml:"dsn"`
	// MigrationsPath, when set, applies the SQL migrations on startup.
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type BookingProvider struct {
	BaseURL       string `yaml:"base_url"`
	APIToken      string `yaml:"api_token"`
	WebhookSecret string `yaml:"webhook_secret"`
	// AllowUnverified bypasses signature rejection; honored only outside prod.
	AllowUnverified bool `yaml:"allow_unverified"`
}

type PaymentProvider struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type KafkaService struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

type RedisService struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

func MustLoad() *FulfillmentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("FULFILLMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("FULFILLMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg FulfillmentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
