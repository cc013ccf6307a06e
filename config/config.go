package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Loader   LoaderConfig   `yaml:"loader"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// BackendConfig carries the explicitly configured backend-type identifier.
// An empty Type defers to the BACKEND_TYPE environment variable, then to the
// SERVICE_BINDINGS document, then to the in-process default.
type BackendConfig struct {
	Type string `yaml:"type"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type LoaderConfig struct {
	MileageFile  string `yaml:"mileage_file"`
	NumCustomers int    `yaml:"num_customers"`
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = getEnv("HTTP_ADDRESS", ":8080")
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = getEnv("MONGODB_DSN", "mongodb://localhost:27017")
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = getEnv("MONGO_DB", "skyfare")
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	}
	if cfg.Loader.MileageFile == "" {
		cfg.Loader.MileageFile = "mileage.csv"
	}
	if cfg.Loader.NumCustomers == 0 {
		cfg.Loader.NumCustomers = 100
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
