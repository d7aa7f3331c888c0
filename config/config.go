package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string            `yaml:"environment"`
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Reservation ReservationConfig `yaml:"reservation"`
	Worker      WorkerConfig      `yaml:"worker"`
	Email       EmailConfig       `yaml:"email"`
	SMS         SMSConfig         `yaml:"sms"`
	Auth        AuthConfig        `yaml:"auth"`
	CORS        CORSConfig        `yaml:"cors"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
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

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ReservationConfig struct {
	HoldTTLMinutes   int `yaml:"hold_ttl_minutes"`
	TripsCacheTTL    int `yaml:"trips_cache_ttl_seconds"`
	ResendMaxPerHour int `yaml:"resend_max_per_hour"`
	TokenTTLHours    int `yaml:"verification_token_ttl_hours"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

// EmailConfig selects the transport once at startup: "resend" for the
// networked provider, anything else falls back to the console variant.
type EmailConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	From        string `yaml:"from"`
	FrontendURL string `yaml:"frontend_url"`
}

type SMSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Sender  string `yaml:"sender"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}

// LoadConfig reads a YAML config file, expanding ${VAR} references from
// the environment so secrets stay out of the file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Reservation.HoldTTLMinutes == 0 {
		cfg.Reservation.HoldTTLMinutes = 10
	}
	if cfg.Reservation.ResendMaxPerHour == 0 {
		cfg.Reservation.ResendMaxPerHour = 3
	}
	if cfg.Reservation.TokenTTLHours == 0 {
		cfg.Reservation.TokenTTLHours = 24
	}

	return &cfg, nil
}
