package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Offers    OffersConfig    `yaml:"offers"`
	Reminders RemindersConfig `yaml:"reminders"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
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
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	RemindersTopic     string   `yaml:"reminders_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldTTLMinutes    int `yaml:"hold_ttl_minutes"`
	FlightsCacheTTL   int `yaml:"flights_cache_ttl_seconds"`
	ConfirmationTTL   int `yaml:"confirmation_ttl_minutes"`
	RefundWindowHours int `yaml:"refund_window_hours"`
}

type OffersConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type RemindersConfig struct {
	LeadHours      []int `yaml:"lead_hours"`
	SweepMinutes   int   `yaml:"sweep_minutes"`
	LookaheadHours int   `yaml:"lookahead_hours"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.RefundWindowHours == 0 {
		c.Booking.RefundWindowHours = 24
	}
	if len(c.Reminders.LeadHours) == 0 {
		c.Reminders.LeadHours = []int{24, 2}
	}
	if c.Reminders.SweepMinutes == 0 {
		c.Reminders.SweepMinutes = 10
	}
	if c.Reminders.LookaheadHours == 0 {
		c.Reminders.LookaheadHours = 48
	}
	if c.Worker.ExpirationSweepMinutes == 0 {
		c.Worker.ExpirationSweepMinutes = 1
	}
}
