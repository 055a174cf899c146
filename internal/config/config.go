package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Fares    FareConfig     `mapstructure:"fares"`
	Parking  ParkingConfig  `mapstructure:"parking"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type FareConfig struct {
	CarRatePerHour  float64 `mapstructure:"car_rate_per_hour"`
	BikeRatePerHour float64 `mapstructure:"bike_rate_per_hour"`
}

type ParkingConfig struct {
	// StrictReentry rejects a new entry while the vehicle's latest ticket
	// is still open. Off by default to match historical behavior.
	StrictReentry bool `mapstructure:"strict_reentry"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads the configuration file at path (optional) with PARKING_*
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("PARKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "parking")
	v.SetDefault("database.password", "parking")
	v.SetDefault("database.name", "parking")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("fares.car_rate_per_hour", 1.5)
	v.SetDefault("fares.bike_rate_per_hour", 1.0)
	v.SetDefault("parking.strict_reentry", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}

func (c *Config) Validate() error {
	if c.Fares.CarRatePerHour <= 0 {
		return fmt.Errorf("fares.car_rate_per_hour must be positive, got %v", c.Fares.CarRatePerHour)
	}
	if c.Fares.BikeRatePerHour <= 0 {
		return fmt.Errorf("fares.bike_rate_per_hour must be positive, got %v", c.Fares.BikeRatePerHour)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	return nil
}
