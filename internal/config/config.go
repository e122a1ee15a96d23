// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Printing PrintingConfig `mapstructure:"printing"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         int           `mapstructure:"port" validate:"required"`
	User         string        `mapstructure:"user" validate:"required"`
	Password     string        `mapstructure:"password" validate:"required"`
	DBName       string        `mapstructure:"dbname" validate:"required"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrintingConfig represents printing subsystem configuration
type PrintingConfig struct {
	BusinessName   string        `mapstructure:"business_name"`
	FooterMessage  string        `mapstructure:"footer_message"`
	CurrencySymbol string        `mapstructure:"currency_symbol"`
	TaxRate        float64       `mapstructure:"tax_rate"`
	TaxLabel       string        `mapstructure:"tax_label"`
	DefaultPort    int           `mapstructure:"default_port"`
	RelayURL       string        `mapstructure:"relay_url"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
	ScanTimeout    time.Duration `mapstructure:"scan_timeout"`
	HistorySize    int           `mapstructure:"history_size"`
	Serial         SerialConfig  `mapstructure:"serial"`
	Bluetooth      BTConfig      `mapstructure:"bluetooth"`
}

// SerialConfig represents serial transport defaults
type SerialConfig struct {
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	StopBits int    `mapstructure:"stop_bits"`
	Parity   string `mapstructure:"parity"`
}

// BTConfig represents Bluetooth transport defaults
type BTConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ChunkSize      int           `mapstructure:"chunk_size"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.SetEnvPrefix("PRINT_SERVICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Config file is optional, env + defaults carry a dev setup
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8086")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "print_service")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.max_lifetime", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", true)

	// Printing defaults
	viper.SetDefault("printing.business_name", "RESTAURANTE POS")
	viper.SetDefault("printing.footer_message", "¡Gracias por su visita!")
	viper.SetDefault("printing.currency_symbol", "$")
	viper.SetDefault("printing.tax_rate", 0.16)
	viper.SetDefault("printing.tax_label", "IVA")
	viper.SetDefault("printing.default_port", 9100)
	viper.SetDefault("printing.relay_url", "")
	viper.SetDefault("printing.send_timeout", "30s")
	viper.SetDefault("printing.scan_timeout", "3s")
	viper.SetDefault("printing.history_size", 50)

	viper.SetDefault("printing.serial.baud_rate", 9600)
	viper.SetDefault("printing.serial.data_bits", 8)
	viper.SetDefault("printing.serial.stop_bits", 1)
	viper.SetDefault("printing.serial.parity", "none")

	viper.SetDefault("printing.bluetooth.connect_timeout", "20s")
	viper.SetDefault("printing.bluetooth.chunk_size", 128)

	// App defaults
	viper.SetDefault("app.name", "print-service")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Printing.TaxRate < 0 || config.Printing.TaxRate >= 1 {
		return fmt.Errorf("printing.tax_rate must be in [0, 1)")
	}
	if config.Printing.HistorySize < 1 {
		return fmt.Errorf("printing.history_size must be positive")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
