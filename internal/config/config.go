package config

import (
	"errors"
	"fmt"
	"os"

	"aromos/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Google     GoogleConfig     `yaml:"google"`
	Exports    ExportConfig     `yaml:"exports"`
	Units      []models.Unit    `yaml:"units"`
	Business   BusinessConfig   `yaml:"business"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GoogleConfig struct {
	Enabled             bool   `yaml:"enabled"`
	CredentialsFile     string `yaml:"credentials_file"`
	LedgerSpreadsheetID string `yaml:"ledger_spreadsheet_id"`
	LedgerSheetName     string `yaml:"ledger_sheet_name"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type BusinessConfig struct {
	Name       string `yaml:"name"`
	TopClients int    `yaml:"top_clients"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается, если лежит рядом; отсутствие файла не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Enabled && c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api keys configured")
	}

	if c.Google.Enabled {
		if c.Google.CredentialsFile == "" {
			return errors.New("google sync requires credentials_file")
		}
		if c.Google.LedgerSpreadsheetID == "" {
			return errors.New("google sync requires ledger_spreadsheet_id")
		}
	}

	return ValidateUnits(c.Units)
}

// ValidateUnits проверяет переопределенный список юнитов из конфига.
func ValidateUnits(units []models.Unit) error {
	seen := make(map[string]bool)
	for _, u := range units {
		if u.ID == "" {
			return fmt.Errorf("unit '%s' has empty ID", u.Name)
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate unit ID found: %s", u.ID)
		}
		seen[u.ID] = true
		if u.Status != "" && !models.ValidUnitStatus(u.Status) {
			return fmt.Errorf("unit '%s' has unknown status %q", u.ID, u.Status)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "aromos"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if c.API.Enabled && !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Google.LedgerSheetName == "" {
		c.Google.LedgerSheetName = "Reservations"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Business.Name == "" {
		c.Business.Name = "Los Aromos"
	}
	if c.Business.TopClients == 0 {
		c.Business.TopClients = models.TopClientsLimit
	}
}
