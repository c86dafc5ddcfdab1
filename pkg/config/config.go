package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Model      ModelConfig      `mapstructure:"model"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IdentityConfig holds the identity-provider (Auth0 management API) settings.
type IdentityConfig struct {
	Domain       string `mapstructure:"domain"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Audience     string `mapstructure:"audience"`
}

// LedgerConfig holds the immutable audit ledger endpoint settings.
type LedgerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIToken string `mapstructure:"api_token"`
	Network  string `mapstructure:"network"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// ThresholdsConfig carries the startup defaults for the shared thresholds
// store. Runtime updates go through the thresholds API, not config reload.
type ThresholdsConfig struct {
	ClusterSize int     `mapstructure:"cluster_size"`
	Similarity  float64 `mapstructure:"similarity"`
	RiskScore   float64 `mapstructure:"risk_score"`
}

type SweepConfig struct {
	MaxConcurrentFreezes int64 `mapstructure:"max_concurrent_freezes"`
}

var globalConfig Config

// Load reads config.yaml and fills in defaults. Defaults apply even when no
// config file exists, so a bare deployment still starts with sane thresholds.
func Load(configPath string) error {
	err := loadConfigFile(configPath, "config", &globalConfig)

	setDefaultValues()

	if err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables: %w", fileName, err)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Identity.Audience == "" && globalConfig.Identity.Domain != "" {
		globalConfig.Identity.Audience = fmt.Sprintf("https://%s/api/v2/", globalConfig.Identity.Domain)
	}
	if globalConfig.Model.Path == "" {
		globalConfig.Model.Path = "isolation_forest.json"
	}
	if globalConfig.Thresholds.ClusterSize == 0 {
		globalConfig.Thresholds.ClusterSize = 5
	}
	if globalConfig.Thresholds.Similarity == 0 {
		globalConfig.Thresholds.Similarity = 0.85
	}
	if globalConfig.Thresholds.RiskScore == 0 {
		globalConfig.Thresholds.RiskScore = 0.7
	}
	if globalConfig.Sweep.MaxConcurrentFreezes == 0 {
		globalConfig.Sweep.MaxConcurrentFreezes = 8
	}
}

// IsFileNotFound reports whether err means no config file was present, as
// opposed to one that exists but could not be read or parsed.
func IsFileNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

func GetConfig() *Config {
	return &globalConfig
}
