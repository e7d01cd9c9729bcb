// Package config provides configuration management for the scanner service,
// loaded from config files and environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerAddress    = ":8070"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultScanTimeout      = 55 * time.Second
	defaultFetchTimeout     = 10 * time.Second
	defaultTLSProbeTimeout  = 3 * time.Second
	defaultMaxRedirects     = 8
	defaultMaxBodyBytes     = 5 * 1024 * 1024 // 5 MB
	defaultUserAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 AEOScanner/1.0"
	defaultSitemapTimeout   = 8 * time.Second
	defaultRobotsTimeout    = 5 * time.Second
	defaultWaybackTimeout   = 10 * time.Second
	defaultCruxTimeout      = 8 * time.Second
	defaultGeocodeTimeout   = 8 * time.Second
	defaultGeocodeInterval  = 1100 * time.Millisecond
	defaultHeadCheckTimeout = 5 * time.Second
	defaultCacheTTL         = 24 * time.Hour
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultDBName           = "aeoscanner"
	defaultDBSSLMode        = "disable"
	defaultLogLevel         = "info"
	defaultLogEncoding      = "json"
)

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Clients  ClientsConfig  `mapstructure:"clients"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ScannerConfig holds the scan engine settings.
type ScannerConfig struct {
	// ScanTimeout is the global wall-clock budget for a whole scan.
	ScanTimeout time.Duration `mapstructure:"scan_timeout"`
	// FetchTimeout applies per redirect hop of the page fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// TLSProbeTimeout bounds the certificate inspection handshake.
	TLSProbeTimeout time.Duration `mapstructure:"tls_probe_timeout"`
	MaxRedirects    int           `mapstructure:"max_redirects"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	UserAgent       string        `mapstructure:"user_agent"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

// ClientsConfig holds settings for the auxiliary data sources.
type ClientsConfig struct {
	SitemapTimeout   time.Duration `mapstructure:"sitemap_timeout"`
	RobotsTimeout    time.Duration `mapstructure:"robots_timeout"`
	WaybackTimeout   time.Duration `mapstructure:"wayback_timeout"`
	CruxTimeout      time.Duration `mapstructure:"crux_timeout"`
	CruxAPIKey       string        `mapstructure:"crux_api_key"`
	GeocodeTimeout   time.Duration `mapstructure:"geocode_timeout"`
	GeocodeInterval  time.Duration `mapstructure:"geocode_interval"`
	HeadCheckTimeout time.Duration `mapstructure:"head_check_timeout"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from the given file (optional) and the
// environment. Environment variables use the AEO_ prefix with underscores,
// e.g. AEO_DATABASE_PASSWORD.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("AEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.read_timeout", defaultReadTimeout)
	v.SetDefault("server.write_timeout", defaultWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("scanner.scan_timeout", defaultScanTimeout)
	v.SetDefault("scanner.fetch_timeout", defaultFetchTimeout)
	v.SetDefault("scanner.tls_probe_timeout", defaultTLSProbeTimeout)
	v.SetDefault("scanner.max_redirects", defaultMaxRedirects)
	v.SetDefault("scanner.max_body_bytes", defaultMaxBodyBytes)
	v.SetDefault("scanner.user_agent", defaultUserAgent)
	v.SetDefault("scanner.cache_ttl", defaultCacheTTL)

	v.SetDefault("clients.sitemap_timeout", defaultSitemapTimeout)
	v.SetDefault("clients.robots_timeout", defaultRobotsTimeout)
	v.SetDefault("clients.wayback_timeout", defaultWaybackTimeout)
	v.SetDefault("clients.crux_timeout", defaultCruxTimeout)
	v.SetDefault("clients.crux_api_key", "")
	v.SetDefault("clients.geocode_timeout", defaultGeocodeTimeout)
	v.SetDefault("clients.geocode_interval", defaultGeocodeInterval)
	v.SetDefault("clients.head_check_timeout", defaultHeadCheckTimeout)

	v.SetDefault("database.host", defaultDBHost)
	v.SetDefault("database.port", defaultDBPort)
	v.SetDefault("database.user", defaultDBUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", defaultDBName)
	v.SetDefault("database.sslmode", defaultDBSSLMode)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.encoding", defaultLogEncoding)
	v.SetDefault("logging.development", false)
}
