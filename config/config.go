package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when no Neynar key is configured.
var ErrMissingAPIKey = errors.New("NEYNAR_API_KEY not found")

// Config holds all application configuration loaded from the environment,
// an optional config.yaml and CLI flags.
type Config struct {
	NeynarAPIKey     string
	NeynarSignerUUID string
	NeynarBaseURL    string

	RequestTimeout time.Duration
	SearchDelayMs  int
	MaxConcurrency int
	MaxRetries     int

	HoursBack        int
	Parallel         bool
	PublishMaxChars  int
	CSVSampleSize    int
	PushgatewayURL   string
	LogLevel         string
	OutputJSONPath   string
	OutputReportPath string
	OutputCSVPath    string
	CastToFarcaster  bool
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("neynar_base_url", "https://api.neynar.com")
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("search_delay_ms", 500)
	v.SetDefault("max_concurrency", 1)
	v.SetDefault("max_retries", 2)
	v.SetDefault("hours", 24)
	v.SetDefault("parallel", false)
	v.SetDefault("publish_max_chars", 320)
	v.SetDefault("csv_sample_size", 10)
	v.SetDefault("log_level", "info")
}

// NewViper returns a viper instance wired to the process environment and
// an optional config.yaml in the working directory.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	Defaults(v)
	return v
}

// Load reads the .env file, then resolves every key through v.
func Load(v *viper.Viper) *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("[config] Ignoring unreadable config file: %v", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from already-resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		NeynarAPIKey:     v.GetString("neynar_api_key"),
		NeynarSignerUUID: v.GetString("neynar_signer_uuid"),
		NeynarBaseURL:    strings.TrimRight(v.GetString("neynar_base_url"), "/"),

		RequestTimeout: time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		SearchDelayMs:  v.GetInt("search_delay_ms"),
		MaxConcurrency: v.GetInt("max_concurrency"),
		MaxRetries:     v.GetInt("max_retries"),

		HoursBack:        v.GetInt("hours"),
		Parallel:         v.GetBool("parallel"),
		PublishMaxChars:  v.GetInt("publish_max_chars"),
		CSVSampleSize:    v.GetInt("csv_sample_size"),
		PushgatewayURL:   v.GetString("pushgateway_url"),
		LogLevel:         v.GetString("log_level"),
		OutputJSONPath:   v.GetString("output_json"),
		OutputReportPath: v.GetString("output_report"),
		OutputCSVPath:    v.GetString("output_csv"),
		CastToFarcaster:  v.GetBool("cast_to_farcaster"),
	}
}

// Validate checks the settings that must be present before any analysis starts.
func (c *Config) Validate() error {
	if c.NeynarAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.CastToFarcaster && c.NeynarSignerUUID == "" {
		return errors.New("NEYNAR_SIGNER_UUID environment variable not set")
	}
	return nil
}

// TimeWindow maps the configured analysis window onto the trending feed's buckets.
func (c *Config) TimeWindow() string {
	return WindowFor(c.HoursBack)
}

// WindowFor maps an hour count onto the nearest trending window that covers it.
func WindowFor(hours int) string {
	switch {
	case hours <= 1:
		return "1h"
	case hours <= 6:
		return "6h"
	case hours <= 12:
		return "12h"
	case hours <= 24:
		return "24h"
	default:
		return "7d"
	}
}
