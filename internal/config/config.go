// Package config holds the gateway configuration: defaults, optional
// environment overrides, and test-time override maps.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the gateway.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Models    ModelsConfig    `mapstructure:"models"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Library   LibraryConfig   `mapstructure:"library"`
	Translate TranslateConfig `mapstructure:"translate"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RuntimeConfig holds inference runtime connection settings.
type RuntimeConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ModelsConfig holds model identifiers and load behavior.
type ModelsConfig struct {
	CustomVoiceRegistryID string `mapstructure:"custom_voice_registry_id"`
	CustomVoiceCacheName  string `mapstructure:"custom_voice_cache_name"`
	BaseRegistryID        string `mapstructure:"base_registry_id"`
	BaseCacheName         string `mapstructure:"base_cache_name"`

	ASRRegistryID  string        `mapstructure:"asr_registry_id"`
	ASRCacheName   string        `mapstructure:"asr_cache_name"`
	XTTSRegistryID string        `mapstructure:"xtts_registry_id"`
	XTTSCacheName  string        `mapstructure:"xtts_cache_name"`
	CacheDir       string        `mapstructure:"cache_dir"`
	LoadTimeout    time.Duration `mapstructure:"load_timeout"`
	PreloadOnStart bool          `mapstructure:"preload_on_start"`
}

// StorageConfig holds object store settings for model weights.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Prefix    string `mapstructure:"prefix"`
}

// LibraryConfig holds voice library settings.
type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

// TranslateConfig holds translation provider settings.
type TranslateConfig struct {
	OfflineURL string        `mapstructure:"offline_url"`
	OnlineURL  string        `mapstructure:"online_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// WorkersConfig holds the inference pool settings.
type WorkersConfig struct {
	Workers  int `mapstructure:"workers"`
	MaxQueue int `mapstructure:"max_queue"`
}

// StreamConfig holds pseudo-streaming settings.
type StreamConfig struct {
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LimitsConfig holds request limit settings.
type LimitsConfig struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:       "0.0.0.0:8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 300 * time.Second,
		},
		Runtime: RuntimeConfig{
			URL:     "http://127.0.0.1:8081",
			Timeout: 120 * time.Second,
		},
		Models: ModelsConfig{
			CustomVoiceRegistryID: "Qwen/Qwen3-TTS-12B-CustomVoice",
			CustomVoiceCacheName:  "qwen3-tts-customvoice",
			BaseRegistryID:        "Qwen/Qwen3-TTS-12B-Base",
			BaseCacheName:         "qwen3-tts-base",
			ASRRegistryID:  "openai/whisper-large-v3-turbo",
			ASRCacheName:   "whisper-large-v3-turbo",
			XTTSRegistryID: "coqui/XTTS-v2",
			XTTSCacheName:  "xtts-v2",
			CacheDir:       "/models",
			LoadTimeout:    30 * time.Minute,
			PreloadOnStart: true,
		},
		Library: LibraryConfig{
			Dir: "/data/voices",
		},
		Translate: TranslateConfig{
			Timeout: 10 * time.Second,
		},
		Workers: WorkersConfig{
			Workers:  2,
			MaxQueue: 16,
		},
		Stream: StreamConfig{
			MaxConcurrent:  4,
			AcquireTimeout: 5 * time.Second,
		},
		Limits: LimitsConfig{
			MaxBodyBytes: 64 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load returns a Config populated with defaults and environment overrides.
func Load() (*Config, error) {
	return LoadWithDefaults(nil)
}

// LoadWithDefaults loads configuration using defaults and optional overrides map (for tests).
func LoadWithDefaults(overrides map[string]interface{}) (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)

	if overrides != nil {
		raw, err := json.Marshal(overrides)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("QTTS_LISTEN", &cfg.Server.Listen)
	setDuration("QTTS_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("QTTS_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)

	setString("QTTS_RUNTIME_URL", &cfg.Runtime.URL)
	setDuration("QTTS_RUNTIME_TIMEOUT", &cfg.Runtime.Timeout)

	setString("QTTS_CUSTOM_VOICE_MODEL", &cfg.Models.CustomVoiceRegistryID)
	setString("QTTS_BASE_MODEL", &cfg.Models.BaseRegistryID)
	setString("QTTS_ASR_MODEL", &cfg.Models.ASRRegistryID)
	setString("QTTS_XTTS_MODEL", &cfg.Models.XTTSRegistryID)
	setString("QTTS_MODEL_CACHE_DIR", &cfg.Models.CacheDir)
	setDuration("QTTS_MODEL_LOAD_TIMEOUT", &cfg.Models.LoadTimeout)
	setBool("QTTS_PRELOAD_MODELS", &cfg.Models.PreloadOnStart)

	setString("QTTS_STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	setString("QTTS_STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	setString("QTTS_STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	setString("QTTS_STORAGE_BUCKET", &cfg.Storage.Bucket)
	setBool("QTTS_STORAGE_USE_SSL", &cfg.Storage.UseSSL)
	setString("QTTS_STORAGE_PREFIX", &cfg.Storage.Prefix)

	setString("QTTS_VOICE_DIR", &cfg.Library.Dir)

	setString("QTTS_TRANSLATE_OFFLINE_URL", &cfg.Translate.OfflineURL)
	setString("QTTS_TRANSLATE_ONLINE_URL", &cfg.Translate.OnlineURL)
	setDuration("QTTS_TRANSLATE_TIMEOUT", &cfg.Translate.Timeout)

	setInt("QTTS_WORKERS", &cfg.Workers.Workers)
	setInt("QTTS_MAX_QUEUE", &cfg.Workers.MaxQueue)

	setInt("QTTS_STREAM_MAX_CONCURRENT", &cfg.Stream.MaxConcurrent)
	setDuration("QTTS_STREAM_ACQUIRE_TIMEOUT", &cfg.Stream.AcquireTimeout)

	setString("QTTS_API_KEY", &cfg.Auth.APIKey)

	if v := os.Getenv("QTTS_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxBodyBytes = n
		}
	}

	setString("QTTS_LOG_LEVEL", &cfg.Logging.Level)
	setString("QTTS_LOG_FORMAT", &cfg.Logging.Format)
}
