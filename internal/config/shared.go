package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port       string `mapstructure:"port"`
		AuthSecret string `mapstructure:"auth_secret"`
		LogLevel   string `mapstructure:"log_level"`
	} `mapstructure:"server"`
	Inference struct {
		BaseURL    string `mapstructure:"base_url"`
		TrackLimit int    `mapstructure:"track_limit"`
		TimeoutSec int    `mapstructure:"timeout_seconds"`
		Profiles   string `mapstructure:"profiles"` // yaml file driving the local fallback
	} `mapstructure:"inference"`
	Capture struct {
		VideoDevice    string `mapstructure:"video_device"`
		AudioDevice    string `mapstructure:"audio_device"`
		VideoFormat    string `mapstructure:"video_format"` // v4l2, avfoundation, dshow...
		AudioFormat    string `mapstructure:"audio_format"` // alsa, pulse, avfoundation...
		RecordSeconds  int    `mapstructure:"record_seconds"`
		SampleRate     int    `mapstructure:"sample_rate"`
		FFmpegLogLevel string `mapstructure:"ffmpeg_log_level"`
	} `mapstructure:"capture"`
	Detection struct {
		IntervalMinutes  int  `mapstructure:"interval_minutes"`
		CooldownMinutes  int  `mapstructure:"cooldown_minutes"`
		FreshnessMinutes int  `mapstructure:"freshness_minutes"`
		CacheTTLMinutes  int  `mapstructure:"cache_ttl_minutes"`
		InitialDelaySec  int  `mapstructure:"initial_delay_seconds"`
		HistoryLimit     int  `mapstructure:"history_limit"`
		Enabled          bool `mapstructure:"enabled"`
	} `mapstructure:"detection"`
	Database struct {
		Driver   string `mapstructure:"driver"` // sqlite or postgres
		Path     string `mapstructure:"path"`   // sqlite file
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Bus struct {
		StateFile string `mapstructure:"state_file"`
	} `mapstructure:"bus"`
	Archive struct {
		Enabled  bool   `mapstructure:"enabled"`
		Provider string `mapstructure:"provider"` // local or s3
		Dir      string `mapstructure:"dir"`
		Bucket   string `mapstructure:"bucket"`
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
		KeyID    string `mapstructure:"key_id"`
		AppKey   string `mapstructure:"app_key"`
	} `mapstructure:"archive"`
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.Detection.IntervalMinutes) * time.Minute
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Detection.CooldownMinutes) * time.Minute
}

func (c *Config) MoodFreshness() time.Duration {
	return time.Duration(c.Detection.FreshnessMinutes) * time.Minute
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Detection.CacheTTLMinutes) * time.Minute
}

func (c *Config) RecordDuration() time.Duration {
	return time.Duration(c.Capture.RecordSeconds) * time.Second
}

func (c *Config) InitialDelay() time.Duration {
	return time.Duration(c.Detection.InitialDelaySec) * time.Second
}

func Load() *Config {
	viper.SetEnvPrefix("MOOD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.port")
	viper.BindEnv("server.auth_secret")
	viper.BindEnv("server.log_level")

	viper.BindEnv("inference.base_url")
	viper.BindEnv("inference.track_limit")
	viper.BindEnv("inference.timeout_seconds")
	viper.BindEnv("inference.profiles")

	viper.BindEnv("capture.video_device")
	viper.BindEnv("capture.audio_device")
	viper.BindEnv("capture.video_format")
	viper.BindEnv("capture.audio_format")
	viper.BindEnv("capture.record_seconds")
	viper.BindEnv("capture.sample_rate")
	viper.BindEnv("capture.ffmpeg_log_level")

	viper.BindEnv("detection.interval_minutes")
	viper.BindEnv("detection.cooldown_minutes")
	viper.BindEnv("detection.freshness_minutes")
	viper.BindEnv("detection.cache_ttl_minutes")
	viper.BindEnv("detection.initial_delay_seconds")
	viper.BindEnv("detection.history_limit")
	viper.BindEnv("detection.enabled")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.path")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("bus.state_file")

	viper.BindEnv("archive.enabled")
	viper.BindEnv("archive.provider")
	viper.BindEnv("archive.dir")
	viper.BindEnv("archive.bucket")
	viper.BindEnv("archive.endpoint")
	viper.BindEnv("archive.region")
	viper.BindEnv("archive.key_id")
	viper.BindEnv("archive.app_key")

	// Defaults
	viper.SetDefault("server.port", ":8090")
	viper.SetDefault("server.log_level", "info")

	viper.SetDefault("inference.base_url", "http://localhost:8000")
	viper.SetDefault("inference.track_limit", 20)
	viper.SetDefault("inference.timeout_seconds", 30)
	viper.SetDefault("inference.profiles", "mood_profiles.yaml")

	viper.SetDefault("capture.video_device", "/dev/video0")
	viper.SetDefault("capture.audio_device", "default")
	viper.SetDefault("capture.video_format", "v4l2")
	viper.SetDefault("capture.audio_format", "alsa")
	viper.SetDefault("capture.record_seconds", 6)
	viper.SetDefault("capture.sample_rate", 16000)
	viper.SetDefault("capture.ffmpeg_log_level", "error")

	// One canonical window per concern. Earlier builds had 15/29/30 minute
	// variants of the same freshness check scattered across call sites.
	viper.SetDefault("detection.interval_minutes", 30)
	viper.SetDefault("detection.cooldown_minutes", 30)
	viper.SetDefault("detection.freshness_minutes", 15)
	viper.SetDefault("detection.cache_ttl_minutes", 30)
	viper.SetDefault("detection.initial_delay_seconds", 5)
	viper.SetDefault("detection.history_limit", 50)
	viper.SetDefault("detection.enabled", true)

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "mood-engine.db")

	viper.SetDefault("bus.state_file", "mood_state.json")

	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.provider", "local")
	viper.SetDefault("archive.dir", "./captures")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	return &cfg
}
