package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the service. Tags use
// mapstructure for viper unmarshalling; every key can also be set via
// the environment variable of the same name.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`     // empty: in-memory activity store
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"` // empty: process-local visit window
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// SignInURL is where the protected-route gate redirects anonymous
	// navigations.
	SignInURL string `mapstructure:"SIGNIN_URL"`

	// VisitSuppressionWindow is how long a repeated page_visited event
	// for the same page is swallowed. The 5m default matches observed
	// product behavior; it is tuning, not a correctness requirement.
	VisitSuppressionWindow time.Duration `mapstructure:"VISIT_SUPPRESSION_WINDOW"`

	// LoginTrackDelay defers the post-sign-in login event so it does
	// not race the provider's own session commit.
	LoginTrackDelay time.Duration `mapstructure:"LOGIN_TRACK_DELAY"`

	// FeedLimit caps the recent-activity feed size.
	FeedLimit int `mapstructure:"FEED_LIMIT"`

	// Google OAuth2 backend. The backend is only registered when the
	// client ID is set.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults, in that order of precedence (lowest first).
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/sketchmentor/")
	v.AddConfigPath("$HOME/.sketchmentor")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "sketchmentor")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("SIGNIN_URL", "/signin")
	v.SetDefault("VISIT_SUPPRESSION_WINDOW", "5m")
	v.SetDefault("LOGIN_TRACK_DELAY", "100ms")
	v.SetDefault("FEED_LIMIT", 10)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on defaults and env.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
