package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Shortener ShortenerConfig `mapstructure:"shortener"`
	QR        QRConfig        `mapstructure:"qr"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SessionConfig struct {
	CookieName    string        `mapstructure:"cookie_name"`
	Secret        string        `mapstructure:"secret"`
	Secure        bool          `mapstructure:"secure"`
	TTL           time.Duration `mapstructure:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type ShortenerConfig struct {
	Timeout   time.Duration   `mapstructure:"timeout"`
	UserAgent string          `mapstructure:"user_agent"`
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
}

type EndpointsConfig struct {
	IsGd    string `mapstructure:"isgd"`
	DaGd    string `mapstructure:"dagd"`
	ClckRu  string `mapstructure:"clckru"`
	TinyURL string `mapstructure:"tinyurl"`
}

type QRConfig struct {
	BoxSize     int `mapstructure:"box_size"`
	Border      int `mapstructure:"border"`
	DefaultSize int `mapstructure:"default_size"`
}

type RateLimitConfig struct {
	GeneratePerMinute int `mapstructure:"generate_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("session.cookie_name", "qrgen_session")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.max_entries", 10000)
	v.SetDefault("session.sweep_interval", 5*time.Minute)

	v.SetDefault("shortener.timeout", 10*time.Second)
	v.SetDefault("shortener.user_agent", "qrgen/1.0")
	v.SetDefault("shortener.endpoints.isgd", "https://is.gd/create.php")
	v.SetDefault("shortener.endpoints.dagd", "https://da.gd/s")
	v.SetDefault("shortener.endpoints.clckru", "https://clck.ru/--")
	v.SetDefault("shortener.endpoints.tinyurl", "https://tinyurl.com/api-create.php")

	v.SetDefault("qr.box_size", 10)
	v.SetDefault("qr.border", 4)
	v.SetDefault("qr.default_size", 400)

	v.SetDefault("rate_limit.generate_per_minute", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads the YAML file at path and applies QRGEN_* environment
// overrides (QRGEN_SERVER_PORT, QRGEN_SESSION_SECRET, ...). A missing path
// is not an error; defaults and environment are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("qrgen")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	// SetConfigFile reports a missing file as a plain *fs.PathError.
	return errors.Is(err, fs.ErrNotExist)
}
