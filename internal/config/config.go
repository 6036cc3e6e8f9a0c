package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the site, the store and the CLI.
type Config struct {
	Port        string
	APIURL      string
	AuthURL     string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string
	ConsoleIdle time.Duration
	HTTPTimeout time.Duration
	SessionFile string
	LogLevel    slog.Level
	ChromePath  string
}

// Load reads an optional .env file and then the environment. defaultPort
// differs per binary.
func Load(defaultPort string) (Config, error) {
	_ = godotenv.Load()

	c := Config{
		Port:        getenv("PORT", defaultPort),
		APIURL:      strings.TrimRight(getenv("CV_API_URL", "http://localhost:8081"), "/"),
		DatabaseURL: os.Getenv("CV_DATABASE_URL"),
		JWTSecret:   getenv("CV_JWT_SECRET", "dev-secret"),
		ChromePath:  os.Getenv("CHROME_PATH"),
	}
	c.AuthURL = getenv("CV_AUTH_URL", c.APIURL+"/oauth2/authorization/google")

	for _, o := range strings.Split(getenv("CV_CORS_ORIGINS", "http://localhost:5173,https://salyem.dev"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}

	var err error
	if c.ConsoleIdle, err = duration("CV_CONSOLE_IDLE", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if c.HTTPTimeout, err = duration("CV_HTTP_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if err := c.LogLevel.UnmarshalText([]byte(getenv("CV_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("CV_LOG_LEVEL: %w", err)
	}

	c.SessionFile = os.Getenv("CV_SESSION_FILE")
	if c.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		c.SessionFile = filepath.Join(dir, "cv-site", "session.yaml")
	}
	return c, nil
}

// Logger installs a text slog handler on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
	slog.SetDefault(l)
	return l
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
