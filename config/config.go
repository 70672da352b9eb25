package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't read config: %w", err)
	}

	if cfg.DataRoot == "" {
		root, err := defaultDataRoot()
		if err != nil {
			return Config{}, err
		}
		cfg.DataRoot = root
	}
	if abs, err := filepath.Abs(cfg.DataRoot); err == nil {
		cfg.DataRoot = abs
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom overlays the variables of envfile onto the environment, then loads.
// A missing envfile is not an error.
func LoadFrom(envfile string) (Config, error) {
	if envfile == "" {
		return Load()
	}
	file, err := filepath.Abs(envfile)
	if err != nil {
		return Load()
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return Load()
	}
	if err := godotenv.Overload(file); err != nil {
		return Config{}, fmt.Errorf("can't read %s: %w", file, err)
	}
	return Load()
}

// Validate reports every invalid field at once.
func (cfg Config) Validate() error {
	var result *multierror.Error
	if cfg.Mode != ModeProduction && cfg.Mode != ModeDevelopment {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_ENV must be %s or %s, got %q", ModeProduction, ModeDevelopment, cfg.Mode))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_PORT out of range: %d", cfg.Port))
	}
	if mode := strings.ToUpper(cfg.LogMode); mode != "TEXT" && mode != "JSON" {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_LOG_MODE must be TEXT or JSON, got %q", cfg.LogMode))
	}
	if cfg.MaxUploadSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_MAX_UPLOAD_SIZE must be positive"))
	}
	if cfg.MaxRows <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_MAX_ROWS must be positive"))
	}
	if cfg.SessionTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_SESSION_TTL must be positive"))
	}
	if cfg.MaxSessions <= 0 {
		result = multierror.Append(result, fmt.Errorf("SHEETVIZ_MAX_SESSIONS must be positive"))
	}
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		result = multierror.Append(result, fmt.Errorf("chart size must be positive, got %dx%d", cfg.ChartWidth, cfg.ChartHeight))
	}
	return result.ErrorOrNil()
}

// Addr is the listen address.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// ThemeFile is where the theme flag is persisted.
func (cfg Config) ThemeFile() string {
	return filepath.Join(cfg.DataRoot, "theme.json")
}

func defaultDataRoot() (string, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "sheetviz"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sheetviz"), nil
}

// SetupLog applies level and formatter for the mode and opens the log file.
// The returned closer must be closed on shutdown.
func SetupLog(cfg Config) (io.Closer, error) {
	if cfg.Mode == ModeDevelopment {
		log.SetLevel(log.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		log.SetLevel(log.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	if strings.ToUpper(cfg.LogMode) == "JSON" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.Log == "" {
		log.SetOutput(os.Stderr)
		gin.DefaultWriter = os.Stderr
		return nopCloser{}, nil
	}

	logfile, err := filepath.Abs(cfg.Log)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logfile), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	output := &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    cfg.LogMaxSize, // megabytes
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge, // days
		LocalTime:  true,
	}
	log.SetOutput(output)
	gin.DefaultWriter = io.MultiWriter(output)
	return output, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
