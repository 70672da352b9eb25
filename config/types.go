package config

import "time"

// Config is the sheetviz runtime configuration.
type Config struct {
	Mode            string        `json:"mode,omitempty" env:"SHEETVIZ_ENV" envDefault:"production"`                      // production | development
	Host            string        `json:"host,omitempty" env:"SHEETVIZ_HOST" envDefault:"127.0.0.1"`                      // listen address
	Port            int           `json:"port,omitempty" env:"SHEETVIZ_PORT" envDefault:"8080"`                           // listen port
	DataRoot        string        `json:"data_root,omitempty" env:"SHEETVIZ_DATA_ROOT"`                                   // theme storage, default <user config dir>/sheetviz
	Log             string        `json:"log,omitempty" env:"SHEETVIZ_LOG"`                                               // log file, empty logs to stderr
	LogMode         string        `json:"log_mode,omitempty" env:"SHEETVIZ_LOG_MODE" envDefault:"TEXT"`                   // JSON | TEXT
	LogMaxSize      int           `json:"log_max_size,omitempty" env:"SHEETVIZ_LOG_MAX_SIZE" envDefault:"50"`             // megabytes
	LogMaxBackups   int           `json:"log_max_backups,omitempty" env:"SHEETVIZ_LOG_MAX_BACKUPS" envDefault:"3"`        // rotated files kept
	LogMaxAge       int           `json:"log_max_age,omitempty" env:"SHEETVIZ_LOG_MAX_AGE" envDefault:"28"`               // days
	MaxUploadSize   int64         `json:"max_upload_size,omitempty" env:"SHEETVIZ_MAX_UPLOAD_SIZE" envDefault:"10485760"` // bytes, 10MB
	MaxRows         int           `json:"max_rows,omitempty" env:"SHEETVIZ_MAX_ROWS" envDefault:"10000"`                  // data rows per upload
	SessionTTL      time.Duration `json:"session_ttl,omitempty" env:"SHEETVIZ_SESSION_TTL" envDefault:"2h"`               // idle viewer sessions are dropped after this
	MaxSessions     int           `json:"max_sessions,omitempty" env:"SHEETVIZ_MAX_SESSIONS" envDefault:"1000"`           // live viewer sessions kept in memory
	ChartWidth      int           `json:"chart_width,omitempty" env:"SHEETVIZ_CHART_WIDTH" envDefault:"960"`              // pixels
	ChartHeight     int           `json:"chart_height,omitempty" env:"SHEETVIZ_CHART_HEIGHT" envDefault:"450"`            // pixels
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" env:"SHEETVIZ_SHUTDOWN_TIMEOUT" envDefault:"10s"`    // graceful shutdown budget
}
