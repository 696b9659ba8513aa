// Package config loads application settings from environment variables with
// defaults, and validates them on startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Preview PreviewConfig
	Image   ImageConfig
	Chart   ChartConfig
	Logging LoggingConfig
	Output  OutputConfig
}

// ServerConfig holds HTTP server settings for `sweeper serve`.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// UploadConfig bounds what a single request may carry.
type UploadConfig struct {
	// MaxFileSize is the maximum request body in bytes (default: 32MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"33554432"`

	// MaxFiles is the maximum number of files in one batch request (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`
}

// PreviewConfig controls table and image previews.
type PreviewConfig struct {
	Rows            int `env:"PREVIEW_ROWS" default:"5"`
	ThumbnailWidth  int `env:"PREVIEW_THUMBNAIL_WIDTH" default:"100"`
	ThumbnailHeight int `env:"PREVIEW_THUMBNAIL_HEIGHT" default:"200"`
}

// ImageConfig holds encoder settings.
type ImageConfig struct {
	JPEGQuality int `env:"IMAGE_JPEG_QUALITY" default:"75"`
}

// ChartConfig holds bar chart settings.
type ChartConfig struct {
	Width   int `env:"CHART_WIDTH" default:"800"`
	Height  int `env:"CHART_HEIGHT" default:"400"`
	MaxRows int `env:"CHART_MAX_ROWS" default:"50"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File receives TUI logs, since the terminal is owned by the UI (default: sweeper.log)
	File string `env:"LOG_FILE" default:"sweeper.log"`
}

// OutputConfig controls where the TUI writes converted files.
type OutputConfig struct {
	// Dir is the output directory; empty means next to the input file.
	Dir string `env:"OUTPUT_DIR"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
