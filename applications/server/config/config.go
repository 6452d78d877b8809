package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v2"
)

var schemeRe = regexp.MustCompile(`^[a-z][a-z0-9+.-]*$`)

type Server struct {
	API   Api   `yaml:"api"`
	Media Media `yaml:"media"`
	Log   Log   `yaml:"log"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr"`
	// PreStopWait delays shutdown after a signal.
	PreStopWait time.Duration `yaml:"pre_stop_wait"`
}

type Media struct {
	// Scheme is the private URI scheme the player uses, e.g. lcp://.
	Scheme string `yaml:"scheme"`
	// Roots limits servable paths. Empty means any path.
	Roots      []string `yaml:"roots"`
	CloudRoots []string `yaml:"cloud_roots"`

	ChunkSize          int               `yaml:"chunk_size"`
	BufferChunks       int               `yaml:"buffer_chunks"`
	IdleReadTimeout    time.Duration     `yaml:"idle_read_timeout"`
	DefaultContentType string            `yaml:"default_content_type"`
	ContentTypes       map[string]string `yaml:"content_types"`
}

type Log struct {
	Level string `yaml:"level"`
	// File switches output from stderr to a rotated file.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Default() Server {
	return Server{
		API: Api{HTTPAddr: "127.0.0.1:8002"},
		Media: Media{
			Scheme:             "lcp",
			ChunkSize:          64 * 1024,
			BufferChunks:       4,
			DefaultContentType: "video/mp4",
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Parse reads the YAML file at path on top of Default. An empty path yields
// the defaults.
func Parse(path string) (Server, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't parse config file: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	if _, _, err := net.SplitHostPort(s.API.HTTPAddr); err != nil {
		return fmt.Errorf("api.http_addr: %w", err)
	}
	if s.API.PreStopWait < 0 {
		return errors.New("api.pre_stop_wait can't be negative")
	}

	if !schemeRe.MatchString(s.Media.Scheme) {
		return fmt.Errorf("media.scheme %q is not a valid URI scheme", s.Media.Scheme)
	}
	if s.Media.Scheme == "http" || s.Media.Scheme == "https" || s.Media.Scheme == "file" {
		return fmt.Errorf("media.scheme %q is reserved", s.Media.Scheme)
	}

	if s.Media.ChunkSize <= 0 {
		return errors.New("media.chunk_size must be positive")
	}
	if s.Media.BufferChunks <= 0 {
		return errors.New("media.buffer_chunks must be positive")
	}
	if s.Media.IdleReadTimeout < 0 {
		return errors.New("media.idle_read_timeout can't be negative")
	}

	for _, root := range append(append([]string{}, s.Media.Roots...), s.Media.CloudRoots...) {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("media root %q must be absolute", root)
		}
	}

	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is unknown", s.Log.Level)
	}

	return nil
}
