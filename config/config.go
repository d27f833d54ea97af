// Package config loads the service configuration file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/visionedge/person-detection-service/detections"
)

// Config is the full service configuration. Zero values fall back to the
// defaults below, so a partial (or absent) file is fine.
type Config struct {
	// ListenAddr is the host:port the HTTP server binds.
	ListenAddr string `yaml:"listenAddr"`
	// ModelPath points at the ONNX model file. The MODEL_PATH environment
	// variable overrides it.
	ModelPath string `yaml:"modelPath"`
	// PoolSize is the number of engine sessions kept warm.
	PoolSize int `yaml:"poolSize"`
	// Confidence and IoU are the per-request threshold defaults, used when
	// the query string omits them.
	Confidence float32 `yaml:"confidence"`
	IoU        float32 `yaml:"iou"`
}

const (
	DefaultListenAddr = "0.0.0.0:5000"
	DefaultModelPath  = "models/yolo11n.onnx"
	DefaultPoolSize   = 4
)

// Load reads path and applies defaults and the MODEL_PATH override. A
// missing file is not an error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
		// run on defaults
	default:
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg.applyDefaults()

	if p := os.Getenv("MODEL_PATH"); p != "" {
		cfg.ModelPath = p
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.ModelPath == "" {
		c.ModelPath = DefaultModelPath
	}
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.Confidence <= 0 {
		c.Confidence = detections.DefaultConfThreshold
	}
	if c.IoU <= 0 {
		c.IoU = detections.DefaultIoUThreshold
	}
}
