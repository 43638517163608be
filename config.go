package tonecurve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vearutop/tonecurve/internal/geotiff"
	"gopkg.in/yaml.v3"
)

// Config mirrors the applyacv flags. Zero values mean "use the default".
type Config struct {
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	ACV         string `yaml:"acv"`
	BlockSize   int    `yaml:"blocksize"`
	Quality     int    `yaml:"quality"`
	Compression string `yaml:"compression"`
	TileSize    int    `yaml:"tile_size"`
	Overviews   *bool  `yaml:"overviews,omitempty"`
	Resampling  string `yaml:"resampling"`
	SRS         int    `yaml:"srs"`
	Verbose     int    `yaml:"verbose"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply copies the non-zero settings of c to o, skipping every setting for
// which explicit reports true. The names are the long applyacv flag names.
// A nil explicit applies everything.
func (c *Config) Apply(o *Options, explicit func(flag string) bool) error {
	use := func(flag string, set bool) bool {
		return set && (explicit == nil || !explicit(flag))
	}

	if use("input", c.Input != "") {
		o.InputDir = c.Input
	}
	if use("output", c.Output != "") {
		o.OutputDir = c.Output
	}
	if use("acv", c.ACV != "") {
		o.CurveDir = CurveDirFromFlag(c.ACV)
	}
	if use("blocksize", c.BlockSize > 0) {
		o.BlockHeight = c.BlockSize
	}
	if use("quality", c.Quality > 0) {
		o.Quality = c.Quality
	}
	if use("compress", c.Compression != "") {
		comp, err := geotiff.ParseCompression(c.Compression)
		if err != nil {
			return err
		}
		o.Compression = comp
	}
	if use("tile-size", c.TileSize > 0) {
		o.TileSize = c.TileSize
	}
	if use("overviews", c.Overviews != nil) {
		o.Overviews = *c.Overviews
	}
	if use("resampling", c.Resampling != "") {
		rs, err := geotiff.ParseResampling(c.Resampling)
		if err != nil {
			return err
		}
		o.Resampling = rs
	}
	if use("srs", c.SRS > 0) {
		o.EPSG = c.SRS
	}
	return nil
}
