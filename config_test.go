package tonecurve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vearutop/tonecurve/internal/geotiff"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applyacv.yaml")
	data := `
input: /data/in
output: /data/out
acv: /data/curves/doc.psd
blocksize: 256
quality: 85
compression: zstd
overviews: false
resampling: lanczos
srs: 2154
verbose: 1
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Verbose != 1 || cfg.BlockSize != 256 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	opt := defaultOptions()
	opt.OutputDir = "/flag/out"
	opt.BlockHeight = 64
	explicit := func(flag string) bool { return flag == "output" || flag == "blocksize" }
	if err := cfg.Apply(&opt, explicit); err != nil {
		t.Fatal(err)
	}

	if opt.OutputDir != "/flag/out" || opt.BlockHeight != 64 {
		t.Fatalf("flags given on the command line must win: %+v", opt)
	}
	if opt.InputDir != "/data/in" || opt.CurveDir != "/data/curves/doc" {
		t.Fatalf("config paths not applied: %+v", opt)
	}
	if opt.Quality != 85 || opt.Compression != geotiff.CompressionZstd || opt.Overviews ||
		opt.Resampling != geotiff.ResamplingLanczos || opt.EPSG != 2154 {
		t.Fatalf("config values not applied: %+v", opt)
	}
	if opt.TileSize != defaultTileSize {
		t.Fatalf("unset tile size changed to %d", opt.TileSize)
	}
}

func TestLoadConfig_errors(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("inptu: /data\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(unknown); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	badCodec := filepath.Join(dir, "codec.yaml")
	if err := os.WriteFile(badCodec, []byte("compression: lzw\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(badCodec)
	if err != nil {
		t.Fatal(err)
	}
	opt := defaultOptions()
	if err := cfg.Apply(&opt, nil); err == nil {
		t.Fatalf("expected error for unknown compression")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(empty); err != nil {
		t.Fatalf("empty config: %v", err)
	}
}
