package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.Cols != pipeline.DefaultCols {
		t.Errorf("Cols = %d, want %d", cfg.Grid.Cols, pipeline.DefaultCols)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel())
	}
	if d := cfg.Grid.DroppingItem; d == nil || d.I != pipeline.DroppingItemID || d.W != 1 || d.H != 1 {
		t.Errorf("DroppingItem = %+v", d)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(`
[grid]
cols = 6
row_height = 40
margin = [0, 4]
compact_type = "horizontal"
vertical_compact = true
is_draggable = false
resize_handles = ["se", "sw"]

[dropping_item]
id = "new"
w = 2
h = 3

[server]
addr = "127.0.0.1:9000"
shutdown_timeout = "3s"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[log]
level = "debug"
format = "json"
`)
	if err != nil {
		t.Fatal(err)
	}
	g := cfg.Grid
	if g.Cols != 6 || g.RowHeight != 40 || *g.Margin != [2]float64{0, 4} || g.CompactType != "horizontal" {
		t.Errorf("grid = %+v", g)
	}
	if *g.IsDraggable {
		t.Error("explicit is_draggable = false was replaced by the default")
	}
	if !*g.IsResizable {
		t.Error("unset is_resizable should default to true")
	}
	if len(g.ResizeHandles) != 2 {
		t.Errorf("ResizeHandles = %v", g.ResizeHandles)
	}
	if d := g.DroppingItem; d.I != "new" || d.W != 2 || d.H != 3 {
		t.Errorf("DroppingItem = %+v", d)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unset read_timeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"syntax", "[grid\ncols = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[grid]\ncolumns = 3", errors.ErrCodeInvalidConfig},
		{"compact type", "[grid]\ncompact_type = \"diagonal\"", errors.ErrCodeInvalidCompactType},
		{"handle", "[grid]\nresize_handles = [\"up\"]", errors.ErrCodeInvalidHandle},
		{"backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidConfig},
		{"log level", "[log]\nlevel = \"loud\"", errors.ErrCodeInvalidConfig},
		{"log format", "[log]\nformat = \"xml\"", errors.ErrCodeInvalidConfig},
		{"wide dropping item", "[grid]\ncols = 2\n[dropping_item]\nw = 4", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	if p, explicit := Resolve("/flag.toml"); p != "/flag.toml" || !explicit {
		t.Errorf("flag: %q %v", p, explicit)
	}
	if p, explicit := Resolve(""); p != filepath.Join("/xdg", "stackgrid", FileName) || explicit {
		t.Errorf("default: %q %v", p, explicit)
	}
	t.Setenv(EnvPath, "/env.toml")
	if p, explicit := Resolve(""); p != "/env.toml" || !explicit {
		t.Errorf("env: %q %v", p, explicit)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file falls back to defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file: %v", err)
	}
	if cfg.Path != "" || cfg.Grid.Cols != pipeline.DefaultCols {
		t.Errorf("defaults = %+v", cfg)
	}

	// Missing explicit file is an error.
	_, err = Load(filepath.Join(dir, "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit file: err = %v", err)
	}

	path := filepath.Join(dir, "stackgrid", FileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[grid]\ncols = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != path || cfg.Grid.Cols != 4 {
		t.Errorf("loaded Path=%q Cols=%d", cfg.Path, cfg.Grid.Cols)
	}
}
