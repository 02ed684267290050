package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stackgrid/pkg/config"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		name     string
		xdgCache string
		want     string
	}{
		{"default", "", filepath.Join(home, ".cache", "stackgrid")},
		{"xdg", "/tmp/xdg-cache", filepath.Join("/tmp/xdg-cache", "stackgrid")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdgCache)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLICacheDirPrefersConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	c := &CLI{Config: &config.Config{Cache: config.Cache{Dir: "/srv/stackgrid/results"}}}
	if got, _ := c.cacheDir(); got != "/srv/stackgrid/results" {
		t.Errorf("cacheDir() = %q, want the [cache] dir", got)
	}

	c.Config.Cache.Dir = ""
	if got, _ := c.cacheDir(); got != filepath.Join("/tmp/xdg-cache", "stackgrid") {
		t.Errorf("cacheDir() = %q, want the XDG dir", got)
	}
}
