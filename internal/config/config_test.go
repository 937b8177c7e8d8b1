package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/sim"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Sim != sim.DefaultConfig() {
		t.Error("default sim config differs from sim.DefaultConfig")
	}
	if d, _ := cfg.LayoutTimeout(); d != 2*time.Minute {
		t.Errorf("LayoutTimeout = %v, want 2m", d)
	}
	if p, _ := cfg.ViewportProfile(); p != viewport.ProfileCanvas {
		t.Errorf("profile = %+v, want canvas", p)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Viewport.Width != 800 || cfg.Cache.Backend != BackendFile {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[viewport]
width = 1024.0
profile = "wide"

[sim]
charge_strength = -60.0

[style]
is_dynamic_radius = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Viewport.Width != 1024 || cfg.Viewport.Height != 600 {
		t.Errorf("viewport = %+v, want 1024x600", cfg.Viewport)
	}
	if p, _ := cfg.ViewportProfile(); p != viewport.ProfileWide {
		t.Errorf("profile = %+v, want wide", p)
	}
	if cfg.Sim.ChargeStrength != -60 || cfg.Sim.LinkDistance != sim.DefaultLinkDistance {
		t.Errorf("sim = %+v", cfg.Sim)
	}
	if !cfg.Style.IsDynamicRadius || cfg.Style.LinkColor == "" {
		t.Errorf("style = %+v", cfg.Style)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"malformed", "[viewport\nwidth = 1", errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"s3\"", errors.ErrCodeInvalidConfig},
		{"bad timeout", "[layout]\ntimeout = \"soon\"", errors.ErrCodeInvalidConfig},
		{"zero width", "[viewport]\nwidth = 0.0", errors.ErrCodeInvalidInput},
		{"bad profile", "[viewport]\nprofile = \"tiny\"", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FORCEGRAPH_CACHE_BACKEND", "redis")
	t.Setenv("FORCEGRAPH_REDIS_ADDR", "cache:6380")
	t.Setenv("FORCEGRAPH_REDIS_DB", "3")
	t.Setenv("FORCEGRAPH_WIDTH", "1280")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "cache:6380" || cfg.Cache.Redis.DB != 3 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Viewport.Width != 1280 {
		t.Errorf("width = %v, want 1280", cfg.Viewport.Width)
	}
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	t.Setenv("FORCEGRAPH_HEIGHT", "tall")
	err := Default().ApplyEnv()
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	created, err := EnsureExists(path)
	if err != nil || !created {
		t.Fatalf("EnsureExists = %v, %v", created, err)
	}
	created, err = EnsureExists(path)
	if err != nil || created {
		t.Fatalf("second EnsureExists = %v, %v", created, err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Server.Addr = ":9090"
	cfg.Style.Palette = []string{"#111111", "#222222"}
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Server.Addr != ":9090" || len(got.Style.Palette) != 2 {
		t.Errorf("reloaded = %+v", got)
	}
	if got.Sim != cfg.Sim {
		t.Errorf("sim changed across save: %+v vs %+v", got.Sim, cfg.Sim)
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	for _, want := range []string{"[viewport]", "[sim]", "[cache.redis]"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() misses %s", want)
		}
	}
}
