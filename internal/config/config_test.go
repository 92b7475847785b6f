package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piggy-viewer/internal/params"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, VariantPixel, cfg.Variant)
	assert.Equal(t, filepath.Join("assets", "piggy.obj"), cfg.Assets.Path(cfg.Assets.Model))
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	writeFile(t, path, `
variant = "classic"

[window]
width = 800

[params]
pixelSize = 8
autoRotate = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VariantClassic, cfg.Variant)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "piggy.mtl", cfg.Assets.Materials)
	assert.Equal(t, int64(8), cfg.Params["pixelSize"])
	assert.Equal(t, false, cfg.Params["autoRotate"])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "variant = ")
	_, err = Load(bad)
	assert.Error(t, err)

	wrong := filepath.Join(dir, "wrong.toml")
	writeFile(t, wrong, `variant = "sepia"`)
	_, err = Load(wrong)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAssetsPath(t *testing.T) {
	a := AssetsConfig{Dir: "assets"}
	assert.Equal(t, "", a.Path(""))
	assert.Equal(t, filepath.Join("assets", "x.png"), a.Path("x.png"))
	abs := filepath.Join(t.TempDir(), "x.png")
	assert.Equal(t, abs, a.Path(abs))
}

func TestReadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	writeFile(t, path, "log_level = \"debug\"\n[params]\n\"light.position.x\" = 12.5\n")

	values, err := ReadParams(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"light.position.x": 12.5}, values)
}

func TestWatcherForwardsParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	writeFile(t, path, "[params]\npixelSize = 4\n")

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan params.Change, 16)
	done := make(chan struct{})
	go func() {
		w.Run(ctx, out)
		close(done)
	}()

	writeFile(t, path, "[params]\npixelSize = 12\n")

	select {
	case c := <-out:
		assert.Equal(t, "pixelSize", c.Name)
		assert.Equal(t, int64(12), c.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("no change forwarded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
