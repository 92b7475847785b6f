package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")

	src := newTestStore(t)
	require.NoError(t, src.Set("pixelSize", 12.0))
	require.NoError(t, src.Set("autoRotate", false))
	require.NoError(t, src.SavePreset(path, "pixel"))

	p, err := ReadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "pixel", p.Variant)

	dst := newTestStore(t)
	var changed []string
	dst.SubscribeAll(func(name string, _ any) { changed = append(changed, name) })
	require.NoError(t, dst.LoadPreset(path, "pixel"))

	v, _ := dst.Number("pixelSize")
	assert.Equal(t, 12.0, v)
	on, _ := dst.Bool("autoRotate")
	assert.False(t, on)
	assert.ElementsMatch(t, []string{"autoRotate", "pixelSize"}, changed)
}

func TestLoadPresetClampsAndReportsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params:\n  pixelSize: 64\n  gone: 1\n"), 0o644))

	s := newTestStore(t)
	err := s.LoadPreset(path, "pixel")
	assert.ErrorIs(t, err, ErrUnknownParam)

	v, _ := s.Number("pixelSize")
	assert.Equal(t, 16.0, v)
}

func TestLoadPresetErrors(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.LoadPreset(filepath.Join(t.TempDir(), "missing.yaml"), "pixel"))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params: [unclosed"), 0o644))
	assert.Error(t, s.LoadPreset(path, "pixel"))
}

func TestLoadPresetFromOtherVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	body := "variant: classic\nparams:\n  autoRotate: false\n  piggy.rotation.x: 1.5\n  planeRotation: 4.7\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := newTestStore(t)
	require.NoError(t, s.LoadPreset(path, "pixel"))

	on, _ := s.Bool("autoRotate")
	assert.False(t, on)
	v, _ := s.Number("piggy.rotation.x")
	assert.Equal(t, 1.5, v)

	// same variant: a missing parameter is still an error
	same := newTestStore(t)
	assert.ErrorIs(t, same.LoadPreset(path, "classic"), ErrUnknownParam)
}
