package params

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"piggy-viewer/internal/logger"
)

// Preset is the on-disk form of a parameter snapshot.
type Preset struct {
	Variant string         `yaml:"variant,omitempty"`
	Params  map[string]any `yaml:"params"`
}

// SavePreset writes the current values to path as YAML.
func (s *Store) SavePreset(path, variant string) error {
	data, err := yaml.Marshal(Preset{Variant: variant, Params: s.Snapshot()})
	if err != nil {
		return fmt.Errorf("marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset %q: %w", path, err)
	}
	return nil
}

// ReadPreset parses a preset file without applying it.
func ReadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %q: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse preset %q: %w", path, err)
	}
	return &p, nil
}

// LoadPreset reads path and applies its values through Set, so they are
// clamped and only changed fields notify listeners. A preset saved by another
// variant applies only the parameters this store has; the rest are logged and
// skipped instead of failing as unknown.
func (s *Store) LoadPreset(path, variant string) error {
	p, err := ReadPreset(path)
	if err != nil {
		return err
	}
	values := p.Params
	if p.Variant != "" && variant != "" && p.Variant != variant {
		values = make(map[string]any, len(p.Params))
		var skipped []string
		for name, v := range p.Params {
			if _, ok := s.Field(name); ok {
				values[name] = v
			} else {
				skipped = append(skipped, name)
			}
		}
		sort.Strings(skipped)
		logger.Log.Warn("preset saved by another variant",
			zap.String("path", path),
			zap.String("preset", p.Variant),
			zap.String("variant", variant),
			zap.Strings("skipped", skipped))
	}
	if err := s.Apply(values); err != nil {
		return fmt.Errorf("apply preset %q: %w", path, err)
	}
	return nil
}
