package radio

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Presets carries optional per-station overrides loaded from a YAML file of
// the form:
//
//	stations:
//	  jazz:
//	    name: "Late Night Jazz"
//	    genre: "jazz"
//	    bitrate_kbps: 192
//
// Stations not mentioned keep their scanned defaults.
type Presets struct {
	Stations map[string]Preset `yaml:"stations"`
}

// Preset customizes one station's presentation and clock geometry. Zero
// fields leave the corresponding default untouched.
type Preset struct {
	Name        string `yaml:"name"`
	Genre       string `yaml:"genre"`
	BitrateKbps int    `yaml:"bitrate_kbps"`
	TickMs      int    `yaml:"tick_ms"`
	SliceBytes  int    `yaml:"slice_bytes"`
}

// apply overlays the preset's non-zero fields onto cfg.
func (p Preset) apply(cfg StationConfig) StationConfig {
	if p.Name != "" {
		cfg.Name = p.Name
	}
	if p.Genre != "" {
		cfg.Genre = p.Genre
	}
	if p.BitrateKbps > 0 {
		cfg.BitrateKbps = p.BitrateKbps
	}
	if p.TickMs > 0 {
		cfg.TickInterval = time.Duration(p.TickMs) * time.Millisecond
	}
	if p.SliceBytes > 0 {
		cfg.SliceBytes = p.SliceBytes
	}
	return cfg
}

// LoadPresets reads a presets file. A missing file is not an error, it just
// means no overrides; an unreadable or malformed file is reported so a typo
// does not silently run every station on defaults.
func LoadPresets(path string) (Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Presets{}, nil
		}
		return Presets{}, fmt.Errorf("read presets: %w", err)
	}

	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Presets{}, fmt.Errorf("parse presets: %w", err)
	}
	return p, nil
}
