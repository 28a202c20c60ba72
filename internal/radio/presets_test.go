package radio

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPresets(t *testing.T) {
	t.Run("missing_file_means_no_overrides", func(t *testing.T) {
		p, err := LoadPresets(filepath.Join(t.TempDir(), "stations.yaml"))
		if err != nil {
			t.Fatalf("missing presets file should not error: %v", err)
		}
		if len(p.Stations) != 0 {
			t.Errorf("got %d presets, want 0", len(p.Stations))
		}
	})

	t.Run("parses_station_overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stations.yaml")
		writeFile(t, path, []byte(`
stations:
  jazz:
    name: "Late Night Jazz"
    genre: "jazz"
    bitrate_kbps: 192
    tick_ms: 100
    slice_bytes: 2000
  news:
    name: "Hourly News"
`))

		p, err := LoadPresets(path)
		if err != nil {
			t.Fatalf("LoadPresets: %v", err)
		}
		jazz, ok := p.Stations["jazz"]
		if !ok {
			t.Fatal("jazz preset missing")
		}
		if jazz.Name != "Late Night Jazz" || jazz.Genre != "jazz" || jazz.BitrateKbps != 192 {
			t.Errorf("jazz preset = %+v", jazz)
		}
		if jazz.TickMs != 100 || jazz.SliceBytes != 2000 {
			t.Errorf("jazz clock preset = %+v", jazz)
		}
		if p.Stations["news"].Name != "Hourly News" {
			t.Errorf("news preset = %+v", p.Stations["news"])
		}
	})

	t.Run("malformed_yaml_is_an_error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stations.yaml")
		writeFile(t, path, []byte("stations: ["))

		if _, err := LoadPresets(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestPreset_apply(t *testing.T) {
	base := StationConfig{
		ID:           "jazz",
		Name:         "jazz",
		BitrateKbps:  128,
		TickInterval: 250 * time.Millisecond,
		SliceBytes:   4096,
	}

	t.Run("zero_preset_changes_nothing", func(t *testing.T) {
		if got := (Preset{}).apply(base); got != base {
			t.Errorf("got %+v, want unchanged %+v", got, base)
		}
	})

	t.Run("set_fields_override", func(t *testing.T) {
		p := Preset{Name: "Late Night Jazz", Genre: "jazz", TickMs: 100}
		got := p.apply(base)
		if got.Name != "Late Night Jazz" || got.Genre != "jazz" {
			t.Errorf("identity not applied: %+v", got)
		}
		if got.TickInterval != 100*time.Millisecond {
			t.Errorf("TickInterval = %v, want 100ms", got.TickInterval)
		}
		if got.BitrateKbps != 128 || got.SliceBytes != 4096 {
			t.Errorf("unset fields should keep defaults: %+v", got)
		}
	})
}
