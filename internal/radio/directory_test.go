package radio

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	a := bytes.Repeat([]byte("a"), 500)
	b := bytes.Repeat([]byte("b"), 300)
	loader := &mapLoader{files: map[string][]byte{
		"jazz/a.mp3": a,
		"jazz/b.mp3": b,
		"news/n.mp3": b,
	}}
	sources := []StationSource{
		{ID: "news", Dir: "news", Tracks: []TrackInfo{{Path: "news/n.mp3", Title: "News Loop"}}},
		{ID: "jazz", Dir: "jazz", Tracks: []TrackInfo{
			{Path: "jazz/a.mp3", Title: "A", Duration: 31500 * time.Millisecond},
			{Path: "jazz/b.mp3", Title: "B", Duration: 2 * time.Minute},
		}},
		{ID: "empty", Dir: "empty"},
	}
	presets := Presets{Stations: map[string]Preset{
		"jazz": {Name: "Late Night Jazz", Genre: "jazz", BitrateKbps: 192},
	}}
	defaults := StationConfig{TickInterval: time.Hour, SliceBytes: 100}
	d := NewDirectory(sources, presets, defaults, loader, testLogger(), nil)
	t.Cleanup(d.Close)
	return d
}

func TestDirectory_Lookup(t *testing.T) {
	d := newTestDirectory(t)

	t.Run("found", func(t *testing.T) {
		st, ok := d.Lookup("jazz")
		if !ok || st == nil {
			t.Fatal("expected jazz station")
		}
		if st.Config().Name != "Late Night Jazz" {
			t.Errorf("Name = %q, want preset name", st.Config().Name)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		if _, ok := d.Lookup("metal"); ok {
			t.Error("expected ok false for unknown station")
		}
	})
}

func TestDirectory_List_sorted(t *testing.T) {
	d := newTestDirectory(t)

	list := d.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d stations, want 3", len(list))
	}
	want := []StationID{"empty", "jazz", "news"}
	for i, st := range list {
		if st.Config().ID != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, st.Config().ID, want[i])
		}
	}
}

func TestDirectory_presets_applied(t *testing.T) {
	d := newTestDirectory(t)

	jazz, _ := d.Lookup("jazz")
	cfg := jazz.Config()
	if cfg.Name != "Late Night Jazz" || cfg.Genre != "jazz" || cfg.BitrateKbps != 192 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	// Fields the preset does not set keep the scanned defaults.
	if cfg.TickInterval != time.Hour || cfg.SliceBytes != 100 {
		t.Errorf("defaults not kept: tick=%v slice=%d", cfg.TickInterval, cfg.SliceBytes)
	}

	news, _ := d.Lookup("news")
	if news.Config().Name != "news" {
		t.Errorf("station without preset should use its directory name, got %q", news.Config().Name)
	}
}

func TestDirectory_StartAll_leaves_empty_station_idle(t *testing.T) {
	d := newTestDirectory(t)
	d.StartAll()

	jazz, _ := d.Lookup("jazz")
	if !jazz.Status().Playing {
		t.Error("jazz should be playing after StartAll")
	}

	empty, _ := d.Lookup("empty")
	if empty.Status().Playing {
		t.Error("empty station should stay idle")
	}
}

func mustAttach(t *testing.T, st *Station) *Client {
	t.Helper()
	c, err := st.Attach(newFakeSink(), ClientMeta{})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return c
}

func TestDirectory_TotalListeners(t *testing.T) {
	d := newTestDirectory(t)
	d.StartAll()

	jazz, _ := d.Lookup("jazz")
	news, _ := d.Lookup("news")

	c1 := mustAttach(t, jazz)
	mustAttach(t, jazz)
	mustAttach(t, news)

	if got := d.TotalListeners(); got != 3 {
		t.Errorf("TotalListeners = %d, want 3", got)
	}

	jazz.Detach(c1)
	waitClosed(t, c1.Flushed(), "pump flush")
	if got := d.TotalListeners(); got != 2 {
		t.Errorf("TotalListeners after detach = %d, want 2", got)
	}
}

func TestDirectory_Close_shuts_stations(t *testing.T) {
	d := newTestDirectory(t)
	d.StartAll()

	jazz, _ := d.Lookup("jazz")
	c := mustAttach(t, jazz)

	d.Close()

	if c.Alive() {
		t.Error("listener should be detached after Close")
	}
	if _, err := jazz.Attach(newFakeSink(), ClientMeta{}); !errors.Is(err, ErrStationClosed) {
		t.Errorf("Attach after Close = %v, want ErrStationClosed", err)
	}
	if got := d.TotalListeners(); got != 0 {
		t.Errorf("TotalListeners after Close = %d, want 0", got)
	}
}
