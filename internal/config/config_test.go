package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadWritesTemplate(t *testing.T) {
	base := t.TempDir()
	cfg, err := Load(base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "config.json")); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if cfg.Storage.Dir != filepath.Join(base, "data") {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
	if cfg.Trips.RoadFactor != DefaultRoadFactor || cfg.Day.LogCap != DefaultLogCap {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

// The template must decode to exactly the built-in defaults.
func TestTemplateMatchesDefaults(t *testing.T) {
	var got Config
	if err := json.Unmarshal(stripLineComments([]byte(configTemplate)), &got); err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}
	if want := defaultConfig(); !reflect.DeepEqual(got, want) {
		t.Errorf("template =\n %+v\ndefaults =\n %+v", got, want)
	}
}

func TestLoadPartialFile(t *testing.T) {
	base := t.TempDir()
	data := `// custom
{
  "storage": {"backend": "sqlite", "dir": "/var/lib/fdt"},
  "day": {"activities": ["Welding", "Admin"], "default_activity": "Travel", "log_cap": 0},
  "trips": {"road_factor": 1.0}
}`
	if err := os.WriteFile(filepath.Join(base, "config.json"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Dir != "/var/lib/fdt" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if want := []string{"Welding", "Admin", "Travel"}; !reflect.DeepEqual(cfg.Day.Activities, want) {
		t.Errorf("Activities = %v, want %v", cfg.Day.Activities, want)
	}
	if cfg.Day.DefaultActivity != "Welding" {
		t.Errorf("DefaultActivity = %q, want Welding", cfg.Day.DefaultActivity)
	}
	if cfg.Day.LogCap != DefaultLogCap || cfg.Trips.RoadFactor != 1.0 {
		t.Errorf("LogCap=%d RoadFactor=%v", cfg.Day.LogCap, cfg.Trips.RoadFactor)
	}
	if cfg.Outlook.ClientID != DefaultClientID || cfg.Server.Addr != DefaultAddr {
		t.Errorf("untouched sections lost their defaults: %+v", cfg)
	}
	if cfg.Trips.LocationsFile != filepath.Join(base, DefaultLocationsFile) {
		t.Errorf("LocationsFile = %q", cfg.Trips.LocationsFile)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "config.json"), []byte(`{"storage":{"backend":"redis"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(base); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestStripLineComments(t *testing.T) {
	in := "// a\n  // b\n{\"x\": \"http://y\"}\n"
	got := string(stripLineComments([]byte(in)))
	if got != "{\"x\": \"http://y\"}\n\n" {
		t.Errorf("stripLineComments = %q", got)
	}
}
