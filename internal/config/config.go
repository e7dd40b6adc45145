package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// Config is the root configuration for fdt, stored in <base>/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Day     DayConfig     `json:"day"`
	Trips   TripsConfig   `json:"trips"`
	Archive ArchiveConfig `json:"archive"`
	Outlook OutlookConfig `json:"outlook"`
	Server  ServerConfig  `json:"server"`
}

// StorageConfig selects where ledgers are persisted.
type StorageConfig struct {
	// Backend is "json" (one file per key) or "sqlite".
	Backend string `json:"backend"`
	// Dir holds the data files. Relative paths are resolved against the base dir.
	Dir string `json:"dir"`
}

// DayConfig holds workday settings.
type DayConfig struct {
	Activities      []string `json:"activities"`
	DefaultActivity string   `json:"default_activity"`
	LogCap          int      `json:"log_cap"`
	Projects        []string `json:"projects"`
	DefaultProject  string   `json:"default_project"`
}

// TripsConfig holds trip settings.
type TripsConfig struct {
	// RoadFactor multiplies straight-line distances; 1.0 disables it.
	RoadFactor    float64 `json:"road_factor"`
	LocationsFile string  `json:"locations_file"`
}

// ArchiveConfig holds the optional MySQL archive.
type ArchiveConfig struct {
	// MySQLDSN enables archiving when set.
	MySQLDSN string `json:"mysql_dsn"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Activity receives the imported events.
	Activity string `json:"activity"`
	// Billable marks imported items billable.
	Billable bool `json:"billable"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Amsterdam"). Empty = UTC.
	Timezone string `json:"timezone"`
}

// ServerConfig holds the HTTP view settings.
type ServerConfig struct {
	Addr string `json:"addr"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	DefaultBackend         = "json"
	DefaultDataDir         = "data"
	DefaultActivity        = "Engineering"
	DefaultLogCap          = 60
	DefaultProject         = "Project A"
	DefaultRoadFactor      = 1.25
	DefaultLocationsFile   = "locations.yaml"
	DefaultOutlookActivity = "Meeting"
	DefaultAddr            = "127.0.0.1:8765"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: DefaultBackend, Dir: DefaultDataDir},
		Day: DayConfig{
			Activities:      slices.Clone(model.DefaultActivities),
			DefaultActivity: DefaultActivity,
			LogCap:          DefaultLogCap,
			Projects:        []string{"Project A", "Project B", "RDM Retrofit"},
			DefaultProject:  DefaultProject,
		},
		Trips: TripsConfig{RoadFactor: DefaultRoadFactor, LocationsFile: DefaultLocationsFile},
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
			Activity: DefaultOutlookActivity,
			Billable: true,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// fdt configuration
//
// All settings are optional; missing keys fall back to the defaults below.
{
  // ── Storage ───────────────────────────────────────────────────────────────
  "storage": {
    // "json" keeps one file per key, "sqlite" one database file.
    "backend": "json",
    // Relative to the fdt directory (~/.fdt or $FDT_HOME).
    "dir": "data"
  },

  // ── Workday ───────────────────────────────────────────────────────────────
  "day": {
    // Travel is always available; trips switch to it automatically.
    "activities": ["Engineering", "Assembly", "Research", "Travel", "Meeting", "Admin"],
    "default_activity": "Engineering",
    // Closed days kept in the day log, oldest dropped first.
    "log_cap": 60,
    "projects": ["Project A", "Project B", "RDM Retrofit"],
    "default_project": "Project A"
  },

  // ── Trips ─────────────────────────────────────────────────────────────────
  "trips": {
    // Multiplier from straight-line to road distance. 1.0 = straight line.
    "road_factor": 1.25,
    // YAML file with favorite places, relative to the fdt directory.
    "locations_file": "locations.yaml"
  },

  // ── Archive ───────────────────────────────────────────────────────────────
  "archive": {
    // MySQL DSN; leave empty to disable. Needs parseTime=true&multiStatements=true.
    "mysql_dsn": ""
  },

  // ── Microsoft Graph / Outlook calendar import ─────────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Activity that receives imported events.
    "activity": "Meeting",
    "billable": true,

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Amsterdam".
    // Leave empty to use UTC. Can be overridden with: fdt outlook import --timezone <tz>
    "timezone": ""
  },

  // ── HTTP view (fdt serve) ─────────────────────────────────────────────────
  "server": {
    "addr": "127.0.0.1:8765"
  }
}
`

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads base/config.json, creating it with annotated defaults on first
// run, and resolves relative paths against base.
func Load(base string) (Config, error) {
	path := filepath.Join(base, "config.json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			slog.Warn("could not create config file", slog.String("path", path), slog.String("error", writeErr.Error()))
		}
		cfg := defaultConfig()
		cfg.resolve(base)
		return cfg, nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return defaultConfig(), fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.resolve(base)
	return cfg, nil
}

// normalize fills values the user blanked out and rejects unusable ones.
func (c *Config) normalize() error {
	switch c.Storage.Backend {
	case "":
		c.Storage.Backend = DefaultBackend
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend %q: want json or sqlite", c.Storage.Backend)
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultDataDir
	}
	if len(c.Day.Activities) == 0 {
		c.Day.Activities = slices.Clone(model.DefaultActivities)
	}
	if !slices.Contains(c.Day.Activities, model.Travel) {
		c.Day.Activities = append(c.Day.Activities, model.Travel)
	}
	if !slices.Contains(c.Day.Activities, c.Day.DefaultActivity) || c.Day.DefaultActivity == model.Travel {
		c.Day.DefaultActivity = c.Day.Activities[0]
	}
	if c.Day.LogCap <= 0 {
		c.Day.LogCap = DefaultLogCap
	}
	if c.Day.DefaultProject == "" {
		c.Day.DefaultProject = DefaultProject
	}
	if c.Trips.RoadFactor <= 0 {
		c.Trips.RoadFactor = DefaultRoadFactor
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
	if c.Outlook.Activity == "" {
		c.Outlook.Activity = DefaultOutlookActivity
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	return nil
}

func (c *Config) resolve(base string) {
	if !filepath.IsAbs(c.Storage.Dir) {
		c.Storage.Dir = filepath.Join(base, c.Storage.Dir)
	}
	if c.Trips.LocationsFile != "" && !filepath.IsAbs(c.Trips.LocationsFile) {
		c.Trips.LocationsFile = filepath.Join(base, c.Trips.LocationsFile)
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
