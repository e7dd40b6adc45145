// Package location resolves the place names used for trips into
// coordinates.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// GPSToken selects the device position instead of a named place.
const GPSToken = "gps"

// GPSLabel is the leg name recorded for a GPS position.
const GPSLabel = "GPS (current)"

// GPSEnv holds "lat,lon" when the position is supplied from outside.
const GPSEnv = "FDT_GPS"

// ErrNoPosition is returned by a GPSFunc that has no fix.
var ErrNoPosition = errors.New("no position available")

// Place is a named location.
type Place struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

// Coords returns the place position.
func (p Place) Coords() *model.Coords {
	return &model.Coords{Lat: p.Lat, Lon: p.Lon}
}

// Builtin are the places every installation knows.
var Builtin = []Place{
	{Name: "Werkplaats", Lat: 51.924, Lon: 4.479},
	{Name: "Kantoor/Rosa", Lat: 51.915, Lon: 4.485},
	{Name: "Werkplaats 2", Lat: 51.93, Lon: 4.5},
	{Name: "Client (project)", Lat: 51.89, Lon: 4.43},
	{Name: "Huis Daan", Lat: 51.92, Lon: 4.44},
}

// GPSFunc reports the current position.
type GPSFunc func(ctx context.Context) (model.Coords, error)

// GPSFromEnv reads the position from FDT_GPS.
func GPSFromEnv(ctx context.Context) (model.Coords, error) {
	v := strings.TrimSpace(os.Getenv(GPSEnv))
	if v == "" {
		return model.Coords{}, ErrNoPosition
	}
	return ParseCoords(v)
}

// ParseCoords parses "lat,lon".
func ParseCoords(s string) (model.Coords, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return model.Coords{}, fmt.Errorf("invalid coordinates %q: want lat,lon", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return model.Coords{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return model.Coords{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return model.Coords{}, fmt.Errorf("coordinates %q out of range", s)
	}
	return model.Coords{Lat: la, Lon: lo}, nil
}

type favoritesFile struct {
	Favorites []Place `yaml:"favorites"`
}

// Resolver maps names to coordinates from the built-in places, the
// favorites file and the GPS source.
type Resolver struct {
	path      string
	gps       GPSFunc
	log       *slog.Logger
	favorites []Place
}

// NewResolver loads favorites from path. A missing file means no
// favorites; an empty path disables them.
func NewResolver(path string, gps GPSFunc, log *slog.Logger) (*Resolver, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{path: path, gps: gps, log: log}
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading favorites %s: %w", path, err)
	}
	var f favoritesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing favorites %s: %w", path, err)
	}
	r.favorites = f.Favorites
	return r, nil
}

// Places lists built-in places followed by favorites. A favorite with a
// built-in's name replaces it.
func (r *Resolver) Places() []Place {
	out := make([]Place, 0, len(Builtin)+len(r.favorites))
	for _, b := range Builtin {
		if _, ok := find(r.favorites, b.Name); !ok {
			out = append(out, b)
		}
	}
	return append(out, r.favorites...)
}

// Favorites returns the user's own places.
func (r *Resolver) Favorites() []Place {
	return append([]Place(nil), r.favorites...)
}

func find(places []Place, name string) (int, bool) {
	for i, p := range places {
		if strings.EqualFold(p.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Resolve returns the label to record for name and its coordinates.
// Unknown names, denied GPS and unparsable input resolve to nil coords;
// the trip still records the name.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, *model.Coords) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, GPSToken) || strings.EqualFold(name, GPSLabel) {
		if r.gps == nil {
			return GPSLabel, nil
		}
		c, err := r.gps(ctx)
		if err != nil {
			r.log.Debug("gps position unavailable", slog.String("error", err.Error()))
			return GPSLabel, nil
		}
		return GPSLabel, &c
	}
	places := r.Places()
	if i, ok := find(places, name); ok {
		return places[i].Name, places[i].Coords()
	}
	if strings.Contains(name, ",") {
		if c, err := ParseCoords(name); err == nil {
			return name, &c
		}
	}
	return name, nil
}

// AddFavorite stores p, replacing a favorite of the same name.
func (r *Resolver) AddFavorite(p Place) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("favorite needs a name")
	}
	if strings.EqualFold(p.Name, GPSToken) || strings.EqualFold(p.Name, GPSLabel) {
		return fmt.Errorf("%q is reserved", p.Name)
	}
	if i, ok := find(r.favorites, p.Name); ok {
		r.favorites[i] = p
	} else {
		r.favorites = append(r.favorites, p)
	}
	return r.save()
}

// RemoveFavorite deletes the favorite called name.
func (r *Resolver) RemoveFavorite(name string) (bool, error) {
	i, ok := find(r.favorites, name)
	if !ok {
		return false, nil
	}
	r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
	return true, r.save()
}

func (r *Resolver) save() error {
	if r.path == "" {
		return errors.New("no favorites file configured")
	}
	data, err := yaml.Marshal(favoritesFile{Favorites: r.favorites})
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating favorites directory: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing favorites: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("renaming favorites: %w", err)
	}
	return nil
}
