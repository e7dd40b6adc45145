package location_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/field-day-tracker/internal/location"
	"github.com/Tiliavir/field-day-tracker/internal/model"
)

func fixedGPS(c model.Coords) location.GPSFunc {
	return func(context.Context) (model.Coords, error) { return c, nil }
}

func deniedGPS(context.Context) (model.Coords, error) { return model.Coords{}, location.ErrNoPosition }

func TestResolve(t *testing.T) {
	r, err := location.NewResolver("", fixedGPS(model.Coords{Lat: 52.1, Lon: 5.1}), nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in        string
		wantLabel string
		want      *model.Coords
	}{
		{"Werkplaats", "Werkplaats", &model.Coords{Lat: 51.924, Lon: 4.479}},
		{"huis daan", "Huis Daan", &model.Coords{Lat: 51.92, Lon: 4.44}},
		{"gps", location.GPSLabel, &model.Coords{Lat: 52.1, Lon: 5.1}},
		{"51.5, 4.25", "51.5, 4.25", &model.Coords{Lat: 51.5, Lon: 4.25}},
		{"Bouwplaats Noord", "Bouwplaats Noord", nil},
		{"91,4", "91,4", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			label, got := r.Resolve(context.Background(), tt.in)
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("coords = %+v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("coords = %v, want %+v", got, *tt.want)
			}
		})
	}
}

func TestResolveDeniedGPS(t *testing.T) {
	r, _ := location.NewResolver("", deniedGPS, nil)
	label, c := r.Resolve(context.Background(), "GPS")
	if label != location.GPSLabel || c != nil {
		t.Errorf("Resolve(gps) = %q, %v; want label and nil coords", label, c)
	}
}

func TestGPSFromEnv(t *testing.T) {
	t.Setenv(location.GPSEnv, "51.9,4.4")
	c, err := location.GPSFromEnv(context.Background())
	if err != nil || c.Lat != 51.9 || c.Lon != 4.4 {
		t.Errorf("GPSFromEnv = %+v, %v", c, err)
	}
	t.Setenv(location.GPSEnv, "")
	if _, err := location.GPSFromEnv(context.Background()); err == nil {
		t.Error("expected error without FDT_GPS")
	}
}

func TestFavorites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	r, err := location.NewResolver(path, nil, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if err := r.AddFavorite(location.Place{Name: "Bouwplaats Noord", Lat: 52.0, Lon: 4.6}); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := r.AddFavorite(location.Place{Name: "Werkplaats", Lat: 51.0, Lon: 4.0}); err != nil {
		t.Fatalf("AddFavorite override: %v", err)
	}
	if err := r.AddFavorite(location.Place{Name: "gps"}); err == nil {
		t.Error("reserved name accepted")
	}

	reloaded, err := location.NewResolver(path, nil, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(reloaded.Favorites()); n != 2 {
		t.Fatalf("favorites = %d, want 2", n)
	}
	if _, c := reloaded.Resolve(context.Background(), "Werkplaats"); c == nil || c.Lat != 51.0 {
		t.Errorf("favorite should override built-in, got %v", c)
	}
	if n := len(reloaded.Places()); n != len(location.Builtin)+1 {
		t.Errorf("places = %d, want %d", n, len(location.Builtin)+1)
	}

	ok, err := reloaded.RemoveFavorite("bouwplaats noord")
	if !ok || err != nil {
		t.Fatalf("RemoveFavorite = %v, %v", ok, err)
	}
	if ok, _ := reloaded.RemoveFavorite("nowhere"); ok {
		t.Error("removing an unknown favorite reported success")
	}
}

func TestCorruptFavorites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.yaml")
	if err := os.WriteFile(path, []byte("favorites: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := location.NewResolver(path, nil, nil); err == nil {
		t.Error("expected parse error")
	}
}
