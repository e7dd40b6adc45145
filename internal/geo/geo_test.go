package geo_test

import (
	"math"
	"testing"

	"github.com/Tiliavir/field-day-tracker/internal/geo"
	"github.com/Tiliavir/field-day-tracker/internal/model"
)

var (
	huisDaan   = model.Coords{Lat: 51.92, Lon: 4.44}
	werkplaats = model.Coords{Lat: 51.924, Lon: 4.479}
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Coords
		want float64
	}{
		{"same point", huisDaan, huisDaan, 0},
		{"rotterdam short hop", huisDaan, werkplaats, 2.711},
		{"one degree of latitude", model.Coords{Lat: 0, Lon: 0}, model.Coords{Lat: 1, Lon: 0}, 111.195},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Haversine = %.4f, want %.3f", got, tt.want)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	pts := []model.Coords{huisDaan, werkplaats, {Lat: 51.89, Lon: 4.43}, {Lat: -33.86, Lon: 151.2}}
	for _, a := range pts {
		for _, b := range pts {
			if ab, ba := geo.Haversine(a, b), geo.Haversine(b, a); ab != ba {
				t.Errorf("Haversine(%v,%v)=%v but reverse=%v", a, b, ab, ba)
			}
		}
	}
}

func TestPolicyDistance(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		a, b   *model.Coords
		want   float64
	}{
		{"straight line", 1, &huisDaan, &werkplaats, 2.71},
		{"zero factor is straight line", 0, &huisDaan, &werkplaats, 2.71},
		{"road factor", geo.DefaultRoadFactor, &huisDaan, &werkplaats, 3.39},
		{"missing start", 1.25, nil, &werkplaats, 0},
		{"missing end", 1.25, &huisDaan, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (geo.Policy{RoadFactor: tt.factor}).Distance(tt.a, tt.b); geo.RoundKm(got) != tt.want {
				t.Errorf("Distance = %v, want %v after rounding", got, tt.want)
			}
		})
	}
}

func TestStraightLineIsUnrounded(t *testing.T) {
	got := (geo.Policy{RoadFactor: 1}).Distance(&huisDaan, &werkplaats)
	if want := geo.Haversine(huisDaan, werkplaats); got != want {
		t.Errorf("Distance = %v, want haversine %v", got, want)
	}
	if got == geo.RoundKm(got) {
		t.Errorf("Distance = %v looks rounded", got)
	}
}

func TestRoundKm(t *testing.T) {
	tests := []struct {
		km, want float64
	}{
		{0, 0},
		{2.7114, 2.71},
		{3.3893, 3.39},
		{1.005001, 1.01},
	}
	for _, tt := range tests {
		if got := geo.RoundKm(tt.km); got != tt.want {
			t.Errorf("RoundKm(%v) = %v, want %v", tt.km, got, tt.want)
		}
	}
}
