package geo

import (
	"math"
	"testing"

	"pronto/internal/types"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			lat1:      6.9271, lng1: 79.8612,
			lat2:      6.9271, lng2: 79.8612,
			wantKm:    0,
			tolerance: 0.0001,
		},
		{
			name:      "Colombo to Kandy (~95km)",
			lat1:      6.9271, lng1: 79.8612,
			lat2:      7.2906, lng2: 80.6337,
			wantKm:    95,
			tolerance: 2.0,
		},
		{
			name:      "Colombo to Galle (~103km)",
			lat1:      6.9271, lng1: 79.8612,
			lat2:      6.0535, lng2: 80.2210,
			wantKm:    105,
			tolerance: 5.0,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			lat1:      40.7128, lng1: -74.0060,
			lat2:      34.0522, lng2: -118.2437,
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("HaversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := HaversineKm(6.0, 79.0, 7.0, 81.0)
	d2 := HaversineKm(7.0, 81.0, 6.0, 79.0)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

func TestHaversineKm_NonNegative(t *testing.T) {
	points := []types.Point{
		{Lat: 0, Lng: 0},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: 179.9},
		{Lat: -89.9, Lng: -179.9},
		{Lat: 6.9271, Lng: 79.8612},
	}
	for _, a := range points {
		for _, b := range points {
			d := DistanceKm(a, b)
			if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
				t.Errorf("DistanceKm(%v, %v) = %f, want finite non-negative", a, b, d)
			}
		}
	}
}
