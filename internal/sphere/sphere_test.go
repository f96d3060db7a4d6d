package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const refTol = 1e-4

func TestDistanceAndBearing_ReferenceVectors(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		theta, alpha           float64
	}{
		{"east along equator", 0, 0, 0, 90, 1.5708, 0.0},
		{"north to pole", 0, 0, 90, 0, 1.5708, 1.5708},
		{"new york to paris", 40.71, -74, 48.85, 2.35, 0.9162, 0.6333},
		{"los angeles to paris", 34.05, -118.2, 48.85, 2.35, 1.4258, 0.961},
		{"across the seam", 0, 179.5, 0, -179.5, 0.0175, 0.0},
		{"short hop east", 10, 10, 10, 11, 0.0172, 0.0015},
		{"diagonal", 10, 10, 21, 20, 0.255, 0.8728},
		{"diagonal short", 10, 10, 15, 15, 0.1219, 0.8064},
		{"back south-west", 20, 20, 10, 11, 0.2311, 3.9747},
		{"one degree north", 20, 20, 21, 20, 0.0175, 1.5708},
		{"back south-west short", 20, 20, 15, 15, 0.1206, 3.9371},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theta, alpha := DistanceAndBearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.theta, theta, refTol, "theta")
			assert.InDelta(t, tt.alpha, alpha, refTol, "alpha")
			assert.InDelta(t, theta, AngularDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1e-15)
			assert.InDelta(t, alpha, Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1e-15)
		})
	}
}

func TestAngularDistance_Antipodal(t *testing.T) {
	assert.InDelta(t, math.Pi, AngularDistance(90, 0, -90, 0), refTol)
}

func TestAngularDistance_CoLocatedIsZero(t *testing.T) {
	for _, p := range [][2]float64{{69.66, 18.94}, {0, 0}, {-45.5, 170.25}, {89.9, -10}} {
		theta := AngularDistance(p[0], p[1], p[0], p[1])
		assert.False(t, math.IsNaN(theta))
		assert.InDelta(t, 0, theta, 1e-7)
	}
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, EarthRadiusKm*math.Pi/2, Haversine(0, 0, 0, 90), 1e-6)
	assert.InDelta(t, 0, Haversine(70, 25, 70, 25), 1e-9)

	d1 := Haversine(GeomagneticNorthLat, GeomagneticNorthLon, 70, 25)
	d2 := Haversine(70, 25, GeomagneticNorthLat, GeomagneticNorthLon)
	assert.InDelta(t, d1, d2, 1e-9)
	assert.InDelta(t, 2555, d1, 50)
}

func TestNormalizeLon(t *testing.T) {
	assert.InDelta(t, 0, NormalizeLon(0), 0)
	assert.InDelta(t, 180, NormalizeLon(-180), 1e-12)
	assert.InDelta(t, 359, NormalizeLon(-1), 1e-12)
	assert.InDelta(t, 10, NormalizeLon(370), 1e-12)
	assert.InDelta(t, 0, NormalizeLon(360), 1e-12)
	assert.InDelta(t, 0, NormalizeLon(-1e-15), 1e-12)
}

func lonDiff(a, b float64) float64 {
	return math.Mod(a-b+540, 360) - 180
}

func assertSamePoint(t *testing.T, lon, lat, gotLon, gotLat float64) {
	t.Helper()
	assert.InDelta(t, lat, gotLat, 1e-6, "lat for (%v, %v)", lon, lat)
	assert.InDelta(t, 0, lonDiff(gotLon, lon), 1e-6, "lon for (%v, %v)", lon, lat)
}

func TestRotateToPatch_RoundTrip(t *testing.T) {
	for lat := -85.0; lat <= 85; lat += 5 {
		for lon := -180.0; lon < 180; lon += 15 {
			pLon, pLat := RotateToPatch(lon, lat)
			assert.GreaterOrEqual(t, pLon, 0.0)
			assert.Less(t, pLon, 360.0)

			gotLon, gotLat := InvertPatch(pLon, pLat)
			assertSamePoint(t, lon, lat, gotLon, gotLat)
		}
	}
}

func TestRotateToPatch_PolesLandOnEquator(t *testing.T) {
	lon, lat := RotateToPatch(0, 90)
	assert.InDelta(t, 90, lon, 1e-9)
	assert.InDelta(t, 0, lat, 1e-9)

	lon, lat = RotateToPatch(0, -90)
	assert.InDelta(t, 270, lon, 1e-9)
	assert.InDelta(t, 0, lat, 1e-9)
}

func TestRotateToPatch_NorthCapStaysOffSeam(t *testing.T) {
	for lat := 45.0; lat <= 90; lat += 2.5 {
		for lon := -180.0; lon < 180; lon += 5 {
			pLon, pLat := RotateToPatch(lon, lat)
			assert.Greater(t, pLon, 40.0)
			assert.Less(t, pLon, 140.0)
			assert.Less(t, math.Abs(pLat), 50.0)
		}
	}
}

func TestRotateToGeomagneticSouth_MapsPole(t *testing.T) {
	lon, lat := RotateToGeomagneticSouth(GeomagneticNorthLon, GeomagneticNorthLat)
	assert.InDelta(t, -GeomagneticNorthLat, lat, 1e-9)
	assert.InDelta(t, GeomagneticNorthLon+180, lon, 1e-9)
}

func TestRotateToGeomagneticSouth_IsInvolution(t *testing.T) {
	for lat := -85.0; lat <= 85; lat += 5 {
		for lon := -180.0; lon < 180; lon += 15 {
			sLon, sLat := RotateToGeomagneticSouth(lon, lat)
			gotLon, gotLat := RotateToGeomagneticSouth(sLon, sLat)
			assertSamePoint(t, lon, lat, gotLon, gotLat)
		}
	}
}

func TestRotateToGeomagneticSouth_PreservesPoleDistance(t *testing.T) {
	southLon, southLat := GeomagneticNorthLon+180, -GeomagneticNorthLat
	for _, p := range [][2]float64{{25, 70}, {-100, 60}, {150, 75}, {10, 50}} {
		sLon, sLat := RotateToGeomagneticSouth(p[0], p[1])
		dNorth := Haversine(p[1], p[0], GeomagneticNorthLat, GeomagneticNorthLon)
		dSouth := Haversine(sLat, sLon, southLat, southLon)
		assert.InDelta(t, dNorth, dSouth, 1e-6)
		assert.Less(t, sLat, 0.0)
	}
}
