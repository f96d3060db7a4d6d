// Package sphere provides the spherical geometry used by the SECS transfer
// functions and the contour extractor: great-circle distance, bearing, and
// the coordinate rotations that move the polar caps onto a seam-free patch.
//
// All angles in the public API are degrees unless the function documents
// radians. Latitude comes before longitude in distance and bearing
// arguments; rotations take and return (lon, lat).
package sphere

import "math"

const (
	// EarthRadius is the mean Earth radius in metres.
	EarthRadius = 6371e3

	// EarthRadiusKm is the mean Earth radius in kilometres.
	EarthRadiusKm = 6371.0
)

// Geomagnetic north pole of the reference dipole.
const (
	GeomagneticNorthLon = -72.6
	GeomagneticNorthLat = 80.9
)

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// AngularDistance returns the great-circle angle in radians between two
// points using the spherical law of cosines.
func AngularDistance(lat1, lon1, lat2, lon2 float64) float64 {
	theta, _ := DistanceAndBearing(lat1, lon1, lat2, lon2)
	return theta
}

// Bearing returns the initial heading in radians from point 1 to point 2 as
// π/2 − atan2(x, y). The result is not wrapped into [0, 2π).
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	_, alpha := DistanceAndBearing(lat1, lon1, lat2, lon2)
	return alpha
}

// DistanceAndBearing computes AngularDistance and Bearing sharing the
// trigonometric terms.
func DistanceAndBearing(lat1, lon1, lat2, lon2 float64) (theta, alpha float64) {
	phi1, phi2 := radians(lat1), radians(lat2)
	dlon := radians(lon2 - lon1)

	sinPhi1, cosPhi1 := math.Sincos(phi1)
	sinPhi2, cosPhi2 := math.Sincos(phi2)
	sinDlon, cosDlon := math.Sincos(dlon)

	c := sinPhi1*sinPhi2 + cosPhi1*cosPhi2*cosDlon
	theta = math.Acos(clamp(c, -1, 1))

	x := cosPhi2 * sinDlon
	y := cosPhi1*sinPhi2 - sinPhi1*cosPhi2*cosDlon
	alpha = math.Pi/2 - math.Atan2(x, y)
	return theta, alpha
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dphi := phi2 - phi1
	dlon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dphi/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// NormalizeLon wraps a longitude into [0, 360).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon = 0
	}
	return lon
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
