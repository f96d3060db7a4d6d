package sphere

import (
	"math"

	"github.com/golang/geo/r3"
)

// geomagneticAxis is the rotation axis that swaps the geomagnetic poles:
// perpendicular to both the dipole axis and the geographic axis.
var geomagneticAxis = func() r3.Vector {
	n := toVector(GeomagneticNorthLon, GeomagneticNorthLat)
	return n.Cross(r3.Vector{Z: 1}).Normalize()
}()

func toVector(lon, lat float64) r3.Vector {
	sinLat, cosLat := math.Sincos(radians(lat))
	sinLon, cosLon := math.Sincos(radians(lon))
	return r3.Vector{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}
}

func fromVector(v r3.Vector) (lon, lat float64) {
	lat = degrees(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
	lon = NormalizeLon(degrees(math.Atan2(v.Y, v.X)))
	return lon, lat
}

// RotateToPatch maps geographic coordinates onto the contouring patch. The
// geographic north pole lands on (90°E, 0°) and the south pole on (270°E, 0°),
// so both polar caps sit away from the patch seam and poles.
func RotateToPatch(lon, lat float64) (float64, float64) {
	v := toVector(lon, lat)
	return fromVector(r3.Vector{X: v.X, Y: v.Z, Z: -v.Y})
}

// InvertPatch is the inverse of RotateToPatch.
func InvertPatch(lon, lat float64) (float64, float64) {
	v := toVector(lon, lat)
	return fromVector(r3.Vector{X: v.X, Y: -v.Z, Z: v.Y})
}

// RotateToGeomagneticSouth turns a point by π about the axis orthogonal to
// the geomagnetic and geographic poles. Positions relative to the
// geomagnetic north pole become the same positions relative to the
// geomagnetic south pole. Applying it twice is the identity.
func RotateToGeomagneticSouth(lon, lat float64) (float64, float64) {
	v := toVector(lon, lat)
	k := geomagneticAxis
	return fromVector(k.Mul(2 * k.Dot(v)).Sub(v))
}
