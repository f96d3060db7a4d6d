// Package domain models ground magnetometer observations and the products
// derived from them: field estimates, auroral intensity scores, and oval
// contours.
//
// # Data Source
//
// Observations arrive as snapshots of a magnetometer network. Each snapshot is
// produced upstream after the quiet-day baseline has been subtracted from the
// raw station readings, so the values describe the disturbance field only.
// Baseline computation and station retrieval happen outside this service.
//
// # Component Conventions
//
// Horizontal components follow the local geographic frame of the station:
//
//	I  northward component (X), nanotesla
//	J  eastward component (Y), nanotesla
//	K  vertical component (Z, positive down), nanotesla
//
// K is accepted on the wire but not used for fitting: the divergence-free
// current basis only constrains the horizontal field.
//
// Coordinates are WGS-84 degrees. Longitudes may be given either in
// [-180, 180) or [0, 360); both are accepted.
//
// # Wire Shape
//
// Snapshots use parallel arrays rather than an array of objects:
//
//	{"id":"...","observed_at":"...","lon":[...],"lat":[...],"i":[...],"j":[...],"k":[...]}
//
// All arrays except k must have the same length. A length mismatch is an
// [ErrInvalidInputShape] and the snapshot is rejected before any matrix work.
//
// # Scores
//
// Score points carry a value in (0, 10]. On the wire they are quantized to
// uint16 as round(score × scale), clamped to [0, 65535]. With the default
// scale of 1000 the full score range fits without saturation.
package domain
