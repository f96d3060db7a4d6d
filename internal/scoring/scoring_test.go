package scoring

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

func TestIntensityScore_Anchors(t *testing.T) {
	assert.Zero(t, IntensityScore(0))
	assert.Zero(t, IntensityScore(-5))
	assert.Zero(t, IntensityScore(math.NaN()))
	assert.InDelta(t, 1.385, IntensityScore(50), 1e-3)
	assert.InDelta(t, 2.472, IntensityScore(100), 1e-3)
	assert.InDelta(t, 4.213, IntensityScore(200), 1e-3)
	assert.InDelta(t, 9.987, IntensityScore(800), 1e-3)
	assert.Equal(t, MaxScore, IntensityScore(2000))
	assert.Equal(t, MaxScore, IntensityScore(math.Inf(1)))
}

func TestIntensityScore_NonDecreasing(t *testing.T) {
	prev := IntensityScore(0)
	for b := 1.0; b <= 5000; b += 7 {
		cur := IntensityScore(b)
		assert.GreaterOrEqual(t, cur, prev, "b=%v", b)
		assert.GreaterOrEqual(t, cur, 0.0)
		assert.LessOrEqual(t, cur, MaxScore)
		prev = cur
	}
}

func TestOvalPonderation_ContinuousAtBandEdges(t *testing.T) {
	for _, d := range []float64{2200, 2700, 3300} {
		below := OvalPonderation(d - 1e-9)
		above := OvalPonderation(d + 1e-9)
		assert.InDelta(t, below, above, 1e-2, "d=%v", d)
	}
}

func TestOvalPonderation_Values(t *testing.T) {
	assert.Zero(t, OvalPonderation(0))
	assert.InDelta(t, 1.0, OvalPonderation(2200), 1e-3)
	assert.InDelta(t, 1.0, OvalPonderation(2700), 1e-3)
	assert.InDelta(t, 0.5, OvalPonderation(3300), 1e-3)
	assert.Equal(t, outsideBands, OvalPonderation(5001))
	assert.Equal(t, outsideBands, OvalPonderation(-1))
}

func TestPoleDistance(t *testing.T) {
	assert.InDelta(t, 0, PoleDistance(sphere.GeomagneticNorthLat, sphere.GeomagneticNorthLon), 1e-9)
	assert.InDelta(t, 2554, PoleDistance(70, 25), 5)
}

func TestScore_DropsNonPositiveAndKeepsOrder(t *testing.T) {
	fields := []domain.FieldVector{
		{Lon: 25, Lat: 70, Bx: 300, By: -400},
		{Lon: 25, Lat: 69, Bx: 0, By: 0},
		{Lon: sphere.GeomagneticNorthLon, Lat: sphere.GeomagneticNorthLat, Bx: 500},
		{Lon: 20, Lat: 68, Bx: -100, By: 0},
		{Lon: 20, Lat: 67, Bx: math.NaN()},
	}
	got := Score(fields)
	require.Len(t, got, 2)

	assert.Equal(t, 25.0, got[0].Lon)
	assert.Equal(t, 70.0, got[0].Lat)
	want := math.Min(MaxScore, OvalPonderation(PoleDistance(70, 25))*IntensityScore(500))
	assert.InDelta(t, want, got[0].Score, 1e-12)
	assert.Equal(t, 20.0, got[1].Lon)

	for _, p := range got {
		assert.Greater(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, MaxScore)
	}
}

func TestScore_CapsAtMax(t *testing.T) {
	// Ponderation is slightly above one near 2554 km.
	got := Score([]domain.FieldVector{{Lon: 25, Lat: 70, Bx: 1e5}})
	require.Len(t, got, 1)
	assert.Equal(t, MaxScore, got[0].Score)
}

func TestEncode(t *testing.T) {
	points := []domain.ScorePoint{{Score: 0.0004}, {Score: 1.2346}, {Score: 10}, {Score: 70}}
	assert.Equal(t, []uint16{0, 1235, 10000, 65535}, Encode(points, 1000))
	assert.Equal(t, []uint16{0, 1, 10, 70}, Encode(points, 1))
	assert.Equal(t, Encode(points, DefaultScale), Encode(points, 0))
	assert.Empty(t, Encode(nil, 1000))
}

func TestPeak(t *testing.T) {
	assert.Nil(t, Peak(nil))

	points := []domain.ScorePoint{
		{Lon: 1, Lat: 60, Score: 2},
		{Lon: 2, Lat: 65, Score: 7},
		{Lon: 3, Lat: 70, Score: 7},
		{Lon: 4, Lat: 75, Score: 1},
	}
	peak := Peak(points)
	require.NotNil(t, peak)
	if diff := cmp.Diff(domain.ScorePoint{Lon: 2, Lat: 65, Score: 7}, *peak); diff != "" {
		t.Errorf("peak mismatch (-want +got):\n%s", diff)
	}

	peak.Score = 0
	assert.Equal(t, 7.0, points[1].Score, "peak must be a copy")
}
