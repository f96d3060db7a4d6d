package contour

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// ovalBand is a uniform ring of activity along 70°N.
func ovalBand() []domain.ScorePoint {
	var points []domain.ScorePoint
	for lon := -180.0; lon < 180; lon += 2 {
		points = append(points, domain.ScorePoint{Lon: lon, Lat: 70, Score: 5})
	}
	return points
}

func TestMirror(t *testing.T) {
	got := Mirror([]domain.ScorePoint{
		{Lon: 25, Lat: 70, Score: 3},
		{Lon: 140, Lat: -65, Score: 2},
	})
	require.Len(t, got, 3)

	assert.Equal(t, domain.North, got[0].Hemisphere)
	assert.Equal(t, domain.ScorePoint{Lon: 25, Lat: 70, Score: 3}, got[0].ScorePoint)

	assert.Equal(t, domain.South, got[1].Hemisphere)
	assert.Less(t, got[1].Lat, 0.0)
	assert.Equal(t, 3.0, got[1].Score)

	assert.Equal(t, domain.South, got[2].Hemisphere)
	assert.Equal(t, -65.0, got[2].Lat)
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, []float64{2, 4, 6}, thresholds(8, Options{Levels: 3}))
	assert.Empty(t, thresholds(0, Options{Levels: 3}))
	assert.Empty(t, thresholds(8, Options{Levels: 0}))
	assert.Equal(t, []float64{0.5, 1, 3},
		thresholds(8, Options{Levels: 3, Thresholds: []float64{3, -1, 0, 1, 0.5, 1}}))
}

func TestExtract_Validation(t *testing.T) {
	_, err := Extract(ovalBand(), Options{CellDeg: 0, Levels: 3})
	assert.Error(t, err)
	_, err = Extract(ovalBand(), Options{CellDeg: 1, Sigma: -1, Levels: 3})
	assert.Error(t, err)

	got, err := Extract(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_OvalBandHasHoleInBothHemispheres(t *testing.T) {
	contours, err := Extract(ovalBand(), DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, contours)

	lowest := contours[0].Threshold
	var north, south []domain.Contour
	for _, c := range contours {
		assert.Greater(t, c.Threshold, 0.0)
		for _, ring := range c.Polygon {
			assert.GreaterOrEqual(t, len(ring), minRingPoints)
			assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")
			for _, p := range ring {
				assert.GreaterOrEqual(t, p[0], 0.0)
				assert.Less(t, p[0], 360.0)
			}
		}
		if c.Threshold != lowest {
			continue
		}
		switch c.Hemisphere {
		case domain.North:
			north = append(north, c)
		case domain.South:
			south = append(south, c)
		}
	}

	require.Len(t, north, 1)
	require.Len(t, south, 1)
	require.Len(t, north[0].Polygon, 2, "oval band must have a polar hole")
	require.Len(t, south[0].Polygon, 2)

	for _, p := range north[0].Polygon[0] {
		assert.Greater(t, p[1], 62.0)
		assert.Less(t, p[1], 70.0)
	}
	for _, p := range north[0].Polygon[1] {
		assert.Greater(t, p[1], 70.0)
		assert.Less(t, p[1], 78.0)
	}
	for _, ring := range south[0].Polygon {
		for _, p := range ring {
			assert.Less(t, p[1], 0.0)
		}
	}
}

func TestExtract_ThresholdsAscendAndNorthFirst(t *testing.T) {
	contours, err := Extract(ovalBand(), DefaultOptions())
	require.NoError(t, err)

	for i := 1; i < len(contours); i++ {
		prev, cur := contours[i-1], contours[i]
		assert.LessOrEqual(t, prev.Threshold, cur.Threshold)
		if prev.Threshold == cur.Threshold && prev.Hemisphere == domain.South {
			assert.Equal(t, domain.South, cur.Hemisphere)
		}
	}
}

func TestExtract_ExplicitThresholdAboveData(t *testing.T) {
	opts := DefaultOptions()
	opts.Thresholds = []float64{1e6}
	contours, err := Extract(ovalBand(), opts)
	require.NoError(t, err)
	assert.Empty(t, contours)
}

func TestExtract_SimplifyReducesVertices(t *testing.T) {
	plain, err := Extract(ovalBand(), DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Simplify = 0.5
	simplified, err := Extract(ovalBand(), opts)
	require.NoError(t, err)
	require.NotEmpty(t, simplified)

	count := func(cs []domain.Contour) int {
		n := 0
		for _, c := range cs {
			for _, r := range c.Polygon {
				n += len(r)
			}
		}
		return n
	}
	assert.Less(t, count(simplified), count(plain))
}

func TestFeatureCollection(t *testing.T) {
	contours, err := Extract(ovalBand(), DefaultOptions())
	require.NoError(t, err)

	fc := FeatureCollection(contours)
	require.Len(t, fc.Features, len(contours))

	raw, err := json.Marshal(fc)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	for i, f := range doc.Features {
		assert.Equal(t, "Polygon", f.Geometry.Type)
		assert.Equal(t, contours[i].Threshold, f.Properties["threshold"])
		assert.Equal(t, string(contours[i].Hemisphere), f.Properties["hemisphere"])
	}
}
