package domain

import (
	"context"
	"log/slog"
)

// LabelPeak returns a human readable place name for the score peak.
// A nil geocoder, a nil peak, or a failed lookup yields an empty label.
func LabelPeak(ctx context.Context, peak *ScorePoint, geocoder Geocoder, logger *slog.Logger) string {
	if geocoder == nil || peak == nil {
		return ""
	}

	result, err := geocoder.ReverseGeocode(ctx, peak.Lat, peak.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", peak.Lat,
			"lon", peak.Lon,
			"error", err,
		)
		return ""
	}
	if result.FormattedAddress != "" {
		return result.FormattedAddress
	}
	return result.PlaceName
}
