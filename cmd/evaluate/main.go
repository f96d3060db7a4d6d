// Command evaluate runs the model offline on the synthetic magnetometer
// network (or a fixture batch), prints a summary of the resulting score
// grid and optionally writes the contours as GeoJSON and a PNG map.
//
// Usage:
//
//	go run ./cmd/evaluate --peak 400 --geojson oval.geojson --png oval.png
//	go run ./cmd/evaluate --observations data/mock/observation_batches.json --batch 2
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
