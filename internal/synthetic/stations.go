// Package synthetic provides a reference magnetometer network and a
// forward model of an idealized electrojet, used for fixtures, offline
// evaluation and end-to-end tests.
package synthetic

import "github.com/couchcryptid/aurora-oval-service/internal/domain"

// Station is a ground magnetometer site.
type Station struct {
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Location returns the station position.
func (s Station) Location() domain.Location {
	return domain.Location{Lat: s.Lat, Lon: s.Lon}
}

// Fennoscandian and Svalbard chain followed by high-latitude observatories
// around the rest of the cap.
var network = []Station{
	{"NAL", 78.92, 11.95},
	{"LYR", 78.20, 15.82},
	{"HOR", 77.00, 15.60},
	{"HOP", 76.51, 25.01},
	{"BJN", 74.50, 19.20},
	{"NOR", 71.09, 25.79},
	{"SOR", 70.54, 22.22},
	{"KEV", 69.76, 27.01},
	{"TRO", 69.66, 18.94},
	{"MAS", 69.46, 23.70},
	{"AND", 69.30, 16.03},
	{"JCK", 69.29, 16.04},
	{"KIL", 69.06, 20.77},
	{"IVA", 68.56, 27.29},
	{"ABK", 68.35, 18.82},
	{"LEK", 68.13, 13.54},
	{"MUO", 68.02, 23.53},
	{"LOZ", 67.97, 35.08},
	{"KIR", 67.84, 20.42},
	{"SOD", 67.37, 26.63},
	{"PEL", 66.90, 24.08},
	{"DON", 66.11, 12.50},
	{"RAN", 65.54, 26.25},
	{"RVK", 64.94, 10.98},
	{"LYC", 64.61, 18.75},
	{"OUJ", 64.52, 27.23},
	{"MEK", 62.77, 30.97},
	{"HAN", 62.25, 26.60},
	{"DOB", 62.07, 9.11},
	{"SOL", 61.08, 4.84},
	{"NUR", 60.50, 24.65},
	{"UPS", 59.90, 17.35},
	{"KAR", 59.21, 5.24},
	{"TAR", 58.26, 26.46},

	{"ALE", 82.50, -62.35},
	{"THL", 77.47, -69.23},
	{"GDH", 69.25, -53.53},
	{"FHB", 62.00, -49.70},
	{"NAQ", 61.16, -45.44},
	{"IQA", 63.75, -68.52},
	{"RES", 74.69, -94.89},
	{"CBB", 69.12, -105.03},
	{"BLC", 64.32, -96.02},
	{"YKC", 62.48, -114.48},
	{"FCC", 58.76, -94.09},
	{"PBQ", 55.28, -77.75},
	{"MEA", 54.62, -113.35},
	{"BRW", 71.32, -156.62},
	{"CMO", 64.87, -147.86},
	{"SIT", 57.06, -135.33},
	{"PBK", 70.09, 170.93},
	{"TIK", 71.58, 129.00},
	{"CCS", 77.72, 104.28},
	{"DIK", 73.55, 80.57},
	{"AMD", 69.47, 61.41},
	{"DMH", 76.77, -18.66},
	{"SCO", 70.48, -21.97},
	{"LRV", 64.18, -21.70},
	{"LER", 60.14, -1.18},
	{"ESK", 55.31, -3.21},
}

// Network returns a copy of the reference station set.
func Network() []Station {
	out := make([]Station, len(network))
	copy(out, network)
	return out
}

// Lookup returns the station with the given code.
func Lookup(code string) (Station, bool) {
	for _, s := range network {
		if s.Code == code {
			return s, true
		}
	}
	return Station{}, false
}
