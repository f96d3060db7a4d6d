package contour

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
)

// edgeKey identifies a lattice edge. A horizontal edge joins nodes (c, r)
// and (c+1, r); a vertical edge joins (c, r) and (c, r+1).
type edgeKey struct {
	r, c     int
	vertical bool
}

func compareEdges(a, b edgeKey) int {
	if n := cmp.Compare(a.r, b.r); n != 0 {
		return n
	}
	if n := cmp.Compare(a.c, b.c); n != 0 {
		return n
	}
	switch {
	case a.vertical == b.vertical:
		return 0
	case b.vertical:
		return -1
	default:
		return 1
	}
}

// cellEdges returns the four edges of cell (c, r) in counter-clockwise
// order: bottom, right, top, left. Edge i runs from corner i to corner i+1.
func cellEdges(c, r int) [4]edgeKey {
	return [4]edgeKey{
		{r: r, c: c},
		{r: r, c: c + 1, vertical: true},
		{r: r + 1, c: c},
		{r: r, c: c, vertical: true},
	}
}

// crossing interpolates the threshold crossing on an edge. It depends only
// on the edge, so neighbouring cells agree on the shared point.
func (g *raster) crossing(e edgeKey, t float64) orb.Point {
	a := g.at(e.c, e.r)
	var b float64
	if e.vertical {
		b = g.at(e.c, e.r+1)
	} else {
		b = g.at(e.c+1, e.r)
	}
	frac := 0.5
	if a != b {
		frac = (t - a) / (b - a)
	}
	if e.vertical {
		return g.point(float64(e.c), float64(e.r)+frac)
	}
	return g.point(float64(e.c)+frac, float64(e.r))
}

// march traces every iso-line of threshold t and returns closed rings with
// the region v >= t on their left: outer boundaries run counter-clockwise
// and holes clockwise. Ring order is deterministic.
func (g *raster) march(t float64) []orb.Ring {
	next := make(map[edgeKey]edgeKey)

	for r := 0; r < g.rows-1; r++ {
		for c := 0; c < g.cols-1; c++ {
			corners := [4]float64{g.at(c, r), g.at(c+1, r), g.at(c+1, r+1), g.at(c, r+1)}
			var idx int
			for i, v := range corners {
				if v >= t {
					idx |= 1 << i
				}
			}
			if idx == 0 || idx == 15 {
				continue
			}

			edges := cellEdges(c, r)
			var exits, entries []int
			for i := range 4 {
				in, nextIn := idx&(1<<i) != 0, idx&(1<<((i+1)%4)) != 0
				switch {
				case in && !nextIn:
					exits = append(exits, i)
				case !in && nextIn:
					entries = append(entries, i)
				}
			}

			if len(exits) == 1 {
				next[edges[exits[0]]] = edges[entries[0]]
				continue
			}

			// Saddle: decide with the cell centre whether the inside corners
			// connect through the middle.
			centre := (corners[0] + corners[1] + corners[2] + corners[3]) / 4
			for _, ex := range exits {
				var en int
				if centre >= t {
					en = (ex + 1) % 4 // next edge counter-clockwise
				} else {
					en = (ex + 3) % 4 // previous edge
				}
				next[edges[ex]] = edges[en]
			}
		}
	}

	starts := make([]edgeKey, 0, len(next))
	for k := range next {
		starts = append(starts, k)
	}
	slices.SortFunc(starts, compareEdges)

	visited := make(map[edgeKey]bool, len(next))
	var rings []orb.Ring
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var ring orb.Ring
		k := start
		for !visited[k] {
			visited[k] = true
			p := g.crossing(k, t)
			if len(ring) == 0 || ring[len(ring)-1] != p {
				ring = append(ring, p)
			}
			nk, ok := next[k]
			if !ok {
				break
			}
			k = nk
		}
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		rings = append(rings, ring)
	}
	return rings
}
