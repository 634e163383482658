package tracking

import (
	"github.com/arthurkushman/go-hungarian"
	"github.com/teslashibe/go-visnav/pkg/detection"
)

// matchGreedy returns object index -> detection index. Objects are visited
// in order; each takes the nearest unclaimed detection strictly closer than
// maxDist. Equal distances keep the earlier detection, and an earlier object
// wins a detection it is tied for.
func matchGreedy(objs []*track, dets []detection.Detection, maxDist float64) map[int]int {
	pairs := make(map[int]int, len(objs))
	used := make([]bool, len(dets))

	for oi, tr := range objs {
		center := tr.obj.Center()
		best := -1
		bestDist := maxDist
		for di, d := range dets {
			if used[di] {
				continue
			}
			if dist := detection.Distance(center, d.Center()); dist < bestDist {
				best = di
				bestDist = dist
			}
		}
		if best >= 0 {
			used[best] = true
			pairs[oi] = best
		}
	}
	return pairs
}

// matchHungarian solves the assignment maximizing sum(maxDist - distance)
// over admissible pairs. The matrix is zero-padded to a square.
func matchHungarian(objs []*track, dets []detection.Detection, maxDist float64) map[int]int {
	pairs := make(map[int]int)
	if len(objs) == 0 || len(dets) == 0 {
		return pairs
	}

	size := len(objs)
	if len(dets) > size {
		size = len(dets)
	}

	dist := make([][]float64, len(objs))
	scores := make([][]float64, size)
	for i := range scores {
		scores[i] = make([]float64, size)
	}
	for oi, tr := range objs {
		center := tr.obj.Center()
		dist[oi] = make([]float64, len(dets))
		for di, d := range dets {
			dist[oi][di] = detection.Distance(center, d.Center())
			if dist[oi][di] < maxDist {
				scores[oi][di] = maxDist - dist[oi][di]
			}
		}
	}

	for oi, row := range hungarian.SolveMax(scores) {
		if oi >= len(objs) {
			continue
		}
		for di := range row {
			if di < len(dets) && dist[oi][di] < maxDist {
				pairs[oi] = di
			}
		}
	}
	return pairs
}
