// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fitplot

import (
	"math"
	"sort"
)

// swarmOffsets spreads the points ys of one category horizontally so
// that no two points closer than yTol vertically share an x offset.
//
// Offsets are multiples of xStep, tried in the order 0, +xStep,
// -xStep, +2xStep, ... and never exceed maxOffset in magnitude. A
// point that cannot be placed is drawn at offset 0, overlapping its
// neighbors. The result is indexed like ys.
func swarmOffsets(ys []float64, yTol, xStep, maxOffset float64) []float64 {
	offs := make([]float64, len(ys))
	if len(ys) == 0 || xStep <= 0 {
		return offs
	}

	order := make([]int, len(ys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return ys[order[i]] < ys[order[j]] })

	// Points are placed in increasing y order, so only the placed
	// points at the tail of done, within yTol, can collide.
	type placed struct{ y, off float64 }
	var done []placed
	for _, i := range order {
		y := ys[i]
		lo := sort.Search(len(done), func(k int) bool { return done[k].y > y-yTol })
		near := done[lo:]

		off := 0.0
		for k := 0; ; k++ {
			cand := float64((k+1)/2) * xStep
			if k%2 == 0 && k > 0 {
				cand = -cand
			}
			if math.Abs(cand) > maxOffset {
				break
			}
			free := true
			for _, p := range near {
				if math.Abs(p.off-cand) < xStep/2 {
					free = false
					break
				}
			}
			if free {
				off = cand
				break
			}
		}
		offs[i] = off
		done = append(done, placed{y, off})
	}
	return offs
}
