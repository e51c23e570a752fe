package planner

import (
	"math"

	"github.com/MaastrichtU-BISS/roadmap-planner/internal/cspace"
)

// UnitBallVolume returns the volume of the d-dimensional unit ball using
// V(0) = 1, V(1) = 2 and V(d) = 2π/d · V(d-2).
func UnitBallVolume(d int) float64 {
	switch {
	case d <= 0:
		return 1
	case d == 1:
		return 2
	}
	return 2 * math.Pi / float64(d) * UnitBallVolume(d-2)
}

// BaseRadius is the PRM connection radius that yields asymptotic connectivity:
// 2·(1+1/D)^(1/D)·(μ/V(D))^(1/D), with μ the free space measure of s.
func BaseRadius(s cspace.Space) float64 {
	d := float64(s.Dim())
	return 2 * math.Pow(1+1/d, 1/d) * math.Pow(s.FreeSpaceMeasure()/UnitBallVolume(s.Dim()), 1/d)
}
