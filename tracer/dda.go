package tracer

import (
	"math"

	"github.com/voxelphile/octane/types"
)

// Grid stepper implementing the classic DDA march: every Step advances to
// the nearest axis-aligned cell boundary. All axes whose boundaries are
// reached at exactly the same distance advance together, so edge and corner
// crossings visit the diagonal cell instead of skipping or duplicating one.
type stepper struct {
	cell   [3]int32
	dir    [3]int32
	tMax   [3]float32
	tDelta [3]float32

	// Distance travelled from the march origin to the entry of the current
	// cell, and the axes crossed while entering it.
	t       float32
	crossed [3]bool
}

func newStepper(origin, dir types.Vec3) stepper {
	var s stepper
	for i := 0; i < 3; i++ {
		s.cell[i] = int32(math.Floor(float64(origin[i])))
		switch {
		case dir[i] > 0:
			s.dir[i] = 1
			s.tMax[i] = (float32(s.cell[i]+1) - origin[i]) / dir[i]
			s.tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			s.dir[i] = -1
			s.tMax[i] = (origin[i] - float32(s.cell[i])) / -dir[i]
			s.tDelta[i] = -1 / dir[i]
		default:
			s.tMax[i] = float32(math.Inf(1))
			s.tDelta[i] = float32(math.Inf(1))
		}
	}
	return s
}

// Step advances to the next cell along the march and returns the distance
// from the origin to the new cell's entry point.
func (s *stepper) Step() float32 {
	next := s.tMax[0]
	if s.tMax[1] < next {
		next = s.tMax[1]
	}
	if s.tMax[2] < next {
		next = s.tMax[2]
	}

	for i := 0; i < 3; i++ {
		s.crossed[i] = s.dir[i] != 0 && s.tMax[i] == next
		if s.crossed[i] {
			s.cell[i] += s.dir[i]
			s.tMax[i] += s.tDelta[i]
		}
	}

	s.t = next
	return next
}

// Unit axis normal of the face crossed by the latest step, pointing back
// against the march direction. Prefers the dominant crossed axis when a tie
// advanced several at once.
func (s *stepper) faceNormal(dir types.Vec3) types.Vec3 {
	axis := -1
	var best float32 = -1
	for i := 0; i < 3; i++ {
		if !s.crossed[i] {
			continue
		}
		mag := dir[i]
		if mag < 0 {
			mag = -mag
		}
		if mag > best {
			best = mag
			axis = i
		}
	}
	if axis < 0 {
		return dominantAxisNormal(dir)
	}

	var n types.Vec3
	n[axis] = -float32(s.dir[axis])
	return n
}

// Fallback normal for rays that hit a voxel without crossing a face, e.g.
// when the march starts inside a solid cell.
func dominantAxisNormal(dir types.Vec3) types.Vec3 {
	axis := 0
	var best float32 = -1
	for i := 0; i < 3; i++ {
		mag := dir[i]
		if mag < 0 {
			mag = -mag
		}
		if mag > best {
			best = mag
			axis = i
		}
	}

	var n types.Vec3
	if dir[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return n
}
