package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling
// algorithms.
type BlockScheduler interface {
	// Split the frame into blocks of variable height and assign them to
	// the pool of tracers.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame proportionally to each tracer's
// static speed estimate. It ignores per-frame feedback.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
	}
	assignBySpeed(sch.blockAssignment, tracers, frameH)
	return sch.blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same and uses the previous frame's
// per-tracer render times to rebalance block heights.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split the frame into blocks of variable height and assign them to the pool
// of tracers.
//
// When previous frame statistics are available the scheduler estimates the
// workload share for tracer w in frame i+1 as:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i / time_i)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of
	// tracers has changed we have no usable statistics; fall back to the
	// static speed estimates.
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
		assignBySpeed(sch.blockAssignment, tracers, frameH)
		return sch.blockAssignment
	}

	var total float64
	for _, tr := range tracers {
		stats := tr.Stats()
		total += float64(stats.BlockH) / float64(stats.RenderTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, tr := range tracers {
		stats := tr.Stats()
		rate := float64(stats.BlockH) / float64(stats.RenderTime)
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(rate*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case the rows don't add up to the frame height append the
	// missing ones to the first tracer.
	sch.blockAssignment[0] += frameH - scheduledRows

	return sch.blockAssignment
}

func assignBySpeed(assignment []uint32, tracers []Tracer, frameH uint32) {
	var total float64
	for _, tr := range tracers {
		total += float64(tr.Speed())
	}
	scaler := float64(frameH) / total

	var scheduledRows uint32
	for idx, tr := range tracers {
		assignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.Speed())*scaler)))
		scheduledRows += assignment[idx]
	}
	assignment[0] += frameH - scheduledRows
}
