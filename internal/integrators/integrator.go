package integrators

import (
	"sort"
	"sync"

	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/kyjohnso/kessler/internal/physics"
	"github.com/kyjohnso/kessler/internal/population"
)

// parallelThreshold is the population size above which updates fan out
// across goroutines. Every object's update depends only on its own state.
const parallelThreshold = 2048

// stepFunc advances one state in place and reports false when it had to skip.
type stepFunc func(s *dynamo.OrbitalState, dt float64) bool

// sweep applies step to every object and appends the IDs it skipped.
func sweep(objs []population.Object, dt float64, skipped []dynamo.ObjectID, step stepFunc) []dynamo.ObjectID {
	if len(objs) < parallelThreshold {
		for i := range objs {
			if !step(&objs[i].State, dt) {
				skipped = append(skipped, objs[i].ID)
			}
		}
		return skipped
	}

	// skips are gathered per chunk and joined in chunk order so the result
	// matches the serial sweep
	var (
		mu      sync.Mutex
		byChunk map[int][]dynamo.ObjectID
	)
	dynamo.ParallelFor(len(objs), parallelThreshold/4, func(start, end int) {
		var local []dynamo.ObjectID
		for i := start; i < end; i++ {
			if !step(&objs[i].State, dt) {
				local = append(local, objs[i].ID)
			}
		}
		if len(local) == 0 {
			return
		}
		mu.Lock()
		if byChunk == nil {
			byChunk = make(map[int][]dynamo.ObjectID)
		}
		byChunk[start] = local
		mu.Unlock()
	})

	starts := make([]int, 0, len(byChunk))
	for start := range byChunk {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for _, start := range starts {
		skipped = append(skipped, byChunk[start]...)
	}
	return skipped
}

// accel is shared by the integrators; it reports false at the origin.
func accel(b physics.CentralBody, s *dynamo.OrbitalState) (ax, ay, az float64, ok bool) {
	a, ok := b.Acceleration(s.Position)
	return a.X, a.Y, a.Z, ok
}
