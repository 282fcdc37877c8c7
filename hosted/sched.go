package hosted

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	db "github.com/calmsacibis995/sprite2/debug"
)

const (
	nTickSamples = 10
	tickSample   = 2 * time.Millisecond
)

// Sched is the hosted scheduler module.  TimeTicks calibrates the
// idle-tick reference the scheduler uses for elapsed-time accounting.
type Sched struct {
	mu       sync.Mutex
	tickMean time.Duration
}

func NewSched() *Sched {
	return &Sched{}
}

func (s *Sched) Init() error {
	db.DPrintf(db.SCHED, "Init")
	return nil
}

// TimeTicks sleeps for a few short, bounded intervals and takes the mean
// observed duration as the tick baseline.  It must run before any
// workload depends on elapsed-time measurements.
func (s *Sched) TimeTicks() {
	samples := make([]float64, 0, nTickSamples)
	for i := 0; i < nTickSamples; i++ {
		start := time.Now()
		time.Sleep(tickSample)
		samples = append(samples, float64(time.Since(start)))
	}
	mean, err := stats.Mean(samples)
	if err != nil {
		db.DPrintf(db.SCHED, "tick calibration failed: %v", err)
		return
	}
	s.mu.Lock()
	s.tickMean = time.Duration(mean)
	s.mu.Unlock()
	db.DPrintf(db.SCHED, "tick baseline %v over %d samples", time.Duration(mean), nTickSamples)
}

func (s *Sched) TickBaseline() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickMean
}
