package response

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/seisgo/strongmotion/waveform"
)

// Fixed period axis of a Spectrum.
const (
	// SpectrumPoints is the number of log-spaced periods.
	SpectrumPoints = 100

	// MinPeriod and MaxPeriod bound the axis in seconds.
	MinPeriod = 0.02
	MaxPeriod = 10.0
)

// PeriodAxis returns the log-spaced period grid shared by all spectra.
func PeriodAxis() []float64 {
	p := make([]float64, SpectrumPoints)
	floats.LogSpan(p, MinPeriod, MaxPeriod)

	return p
}

// Spectrum holds the response curves of one record for every component
// and damping ratio, aligned with the shared Period axis. Values are in
// gal when the input record is in gal.
type Spectrum struct {
	Period []float64

	curves [waveform.NumComponents][NumDampings][]float64
}

// Curve returns the response curve for one component and damping. The
// returned slice is shared with the Spectrum and must be treated as
// read-only.
func (s *Spectrum) Curve(c waveform.Component, d Damping) []float64 {
	return s.curves[c][d]
}

// Horizontal combines the two horizontal curves per period as
// sqrt(NS² + EW²) for one damping ratio.
func (s *Spectrum) Horizontal(d Damping) []float64 {
	ns := s.curves[waveform.NS][d]
	ew := s.curves[waveform.EW][d]

	out := make([]float64, len(ns))
	for i := range out {
		out[i] = math.Hypot(ns[i], ew[i])
	}

	return out
}

type config struct {
	workers int
}

// Option configures a Compute call.
type Option func(*config)

// WithWorkers sets the number of goroutines solving the oscillator grid.
// Values below 1 restore the default of runtime.NumCPU(); 1 runs the
// grid serially.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// Compute evaluates the response of rec for every component, damping
// ratio and period on the fixed axis. The solves are independent and
// fan out over a worker pool; each worker writes disjoint ordinates, so
// the result does not depend on the worker count.
func Compute(rec *waveform.Record, opts ...Option) (*Spectrum, error) {
	if rec == nil || rec.Len() == 0 {
		return nil, ErrEmptyInput
	}

	cfg := config{workers: runtime.NumCPU()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}

	s := &Spectrum{Period: PeriodAxis()}
	for ci := range s.curves {
		for d := range s.curves[ci] {
			s.curves[ci][d] = make([]float64, SpectrumPoints)
		}
	}

	dt := rec.DT()

	var histories [waveform.NumComponents][]float64
	for ci, comp := range waveform.Components() {
		histories[ci] = rec.Series(comp)
	}

	// One job per (damping, period) pair; the oscillator is built once
	// and replayed across the three components.
	type job struct {
		d, pi int
	}

	numJobs := NumDampings * SpectrumPoints
	jobs := make(chan job, numJobs)
	for d := 0; d < NumDampings; d++ {
		for pi := 0; pi < SpectrumPoints; pi++ {
			jobs <- job{d: d, pi: pi}
		}
	}
	close(jobs)

	workers := cfg.workers
	if workers > numJobs {
		workers = numJobs
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for jb := range jobs {
				osc, err := NewOscillator(dt, s.Period[jb.pi], Damping(jb.d).Ratio())
				if err != nil {
					once.Do(func() { firstErr = err })

					continue
				}

				for ci := range histories {
					s.curves[ci][jb.d][jb.pi] = osc.peakOf(histories[ci])
				}
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return s, nil
}
