// Package pipeline assembles the processing stages into a per-station
// engine: baseline correction, optional end tapering, frequency-domain
// integration to velocity and displacement, Fourier amplitude spectra,
// response spectra, and peak metrics, with a memoizing cache in front.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/seisgo/strongmotion/dsp/fourier"
	"github.com/seisgo/strongmotion/dsp/integrate"
	"github.com/seisgo/strongmotion/dsp/response"
	"github.com/seisgo/strongmotion/dsp/taper"
	"github.com/seisgo/strongmotion/observability"
	"github.com/seisgo/strongmotion/stats/motion"
	"github.com/seisgo/strongmotion/waveform"
)

// Errors returned by the processor and cache.
var (
	ErrEmptyInput    = errors.New("pipeline: empty record")
	ErrInvalidConfig = errors.New("pipeline: invalid config")
)

// Loader fetches the raw acceleration record of one station. The station
// package's DirLoader satisfies this.
type Loader interface {
	Load(ctx context.Context, station string) (*waveform.Record, error)
}

// Defaults applied by NewProcessor.
const (
	DefaultHighpass       = integrate.DefaultHighpassHz
	DefaultPadFactor      = integrate.DefaultPadFactor
	DefaultSpectrumPad    = fourier.DefaultPadFactor
	DefaultBaselineWindow = waveform.DefaultBaselineWindow
)

// Config holds the processing parameters. The zero value selects the
// defaults; NewProcessor fills them in.
type Config struct {
	// Highpass is the integration cutoff in Hz. Zero selects the
	// default; a negative value disables the low-frequency ramp
	// (the DC bin is removed regardless).
	Highpass float64

	// PadFactor is the zero-padding multiple for integration.
	PadFactor int

	// SpectrumPad is the zero-padding multiple for Fourier spectra.
	SpectrumPad int

	// BaselineWindow is the leading-mean window in seconds. Zero
	// selects the default; a negative value disables baseline
	// correction.
	BaselineWindow float64

	// TaperRatio is the cosine taper fraction in [0,1]. Zero leaves
	// the record untapered.
	TaperRatio float64

	// Workers bounds the response-spectrum worker pool.
	Workers int

	// Logger receives per-station progress at debug level.
	Logger *slog.Logger

	// Metrics is optional; nil runs unobserved.
	Metrics *observability.Metrics
}

func normalizeConfig(cfg Config) Config {
	switch {
	case cfg.Highpass == 0:
		cfg.Highpass = DefaultHighpass
	case cfg.Highpass < 0:
		cfg.Highpass = 0
	}

	if cfg.PadFactor == 0 {
		cfg.PadFactor = DefaultPadFactor
	}
	if cfg.SpectrumPad == 0 {
		cfg.SpectrumPad = DefaultSpectrumPad
	}

	switch {
	case cfg.BaselineWindow == 0:
		cfg.BaselineWindow = DefaultBaselineWindow
	case cfg.BaselineWindow < 0:
		cfg.BaselineWindow = 0
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.PadFactor < 1 {
		return fmt.Errorf("%w: pad factor %d", ErrInvalidConfig, cfg.PadFactor)
	}
	if cfg.SpectrumPad < 1 {
		return fmt.Errorf("%w: spectrum pad %d", ErrInvalidConfig, cfg.SpectrumPad)
	}
	if cfg.TaperRatio < 0 || cfg.TaperRatio > 1 || math.IsNaN(cfg.TaperRatio) {
		return fmt.Errorf("%w: taper ratio %v", ErrInvalidConfig, cfg.TaperRatio)
	}
	if math.IsNaN(cfg.Highpass) || math.IsInf(cfg.Highpass, 0) {
		return fmt.Errorf("%w: highpass %v", ErrInvalidConfig, cfg.Highpass)
	}

	return nil
}

// Bundle carries every derived product for one station. Bundles are
// immutable once returned and safe to share across goroutines.
type Bundle struct {
	// Station is the identifier the bundle was computed for.
	Station string

	// Fourier holds the amplitude spectrum of the processed
	// acceleration, one per component.
	Fourier [waveform.NumComponents]*fourier.Spectrum

	// Response is the acceleration response spectrum.
	Response *response.Spectrum

	// Peaks holds the peak set of each quantity.
	Peaks [NumQuantities]motion.PeakSet

	// DT is the sampling interval in seconds.
	DT float64

	// Elapsed is the wall time the computation took.
	Elapsed time.Duration

	records [NumQuantities]*waveform.Record
}

// Waveform returns the record of one quantity: the processed
// acceleration or one of its integrals.
func (b *Bundle) Waveform(q Quantity) *waveform.Record {
	return b.records[q]
}

// FourierFor returns the amplitude spectrum of one component.
func (b *Bundle) FourierFor(c waveform.Component) *fourier.Spectrum {
	return b.Fourier[c]
}

// PeaksFor returns the peak set of one quantity.
func (b *Bundle) PeaksFor(q Quantity) motion.PeakSet {
	return b.Peaks[q]
}

// Processor runs the full per-station computation with fixed parameters.
// It is safe for concurrent use.
type Processor struct {
	cfg Config
}

// NewProcessor normalizes cfg, validates it, and returns a processor.
func NewProcessor(cfg Config) (*Processor, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Processor{cfg: cfg}, nil
}

// Process runs one record through the default configuration.
func Process(station string, rec *waveform.Record) (*Bundle, error) {
	p, err := NewProcessor(Config{})
	if err != nil {
		return nil, err
	}

	return p.Process(station, rec)
}

// Process derives every product for one record. Identical input and
// configuration produce bit-identical bundles apart from Elapsed.
func (p *Processor) Process(station string, rec *waveform.Record) (*Bundle, error) {
	start := time.Now()

	bundle, err := p.process(station, rec)
	if err != nil {
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.ComputeErrors.Inc()
		}
		return nil, err
	}

	bundle.Elapsed = time.Since(start)
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.ComputeSeconds.Observe(bundle.Elapsed.Seconds())
	}
	p.cfg.Logger.Debug("station processed",
		"station", station, "samples", rec.Len(), "elapsed", bundle.Elapsed)

	return bundle, nil
}

func (p *Processor) process(station string, rec *waveform.Record) (*Bundle, error) {
	if rec == nil || rec.Len() == 0 {
		return nil, ErrEmptyInput
	}

	dt := rec.DT()
	acc := rec

	if p.cfg.BaselineWindow > 0 {
		corrected, err := acc.Corrected(p.cfg.BaselineWindow)
		if err != nil {
			return nil, err
		}
		acc = corrected
	}

	if p.cfg.TaperRatio > 0 {
		tapered, err := acc.Map(func(_ waveform.Component, x []float64) ([]float64, error) {
			y := append([]float64(nil), x...)
			if err := taper.Cosine(y, p.cfg.TaperRatio); err != nil {
				return nil, err
			}
			return y, nil
		})
		if err != nil {
			return nil, err
		}
		acc = tapered
	}

	integOpts := []integrate.Option{
		integrate.WithHighpass(p.cfg.Highpass),
		integrate.WithPadFactor(p.cfg.PadFactor),
	}
	vel, err := acc.Map(func(_ waveform.Component, x []float64) ([]float64, error) {
		return integrate.Spectral(x, dt, integOpts...)
	})
	if err != nil {
		return nil, err
	}
	disp, err := vel.Map(func(_ waveform.Component, x []float64) ([]float64, error) {
		return integrate.Spectral(x, dt, integOpts...)
	})
	if err != nil {
		return nil, err
	}

	var spectra [waveform.NumComponents]*fourier.Spectrum
	for _, c := range waveform.Components() {
		s, err := fourier.Compute(acc.Series(c), dt, fourier.WithPadFactor(p.cfg.SpectrumPad))
		if err != nil {
			return nil, err
		}
		spectra[c] = s
	}

	resp, err := response.Compute(acc, response.WithWorkers(p.cfg.Workers))
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Station:  station,
		Fourier:  spectra,
		Response: resp,
		DT:       dt,
		records: [NumQuantities]*waveform.Record{
			Acceleration: acc,
			Velocity:     vel,
			Displacement: disp,
		},
	}
	for _, q := range Quantities() {
		b.Peaks[q] = motion.Peaks(b.records[q])
	}

	return b, nil
}
