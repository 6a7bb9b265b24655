package station

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seisgo/strongmotion/waveform"
)

// DirLoader serves station waveforms from an interchange data directory
// laid out as base/<code>/waveform.csv plus metadata.yml. It satisfies
// the pipeline's Loader interface.
type DirLoader struct {
	base   string
	logger *slog.Logger
}

// DirOption configures a DirLoader.
type DirOption func(*DirLoader)

// WithLogger routes loader diagnostics to logger.
func WithLogger(logger *slog.Logger) DirOption {
	return func(l *DirLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewDirLoader creates a loader rooted at base.
func NewDirLoader(base string, opts ...DirOption) *DirLoader {
	l := &DirLoader{base: base, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Load reads the waveform of one station. The context is checked before
// any file I/O so cancelled batch runs stop promptly.
func (l *DirLoader) Load(ctx context.Context, code string) (*waveform.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(l.base, code, WaveformFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrStationNotFound, code)
		}
		return nil, fmt.Errorf("station: open waveform: %w", err)
	}
	defer f.Close()

	rec, start, err := ReadWaveform(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", code, err)
	}
	l.logger.Debug("station loaded",
		"station", code, "samples", rec.Len(), "dt", rec.DT(), "start", start)

	return rec, nil
}

// Info reads the metadata of one station.
func (l *DirLoader) Info(code string) (*Info, error) {
	info, err := ReadInfo(filepath.Join(l.base, code, MetadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrStationNotFound, code)
		}
		return nil, err
	}

	return info, nil
}

// Stations lists the station codes available under the base directory in
// sorted order. A directory counts as a station when it holds a waveform
// file.
func (l *DirLoader) Stations() ([]string, error) {
	entries, err := os.ReadDir(l.base)
	if err != nil {
		return nil, fmt.Errorf("station: scan data dir: %w", err)
	}

	var codes []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.base, e.Name(), WaveformFile)); err != nil {
			continue
		}
		codes = append(codes, e.Name())
	}

	return codes, nil
}
