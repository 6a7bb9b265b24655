package station

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seisgo/strongmotion/waveform"
)

// Interchange file names inside a station directory.
const (
	WaveformFile = "waveform.csv"
	MetadataFile = "metadata.yml"
)

const timestampLayout = "2006-01-02T15:04:05.000"

var waveformHeader = []string{"datetime", "NS", "EW", "UD"}

// WriteWaveform stores rec as interchange CSV with one row per sample.
// Timestamps start at start and advance by the sampling interval rounded
// to whole nanoseconds.
func WriteWaveform(w io.Writer, rec *waveform.Record, start time.Time) error {
	if rec == nil || rec.Len() == 0 {
		return waveform.ErrEmptyInput
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(waveformHeader); err != nil {
		return fmt.Errorf("station: write waveform: %w", err)
	}

	period := time.Duration(math.Round(rec.DT() * float64(time.Second)))
	ns := rec.Series(waveform.NS)
	ew := rec.Series(waveform.EW)
	ud := rec.Series(waveform.UD)

	row := make([]string, len(waveformHeader))
	for i := range ns {
		row[0] = start.Add(time.Duration(i) * period).Format(timestampLayout)
		row[1] = strconv.FormatFloat(ns[i], 'g', -1, 64)
		row[2] = strconv.FormatFloat(ew[i], 'g', -1, 64)
		row[3] = strconv.FormatFloat(ud[i], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("station: write waveform: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("station: write waveform: %w", err)
	}

	return nil
}

// ReadWaveform loads an interchange CSV stream. The sampling interval is
// derived from the first two timestamps; jitter in later timestamps is
// ignored. The returned time is the first sample's timestamp.
func ReadWaveform(r io.Reader) (*waveform.Record, time.Time, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(waveformHeader)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	for i, want := range waveformHeader {
		if strings.TrimSpace(head[i]) != want {
			return nil, time.Time{}, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, head[i], want)
		}
	}

	var (
		ns, ew, ud []float64
		stamps     [2]time.Time
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: %v", ErrBadData, err)
		}

		if len(ns) < len(stamps) {
			ts, err := time.Parse(timestampLayout, row[0])
			if err != nil {
				return nil, time.Time{}, fmt.Errorf("%w: timestamp %q", ErrBadData, row[0])
			}
			stamps[len(ns)] = ts
		}

		var vals [waveform.NumComponents]float64
		for i := range vals {
			if vals[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64); err != nil {
				return nil, time.Time{}, fmt.Errorf("%w: sample %q", ErrBadData, row[i+1])
			}
		}
		ns = append(ns, vals[waveform.NS])
		ew = append(ew, vals[waveform.EW])
		ud = append(ud, vals[waveform.UD])
	}

	if len(ns) < 2 {
		return nil, time.Time{}, fmt.Errorf("%w: need at least two rows to derive the sampling interval", ErrBadData)
	}

	rec, err := waveform.New(ns, ew, ud, stamps[1].Sub(stamps[0]).Seconds())
	if err != nil {
		return nil, time.Time{}, err
	}

	return rec, stamps[0], nil
}

// SaveStation writes the interchange pair for one station under dir:
// waveform.csv with timestamps starting at info.Origin, and metadata.yml.
func SaveStation(dir string, rec *waveform.Record, info *Info) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("station: create station dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, WaveformFile))
	if err != nil {
		return fmt.Errorf("station: create waveform: %w", err)
	}
	if err := WriteWaveform(f, rec, info.Origin); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("station: close waveform: %w", err)
	}

	return WriteInfo(filepath.Join(dir, MetadataFile), info)
}

// LoadStation reads the interchange pair back from a station directory.
func LoadStation(dir string) (*waveform.Record, *Info, error) {
	f, err := os.Open(filepath.Join(dir, WaveformFile))
	if err != nil {
		return nil, nil, fmt.Errorf("station: open waveform: %w", err)
	}
	defer f.Close()

	rec, _, err := ReadWaveform(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", dir, err)
	}

	info, err := ReadInfo(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, nil, err
	}

	return rec, info, nil
}
