package station

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seisgo/strongmotion/waveform"
)

// K-NET ASCII files carry a 17-line fixed-layout header followed by
// whitespace-separated integer counts. Header values start at a fixed
// column; counts convert to gal through the declared scale factor.
const (
	knetHeaderLines = 17
	knetValueCol    = 18
)

// Header line indices of the fields the parser reads. The leading event
// block (origin time, hypocentre, magnitude) is not modelled.
const (
	knetLineStationCode   = 5
	knetLineStationLat    = 6
	knetLineStationLong   = 7
	knetLineStationHeight = 8
	knetLineRecordTime    = 9
	knetLineSampling      = 10
	knetLineDirection     = 12
	knetLineScale         = 13
	knetLineMaxAcc        = 14
)

const knetTimeLayout = "2006/01/02 15:04:05"

var knetScaleRe = regexp.MustCompile(`^(\d+)\(gal\)/(\d+)$`)

// KNETChannel is one parsed K-NET component file.
type KNETChannel struct {
	Info      Info
	Component waveform.Component

	// MaxAcc is the peak acceleration declared in the header, in gal.
	MaxAcc float64

	// Data holds the samples converted to gal.
	Data []float64
}

// ParseKNET reads a single K-NET component file. Info.Origin carries the
// record start time, not the earthquake origin time.
func ParseKNET(r io.Reader) (*KNETChannel, error) {
	br := bufio.NewReader(r)

	lines := make([]string, knetHeaderLines)
	for i := range lines {
		l, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && l != "") {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadHeader, i+1, err)
		}
		lines[i] = strings.TrimRight(l, "\r\n")
	}

	ch := &KNETChannel{Info: Info{Source: SourceKNET}}

	ch.Info.Code = knetValue(lines, knetLineStationCode)
	if ch.Info.Code == "" {
		return nil, fmt.Errorf("%w: missing station code", ErrBadHeader)
	}

	var err error
	if ch.Info.Latitude, err = knetFloat(lines, knetLineStationLat); err != nil {
		return nil, err
	}
	if ch.Info.Longitude, err = knetFloat(lines, knetLineStationLong); err != nil {
		return nil, err
	}
	if ch.Info.Height, err = knetFloat(lines, knetLineStationHeight); err != nil {
		return nil, err
	}
	if ch.MaxAcc, err = knetFloat(lines, knetLineMaxAcc); err != nil {
		return nil, err
	}

	stamp := knetValue(lines, knetLineRecordTime)
	if ch.Info.Origin, err = time.Parse(knetTimeLayout, stamp); err != nil {
		return nil, fmt.Errorf("%w: record time %q", ErrBadHeader, stamp)
	}

	hz := strings.TrimSpace(strings.TrimSuffix(knetValue(lines, knetLineSampling), "Hz"))
	freq, err := strconv.Atoi(hz)
	if err != nil || freq <= 0 {
		return nil, fmt.Errorf("%w: sampling rate %q", ErrBadHeader, knetValue(lines, knetLineSampling))
	}
	ch.Info.SamplingHz = float64(freq)

	dir := knetValue(lines, knetLineDirection)
	if ch.Component, err = waveform.ParseComponent(strings.ReplaceAll(dir, "-", "")); err != nil {
		return nil, fmt.Errorf("%w: direction %q", ErrBadHeader, dir)
	}

	scale := knetValue(lines, knetLineScale)
	m := knetScaleRe.FindStringSubmatch(scale)
	if m == nil {
		return nil, fmt.Errorf("%w: scale factor %q", ErrBadHeader, scale)
	}
	num, _ := strconv.ParseFloat(m[1], 64)
	den, _ := strconv.ParseFloat(m[2], 64)
	if den == 0 {
		return nil, fmt.Errorf("%w: scale factor %q", ErrBadHeader, scale)
	}
	toGal := num / den

	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		count, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: sample %q", ErrBadData, sc.Text())
		}
		ch.Data = append(ch.Data, float64(count)*toGal)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("station: read data: %w", err)
	}
	if len(ch.Data) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrBadData)
	}

	return ch, nil
}

func knetValue(lines []string, idx int) string {
	l := lines[idx]
	if len(l) <= knetValueCol {
		return ""
	}

	return strings.TrimSpace(l[knetValueCol:])
}

func knetFloat(lines []string, idx int) (float64, error) {
	v := knetValue(lines, idx)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d value %q", ErrBadHeader, idx+1, v)
	}

	return f, nil
}

// KNETTriplet points at the three component files of one K-NET record.
type KNETTriplet struct {
	NS, EW, UD string
}

// FindKNET scans dir for .NS/.EW/.UD files and groups them by file stem.
// Groups missing a component are dropped.
func FindKNET(dir string) (map[string]KNETTriplet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("station: scan K-NET dir: %w", err)
	}

	groups := make(map[string]KNETTriplet)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		stem := strings.TrimSuffix(e.Name(), ext)
		path := filepath.Join(dir, e.Name())

		t := groups[stem]
		switch strings.ToUpper(strings.TrimPrefix(ext, ".")) {
		case "NS":
			t.NS = path
		case "EW":
			t.EW = path
		case "UD":
			t.UD = path
		default:
			continue
		}
		groups[stem] = t
	}

	for stem, t := range groups {
		if t.NS == "" || t.EW == "" || t.UD == "" {
			delete(groups, stem)
		}
	}

	return groups, nil
}

// Load parses the three component files and combines them into a record.
// The channels must agree on station code and sampling rate and carry the
// direction their file suffix claims; components are truncated to the
// shortest series.
func (t KNETTriplet) Load() (*waveform.Record, *Info, error) {
	var chans [waveform.NumComponents]*KNETChannel
	for c, path := range map[waveform.Component]string{waveform.NS: t.NS, waveform.EW: t.EW, waveform.UD: t.UD} {
		ch, err := parseKNETFile(path)
		if err != nil {
			return nil, nil, err
		}
		chans[c] = ch
	}

	ref := chans[waveform.NS]
	for _, c := range waveform.Components() {
		ch := chans[c]
		if ch.Component != c {
			return nil, nil, fmt.Errorf("%w: %s file declares direction %s", ErrBadHeader, c, ch.Component)
		}
		if ch.Info.Code != ref.Info.Code {
			return nil, nil, fmt.Errorf("%w: station code %q vs %q", ErrBadHeader, ch.Info.Code, ref.Info.Code)
		}
		if ch.Info.SamplingHz != ref.Info.SamplingHz {
			return nil, nil, fmt.Errorf("%w: sampling rate %v vs %v", ErrBadHeader, ch.Info.SamplingHz, ref.Info.SamplingHz)
		}
	}

	n := len(ref.Data)
	for _, ch := range chans {
		if len(ch.Data) < n {
			n = len(ch.Data)
		}
	}

	rec, err := waveform.New(
		chans[waveform.NS].Data[:n],
		chans[waveform.EW].Data[:n],
		chans[waveform.UD].Data[:n],
		1/ref.Info.SamplingHz,
	)
	if err != nil {
		return nil, nil, err
	}

	info := ref.Info
	return rec, &info, nil
}

func parseKNETFile(path string) (*KNETChannel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("station: open channel: %w", err)
	}
	defer f.Close()

	ch, err := ParseKNET(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return ch, nil
}

// LoadKNET loads the single K-NET triplet stored in dir.
func LoadKNET(dir string) (*waveform.Record, *Info, error) {
	groups, err := FindKNET(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(groups) != 1 {
		return nil, nil, fmt.Errorf("%w: want one K-NET triplet, found %d", ErrBadData, len(groups))
	}

	var one KNETTriplet
	for _, t := range groups {
		one = t
	}

	return one.Load()
}
