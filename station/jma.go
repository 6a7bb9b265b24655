package station

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/seisgo/strongmotion/waveform"
)

// JMA strong-motion files are Shift-JIS encoded CSV: seven KEY=value
// header lines followed by NS,EW,UD sample rows in gal.
const jmaHeaderLines = 7

// Header line indices of the fields the parser reads.
const (
	jmaLineSite     = 0
	jmaLineLat      = 1
	jmaLineLon      = 2
	jmaLineSampling = 3
	jmaLineInitial  = 5
)

// ParseJMA reads a JMA strong-motion CSV stream. Info.Code is not part
// of the format and is left empty; LoadJMA fills it from the file name.
func ParseJMA(r io.Reader) (*waveform.Record, *Info, error) {
	br := bufio.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))

	header := make([]string, jmaHeaderLines)
	for i := range header {
		l, err := br.ReadString('\n')
		if err != nil && !(err == io.EOF && l != "") {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrBadHeader, i+1, err)
		}
		_, v, ok := strings.Cut(l, "=")
		if !ok {
			return nil, nil, fmt.Errorf("%w: line %d: missing '='", ErrBadHeader, i+1)
		}
		header[i] = strings.TrimSpace(v)
	}

	info := &Info{Source: SourceJMA, Name: header[jmaLineSite]}

	var err error
	if info.Latitude, err = strconv.ParseFloat(header[jmaLineLat], 64); err != nil {
		return nil, nil, fmt.Errorf("%w: latitude %q", ErrBadHeader, header[jmaLineLat])
	}
	if info.Longitude, err = strconv.ParseFloat(header[jmaLineLon], 64); err != nil {
		return nil, nil, fmt.Errorf("%w: longitude %q", ErrBadHeader, header[jmaLineLon])
	}

	hz := strings.TrimSpace(strings.TrimSuffix(header[jmaLineSampling], "Hz"))
	freq, err := strconv.Atoi(hz)
	if err != nil || freq <= 0 {
		return nil, nil, fmt.Errorf("%w: sampling rate %q", ErrBadHeader, header[jmaLineSampling])
	}
	info.SamplingHz = float64(freq)

	if info.Origin, err = parseJMATime(header[jmaLineInitial]); err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = waveform.NumComponents
	cr.TrimLeadingSpace = true

	var ns, ew, ud []float64
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadData, err)
		}
		var vals [waveform.NumComponents]float64
		for i, f := range row {
			if vals[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
				return nil, nil, fmt.Errorf("%w: sample %q", ErrBadData, f)
			}
		}
		ns = append(ns, vals[waveform.NS])
		ew = append(ew, vals[waveform.EW])
		ud = append(ud, vals[waveform.UD])
	}

	rec, err := waveform.New(ns, ew, ud, 1/info.SamplingHz)
	if err != nil {
		return nil, nil, err
	}

	return rec, info, nil
}

// parseJMATime decodes the INITIAL TIME value, six space-separated
// integers: year month day hour minute second.
func parseJMATime(v string) (time.Time, error) {
	fields := strings.Fields(v)
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("%w: initial time %q", ErrBadHeader, v)
	}

	var n [6]int
	for i, f := range fields {
		x, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: initial time %q", ErrBadHeader, v)
		}
		n[i] = x
	}

	return time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, time.UTC), nil
}

// LoadJMA reads a JMA CSV file and derives the station code from the
// file name: the first five characters of the leading underscore-separated
// token.
func LoadJMA(path string) (*waveform.Record, *Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("station: open JMA file: %w", err)
	}
	defer f.Close()

	rec, info, err := ParseJMA(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	info.Code = jmaCode(filepath.Base(path))

	return rec, info, nil
}

func jmaCode(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	tok, _, _ := strings.Cut(stem, "_")
	if len(tok) > 5 {
		tok = tok[:5]
	}

	return tok
}
