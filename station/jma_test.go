package station

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/seisgo/strongmotion/waveform"
)

func jmaContent(siteName string, rows ...string) string {
	lines := []string{
		"SITE CODE=" + siteName,
		"LAT=39.7186",
		"LON=140.1024",
		"SAMPLING RATE=100Hz",
		"UNIT=gal",
		"INITIAL TIME=2025 12 08 23 15 30",
		"DATA=",
	}
	lines = append(lines, rows...)

	return strings.Join(lines, "\n") + "\n"
}

func TestParseJMA(t *testing.T) {
	utf8 := jmaContent("秋田市山王", "-0.3,1.2,0.5", "10,-20,30", "0.25,0.5,-0.75")
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(utf8))
	require.NoError(t, err)

	rec, info, err := ParseJMA(bytes.NewReader(sjis))
	require.NoError(t, err)

	assert.Equal(t, "秋田市山王", info.Name)
	assert.Equal(t, "", info.Code)
	assert.Equal(t, SourceJMA, info.Source)
	assert.Equal(t, 39.7186, info.Latitude)
	assert.Equal(t, 140.1024, info.Longitude)
	assert.Equal(t, 100.0, info.SamplingHz)
	assert.Equal(t, time.Date(2025, 12, 8, 23, 15, 30, 0, time.UTC), info.Origin)

	require.Equal(t, 3, rec.Len())
	assert.Equal(t, 0.01, rec.DT())
	assert.Empty(t, cmp.Diff([]float64{-0.3, 10, 0.25}, rec.Series(waveform.NS)))
	assert.Empty(t, cmp.Diff([]float64{1.2, -20, 0.5}, rec.Series(waveform.EW)))
	assert.Empty(t, cmp.Diff([]float64{0.5, 30, -0.75}, rec.Series(waveform.UD)))
}

// ASCII fixtures decode unchanged through Shift-JIS, so the error cases
// can feed plain strings.
func TestParseJMAErrors(t *testing.T) {
	t.Run("missing equals", func(t *testing.T) {
		raw := strings.Replace(jmaContent("AKITA", "1,2,3"), "LAT=", "LAT ", 1)
		_, _, err := ParseJMA(strings.NewReader(raw))
		require.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("bad sampling rate", func(t *testing.T) {
		raw := strings.Replace(jmaContent("AKITA", "1,2,3"), "100Hz", "fastHz", 1)
		_, _, err := ParseJMA(strings.NewReader(raw))
		require.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("bad initial time", func(t *testing.T) {
		raw := strings.Replace(jmaContent("AKITA", "1,2,3"), "2025 12 08 23 15 30", "2025 12 08", 1)
		_, _, err := ParseJMA(strings.NewReader(raw))
		require.ErrorIs(t, err, ErrBadHeader)
	})

	t.Run("short row", func(t *testing.T) {
		_, _, err := ParseJMA(strings.NewReader(jmaContent("AKITA", "1,2")))
		require.ErrorIs(t, err, ErrBadData)
	})

	t.Run("non-numeric sample", func(t *testing.T) {
		_, _, err := ParseJMA(strings.NewReader(jmaContent("AKITA", "a,b,c")))
		require.ErrorIs(t, err, ErrBadData)
	})

	t.Run("no data rows", func(t *testing.T) {
		_, _, err := ParseJMA(strings.NewReader(jmaContent("AKITA")))
		require.ErrorIs(t, err, waveform.ErrEmptyInput)
	})
}

func TestLoadJMA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "36303_20251208231530.csv")
	utf8 := jmaContent("秋田市山王", "1,2,3", "4,5,6")
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(utf8))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, sjis, 0o644))

	rec, info, err := LoadJMA(path)
	require.NoError(t, err)

	assert.Equal(t, "36303", info.Code)
	assert.Equal(t, "秋田市山王", info.Name)
	assert.Equal(t, 2, rec.Len())
}

func TestJMACode(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"underscore token", "36303_20251208.csv", "36303"},
		{"long token truncated", "AKT001234_x.csv", "AKT00"},
		{"no underscore", "AB1.csv", "AB1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jmaCode(tt.file))
		})
	}
}
