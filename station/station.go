// Package station reads strong-motion records in the K-NET triplet and
// JMA CSV formats and converts them to the on-disk interchange layout
// the processing pipeline consumes: one directory per station holding
// waveform.csv and metadata.yml.
package station

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source labels for Info.Source.
const (
	SourceKNET = "knet"
	SourceJMA  = "jma"
)

// Errors returned by the parsers and the directory loader.
var (
	ErrStationNotFound = errors.New("station: unknown station")
	ErrBadHeader       = errors.New("station: malformed header")
	ErrBadData         = errors.New("station: malformed data")
)

// Info is the per-station metadata carried alongside a waveform.
type Info struct {
	Code       string    `yaml:"code"`
	Name       string    `yaml:"name,omitempty"`
	Latitude   float64   `yaml:"latitude"`
	Longitude  float64   `yaml:"longitude"`
	Height     float64   `yaml:"height_m,omitempty"`
	Source     string    `yaml:"source"`
	Origin     time.Time `yaml:"origin"`
	SamplingHz float64   `yaml:"sampling_hz"`
}

// ReadInfo loads a metadata.yml file.
func ReadInfo(path string) (*Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("station: read info: %w", err)
	}

	var info Info
	if err := yaml.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("station: decode info: %w", err)
	}

	return &info, nil
}

// WriteInfo stores info as metadata.yml at path.
func WriteInfo(path string, info *Info) error {
	raw, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("station: encode info: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("station: write info: %w", err)
	}

	return nil
}
