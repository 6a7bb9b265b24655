// Command smfmt converts raw strong-motion records into the interchange
// layout used by smproc: one directory per station holding waveform.csv
// and metadata.yml.
//
// Supported inputs are K-NET ASCII triplets (.NS/.EW/.UD files sharing
// one stem) and JMA Shift-JIS CSV exports (.csv), mixed freely in one
// directory. K-NET stations are written as NIED_<code>, JMA stations as
// JMA_<code>.
//
// Usage:
//
//	smfmt -raw DIR [flags]
//
// Examples:
//
//	smfmt -raw ./download -data ./stations
//	smfmt -raw ./download -data ./stations -log-level debug
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/seisgo/strongmotion/observability"
	"github.com/seisgo/strongmotion/station"
	"github.com/seisgo/strongmotion/waveform"
)

type converted struct {
	dir     string
	source  string
	samples int
	rate    float64
	origin  time.Time
}

func main() {
	rawDir := flag.String("raw", "", "directory holding raw K-NET and JMA files")
	dataDir := flag.String("data", "stations", "output base directory in interchange layout")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: smfmt -raw DIR [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Converts raw K-NET triplets and JMA CSV exports into the interchange\n")
		fmt.Fprintf(os.Stderr, "layout: one directory per station with waveform.csv and metadata.yml.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  smfmt -raw ./download -data ./stations\n")
		fmt.Fprintf(os.Stderr, "  smfmt -raw ./download -data ./stations -log-level debug\n")
	}
	flag.Parse()

	if *rawDir == "" {
		fmt.Fprintf(os.Stderr, "error: -raw is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	logger := observability.NewLogger(*logLevel)

	rows, failed, err := convertAll(*rawDir, *dataDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(rows) == 0 && failed == 0 {
		fmt.Fprintf(os.Stderr, "error: no raw records under %s\n", *rawDir)
		os.Exit(1)
	}

	printConverted(rows)
	logger.Info("conversion finished", "stations", len(rows), "failed", failed, "data", *dataDir)

	if failed > 0 {
		os.Exit(1)
	}
}

// convertAll walks the raw directory once for K-NET triplets and once
// for JMA CSV files, saving each station under dataDir. Broken inputs
// are logged and counted, not fatal.
func convertAll(rawDir, dataDir string, logger *slog.Logger) ([]converted, int, error) {
	triplets, err := station.FindKNET(rawDir)
	if err != nil {
		return nil, 0, err
	}

	jmaPaths, err := findJMA(rawDir)
	if err != nil {
		return nil, 0, err
	}

	stems := make([]string, 0, len(triplets))
	for stem := range triplets {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	var (
		rows   []converted
		failed int
	)
	seen := make(map[string]bool)

	for _, stem := range stems {
		rec, info, err := triplets[stem].Load()
		if err != nil {
			logger.Warn("triplet skipped", "stem", stem, "err", err)
			failed++
			continue
		}

		row, err := saveStation(dataDir, rec, info, seen)
		if err != nil {
			logger.Warn("triplet skipped", "stem", stem, "err", err)
			failed++
			continue
		}

		logger.Debug("station converted", "station", row.dir, "samples", row.samples)
		rows = append(rows, row)
	}

	for _, path := range jmaPaths {
		rec, info, err := station.LoadJMA(path)
		if err != nil {
			logger.Warn("file skipped", "file", filepath.Base(path), "err", err)
			failed++
			continue
		}

		row, err := saveStation(dataDir, rec, info, seen)
		if err != nil {
			logger.Warn("file skipped", "file", filepath.Base(path), "err", err)
			failed++
			continue
		}

		logger.Debug("station converted", "station", row.dir, "samples", row.samples)
		rows = append(rows, row)
	}

	return rows, failed, nil
}

// findJMA lists the .csv files directly under dir, sorted by name.
func findJMA(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	return paths, nil
}

// saveStation writes one interchange directory and guards against two
// inputs resolving to the same station.
func saveStation(base string, rec *waveform.Record, info *station.Info, seen map[string]bool) (converted, error) {
	name := outputDir(info)
	if seen[name] {
		return converted{}, fmt.Errorf("duplicate station %s", name)
	}

	if err := station.SaveStation(filepath.Join(base, name), rec, info); err != nil {
		return converted{}, err
	}
	seen[name] = true

	return converted{
		dir:     name,
		source:  info.Source,
		samples: rec.Len(),
		rate:    info.SamplingHz,
		origin:  info.Origin,
	}, nil
}

// outputDir names the station directory after the originating network.
func outputDir(info *station.Info) string {
	switch info.Source {
	case station.SourceKNET:
		return "NIED_" + info.Code
	case station.SourceJMA:
		return "JMA_" + info.Code
	}

	return info.Code
}

func printConverted(rows []converted) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Station\tSource\tSamples\tRate [Hz]\tOrigin\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-------\t------\t-------\t---------\t------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%g\t%s\n",
			r.dir,
			r.source,
			r.samples,
			r.rate,
			r.origin.Format("2006-01-02 15:04:05"),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
