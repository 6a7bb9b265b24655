// Command smproc batch-processes strong-motion stations stored in the
// interchange layout: for every station it derives velocity and
// displacement histories, Fourier amplitude spectra and response
// spectra, writes them as CSV under the output directory and aggregates
// the peak values into stations.json.
//
// Usage:
//
//	smproc -data DIR [flags]
//
// Without -stations every station directory under -data is processed.
//
// Examples:
//
//	smproc -data ./stations -out ./derived
//	smproc -data ./stations -out ./derived -stations NIED_AKT001,JMA_36303
//	smproc -data ./stations -out ./derived -taper 0.05 -workers 4
//	smproc -data ./stations -out ./derived -highpass -1 -log-level debug
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/seisgo/strongmotion/dsp/response"
	"github.com/seisgo/strongmotion/observability"
	"github.com/seisgo/strongmotion/pipeline"
	"github.com/seisgo/strongmotion/station"
	"github.com/seisgo/strongmotion/stats/motion"
	"github.com/seisgo/strongmotion/waveform"
)

// Per-station product file names.
const (
	velocityFile = "velocity.csv"
	displFile    = "displacement.csv"
	fourierFile  = "fourier_spectrum.csv"
	responseFile = "response_spectrum.csv"
)

type result struct {
	code   string
	info   *station.Info
	bundle *pipeline.Bundle
}

func main() {
	dataDir := flag.String("data", "", "station base directory in interchange layout")
	outDir := flag.String("out", "derived", "output directory for per-station products")
	stationList := flag.String("stations", "", "comma-separated station codes (default: all under -data)")
	highpass := flag.Float64("highpass", pipeline.DefaultHighpass, "integration high-pass cutoff in Hz, negative disables the ramp")
	baseline := flag.Float64("baseline", pipeline.DefaultBaselineWindow, "baseline window in seconds, negative disables the correction")
	taper := flag.Float64("taper", 0, "cosine taper ratio in [0,1], 0 leaves records untapered")
	workers := flag.Int("workers", 0, "station and oscillator worker count (default: number of CPUs)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	summaryPath := flag.String("summary", "", "aggregated summary path (default: <out>/stations.json)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: smproc -data DIR [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Derives velocity, displacement, Fourier spectra and response spectra\n")
		fmt.Fprintf(os.Stderr, "for strong-motion stations and writes them as CSV plus stations.json.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  smproc -data ./stations -out ./derived\n")
		fmt.Fprintf(os.Stderr, "  smproc -data ./stations -out ./derived -stations NIED_AKT001,JMA_36303\n")
		fmt.Fprintf(os.Stderr, "  smproc -data ./stations -out ./derived -taper 0.05 -workers 4\n")
	}
	flag.Parse()

	if *dataDir == "" {
		fmt.Fprintf(os.Stderr, "error: -data is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if *summaryPath == "" {
		*summaryPath = filepath.Join(*outDir, "stations.json")
	}

	logger := observability.NewLogger(*logLevel)
	metrics := observability.NewMetrics()

	loader := station.NewDirLoader(*dataDir, station.WithLogger(logger))

	proc, err := pipeline.NewProcessor(pipeline.Config{
		Highpass:       *highpass,
		BaselineWindow: *baseline,
		TaperRatio:     *taper,
		Workers:        *workers,
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cache := pipeline.NewCache(loader, proc)

	codes, err := resolveStations(loader, *stationList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(codes) == 0 {
		fmt.Fprintf(os.Stderr, "error: no stations under %s\n", *dataDir)
		os.Exit(1)
	}

	results, failed := processAll(context.Background(), cache, loader, logger, *outDir, codes, *workers)

	if len(results) > 0 {
		if err := writeSummaryJSON(*summaryPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printSummary(results)
	}

	logger.Info("batch finished", "stations", len(results), "failed", failed, "out", *outDir)

	if failed > 0 {
		os.Exit(1)
	}
}

// resolveStations picks the requested station codes, or every station
// under the base directory when the list is empty.
func resolveStations(loader *station.DirLoader, list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return loader.Stations()
	}

	var codes []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes, nil
}

// processAll fans the station codes out over a worker pool. Failures are
// logged and counted; the returned results are sorted by code.
func processAll(ctx context.Context, cache *pipeline.Cache, loader *station.DirLoader, logger *slog.Logger, outDir string, codes []string, workers int) ([]result, int) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(codes) {
		workers = len(codes)
	}

	jobs := make(chan string, len(codes))
	for _, c := range codes {
		jobs <- c
	}
	close(jobs)

	var (
		mu      sync.Mutex
		results []result
		failed  int
		wg      sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for code := range jobs {
				res, err := processStation(ctx, cache, loader, outDir, code)
				if err != nil {
					logger.Error("station failed", "station", code, "err", err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}

				logger.Info("station processed",
					"station", code,
					"samples", res.bundle.Waveform(pipeline.Acceleration).Len(),
					"elapsed", res.bundle.Elapsed,
				)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].code < results[j].code })

	return results, failed
}

// processStation computes one station's bundle through the cache and
// writes its four product files under outDir/code.
func processStation(ctx context.Context, cache *pipeline.Cache, loader *station.DirLoader, outDir, code string) (result, error) {
	b, err := cache.Get(ctx, code)
	if err != nil {
		return result{}, err
	}

	info, err := loader.Info(code)
	if err != nil {
		// Metadata is optional for processing; the products then carry
		// the directory code and a zero origin.
		info = &station.Info{Code: code}
	}

	dir := filepath.Join(outDir, code)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result{}, err
	}

	if err := writeQuantity(filepath.Join(dir, velocityFile), b.Waveform(pipeline.Velocity), info.Origin); err != nil {
		return result{}, err
	}
	if err := writeQuantity(filepath.Join(dir, displFile), b.Waveform(pipeline.Displacement), info.Origin); err != nil {
		return result{}, err
	}
	if err := writeFourier(filepath.Join(dir, fourierFile), b); err != nil {
		return result{}, err
	}
	if err := writeResponse(filepath.Join(dir, responseFile), b.Response); err != nil {
		return result{}, err
	}

	return result{code: code, info: info, bundle: b}, nil
}

func writeQuantity(path string, rec *waveform.Record, start time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := station.WriteWaveform(f, rec, start); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return f.Close()
}

// writeFourier stores the three amplitude spectra on their shared
// frequency axis as frequency,NS,EW,UD rows.
func writeFourier(path string, b *pipeline.Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	ns := b.FourierFor(waveform.NS)
	ew := b.FourierFor(waveform.EW)
	ud := b.FourierFor(waveform.UD)

	w := csv.NewWriter(f)
	werr := w.Write([]string{"frequency", "NS", "EW", "UD"})

	row := make([]string, 4)
	for i := 0; werr == nil && i < ns.Len(); i++ {
		row[0] = formatValue(ns.Frequency[i])
		row[1] = formatValue(ns.Amplitude[i])
		row[2] = formatValue(ew.Amplitude[i])
		row[3] = formatValue(ud.Amplitude[i])
		werr = w.Write(row)
	}

	if werr == nil {
		w.Flush()
		werr = w.Error()
	}
	if werr != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), werr)
	}

	return f.Close()
}

// writeResponse stores the response curves per component and damping
// plus the combined horizontal curves, one period per row.
func writeResponse(path string, s *response.Spectrum) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	header := []string{"period"}
	var cols [][]float64
	for _, c := range waveform.Components() {
		for _, d := range response.Dampings() {
			header = append(header, c.String()+"_"+dampingLabel(d))
			cols = append(cols, s.Curve(c, d))
		}
	}
	for _, d := range response.Dampings() {
		header = append(header, "H_"+dampingLabel(d))
		cols = append(cols, s.Horizontal(d))
	}

	w := csv.NewWriter(f)
	werr := w.Write(header)

	row := make([]string, len(header))
	for i := 0; werr == nil && i < len(s.Period); i++ {
		row[0] = formatValue(s.Period[i])
		for j, col := range cols {
			row[j+1] = formatValue(col[i])
		}
		werr = w.Write(row)
	}

	if werr == nil {
		w.Flush()
		werr = w.Error()
	}
	if werr != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), werr)
	}

	return f.Close()
}

// dampingLabel turns "h=0.05" into the column suffix "h0.05".
func dampingLabel(d response.Damping) string {
	return strings.ReplaceAll(d.String(), "=", "")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type peakTable struct {
	Acceleration motion.PeakSet `json:"acceleration"`
	Velocity     motion.PeakSet `json:"velocity"`
	Displacement motion.PeakSet `json:"displacement"`
}

type stationSummary struct {
	Code      string    `json:"code"`
	Name      string    `json:"name,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Peaks     peakTable `json:"peaks"`
}

func writeSummaryJSON(path string, results []result) error {
	summaries := make([]stationSummary, len(results))
	for i, r := range results {
		summaries[i] = stationSummary{
			Code:      r.code,
			Name:      r.info.Name,
			Latitude:  r.info.Latitude,
			Longitude: r.info.Longitude,
			Peaks: peakTable{
				Acceleration: r.bundle.PeaksFor(pipeline.Acceleration),
				Velocity:     r.bundle.PeaksFor(pipeline.Velocity),
				Displacement: r.bundle.PeaksFor(pipeline.Displacement),
			},
		}
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printSummary(results []result) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Station\tSamples\tPGA [gal]\tPGV [cm/s]\tPGD [cm]\tElapsed\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-------\t-------\t---------\t----------\t--------\t-------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.3f\t%.3f\t%s\n",
			r.code,
			r.bundle.Waveform(pipeline.Acceleration).Len(),
			componentPeak(r.bundle.PeaksFor(pipeline.Acceleration)),
			componentPeak(r.bundle.PeaksFor(pipeline.Velocity)),
			componentPeak(r.bundle.PeaksFor(pipeline.Displacement)),
			r.bundle.Elapsed.Round(time.Millisecond),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// componentPeak returns the largest single-component peak.
func componentPeak(ps motion.PeakSet) float64 {
	return max(ps.NS, ps.EW, ps.UD)
}
