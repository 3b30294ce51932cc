// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/githuba42r/euc-charging/pkg/capture"
	"github.com/githuba42r/euc-charging/pkg/eucproto"
	"github.com/spf13/cobra"
)

var analyzeVerbose bool

// histogram counts occurrences of string keys
type histogram map[string]int

func (h histogram) add(key string) {
	h[key]++
}

// top returns the n most frequent entries, most frequent first
func (h histogram) top(n int) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if h[keys[i]] != h[keys[j]] {
			return h[keys[i]] > h[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// fieldRange tracks the observed span of one telemetry field
type fieldRange struct {
	min, max float64
	seen     bool
}

func (r *fieldRange) observe(v float64) {
	if !r.seen {
		r.min, r.max = v, v
		r.seen = true
		return
	}
	r.min = math.Min(r.min, v)
	r.max = math.Max(r.max, v)
}

func (r *fieldRange) String() string {
	if !r.seen {
		return "(no data)"
	}
	return fmt.Sprintf("%.2f .. %.2f", r.min, r.max)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture-file>",
	Short: "Replay a capture file and summarize its contents",
	Long: `Replays a recorded capture through the decoder, chunk by chunk, and
prints decode statistics and the observed range of each telemetry field.

Useful for verifying captures from wheels in the field, comparing
firmware revisions, and reproducing decode errors offline.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print every decoded reading")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture file: %v", err)
	}
	defer f.Close()

	reader, err := capture.NewReader(f)
	if err != nil {
		return err
	}

	meta := reader.Metadata()
	fmt.Printf("Capture: %s\n", args[0])
	if meta.Tool != "" {
		fmt.Printf("Recorded by: %s\n", meta.Tool)
	}
	if !meta.CreatedAt.IsZero() {
		fmt.Printf("Recorded at: %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if meta.Device != "" {
		fmt.Printf("Device:      %s\n", meta.Device)
	}
	fmt.Println()

	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	stats := eucproto.NewStatistics()
	var voltage, current, speed, temperature, battery fieldRange
	var chunks, bytes int
	var model, firmware string
	charging := false

	// Chunk geometry histograms, for reverse-engineering unknown streams
	chunkLengths := histogram{}
	prefixes2 := histogram{}
	prefixes3 := histogram{}
	prefixes4 := histogram{}

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		chunks++
		bytes += len(rec.Data)

		chunkLengths.add(fmt.Sprintf("%d", len(rec.Data)))
		if len(rec.Data) >= 2 {
			prefixes2.add(fmt.Sprintf("% X", rec.Data[:2]))
		}
		if len(rec.Data) >= 3 {
			prefixes3.add(fmt.Sprintf("% X", rec.Data[:3]))
		}
		if len(rec.Data) >= 4 {
			prefixes4.add(fmt.Sprintf("% X", rec.Data[:4]))
		}

		for _, res := range session.Feed(rec.Data) {
			stats.Update(res)
			if res.Err != nil {
				if analyzeVerbose {
					fmt.Printf("decode error at chunk %d: %v\n", chunks, res.Err)
				}
				continue
			}
			t := res.Telemetry
			voltage.observe(t.Voltage)
			current.observe(t.Current)
			speed.observe(t.Speed)
			temperature.observe(t.Temperature)
			battery.observe(t.BatteryPercent)
			if t.Model != "" {
				model = t.Model
			}
			if t.FirmwareVersion != "" {
				firmware = t.FirmwareVersion
			}
			if t.Charging {
				charging = true
			}
			if analyzeVerbose {
				fmt.Println(eucproto.FormatTelemetry(t))
			}
		}
	}

	if analyzeVerbose {
		fmt.Println()
	}

	fmt.Printf("Chunks:      %d (%d bytes)\n", chunks, bytes)
	if fam := session.Family(); fam != eucproto.FamilyUnknown {
		fmt.Printf("Family:      %s (%s)\n", fam, fam.Manufacturer())
	} else {
		fmt.Printf("Family:      not detected\n")
	}
	if model != "" {
		fmt.Printf("Model:       %s\n", model)
	}
	if firmware != "" {
		fmt.Printf("Firmware:    %s\n", firmware)
	}
	if charging {
		fmt.Printf("Charging:    observed\n")
	}
	fmt.Println()

	fmt.Printf("Voltage:     %s V\n", voltage.String())
	fmt.Printf("Current:     %s A\n", current.String())
	fmt.Printf("Speed:       %s km/h\n", speed.String())
	fmt.Printf("Temperature: %s °C\n", temperature.String())
	fmt.Printf("Battery:     %s %%\n", battery.String())
	fmt.Println()

	fmt.Println("Chunk lengths (top 5):")
	for _, k := range chunkLengths.top(5) {
		fmt.Printf("  %4s bytes: %d\n", k, chunkLengths[k])
	}
	fmt.Println("Chunk prefixes (top 5):")
	for _, k := range prefixes2.top(5) {
		fmt.Printf("  %-12s %d\n", k, prefixes2[k])
	}
	for _, k := range prefixes3.top(5) {
		fmt.Printf("  %-12s %d\n", k, prefixes3[k])
	}
	for _, k := range prefixes4.top(5) {
		fmt.Printf("  %-12s %d\n", k, prefixes4[k])
	}
	fmt.Println()

	fmt.Print(stats.String())
	return nil
}
