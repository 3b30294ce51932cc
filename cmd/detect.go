// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/githuba42r/euc-charging/pkg/capture"
	"github.com/githuba42r/euc-charging/pkg/eucproto"
	"github.com/spf13/cobra"
)

var (
	detectTimeout int
)

var detectCmd = &cobra.Command{
	Use:   "detect [capture-file]",
	Short: "Test connection by waiting for a valid telemetry frame",
	Long: `Wait for a valid telemetry frame on the connection until timeout.

This command connects to a serial port or WebSocket bridge and waits
for the first frame that passes checksum validation, reporting the
detected protocol family and model. With a capture file argument, it
detects the family from the recorded stream instead of connecting.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for testing connectivity and identifying an unknown wheel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().IntVar(&detectTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runDetect(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return runDetectFile(args[0])
	}

	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Printf("euclog - Protocol Detection\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", detectTimeout)
	fmt.Printf("Waiting for valid telemetry frame...\n\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keepalivesStarted := false
	if session.Family() != eucproto.FamilyUnknown {
		go runKeepalives(ctx, conn, session)
		keepalivesStarted = true
	}

	// Channels for frame reception
	frameChan := make(chan *eucproto.Telemetry, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			results := session.Feed(buf[:n])

			if !keepalivesStarted && session.Family() != eucproto.FamilyUnknown {
				go runKeepalives(ctx, conn, session)
				keepalivesStarted = true
			}

			for _, res := range results {
				// Ignore decode errors, garbage before sync is expected
				if res.Err == nil && res.Telemetry != nil {
					frameChan <- res.Telemetry
					return
				}
			}
		}
	}()

	// Wait for frame or timeout
	select {
	case t := <-frameChan:
		fmt.Printf("SUCCESS: Received valid telemetry frame\n")
		fmt.Printf("  Family:       %s\n", t.Family)
		fmt.Printf("  Manufacturer: %s\n", t.Family.Manufacturer())
		if t.Model != "" {
			fmt.Printf("  Model:        %s\n", t.Model)
		}
		if t.FirmwareVersion != "" {
			fmt.Printf("  Firmware:     %s\n", t.FirmwareVersion)
		}
		fmt.Printf("  Voltage:      %.2f V\n", t.Voltage)
		if t.SystemVoltage > 0 {
			fmt.Printf("  Pack:         %.1f V\n", t.SystemVoltage)
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(detectTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", detectTimeout)
		os.Exit(1)
	}

	return nil
}

// runDetectFile detects the protocol family from a recorded capture
func runDetectFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open capture file: %v\n", err)
		os.Exit(2)
	}
	defer f.Close()

	reader, err := capture.NewReader(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}

		for _, res := range session.Feed(rec.Data) {
			if res.Err == nil && res.Telemetry != nil {
				t := res.Telemetry
				fmt.Printf("SUCCESS: Received valid telemetry frame\n")
				fmt.Printf("  Family:       %s\n", t.Family)
				fmt.Printf("  Manufacturer: %s\n", t.Family.Manufacturer())
				if t.Model != "" {
					fmt.Printf("  Model:        %s\n", t.Model)
				}
				if t.FirmwareVersion != "" {
					fmt.Printf("  Firmware:     %s\n", t.FirmwareVersion)
				}
				fmt.Printf("  Voltage:      %.2f V\n", t.Voltage)
				if t.SystemVoltage > 0 {
					fmt.Printf("  Pack:         %.1f V\n", t.SystemVoltage)
				}
				os.Exit(0)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "No valid frame found in capture\n")
	os.Exit(1)
	return nil
}
