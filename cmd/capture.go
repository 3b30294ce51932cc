// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/githuba42r/euc-charging/pkg/capture"
	"github.com/githuba42r/euc-charging/pkg/eucproto"
	"github.com/spf13/cobra"
)

var (
	captureOutput string
	captureDevice string
	captureModel  string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the raw notification stream to a capture file",
	Long: `Records every transport chunk to a capture file for later replay
with the analyze command. Chunk boundaries and arrival times are
preserved, so a replay exercises the decoder exactly like the live
connection did.

The stream is decoded in parallel to report the detected protocol
family and model while recording. Press Ctrl+C to stop recording.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Capture file to write (required)")
	captureCmd.Flags().StringVar(&captureDevice, "device", "", "Device label for the capture metadata")
	captureCmd.Flags().StringVar(&captureModel, "model", "", "Wheel model for the capture metadata")
	captureCmd.MarkFlagRequired("output")
}

func runCapture(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	out, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("failed to create capture file: %v", err)
	}
	defer out.Close()

	device := captureDevice
	if device == "" {
		device = connInfo
	}
	writer, err := capture.NewWriter(out, capture.Metadata{
		Tool:   "euclog " + rootCmd.Version,
		Device: device,
		Family: session.Family().String(),
		Model:  captureModel,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Connected: %s\n", connInfo)
	fmt.Printf("Recording to %s, press Ctrl+C to stop\n\n", captureOutput)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keepalivesStarted := false
	if session.Family() != eucproto.FamilyUnknown {
		go runKeepalives(ctx, conn, session)
		keepalivesStarted = true
	}

	// Stop on Ctrl+C by closing the connection, which unblocks the read
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nStopping capture...")
		conn.Close()
	}()
	defer signal.Stop(sigCh)

	var chunks, readings int
	buf := make([]byte, 128)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			// Closing the connection ends the recording normally
			fmt.Printf("Capture complete: %d chunks, %d readings decoded\n", chunks, readings)
			return nil
		}
		if n == 0 {
			continue
		}

		if err := writer.Append(buf[:n]); err != nil {
			return err
		}
		chunks++

		results := session.Feed(buf[:n])

		if !keepalivesStarted && session.Family() != eucproto.FamilyUnknown {
			go runKeepalives(ctx, conn, session)
			keepalivesStarted = true
		}

		for _, res := range results {
			if res.Err == nil && res.Telemetry != nil {
				readings++
				if readings == 1 {
					fmt.Printf("Detected %s", session.Family())
					if res.Telemetry.Model != "" {
						fmt.Printf(" (%s)", res.Telemetry.Model)
					}
					fmt.Println()
				}
			}
		}
	}
}
