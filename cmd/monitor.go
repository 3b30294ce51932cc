// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/githuba42r/euc-charging/pkg/eucproto"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive monitor with decode statistics and error tracking",
	Long: `Track decoded readings, checksum failures and stream resyncs with
live statistics.

This command classifies every decode result:
  - Valid telemetry frames (voltage, current, speed, battery)
  - Checksum errors and decrypt desyncs
  - Resync events and bytes dropped while hunting for frame headers

By default, only errors are logged. Use --show-all to log valid readings too.

Results are classified in real-time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all readings (not just errors)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
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

	if useTUI {
		return runTUIMode(conn, connInfo, session)
	}
	return runTextMode(conn, connInfo, session)
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mDECODE ERROR:\033[0m %v\n\n", timestamp, err)
}

// runTUIMode runs the monitor in TUI mode
func runTUIMode(conn Connection, connInfo string, session *eucproto.Session) error {
	synchronized := false

	// Create TUI program
	m := initialModel(connInfo, statsInterval, showAll)
	p := tea.NewProgram(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keepalivesStarted := false
	if session.Family() != eucproto.FamilyUnknown {
		go runKeepalives(ctx, conn, session)
		keepalivesStarted = true
	}

	// Connection reader goroutine
	go func() {
		buf := make([]byte, 128)
		invalidBytesBeforeSync := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				p.Send(tea.Quit())
				return
			}

			results := session.Feed(buf[:n])

			if !keepalivesStarted && session.Family() != eucproto.FamilyUnknown {
				go runKeepalives(ctx, conn, session)
				keepalivesStarted = true
			}

			for _, res := range results {
				if res.Err != nil {
					if synchronized {
						p.Send(resultMsg{result: res})
					} else {
						// Not synced yet, just count dropped bytes
						var rs *eucproto.ResyncError
						if errors.As(res.Err, &rs) {
							invalidBytesBeforeSync += rs.Dropped
						}
					}
				} else if res.Telemetry != nil {
					if !synchronized {
						// First reading, the stream is now understood
						synchronized = true
						p.Send(syncMsg{family: session.Family(), invalidBytes: invalidBytesBeforeSync})
					}
					p.Send(resultMsg{result: res})
				}
			}
		}
	}()

	// Run TUI
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}

// runTextMode runs the monitor in text mode
func runTextMode(conn Connection, connInfo string, session *eucproto.Session) error {
	fmt.Printf("euclog - Monitor Mode\n")
	fmt.Printf("%s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All readings\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := eucproto.NewStatistics()

	// Sync tracking, decode errors before the first reading are expected
	synchronized := false
	invalidBytesBeforeSync := 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keepalivesStarted := false
	if session.Family() != eucproto.FamilyUnknown {
		go runKeepalives(ctx, conn, session)
		keepalivesStarted = true
	}

	// Statistics ticker
	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for non-blocking connection reads
	readBuf := make(chan []byte, 10)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				readErr <- err
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			readBuf <- data
		}
	}()

	for {
		select {
		case data := <-readBuf:
			results := session.Feed(data)

			if !keepalivesStarted && session.Family() != eucproto.FamilyUnknown {
				go runKeepalives(ctx, conn, session)
				keepalivesStarted = true
			}

			for _, res := range results {
				if res.Err != nil {
					if errors.Is(res.Err, eucproto.ErrUnknownProtocol) {
						return fmt.Errorf("could not detect protocol family, try --family")
					}
					if synchronized {
						stats.Update(res)
						printDecodeError(res.Err)
					} else {
						var rs *eucproto.ResyncError
						if errors.As(res.Err, &rs) {
							invalidBytesBeforeSync += rs.Dropped
						}
					}
				} else if res.Telemetry != nil {
					if !synchronized {
						synchronized = true
						if invalidBytesBeforeSync > 0 {
							fmt.Printf("[SYNC] Detected %s after skipping %d invalid bytes\n\n",
								session.Family(), invalidBytesBeforeSync)
						} else {
							fmt.Printf("[SYNC] Detected %s\n\n", session.Family())
						}
					}
					stats.Update(res)

					if showAll {
						fmt.Println(eucproto.FormatTelemetry(res.Telemetry))
					}
				}
			}

		case err := <-readErr:
			if err == ErrConnectionClosed {
				fmt.Println("\nConnection closed")
				fmt.Println()
				fmt.Print(stats.String())
				return nil
			}
			return fmt.Errorf("read error: %v", err)

		case <-statsTicker.C:
			// Print statistics
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
