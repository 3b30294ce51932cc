// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/githuba42r/euc-charging/pkg/eucproto"
	"github.com/spf13/cobra"
)

var liveShowErrors bool

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Decode and print telemetry readings as they arrive",
	Long: `Reads the notification byte stream from the connected wheel, decodes
it frame by frame and prints one line per telemetry reading.

The protocol family is auto-detected from the first frame headers unless
--family is given. Families that require keepalives (InMotion V1,
Ninebot Z) are serviced automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fmt.Printf("Connected: %s\n", connInfo)
		if f := session.Family(); f != eucproto.FamilyUnknown {
			fmt.Printf("Protocol family: %s (%s)\n", f, f.Manufacturer())
		} else {
			fmt.Println("Auto-detecting protocol family...")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		keepalivesStarted := false
		if session.Family() != eucproto.FamilyUnknown {
			go runKeepalives(ctx, conn, session)
			keepalivesStarted = true
		}

		announced := session.Family() != eucproto.FamilyUnknown

		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					fmt.Println("\nConnection closed")
					return nil
				}
				return fmt.Errorf("read error: %v", err)
			}
			if n == 0 {
				continue
			}

			results := session.Feed(buf[:n])

			// Keepalives can only start once auto-detection has settled
			if !keepalivesStarted && session.Family() != eucproto.FamilyUnknown {
				go runKeepalives(ctx, conn, session)
				keepalivesStarted = true
			}
			if !announced && session.Family() != eucproto.FamilyUnknown {
				f := session.Family()
				fmt.Printf("Detected protocol family: %s (%s)\n", f, f.Manufacturer())
				announced = true
			}

			for _, res := range results {
				if res.Err != nil {
					if res.Err == eucproto.ErrUnknownProtocol {
						return fmt.Errorf("could not detect protocol family, try --family")
					}
					if liveShowErrors {
						fmt.Fprintf(os.Stderr, "decode error: %v\n", res.Err)
					}
					continue
				}
				fmt.Println(eucproto.FormatTelemetry(res.Telemetry))
			}
		}
	},
}

func init() {
	liveCmd.Flags().BoolVar(&liveShowErrors, "show-errors", false, "Print decode errors to stderr")
	rootCmd.AddCommand(liveCmd)
}
