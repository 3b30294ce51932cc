// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Protocol flags
	familyName string
)

var rootCmd = &cobra.Command{
	Use:   "euclog",
	Short: "EUC telemetry decoder and logger",
	Long: `Euclog - A CLI tool for decoding, logging and analyzing the wireless
telemetry of electric unicycles.

Seven protocol families are supported (KingSong, Gotway/Begode,
Veteran/Leaperkim, InMotion V1/V2, Ninebot and Ninebot Z) with automatic
detection from the first bytes of the stream.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]  (BLE-to-UART bridge)
  WebSocket: --url ws://host/path [--username user]  (BLE-to-WS bridge)

For WebSocket authentication, the password is read from the EUCLOG_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Protocol flags
	rootCmd.PersistentFlags().StringVarP(&familyName, "family", "f", "", "Protocol family (skip auto-detection)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
