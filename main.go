// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors
//
// Euclog - EUC Telemetry Decoder
//
// A CLI tool for decoding, logging and analyzing the wireless telemetry
// streams of electric unicycles in human-readable format.

package main

import (
	"fmt"
	"os"

	"github.com/githuba42r/euc-charging/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
