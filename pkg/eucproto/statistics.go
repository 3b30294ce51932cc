// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks decode outcomes and error rates for one session
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalResults   uint64
	ValidFrames    uint64
	ChecksumErrors uint64
	ResyncEvents   uint64
	BytesDropped   uint64
	DecryptDesyncs uint64
	UnknownStreams uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decode result
func (s *Statistics) Update(res Result) {
	s.TotalResults++

	if res.Err != nil {
		var cs *ChecksumError
		var rs *ResyncError
		var dd *DecryptDesyncError
		switch {
		case errors.As(res.Err, &cs):
			s.ChecksumErrors++
		case errors.As(res.Err, &rs):
			s.ResyncEvents++
			s.BytesDropped += uint64(rs.Dropped)
		case errors.As(res.Err, &dd):
			s.DecryptDesyncs++
		case errors.Is(res.Err, ErrUnknownProtocol):
			s.UnknownStreams++
		}
	} else if res.Telemetry != nil {
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.ValidFrames) / elapsed
		errorCount := s.ChecksumErrors + s.ResyncEvents + s.DecryptDesyncs + s.UnknownStreams
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, checksumPercent, resyncPercent float64
	if s.TotalResults > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalResults)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TotalResults)
		resyncPercent = float64(s.ResyncEvents) * 100.0 / float64(s.TotalResults)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Results:   %8d\n", s.TotalResults)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
	}
	if s.ResyncEvents > 0 {
		result += fmt.Sprintf("Resync Events:   %8d (%.1f%%)\n", s.ResyncEvents, resyncPercent)
		result += fmt.Sprintf("  Bytes Dropped:    %5d\n", s.BytesDropped)
	}
	if s.DecryptDesyncs > 0 {
		result += fmt.Sprintf("Decrypt Desyncs: %8d\n", s.DecryptDesyncs)
	}
	if s.UnknownStreams > 0 {
		result += fmt.Sprintf("Unknown Stream:  %8d\n", s.UnknownStreams)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalResults = 0
	s.ValidFrames = 0
	s.ChecksumErrors = 0
	s.ResyncEvents = 0
	s.BytesDropped = 0
	s.DecryptDesyncs = 0
	s.UnknownStreams = 0
	s.FrameRate = 0
	s.ErrorRate = 0
}
