// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"errors"
	"testing"
)

// ============================================================
// InMotion V2 Decoder Tests
// ============================================================

func TestInMotion2_LiveFields(t *testing.T) {
	v := liveValues{voltage: 126.0, current: 1.2, speed: 40.0, trip: 22.0, total: 5000.5, temp: 45.0}
	s := NewFamilySession(FamilyInMotionV2)
	readings := telemetryOf(s.Feed(buildInMotion2Live(v, "V11")))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	r := readings[0]
	if r.Family != FamilyInMotionV2 {
		t.Errorf("family: %s", r.Family)
	}
	if !almostEqual(r.Voltage, v.voltage, 0.01) {
		t.Errorf("voltage: expected %.2f, got %.2f", v.voltage, r.Voltage)
	}
	if !almostEqual(r.Speed, v.speed, 0.05) {
		t.Errorf("speed: expected %.1f, got %.1f", v.speed, r.Speed)
	}
	if !almostEqual(r.TotalDistance, v.total, 0.001) {
		t.Errorf("total: expected %.3f, got %.3f", v.total, r.TotalDistance)
	}
	if r.Model != "V11" {
		t.Errorf("expected model V11, got %q", r.Model)
	}
	if s.NextKeepalive() != nil {
		t.Error("this generation pushes telemetry and needs no keepalive")
	}
}

func TestInMotion2_XorFoldChecksum(t *testing.T) {
	frame := buildInMotion2Live(liveValues{voltage: 126.0}, "V12")
	corrupted := append([]byte(nil), frame...)
	corrupted[10] ^= 0x40

	s := NewFamilySession(FamilyInMotionV2)
	results := s.Feed(corrupted)
	if len(telemetryOf(results)) != 0 {
		t.Fatal("corrupted frame must not decode")
	}
	var cs *ChecksumError
	found := false
	for _, r := range results {
		if errors.As(r.Err, &cs) {
			found = true
		}
	}
	if !found {
		t.Error("expected a ChecksumError")
	}
}

func TestInMotion2_ModelHintPersists(t *testing.T) {
	s := NewFamilySession(FamilyInMotionV2)
	telemetryOf(s.Feed(buildInMotion2Live(liveValues{voltage: 126.0}, "V13")))

	// A later frame without a hint keeps the remembered model.
	readings := telemetryOf(s.Feed(buildInMotion2Live(liveValues{voltage: 125.0}, "")))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if readings[0].Model != "V13" {
		t.Errorf("expected model V13, got %q", readings[0].Model)
	}
}

func TestInMotion2_SplitAtEveryBoundary(t *testing.T) {
	frame := buildInMotion2Live(liveValues{voltage: 126.0, speed: 12.0}, "V11")

	for cut := 1; cut < len(frame); cut++ {
		s := NewFamilySession(FamilyInMotionV2)
		var results []Result
		results = append(results, s.Feed(frame[:cut])...)
		results = append(results, s.Feed(frame[cut:])...)
		readings := telemetryOf(results)
		if len(readings) != 1 {
			t.Fatalf("cut at %d: expected 1 reading, got %d", cut, len(readings))
		}
	}
}
