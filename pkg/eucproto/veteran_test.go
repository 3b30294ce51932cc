// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"errors"
	"testing"
)

// ============================================================
// Veteran Decoder Tests
// ============================================================

func TestVeteran_LiveFields(t *testing.T) {
	v := liveValues{voltage: 100.8, current: 4.2, speed: 30.0, trip: 15.5, total: 7890.123, temp: 38.5}
	s := NewFamilySession(FamilyVeteran)
	readings := telemetryOf(s.Feed(buildVeteranLive(v, 1234, 0)))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}

	r := readings[0]
	if r.Family != FamilyVeteran {
		t.Errorf("family: %s", r.Family)
	}
	if !almostEqual(r.Voltage, v.voltage, 0.01) {
		t.Errorf("voltage: expected %.2f, got %.2f", v.voltage, r.Voltage)
	}
	if !almostEqual(r.Current, v.current, 0.01) {
		t.Errorf("current: expected %.2f, got %.2f", v.current, r.Current)
	}
	if !almostEqual(r.Speed, v.speed, 0.01) {
		t.Errorf("speed: expected %.1f, got %.1f", v.speed, r.Speed)
	}
	if !almostEqual(r.TripDistance, v.trip, 0.001) {
		t.Errorf("trip: expected %.3f, got %.3f", v.trip, r.TripDistance)
	}
	if !almostEqual(r.TotalDistance, v.total, 0.001) {
		t.Errorf("total: expected %.3f, got %.3f", v.total, r.TotalDistance)
	}
	if !almostEqual(r.Temperature, v.temp, 0.01) {
		t.Errorf("temperature: expected %.1f, got %.1f", v.temp, r.Temperature)
	}
	if r.Charging {
		t.Error("charge mode 0 should not report charging")
	}
}

// The 32-bit distance fields arrive as two big-endian words with the
// low word first.
func TestVeteran_WordSwappedDistances(t *testing.T) {
	// 70000 m = 0x00011170: low word 0x1170 first, then high word 0x0001.
	b := buildVeteranLive(liveValues{voltage: 100.8, trip: 70.0}, 1234, 0)
	if beU16(b, 8) != 0x1170 || beU16(b, 10) != 0x0001 {
		t.Fatalf("builder word order wrong: %04X %04X", beU16(b, 8), beU16(b, 10))
	}

	s := NewFamilySession(FamilyVeteran)
	readings := telemetryOf(s.Feed(b))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if !almostEqual(readings[0].TripDistance, 70.0, 0.001) {
		t.Errorf("expected 70.000 km, got %.3f", readings[0].TripDistance)
	}
}

func TestVeteran_ModelFromFirmwareVersion(t *testing.T) {
	tests := []struct {
		name       string
		fwVersion  uint16
		model      string
		packV      float64
	}{
		{"sherman", 1234, "Sherman", 100.8},
		{"abrams", 2050, "Abrams", 100.8},
		{"patton", 4001, "Patton", 126.0},
		{"lynx", 5123, "Lynx", 151.2},
		{"sherman l", 6012, "Sherman L", 151.2},
		{"nosfet apex", 42007, "Nosfet Apex", 151.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFamilySession(FamilyVeteran)
			readings := telemetryOf(s.Feed(buildVeteranLive(liveValues{voltage: tt.packV - 10}, tt.fwVersion, 0)))
			if len(readings) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(readings))
			}
			if readings[0].Model != tt.model {
				t.Errorf("expected model %s, got %q", tt.model, readings[0].Model)
			}
			if readings[0].SystemVoltage != tt.packV {
				t.Errorf("expected pack voltage %.1f, got %.1f", tt.packV, readings[0].SystemVoltage)
			}
		})
	}
}

func TestVeteran_ChargeMode(t *testing.T) {
	s := NewFamilySession(FamilyVeteran)
	readings := telemetryOf(s.Feed(buildVeteranLive(liveValues{voltage: 100.8}, 1234, 1)))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if !readings[0].Charging {
		t.Error("charge mode 1 should report charging")
	}
	if readings[0].ChargeMode != 1 {
		t.Errorf("expected charge mode 1, got %d", readings[0].ChargeMode)
	}
}

func TestVeteran_FirmwareVersionString(t *testing.T) {
	s := NewFamilySession(FamilyVeteran)
	readings := telemetryOf(s.Feed(buildVeteranLive(liveValues{voltage: 100.8}, 5123, 0)))
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if readings[0].FirmwareVersion != "5.123" {
		t.Errorf("expected 5.123, got %q", readings[0].FirmwareVersion)
	}
}

func TestVeteran_CorruptionFailsChecksum(t *testing.T) {
	frame := buildVeteranLive(liveValues{voltage: 100.8, speed: 20.0}, 1234, 0)
	corrupted := append([]byte(nil), frame...)
	corrupted[5] ^= 0xFF

	s := NewFamilySession(FamilyVeteran)
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

func TestVeteran_GuardByteForcesResync(t *testing.T) {
	frame := buildVeteranLive(liveValues{voltage: 100.8}, 1234, 0)
	// A nonzero reserved byte at offset 22 marks the collection as
	// garbage before the frame even completes.
	frame[22] = 0x99

	s := NewFamilySession(FamilyVeteran)
	results := s.Feed(frame)
	if len(telemetryOf(results)) != 0 {
		t.Fatal("frame with a bad guard byte must not decode")
	}
	var rs *ResyncError
	found := false
	for _, r := range results {
		if errors.As(r.Err, &rs) {
			found = true
		}
	}
	if !found {
		t.Error("expected a ResyncError")
	}
}

func TestVeteran_SplitAtEveryBoundary(t *testing.T) {
	frame := buildVeteranLive(liveValues{voltage: 151.2, speed: 12.0, trip: 3.2}, 5123, 0)

	for cut := 1; cut < len(frame); cut++ {
		s := NewFamilySession(FamilyVeteran)
		var results []Result
		results = append(results, s.Feed(frame[:cut])...)
		results = append(results, s.Feed(frame[cut:])...)
		readings := telemetryOf(results)
		if len(readings) != 1 {
			t.Fatalf("cut at %d: expected 1 reading, got %d", cut, len(readings))
		}
	}
}
