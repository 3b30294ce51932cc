// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"errors"
	"testing"
)

// ============================================================
// Session Tests
// ============================================================

func TestSession_AutoDetectsEachFamily(t *testing.T) {
	zKey := DeriveGammaKey(nil)
	tests := []struct {
		name   string
		stream []byte
		want   Family
	}{
		{"kingsong", buildKingSongLive(liveValues{voltage: 67.2}), FamilyKingSong},
		{"gotway", buildGotwayLive(liveValues{voltage: 84.0}, 0), FamilyGotway},
		{"veteran", buildVeteranLive(liveValues{voltage: 100.8}, 1234, 0), FamilyVeteran},
		{"inmotion v1", buildInMotionLive(liveValues{voltage: 84.0}), FamilyInMotionV1},
		{"inmotion v2", buildInMotion2Live(liveValues{voltage: 126.0}, "V11"), FamilyInMotionV2},
		{"ninebot", buildNinebotLive(0x55, 0xAA, liveValues{voltage: 59.8}), FamilyNinebot},
		{"ninebot z", buildNinebotZLive(liveValues{voltage: 59.5}, zKey, 0), FamilyNinebotZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			if s.Family() != FamilyUnknown {
				t.Fatal("family should be unknown before any bytes")
			}
			readings := telemetryOf(s.Feed(tt.stream))
			if s.Family() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, s.Family())
			}
			if len(readings) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(readings))
			}
			if readings[0].Family != tt.want {
				t.Errorf("reading tagged %s", readings[0].Family)
			}
		})
	}
}

func TestSession_DetectionAcrossTinyChunks(t *testing.T) {
	frame := buildGotwayLive(liveValues{voltage: 84.0, speed: 20.0}, 10.0)

	s := NewSession()
	readings := telemetryOf(feedSplit(s, frame, 1))
	if s.Family() != FamilyGotway {
		t.Fatalf("expected gotway, got %s", s.Family())
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
}

func TestSession_ChunkingInvariance(t *testing.T) {
	// The same stream must decode identically no matter how the
	// transport splits it.
	var stream []byte
	for i := 0; i < 5; i++ {
		stream = append(stream, buildKingSongLive(liveValues{voltage: 67.2, speed: float64(i * 5), temp: 25.0})...)
	}

	whole := NewSession()
	want := telemetryOf(whole.Feed(stream))

	for chunk := 1; chunk <= len(stream); chunk++ {
		s := NewSession()
		got := telemetryOf(feedSplit(s, stream, chunk))
		if len(got) != len(want) {
			t.Fatalf("chunk size %d: expected %d readings, got %d", chunk, len(want), len(got))
		}
		for i := range got {
			if got[i].Speed != want[i].Speed || got[i].Voltage != want[i].Voltage {
				t.Fatalf("chunk size %d: reading %d differs", chunk, i)
			}
		}
	}
}

func TestSession_DetectionCeiling(t *testing.T) {
	s := NewSession()

	garbage := make([]byte, 64)
	for i := range garbage {
		garbage[i] = 0x01
	}
	fedPastCeiling := false
	for fed := 0; fed <= DetectionCeiling+64; fed += len(garbage) {
		results := s.Feed(garbage)
		if fed+len(garbage) > DetectionCeiling {
			fedPastCeiling = true
			if len(results) != 1 || !errors.Is(results[0].Err, ErrUnknownProtocol) {
				t.Fatalf("past the ceiling: expected ErrUnknownProtocol, got %v", results)
			}
		} else if len(results) != 0 {
			t.Fatalf("below the ceiling: expected silence, got %v", results)
		}
	}
	if !fedPastCeiling {
		t.Fatal("test never crossed the ceiling")
	}

	// Permanent: even a valid frame no longer recovers the session.
	results := s.Feed(buildKingSongLive(liveValues{voltage: 67.2}))
	if len(results) != 1 || !errors.Is(results[0].Err, ErrUnknownProtocol) {
		t.Error("a failed session must stay failed")
	}
}

// Connecting while a frame is in flight delivers that frame's tail
// first. Detection must skip the preamble and lock onto the next
// header instead of freezing on the garbage prefix.
func TestSession_DetectsAfterMidFrameConnect(t *testing.T) {
	frame := buildKingSongLive(liveValues{voltage: 52.8, speed: 10.0})
	preamble := []byte{0x00, 0x64, 0x00, 0x00, 0x1D} // tail of a frame in flight

	s := NewSession()
	if results := s.Feed(preamble); len(results) != 0 {
		t.Fatalf("preamble alone produced %v", results)
	}
	if s.Family() != FamilyUnknown {
		t.Fatal("family should still be unknown after the preamble")
	}

	var results []Result
	for i := 0; i < 30; i++ {
		results = append(results, s.Feed(frame)...)
	}
	if s.Family() != FamilyKingSong {
		t.Fatalf("expected KingSong after clean frames, got %s", s.Family())
	}
	if readings := telemetryOf(results); len(readings) != 30 {
		t.Fatalf("expected 30 readings, got %d", len(readings))
	}

	var rs *ResyncError
	found := false
	for _, r := range results {
		if errors.As(r.Err, &rs) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a ResyncError for the skipped preamble")
	}
	if rs.Dropped != len(preamble) {
		t.Errorf("expected %d dropped bytes, got %d", len(preamble), rs.Dropped)
	}
}

func TestSession_PassiveFamiliesHaveNoKeepalive(t *testing.T) {
	for _, f := range []Family{FamilyKingSong, FamilyGotway, FamilyVeteran, FamilyInMotionV2, FamilyNinebot} {
		s := NewFamilySession(f)
		if ka := s.NextKeepalive(); ka != nil {
			t.Errorf("%s: unexpected keepalive %X", f, ka)
		}
		if iv := s.KeepaliveInterval(); iv != 0 {
			t.Errorf("%s: unexpected interval %v", f, iv)
		}
	}
}

func TestSession_UndetectedHasNoKeepalive(t *testing.T) {
	s := NewSession()
	if s.NextKeepalive() != nil {
		t.Error("undetected session should not produce keepalives")
	}
	if s.KeepaliveInterval() != 0 {
		t.Error("undetected session should report no interval")
	}
	if s.HandshakeRequest() != nil {
		t.Error("undetected session should not produce a handshake")
	}
}

func TestSession_Close(t *testing.T) {
	s := NewSession()
	s.Feed(buildKingSongLive(liveValues{voltage: 67.2}))
	s.Close()

	if got := s.Feed(buildKingSongLive(liveValues{voltage: 67.2})); got != nil {
		t.Error("a closed session must not decode")
	}
	if s.NextKeepalive() != nil {
		t.Error("a closed session must not produce keepalives")
	}
	s.Close() // idempotent
}

func TestNewFamilySession_Unknown(t *testing.T) {
	if NewFamilySession(FamilyUnknown) != nil {
		t.Error("FamilyUnknown has no decoder")
	}
	if NewFamilySession(Family(99)) != nil {
		t.Error("out-of-range family has no decoder")
	}
}

func TestSession_InterleavedGarbageBetweenFrames(t *testing.T) {
	frame := buildGotwayLive(liveValues{voltage: 84.0, speed: 20.0}, 0)
	stream := append([]byte(nil), frame...)
	stream = append(stream, 0xDE, 0xAD, 0xBE, 0xEF)
	stream = append(stream, frame...)

	s := NewSession()
	results := s.Feed(stream)
	if got := telemetryOf(results); len(got) != 2 {
		t.Fatalf("expected 2 readings around the garbage, got %d", len(got))
	}
	var rs *ResyncError
	found := false
	for _, r := range results {
		if errors.As(r.Err, &rs) {
			found = true
		}
	}
	if !found {
		t.Error("expected a ResyncError for the interleaved garbage")
	}
}
