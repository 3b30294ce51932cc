// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "testing"

// ============================================================
// Checksum Tests
// ============================================================

func TestSum16_Empty(t *testing.T) {
	if sum := Sum16([]byte{}); sum != 0 {
		t.Errorf("Sum16 of empty data should be 0, got 0x%04X", sum)
	}
}

func TestSum16_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "single byte",
			data:     []byte{0x42},
			expected: 0x0042,
		},
		{
			name:     "ASCII '123456789'",
			data:     []byte("123456789"),
			expected: 0x01DD,
		},
		{
			name:     "wraps modulo 65536",
			data:     []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			expected: 0x07F8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sum := Sum16(tt.data); sum != tt.expected {
				t.Errorf("Sum16 mismatch: expected 0x%04X, got 0x%04X", tt.expected, sum)
			}
		})
	}
}

func TestXorFold_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"empty", []byte{}, 0x00},
		{"single byte", []byte{0x5A}, 0x5A},
		{"self-cancelling pair", []byte{0x77, 0x77}, 0x00},
		{"mixed", []byte{0x01, 0x02, 0x04, 0x08}, 0x0F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if x := XorFold(tt.data); x != tt.expected {
				t.Errorf("XorFold mismatch: expected 0x%02X, got 0x%02X", tt.expected, x)
			}
		})
	}
}

func TestXorFoldInverted(t *testing.T) {
	data := []byte{0x22, 0x01, 0x10, 0x20}
	want := uint16(XorFold(data)) ^ 0xFFFF
	if got := XorFoldInverted(data); got != want {
		t.Errorf("XorFoldInverted mismatch: expected 0x%04X, got 0x%04X", want, got)
	}
	if XorFoldInverted([]byte{}) != 0xFFFF {
		t.Error("XorFoldInverted of empty data should be 0xFFFF")
	}
}

func TestChecksums_Deterministic(t *testing.T) {
	data := []byte{0xAA, 0x55, 0x14, 0xA9, 0x14, 0xA0}
	if Sum16(data) != Sum16(data) {
		t.Error("Sum16 should be deterministic")
	}
	if XorFold(data) != XorFold(data) {
		t.Error("XorFold should be deterministic")
	}
}
