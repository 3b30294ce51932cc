// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

// The families use three checksum variants: a 16-bit byte sum (compared
// big- or little-endian as the family dictates), an 8-bit XOR fold, and
// an XOR fold inverted against 0xFFFF (Ninebot).

// Sum16 returns the 16-bit sum of all bytes, modulo 65536.
func Sum16(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

// XorFold returns the XOR of all bytes.
func XorFold(data []byte) byte {
	var x byte
	for _, b := range data {
		x ^= b
	}
	return x
}

// XorFoldInverted returns the XOR fold widened to 16 bits and inverted
// against 0xFFFF, the Ninebot checksum.
func XorFoldInverted(data []byte) uint16 {
	return uint16(XorFold(data)) ^ 0xFFFF
}
