// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "encoding/binary"

// Field readers. Every family uses fixed-offset, fixed-width integers;
// only the endianness and scale factors differ.

func beU16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

func beS16(b []byte, off int) int16 {
	return int16(binary.BigEndian.Uint16(b[off : off+2]))
}

func beU32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

func leU16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func leS16(b []byte, off int) int16 {
	return int16(binary.LittleEndian.Uint16(b[off : off+2]))
}

func leU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// revBeU32 reads the Veteran 32-bit layout: two big-endian 16-bit words
// with the low word transmitted first.
func revBeU32(b []byte, off int) uint32 {
	low := uint32(beU16(b, off))
	high := uint32(beU16(b, off+2))
	return high<<16 | low
}

// asciiField extracts a NUL-padded ASCII string, dropping anything
// non-printable. Returns "" when nothing printable remains.
func asciiField(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 0x20 && c < 0x7F {
			out = append(out, c)
		} else if c == 0 {
			break
		}
	}
	return string(out)
}
