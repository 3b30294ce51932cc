// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

// Protocol detection. The header alphabets of the supported families
// overlap: 55 AA opens both Gotway and Ninebot traffic, DC 5A opens
// both Veteran and InMotion V2. Matchers therefore run in a fixed
// priority order, longest and most specific signature first, so that
// the same input always yields the same answer.

type matcher struct {
	family Family
	match  func(b []byte) bool
}

// detectors is ordered. Four-byte signatures outrank three-byte ones,
// which outrank disambiguated two-byte ones. Do not reorder.
var detectors = []matcher{
	{FamilyGotway, func(b []byte) bool {
		return b[0] == 0x55 && b[1] == 0xAA && b[2] == 0xDC && b[3] == 0x5A
	}},
	{FamilyVeteran, func(b []byte) bool {
		return b[0] == 0xDC && b[1] == 0x5A && b[2] == 0x5C
	}},
	{FamilyNinebotZ, func(b []byte) bool {
		return b[0] == 0x5A && b[1] == 0xA5
	}},
	{FamilyKingSong, func(b []byte) bool {
		return b[0] == 0xAA && b[1] == 0x55 && b[2] >= 0x14 && b[2] <= 0x30
	}},
	{FamilyInMotionV1, func(b []byte) bool {
		return b[0] == 0xAA && b[1] == 0xAA && b[2] >= 0x09 && b[2] <= 0x20
	}},
	{FamilyInMotionV2, func(b []byte) bool {
		return b[0] == 0xDC && b[1] == 0x5A && b[2] != 0x5C && b[3] <= inmotion2MaxFlags
	}},
	{FamilyNinebot, func(b []byte) bool {
		return b[0] == 0x55 && b[1] == 0xAA && b[2] != 0xDC && b[2] >= 0x03 && b[2] <= 0x30
	}},
}

// DetectFamily inspects the first bytes of a stream and reports which
// protocol family produced them. It needs at least four bytes; with
// fewer it returns errInsufficientData wrapped as ErrUnknownProtocol
// via Session, but callers probing directly get the sentinel so they
// can wait for more input.
func DetectFamily(b []byte) (Family, error) {
	if len(b) < 4 {
		return FamilyUnknown, errInsufficientData
	}
	for _, d := range detectors {
		if d.match(b) {
			return d.family, nil
		}
	}
	return FamilyUnknown, ErrUnknownProtocol
}
