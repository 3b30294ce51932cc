// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

// Package eucproto decodes the wire protocols of electric-unicycle (EUC)
// controllers into normalized telemetry records.
//
// Seven hardware families are supported, each with its own framing, field
// layout and checksum: KingSong, Gotway/Begode, Veteran/Leaperkim,
// InMotion (V1 and V2), and Ninebot (standard and Z series, the latter
// carrying a keyed XOR stream cipher). The package provides per-family
// frame reassembly from arbitrary transport chunks, checksum validation,
// protocol auto-detection, and battery state-of-charge estimation.
//
// The transport (BLE, a serial bridge, a WebSocket bridge) is external: a
// host feeds raw byte chunks into a Session and transmits the keep-alive
// frames the session hands back.
package eucproto

import "time"

// Family identifies one manufacturer's wire protocol.
type Family int

// Supported protocol families.
const (
	FamilyUnknown Family = iota
	FamilyKingSong
	FamilyGotway
	FamilyVeteran
	FamilyInMotionV1
	FamilyInMotionV2
	FamilyNinebot
	FamilyNinebotZ
)

// String returns the canonical lower-case family name.
func (f Family) String() string {
	switch f {
	case FamilyKingSong:
		return "kingsong"
	case FamilyGotway:
		return "gotway"
	case FamilyVeteran:
		return "veteran"
	case FamilyInMotionV1:
		return "inmotion"
	case FamilyInMotionV2:
		return "inmotion_v2"
	case FamilyNinebot:
		return "ninebot"
	case FamilyNinebotZ:
		return "ninebot_z"
	default:
		return "unknown"
	}
}

// Manufacturer returns the brand name reported in telemetry.
func (f Family) Manufacturer() string {
	switch f {
	case FamilyKingSong:
		return "KingSong"
	case FamilyGotway:
		return "Begode"
	case FamilyVeteran:
		return "Leaperkim"
	case FamilyInMotionV1, FamilyInMotionV2:
		return "InMotion"
	case FamilyNinebot, FamilyNinebotZ:
		return "Ninebot"
	default:
		return "Unknown"
	}
}

// ParseFamily maps a canonical family name (as produced by Family.String)
// back to its tag. Returns FamilyUnknown for anything unrecognized.
func ParseFamily(name string) Family {
	for _, f := range AllFamilies {
		if f.String() == name {
			return f
		}
	}
	return FamilyUnknown
}

// AllFamilies lists every supported family in detection priority order.
var AllFamilies = []Family{
	FamilyGotway,
	FamilyVeteran,
	FamilyNinebotZ,
	FamilyKingSong,
	FamilyInMotionV1,
	FamilyInMotionV2,
	FamilyNinebot,
}

// KingSong framing (fixed 20-byte frames, big-endian).
const (
	kingSongFrameSize = 20
	kingSongCmdLive   = 0xA9
	kingSongCmdName   = 0xBB
)

// Gotway framing (fixed 24-byte frames, big-endian, 4-byte header).
const (
	gotwayFrameSize   = 24
	gotwaySpeedScaler = 0.875
)

// Veteran framing (DC 5A 5C + length byte, big-endian).
const (
	veteranMinFrame  = 36
	veteranHeaderLen = 4 // 3 header bytes + length byte
)

// InMotion V1 framing (AA AA + length byte, 0xA5 escape, big-endian).
const (
	inmotionEscByte = 0xA5
	inmotionCmdLive = 0x01
)

// InMotion V2 framing (DC 5A + length byte, big-endian).
const (
	inmotion2CmdLive  = 0x01
	inmotion2MaxFlags = 0x1F
)

// Ninebot framing (55 AA / 5A A5 + length byte, little-endian).
const (
	ninebotAddrBMS      = 0x22
	ninebotAddrKey      = 0x21
	ninebotCmdLive      = 0x01
	ninebotCmdHandshake = 0x5B
)

// Reassembly and detection bounds.
const (
	// MaxFrameSize bounds any single frame on the wire; buffers growing
	// past it without a complete frame are dropped and resynchronized.
	MaxFrameSize = 256

	// DetectionCeiling is the hard bound on bytes accumulated while the
	// family is still unknown. Past it the session fails permanently.
	DetectionCeiling = 512
)

// Keep-alive cadences for the two bidirectional families.
const (
	KeepaliveIntervalInMotionV1 = 25 * time.Millisecond
	KeepaliveIntervalNinebotZ   = time.Second
)

// MPU6050 temperature conversion, shared by KingSong and Gotway.
const (
	mpuTempScale  = 340.0
	mpuTempOffset = 36.53
)

// chargingCurrentThreshold is the amp threshold below/above which the
// current sign is taken to mean charging rather than sensor noise.
const chargingCurrentThreshold = 0.5

// ServiceUUIDs maps each family to the BLE GATT service/characteristic
// UUIDs its devices advertise. The table is exported for transport hosts;
// nothing in the decoding core reads it.
var ServiceUUIDs = map[Family]struct{ Service, Read, Write string }{
	FamilyKingSong:   {"0000ffe0-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb"},
	FamilyGotway:     {"0000ffe0-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb"},
	FamilyVeteran:    {"0000ffe0-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb"},
	FamilyInMotionV1: {"0000ffe0-0000-1000-8000-00805f9b34fb", "0000ffe4-0000-1000-8000-00805f9b34fb", "0000ffe9-0000-1000-8000-00805f9b34fb"},
	FamilyInMotionV2: {"6e400001-b5a3-f393-e0a9-e50e24dcca9e", "6e400003-b5a3-f393-e0a9-e50e24dcca9e", "6e400002-b5a3-f393-e0a9-e50e24dcca9e"},
	FamilyNinebot:    {"0000ffe0-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb", "0000ffe1-0000-1000-8000-00805f9b34fb"},
	FamilyNinebotZ:   {"6e400001-b5a3-f393-e0a9-e50e24dcca9e", "6e400003-b5a3-f393-e0a9-e50e24dcca9e", "6e400002-b5a3-f393-e0a9-e50e24dcca9e"},
}
