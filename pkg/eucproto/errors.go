// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"errors"
	"fmt"
)

// ErrUnknownProtocol is returned when the detector has exhausted every
// matcher, or permanently once a session's detection ceiling is hit.
var ErrUnknownProtocol = errors.New("eucproto: unknown protocol")

// errInsufficientData signals that the detector needs more leading bytes
// before it can commit to a family. It never leaves the package: a session
// simply keeps accumulating.
var errInsufficientData = errors.New("eucproto: insufficient data for detection")

// ChecksumError reports a structurally complete frame whose checksum did
// not validate. The frame is dropped; decoding continues with the next one.
type ChecksumError struct {
	Family Family
	Want   uint16
	Got    uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("eucproto: %s checksum mismatch: want 0x%04X, got 0x%04X", e.Family, e.Want, e.Got)
}

// ResyncError reports bytes discarded while hunting for the next valid
// header after corruption. Informational; the stream continues.
type ResyncError struct {
	Family  Family
	Dropped int
}

func (e *ResyncError) Error() string {
	return fmt.Sprintf("eucproto: %s resynchronized, dropped %d bytes", e.Family, e.Dropped)
}

// DecryptDesyncError reports persistent checksum failures immediately
// following successful encrypted decodes: the cipher counter has drifted
// from the device and only a fresh handshake recovers the stream.
type DecryptDesyncError struct {
	Consecutive int
}

func (e *DecryptDesyncError) Error() string {
	return fmt.Sprintf("eucproto: cipher counter desynchronized (%d consecutive checksum failures), re-handshake required", e.Consecutive)
}
