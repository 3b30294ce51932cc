// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// Result is one outcome of feeding a chunk: either a decoded Telemetry
// record or a non-fatal decode error. Exactly one of the fields is set.
type Result struct {
	Telemetry *Telemetry
	Err       error
}

// decoder is the per-family contract: stateful reassembly plus frame
// decoding behind a single feed call.
type decoder interface {
	family() Family
	feed(chunk []byte) []Result
	keepalive() []byte
	keepaliveInterval() time.Duration
	close()
}

// Session decodes the byte stream of one device connection. It owns the
// protocol detection, the bound family decoder with its reassembly
// buffer, the battery profile and, for the encrypted family, the cipher
// state. Sessions are single-threaded and live exactly as long as the
// connection; nothing survives a reconnect.
type Session struct {
	dec    decoder
	head   []byte // accumulated pre-detection bytes
	failed bool   // detection ceiling exceeded
	closed bool
}

// NewSession returns a session that auto-detects the protocol family
// from the first bytes it is fed.
func NewSession() *Session {
	return &Session{}
}

// NewFamilySession returns a session bound to a known family, skipping
// detection. It returns nil for FamilyUnknown.
func NewFamilySession(f Family) *Session {
	d := newDecoder(f)
	if d == nil {
		return nil
	}
	return &Session{dec: d}
}

func newDecoder(f Family) decoder {
	switch f {
	case FamilyKingSong:
		return newKingSongDecoder()
	case FamilyGotway:
		return newGotwayDecoder()
	case FamilyVeteran:
		return newVeteranDecoder()
	case FamilyInMotionV1:
		return newInMotionDecoder()
	case FamilyInMotionV2:
		return newInMotion2Decoder()
	case FamilyNinebot:
		return newNinebotDecoder()
	case FamilyNinebotZ:
		return newNinebotZDecoder()
	default:
		return nil
	}
}

// Family reports the detected family, FamilyUnknown while detection is
// still pending.
func (s *Session) Family() Family {
	if s.dec == nil {
		return FamilyUnknown
	}
	return s.dec.family()
}

// Feed hands one raw transport chunk to the session and returns every
// telemetry record and decode error it produced. Chunk boundaries are
// arbitrary; the session reassembles frames regardless of how the
// transport split them. Bytes preceding the first recognizable header
// are discarded and reported as a ResyncError. Errors are
// informational, never fatal, with one exception: once DetectionCeiling
// bytes arrive without a recognizable protocol, every further call
// returns ErrUnknownProtocol.
func (s *Session) Feed(chunk []byte) []Result {
	if s.closed {
		return nil
	}
	if s.failed {
		return []Result{{Err: ErrUnknownProtocol}}
	}
	if s.dec == nil {
		s.head = append(s.head, chunk...)

		// A connection made mid-transmission starts with the tail of a
		// frame already in flight, so the buffer may not begin at a
		// header. Scan for the first offset where a family matches and
		// drop the preamble as a resync.
		family := FamilyUnknown
		skipped := 0
		for i := 0; len(s.head)-i >= 4; i++ {
			if f, err := DetectFamily(s.head[i:]); err == nil {
				family = f
				skipped = i
				break
			}
		}
		if family == FamilyUnknown {
			if len(s.head) > DetectionCeiling {
				s.failed = true
				zero(s.head)
				s.head = nil
				return []Result{{Err: ErrUnknownProtocol}}
			}
			return nil
		}

		s.dec = newDecoder(family)
		var results []Result
		if skipped > 0 {
			results = append(results, Result{Err: &ResyncError{Family: family, Dropped: skipped}})
		}
		chunk = s.head[skipped:]
		s.head = nil
		return append(results, s.dec.feed(chunk)...)
	}
	return s.dec.feed(chunk)
}

// NextKeepalive returns the frame to transmit to keep the device
// talking, or nil for passive families and undetected sessions. For the
// encrypted family this advances the cipher counter, so call it only
// when the frame will actually be sent.
func (s *Session) NextKeepalive() []byte {
	if s.dec == nil || s.closed {
		return nil
	}
	return s.dec.keepalive()
}

// KeepaliveInterval reports how often NextKeepalive frames must be sent,
// 0 for passive families.
func (s *Session) KeepaliveInterval() time.Duration {
	if s.dec == nil {
		return 0
	}
	return s.dec.keepaliveInterval()
}

// HandshakeRequest returns the cleartext key-exchange frame to send
// after connecting, or nil for families without a handshake.
func (s *Session) HandshakeRequest() []byte {
	if z, ok := s.dec.(*ninebotZDecoder); ok && !s.closed {
		return z.handshakeRequest()
	}
	return nil
}

// Close discards the session, zeroing reassembly buffers and key
// material. The session returns nothing after Close.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	zero(s.head)
	s.head = nil
	if s.dec != nil {
		s.dec.close()
	}
}
