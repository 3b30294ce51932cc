// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// InMotion V1 wraps its frames in byte stuffing: 0xA5 escapes the
// following byte, letting the AA AA header appear unambiguously in the
// raw stream. Frames are big-endian, AA AA [len] [cmd] [data] [sum16],
// where len counts the data bytes and the checksum covers everything
// after the header. The wheel stays silent unless polled, so the session
// emits a keepalive every 25 ms.
type inmotionDecoder struct {
	buf     []byte // raw stream, escapes intact
	battery batteryState
}

func newInMotionDecoder() *inmotionDecoder {
	return &inmotionDecoder{}
}

func (d *inmotionDecoder) family() Family { return FamilyInMotionV1 }

func (d *inmotionDecoder) keepaliveInterval() time.Duration {
	return KeepaliveIntervalInMotionV1
}

// keepalive builds the 25 ms poll: a live-data request whose nine body
// bytes are all 0x01 (the first is the command), checksummed and then
// escaped like any outgoing frame.
func (d *inmotionDecoder) keepalive() []byte {
	frame := []byte{0xAA, 0xAA, 0x09}
	for i := 0; i < 9; i++ {
		frame = append(frame, inmotionCmdLive)
	}
	sum := Sum16(frame[2:])
	frame = append(frame, byte(sum>>8), byte(sum))
	return inmotionEscape(frame)
}

func (d *inmotionDecoder) close() {
	zero(d.buf)
	d.buf = nil
}

func (d *inmotionDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := d.findHeader()
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0xAA, 0xAA})
			// A trailing escape byte may also precede a split header.
			if keep == 0 && len(d.buf) > 0 && d.buf[len(d.buf)-1] == inmotionEscByte {
				keep = 1
			}
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV1, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV1, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		frame, consumed, complete := d.unescapeFrame()
		if consumed < 0 {
			// Implausible length byte. Skip the header and resync.
			out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV1, Dropped: 2}})
			d.buf = d.buf[2:]
			continue
		}
		if !complete {
			return out
		}
		res, ok := d.decode(frame)
		d.buf = d.buf[consumed:]
		if ok {
			out = append(out, res)
		}
	}
}

// findHeader locates the next unescaped AA AA pair.
func (d *inmotionDecoder) findHeader() int {
	escaped := false
	for i := 0; i < len(d.buf); i++ {
		if escaped {
			escaped = false
			continue
		}
		if d.buf[i] == inmotionEscByte {
			escaped = true
			continue
		}
		if d.buf[i] == 0xAA && i+1 < len(d.buf) && d.buf[i+1] == 0xAA {
			return i
		}
	}
	return -1
}

// unescapeFrame removes byte stuffing from the buffered stream starting
// at the header and reports the raw byte count consumed. complete is
// false while the logical frame is still short; consumed is -1 when the
// length byte is implausible and the caller must resync.
func (d *inmotionDecoder) unescapeFrame() (frame []byte, consumed int, complete bool) {
	logical := make([]byte, 0, 48)
	escaped := false
	need := -1
	for i := 0; i < len(d.buf); i++ {
		c := d.buf[i]
		if !escaped && c == inmotionEscByte && len(logical) >= 2 {
			escaped = true
			continue
		}
		escaped = false
		logical = append(logical, c)
		if len(logical) == 3 {
			need = 3 + int(logical[2]) + 2
			if logical[2] < 1 || need > MaxFrameSize {
				return nil, -1, false
			}
		}
		if need > 0 && len(logical) == need {
			return logical, i + 1, true
		}
	}
	return nil, 0, false
}

func (d *inmotionDecoder) decode(b []byte) (Result, bool) {
	want := Sum16(b[2 : len(b)-2])
	got := beU16(b, len(b)-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: FamilyInMotionV1, Want: want, Got: got}}, true
	}
	if b[3] != inmotionCmdLive {
		return Result{}, false
	}
	data := b[4 : len(b)-2]
	if len(data) < 16 {
		return Result{}, false
	}
	t := &Telemetry{
		Family:        FamilyInMotionV1,
		Voltage:       float64(beU16(data, 0)) / 100,
		Speed:         float64(beS16(data, 2)) / 100 * 3.6,
		TripDistance:  float64(beU32(data, 4)) / 1000,
		TotalDistance: float64(beU32(data, 8)) / 1000,
		Current:       float64(beS16(data, 12)) / 100,
		Temperature:   float64(beS16(data, 14)) / 100,
	}
	t.Charging = t.Current > chargingCurrentThreshold && abs(t.Speed) < 1.0
	d.battery.apply(t)
	return Result{Telemetry: t}, true
}

// inmotionEscape applies byte stuffing to an outgoing frame, leaving the
// two header bytes untouched.
func inmotionEscape(frame []byte) []byte {
	out := make([]byte, 0, len(frame)+4)
	out = append(out, frame[0], frame[1])
	for _, c := range frame[2:] {
		if c == inmotionEscByte || c == 0xAA {
			out = append(out, inmotionEscByte)
		}
		out = append(out, c)
	}
	return out
}

// UnescapeInMotion strips the 0xA5 byte stuffing from a raw frame,
// leaving the two header bytes untouched. Useful for inspecting captured
// traffic.
func UnescapeInMotion(raw []byte) []byte {
	if len(raw) < 2 {
		return append([]byte(nil), raw...)
	}
	out := make([]byte, 0, len(raw))
	out = append(out, raw[0], raw[1])
	escaped := false
	for _, c := range raw[2:] {
		if !escaped && c == inmotionEscByte {
			escaped = true
			continue
		}
		escaped = false
		out = append(out, c)
	}
	return out
}
