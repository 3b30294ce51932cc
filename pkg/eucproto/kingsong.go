// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// KingSong speaks fixed 20-byte big-endian frames opened by AA 55.
// The wheel pushes telemetry on its own; no keepalive is required.
type kingSongDecoder struct {
	buf     []byte
	battery batteryState
	model   string
}

func newKingSongDecoder() *kingSongDecoder {
	return &kingSongDecoder{}
}

func (d *kingSongDecoder) family() Family                   { return FamilyKingSong }
func (d *kingSongDecoder) keepalive() []byte                { return nil }
func (d *kingSongDecoder) keepaliveInterval() time.Duration { return 0 }

func (d *kingSongDecoder) close() {
	zero(d.buf)
	d.buf = nil
}

func (d *kingSongDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		// Resynchronize on the two-byte header.
		idx := indexHeader2(d.buf, 0xAA, 0x55)
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0xAA, 0x55})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyKingSong, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyKingSong, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < kingSongFrameSize {
			return out
		}
		frame := d.buf[:kingSongFrameSize]
		res, ok := d.decode(frame)
		d.buf = d.buf[kingSongFrameSize:]
		if ok {
			out = append(out, res)
		}
	}
}

// decode validates and parses one complete frame. The second return is
// false for frames that carry no result at all, such as a valid name
// frame that only updates the model hint.
func (d *kingSongDecoder) decode(b []byte) (Result, bool) {
	want := Sum16(b[2 : kingSongFrameSize-2])
	got := beU16(b, kingSongFrameSize-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: FamilyKingSong, Want: want, Got: got}}, true
	}
	switch b[3] {
	case kingSongCmdName:
		d.model = asciiField(b[4 : kingSongFrameSize-2])
		return Result{}, false
	case kingSongCmdLive:
		t := &Telemetry{
			Family:        FamilyKingSong,
			Voltage:       float64(beU16(b, 4)) / 100,
			Speed:         float64(beS16(b, 6)) * 3.6 / 100,
			TotalDistance: float64(beU32(b, 8)) / 1000,
			Current:       float64(beS16(b, 12)) / 100,
			Temperature:   mpuTemp(beS16(b, 14)),
			Model:         d.model,
		}
		t.Charging = t.Current < -chargingCurrentThreshold
		d.battery.apply(t)
		return Result{Telemetry: t}, true
	default:
		// Valid checksum, unknown command. Skip silently.
		return Result{}, false
	}
}

func mpuTemp(raw int16) float64 {
	return float64(raw)/mpuTempScale + mpuTempOffset
}

func indexHeader2(b []byte, h0, h1 byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == h0 && b[i+1] == h1 {
			return i
		}
	}
	return -1
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
