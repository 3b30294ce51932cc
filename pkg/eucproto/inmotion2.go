// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// InMotion V2 drops the byte stuffing of V1 in favor of plain length
// framing: DC 5A [len] [flags/cmd] [data], closed by a 16-bit big-endian
// word whose low byte is the XOR fold of everything after the header.
// The flags byte never exceeds 0x1F, which is what keeps the header
// apart from Veteran's DC 5A 5C. Wheels of this generation push
// telemetry on their own.
type inmotion2Decoder struct {
	buf     []byte
	battery batteryState
	model   string
}

func newInMotion2Decoder() *inmotion2Decoder {
	return &inmotion2Decoder{}
}

func (d *inmotion2Decoder) family() Family                   { return FamilyInMotionV2 }
func (d *inmotion2Decoder) keepalive() []byte                { return nil }
func (d *inmotion2Decoder) keepaliveInterval() time.Duration { return 0 }

func (d *inmotion2Decoder) close() {
	zero(d.buf)
	d.buf = nil
}

func (d *inmotion2Decoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := d.findHeader()
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0xDC, 0x5A})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV2, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV2, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < 4 {
			return out
		}
		total := 3 + int(d.buf[2]) + 2
		if d.buf[2] < 1 || total > MaxFrameSize {
			out = append(out, Result{Err: &ResyncError{Family: FamilyInMotionV2, Dropped: 2}})
			d.buf = d.buf[2:]
			continue
		}
		if len(d.buf) < total {
			return out
		}
		res, ok := d.decode(d.buf[:total])
		d.buf = d.buf[total:]
		if ok {
			out = append(out, res)
		}
	}
}

// findHeader locates the next DC 5A pair whose third byte is a plausible
// flags value, so a Veteran-shaped DC 5A 5C embedded in garbage is not
// taken for a frame start.
func (d *inmotion2Decoder) findHeader() int {
	for i := 0; i+1 < len(d.buf); i++ {
		if d.buf[i] != 0xDC || d.buf[i+1] != 0x5A {
			continue
		}
		if i+2 < len(d.buf) && d.buf[i+2] == 0x5C {
			continue
		}
		if i+3 < len(d.buf) && d.buf[i+3] > inmotion2MaxFlags {
			continue
		}
		return i
	}
	return -1
}

func (d *inmotion2Decoder) decode(b []byte) (Result, bool) {
	want := uint16(XorFold(b[2 : len(b)-2]))
	got := beU16(b, len(b)-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: FamilyInMotionV2, Want: want, Got: got}}, true
	}
	if b[3] != inmotion2CmdLive {
		return Result{}, false
	}
	data := b[4 : len(b)-2]
	if len(data) < 40 {
		return Result{}, false
	}
	if m := asciiField(data[20:30]); m != "" {
		d.model = m
	}
	t := &Telemetry{
		Family:        FamilyInMotionV2,
		Voltage:       float64(beU16(data, 0)) / 100,
		Speed:         float64(beS16(data, 2)) / 100 * 3.6,
		TripDistance:  float64(beU32(data, 4)) / 1000,
		TotalDistance: float64(beU32(data, 8)) / 1000,
		Current:       float64(beS16(data, 12)) / 100,
		Temperature:   float64(beS16(data, 14)) / 100,
		Model:         d.model,
	}
	t.Charging = t.Current > chargingCurrentThreshold && abs(t.Speed) < 1.0
	d.battery.apply(t)
	return Result{Telemetry: t}, true
}
