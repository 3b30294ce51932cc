// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// Gotway and Begode wheels share fixed 24-byte big-endian frames with a
// four-byte 55 AA DC 5A header. Speed is pre-scaled by the firmware's
// 0.875 gear factor; the trailing checksum is the byte sum of the
// payload stored little-endian, the one LE field in an otherwise
// big-endian frame.
type gotwayDecoder struct {
	buf     []byte
	battery batteryState
}

func newGotwayDecoder() *gotwayDecoder {
	return &gotwayDecoder{}
}

func (d *gotwayDecoder) family() Family                   { return FamilyGotway }
func (d *gotwayDecoder) keepalive() []byte                { return nil }
func (d *gotwayDecoder) keepaliveInterval() time.Duration { return 0 }

func (d *gotwayDecoder) close() {
	zero(d.buf)
	d.buf = nil
}

func (d *gotwayDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := indexHeader4(d.buf, 0x55, 0xAA, 0xDC, 0x5A)
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0x55, 0xAA, 0xDC, 0x5A})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyGotway, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyGotway, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < gotwayFrameSize {
			return out
		}
		out = append(out, d.decode(d.buf[:gotwayFrameSize]))
		d.buf = d.buf[gotwayFrameSize:]
	}
}

func (d *gotwayDecoder) decode(b []byte) Result {
	want := Sum16(b[4 : gotwayFrameSize-2])
	got := leU16(b, gotwayFrameSize-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: FamilyGotway, Want: want, Got: got}}
	}
	t := &Telemetry{
		Family:        FamilyGotway,
		Voltage:       float64(beU16(b, 4)) / 100,
		Speed:         float64(beS16(b, 6)) * 3.6 * gotwaySpeedScaler / 100,
		TripDistance:  float64(beU32(b, 8)) / 1000,
		Current:       float64(beS16(b, 12)) / 100,
		Temperature:   mpuTemp(beS16(b, 14)),
		PWM:           abs(float64(beS16(b, 16))) / 10,
		HasPWM:        true,
		TotalDistance: float64(beU32(b, 18)) / 1000,
	}
	t.Charging = t.Current < -chargingCurrentThreshold
	d.battery.apply(t)
	return Result{Telemetry: t}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func indexHeader4(b []byte, h0, h1, h2, h3 byte) int {
	for i := 0; i+3 < len(b); i++ {
		if b[i] == h0 && b[i+1] == h1 && b[i+2] == h2 && b[i+3] == h3 {
			return i
		}
	}
	return -1
}

// tailKeep reports how many trailing bytes might still be a split header
// prefix and must survive the resync drop.
func tailKeep(b, header []byte) int {
	max := len(header) - 1
	if max > len(b) {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		match := true
		for i := 0; i < n; i++ {
			if b[len(b)-n+i] != header[i] {
				match = false
				break
			}
		}
		if match {
			return n
		}
	}
	return 0
}
