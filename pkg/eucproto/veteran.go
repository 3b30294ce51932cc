// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import (
	"fmt"
	"time"
)

// Veteran (Leaperkim) frames open with DC 5A 5C followed by a length
// byte counting everything after itself, checksum included. Live frames
// are 36 bytes total. 32-bit distance fields arrive as two big-endian
// words with the low word first. The firmware version identifies the
// model and with it the pack configuration, so the battery profile binds
// from the model table instead of the voltage ladder.
type veteranDecoder struct {
	buf     []byte
	battery batteryState
	model   string
}

func newVeteranDecoder() *veteranDecoder {
	return &veteranDecoder{}
}

func (d *veteranDecoder) family() Family                   { return FamilyVeteran }
func (d *veteranDecoder) keepalive() []byte                { return nil }
func (d *veteranDecoder) keepaliveInterval() time.Duration { return 0 }

func (d *veteranDecoder) close() {
	zero(d.buf)
	d.buf = nil
}

// veteranModels maps firmware major versions to model name and pack
// full-charge voltage.
var veteranModels = map[int]struct {
	name    string
	voltage float64
}{
	0:  {"Sherman", 100.8},
	1:  {"Sherman", 100.8},
	2:  {"Abrams", 100.8},
	3:  {"Sherman S", 126.0},
	4:  {"Patton", 126.0},
	5:  {"Lynx", 151.2},
	6:  {"Sherman L", 151.2},
	7:  {"Patton S", 126.0},
	8:  {"Oryx", 176.4},
	42: {"Nosfet Apex", 151.2},
	43: {"Nosfet Aero", 126.0},
}

func (d *veteranDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := indexHeader3(d.buf, 0xDC, 0x5A, 0x5C)
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0xDC, 0x5A, 0x5C})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyVeteran, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyVeteran, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < veteranHeaderLen {
			return out
		}
		total := veteranHeaderLen + int(d.buf[3])
		if total < veteranMinFrame || total > MaxFrameSize {
			out = append(out, Result{Err: &ResyncError{Family: FamilyVeteran, Dropped: 1}})
			d.buf = d.buf[1:]
			continue
		}
		if bad, at := d.guard(total); bad {
			out = append(out, Result{Err: &ResyncError{Family: FamilyVeteran, Dropped: at}})
			d.buf = d.buf[at:]
			continue
		}
		if len(d.buf) < total {
			return out
		}
		out = append(out, d.decode(d.buf[:total]))
		d.buf = d.buf[total:]
	}
}

// guard checks the structural bytes of a partially collected frame so a
// corrupted stream resynchronizes before the full length arrives. The
// checked positions are reserved fields with known values in every
// firmware revision.
func (d *veteranDecoder) guard(total int) (bool, int) {
	n := len(d.buf)
	if n > total {
		n = total
	}
	if n > 22 && d.buf[22] != 0x00 {
		return true, 1
	}
	if n > 23 && d.buf[23]&0xFE != 0 {
		return true, 1
	}
	if n > 30 && d.buf[30] != 0x00 && d.buf[30] != 0x07 {
		return true, 1
	}
	return false, 0
}

func (d *veteranDecoder) decode(b []byte) Result {
	want := Sum16(b[:len(b)-2])
	got := beU16(b, len(b)-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: FamilyVeteran, Want: want, Got: got}}
	}
	rawVersion := int(beU16(b, 28))
	version := rawVersion / 1000
	if m, ok := veteranModels[version]; ok {
		d.model = m.name
		if p, found := ProfileForSystemVoltage(m.voltage); found {
			d.battery.bind(p)
		}
	}
	t := &Telemetry{
		Family:        FamilyVeteran,
		Voltage:       float64(beU16(b, 4)) / 100,
		Speed:         float64(beS16(b, 6)) * 10 / 1000,
		TripDistance:  float64(revBeU32(b, 8)) / 1000,
		TotalDistance: float64(revBeU32(b, 12)) / 1000,
		Current:       float64(beS16(b, 16)) * 10 / 1000,
		Temperature:   float64(beS16(b, 18)) / 100,
		ChargeMode:    int(beU16(b, 22)),
		Model:         d.model,
	}
	t.FirmwareVersion = fmt.Sprintf("%d.%03d", version, rawVersion%1000)
	t.Charging = t.ChargeMode > 0
	d.battery.apply(t)
	return Result{Telemetry: t}
}

func indexHeader3(b []byte, h0, h1, h2 byte) int {
	for i := 0; i+2 < len(b); i++ {
		if b[i] == h0 && b[i+1] == h1 && b[i+2] == h2 {
			return i
		}
	}
	return -1
}
