// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// Ninebot frames are little-endian: [hdr0 hdr1] [len] [addr] [cmd]
// [data, len-2 bytes] [checksum u16 LE], where len counts addr, cmd and
// data, so the total frame size is len+5. The checksum is the XOR fold
// of everything between header and checksum, inverted against 0xFFFF.
// The standard family is plaintext and passive; the Z series reuses the
// exact layout under a gamma cipher (see ninebotz.go).
type ninebotDecoder struct {
	buf     []byte
	battery batteryState
}

func newNinebotDecoder() *ninebotDecoder {
	return &ninebotDecoder{}
}

func (d *ninebotDecoder) family() Family                   { return FamilyNinebot }
func (d *ninebotDecoder) keepalive() []byte                { return nil }
func (d *ninebotDecoder) keepaliveInterval() time.Duration { return 0 }

func (d *ninebotDecoder) close() {
	zero(d.buf)
	d.buf = nil
}

func (d *ninebotDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := indexHeader2(d.buf, 0x55, 0xAA)
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0x55, 0xAA})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyNinebot, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyNinebot, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < 3 {
			return out
		}
		total := ninebotFrameTotal(d.buf[2])
		if d.buf[2] < 2 || total > MaxFrameSize {
			out = append(out, Result{Err: &ResyncError{Family: FamilyNinebot, Dropped: 2}})
			d.buf = d.buf[2:]
			continue
		}
		if len(d.buf) < total {
			return out
		}
		res, ok := decodeNinebotFrame(FamilyNinebot, d.buf[:total], &d.battery, nil)
		d.buf = d.buf[total:]
		if ok {
			out = append(out, res)
		}
	}
}

// ninebotFrameTotal converts the length byte (addr+cmd+data count) into
// the full on-wire frame size.
func ninebotFrameTotal(lenByte byte) int {
	return 2 + 1 + int(lenByte) + 2 // header, len, body, checksum
}

// decodeNinebotFrame validates and parses one plaintext frame for either
// Ninebot family; model receives the model-hint string when the frame
// carries one. The second return is false for frames without a result.
func decodeNinebotFrame(f Family, b []byte, battery *batteryState, model *string) (Result, bool) {
	want := XorFoldInverted(b[2 : len(b)-2])
	got := leU16(b, len(b)-2)
	if want != got {
		return Result{Err: &ChecksumError{Family: f, Want: want, Got: got}}, true
	}
	if b[3] != ninebotAddrBMS || b[4] != ninebotCmdLive {
		return Result{}, false
	}
	data := b[5 : len(b)-2]
	if len(data) < 16 {
		return Result{}, false
	}
	if model != nil && len(data) >= 30 {
		if m := asciiField(data[20:30]); m != "" {
			*model = m
		}
	}
	t := &Telemetry{
		Family:        f,
		Voltage:       float64(leU16(data, 0)) / 100,
		Current:       float64(leS16(data, 2)) / 100,
		Speed:         float64(leS16(data, 4)) / 100 * 3.6,
		TripDistance:  float64(leU32(data, 6)) / 1000,
		TotalDistance: float64(leU32(data, 10)) / 1000,
		Temperature:   float64(leS16(data, 14)) / 10,
	}
	if model != nil {
		t.Model = *model
	}
	t.Charging = t.Current > chargingCurrentThreshold && abs(t.Speed) < 1.0
	battery.apply(t)
	return Result{Telemetry: t}, true
}
