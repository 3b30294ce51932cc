// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "encoding/binary"

// ============================================================
// Frame Builders
// ============================================================
//
// Each builder produces one valid on-wire frame with the given
// electrical values, checksummed (and escaped or encrypted) the way a
// real controller would send it.

type liveValues struct {
	voltage float64 // volts
	current float64 // amps
	speed   float64 // km/h
	trip    float64 // km
	total   float64 // km
	temp    float64 // Celsius
}

func putBeU16(b []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(b[off:off+2], v)
}

func putBeU32(b []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(b[off:off+4], v)
}

func putLeU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

func putLeU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

func mpuRaw(celsius float64) int16 {
	return int16((celsius - mpuTempOffset) * mpuTempScale)
}

func buildKingSongLive(v liveValues) []byte {
	b := make([]byte, kingSongFrameSize)
	b[0], b[1] = 0xAA, 0x55
	b[2] = 0x14
	b[3] = kingSongCmdLive
	putBeU16(b, 4, uint16(v.voltage*100))
	putBeU16(b, 6, uint16(int16(v.speed/3.6*100)))
	putBeU32(b, 8, uint32(v.total*1000))
	putBeU16(b, 12, uint16(int16(v.current*100)))
	putBeU16(b, 14, uint16(mpuRaw(v.temp)))
	putBeU16(b, 18, Sum16(b[2:18]))
	return b
}

func buildKingSongName(name string) []byte {
	b := make([]byte, kingSongFrameSize)
	b[0], b[1] = 0xAA, 0x55
	b[2] = 0x14
	b[3] = kingSongCmdName
	copy(b[4:18], name)
	putBeU16(b, 18, Sum16(b[2:18]))
	return b
}

func buildGotwayLive(v liveValues, pwm float64) []byte {
	b := make([]byte, gotwayFrameSize)
	b[0], b[1], b[2], b[3] = 0x55, 0xAA, 0xDC, 0x5A
	putBeU16(b, 4, uint16(v.voltage*100))
	putBeU16(b, 6, uint16(int16(v.speed/3.6/gotwaySpeedScaler*100)))
	putBeU32(b, 8, uint32(v.trip*1000))
	putBeU16(b, 12, uint16(int16(v.current*100)))
	putBeU16(b, 14, uint16(mpuRaw(v.temp)))
	putBeU16(b, 16, uint16(int16(pwm*10)))
	putBeU32(b, 18, uint32(v.total*1000))
	putLeU16(b, 22, Sum16(b[4:22]))
	return b
}

func buildVeteranLive(v liveValues, fwVersion uint16, chargeMode uint16) []byte {
	b := make([]byte, veteranMinFrame)
	b[0], b[1], b[2] = 0xDC, 0x5A, 0x5C
	b[3] = byte(veteranMinFrame - veteranHeaderLen)
	putBeU16(b, 4, uint16(v.voltage*100))
	putBeU16(b, 6, uint16(int16(v.speed*1000/10)))
	putBeU16(b, 8, uint16(uint32(v.trip*1000)&0xFFFF))
	putBeU16(b, 10, uint16(uint32(v.trip*1000)>>16))
	putBeU16(b, 12, uint16(uint32(v.total*1000)&0xFFFF))
	putBeU16(b, 14, uint16(uint32(v.total*1000)>>16))
	putBeU16(b, 16, uint16(int16(v.current*1000/10)))
	putBeU16(b, 18, uint16(int16(v.temp*100)))
	putBeU16(b, 22, chargeMode)
	putBeU16(b, 28, fwVersion)
	putBeU16(b, 34, Sum16(b[:34]))
	return b
}

func buildInMotionLive(v liveValues) []byte {
	const dataLen = 16
	b := make([]byte, 3+1+dataLen)
	b[0], b[1] = 0xAA, 0xAA
	b[2] = 1 + dataLen
	b[3] = inmotionCmdLive
	putBeU16(b, 4, uint16(v.voltage*100))
	putBeU16(b, 6, uint16(int16(v.speed/3.6*100)))
	putBeU32(b, 8, uint32(v.trip*1000))
	putBeU32(b, 12, uint32(v.total*1000))
	putBeU16(b, 16, uint16(int16(v.current*100)))
	putBeU16(b, 18, uint16(int16(v.temp*100)))
	sum := Sum16(b[2:])
	b = append(b, byte(sum>>8), byte(sum))
	return inmotionEscape(b)
}

func buildInMotion2Live(v liveValues, model string) []byte {
	const dataLen = 40
	b := make([]byte, 3+1+dataLen)
	b[0], b[1] = 0xDC, 0x5A
	b[2] = 1 + dataLen
	b[3] = inmotion2CmdLive
	data := b[4:]
	putBeU16(data, 0, uint16(v.voltage*100))
	putBeU16(data, 2, uint16(int16(v.speed/3.6*100)))
	putBeU32(data, 4, uint32(v.trip*1000))
	putBeU32(data, 8, uint32(v.total*1000))
	putBeU16(data, 12, uint16(int16(v.current*100)))
	putBeU16(data, 14, uint16(int16(v.temp*100)))
	copy(data[20:30], model)
	fold := XorFold(b[2:])
	return append(b, 0x00, fold)
}

func buildNinebotLive(hdr0, hdr1 byte, v liveValues) []byte {
	const dataLen = 16
	b := make([]byte, 3+2+dataLen)
	b[0], b[1] = hdr0, hdr1
	b[2] = 2 + dataLen
	b[3] = ninebotAddrBMS
	b[4] = ninebotCmdLive
	data := b[5:]
	putLeU16(data, 0, uint16(v.voltage*100))
	putLeU16(data, 2, uint16(int16(v.current*100)))
	putLeU16(data, 4, uint16(int16(v.speed/3.6*100)))
	putLeU32(data, 6, uint32(v.trip*1000))
	putLeU32(data, 10, uint32(v.total*1000))
	putLeU16(data, 14, uint16(int16(v.temp*10)))
	sum := XorFoldInverted(b[2:])
	return append(b, byte(sum), byte(sum>>8))
}

func buildNinebotZLive(v liveValues, key GammaKey, counter uint32) []byte {
	b := buildNinebotLive(0x5A, 0xA5, v)
	enc := GammaApply(b[3:], key, counter)
	copy(b[3:], enc)
	return b
}

func buildNinebotZHandshakeResponse(seed string) []byte {
	body := []byte{byte(2 + len(seed)), ninebotAddrKey, ninebotCmdHandshake}
	body = append(body, seed...)
	b := append([]byte{0x5A, 0xA5}, body...)
	sum := XorFoldInverted(b[2:])
	return append(b, byte(sum), byte(sum>>8))
}

// feedSplit pushes a byte stream through a session in chunks of the
// given size and collects every result.
func feedSplit(s *Session, stream []byte, chunk int) []Result {
	var out []Result
	for off := 0; off < len(stream); off += chunk {
		end := off + chunk
		if end > len(stream) {
			end = len(stream)
		}
		out = append(out, s.Feed(stream[off:end])...)
	}
	return out
}

func telemetryOf(results []Result) []*Telemetry {
	var out []*Telemetry
	for _, r := range results {
		if r.Telemetry != nil {
			out = append(out, r.Telemetry)
		}
	}
	return out
}
