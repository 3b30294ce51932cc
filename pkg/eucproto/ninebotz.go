// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

import "time"

// The Z series keeps the Ninebot frame layout but XORs everything after
// the length byte with the gamma keystream: header and length stay in
// cleartext so reassembly works without the key. Each frame decrypts
// with the session counter, then validates the inverted-XOR checksum,
// then parses like a standard frame.
//
// The session starts on the well-known default seed. A handshake
// response (command 0x5B from the key address) arrives in cleartext and
// carries the device's 14-byte serial seed; the decoder re-derives the
// key and resets the counter when it sees one. Once frames have decoded
// successfully, a run of checksum failures means the counter has drifted
// from the device, which no amount of retrying fixes, so the third
// consecutive failure is surfaced as DecryptDesyncError instead of
// another ChecksumError.
type ninebotZDecoder struct {
	buf      []byte
	battery  batteryState
	cipher   *gammaCipher
	model    string
	decoded  bool // at least one successful decode since last rekey
	failures int  // consecutive checksum failures
}

func newNinebotZDecoder() *ninebotZDecoder {
	return &ninebotZDecoder{cipher: newGammaCipher()}
}

func (d *ninebotZDecoder) family() Family { return FamilyNinebotZ }

func (d *ninebotZDecoder) keepaliveInterval() time.Duration {
	return KeepaliveIntervalNinebotZ
}

// keepalive builds the 1 s BMS live-data poll, checksummed and then
// encrypted with the current counter. Producing it advances the counter,
// so the caller must actually transmit it.
func (d *ninebotZDecoder) keepalive() []byte {
	frame := []byte{0x5A, 0xA5, 0x02, ninebotAddrBMS, ninebotCmdLive}
	sum := XorFoldInverted(frame[2:])
	frame = append(frame, byte(sum), byte(sum>>8))
	enc := d.cipher.apply(frame[3:])
	copy(frame[3:], enc)
	return frame
}

func (d *ninebotZDecoder) close() {
	zero(d.buf)
	d.buf = nil
	d.cipher.wipe()
}

func (d *ninebotZDecoder) feed(chunk []byte) []Result {
	d.buf = append(d.buf, chunk...)
	var out []Result
	for {
		idx := indexHeader2(d.buf, 0x5A, 0xA5)
		if idx < 0 {
			keep := tailKeep(d.buf, []byte{0x5A, 0xA5})
			dropped := len(d.buf) - keep
			if dropped > 0 {
				out = append(out, Result{Err: &ResyncError{Family: FamilyNinebotZ, Dropped: dropped}})
				d.buf = d.buf[dropped:]
			}
			return out
		}
		if idx > 0 {
			out = append(out, Result{Err: &ResyncError{Family: FamilyNinebotZ, Dropped: idx}})
			d.buf = d.buf[idx:]
		}
		if len(d.buf) < 3 {
			return out
		}
		total := ninebotFrameTotal(d.buf[2])
		if d.buf[2] < 2 || total > MaxFrameSize {
			out = append(out, Result{Err: &ResyncError{Family: FamilyNinebotZ, Dropped: 2}})
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

func (d *ninebotZDecoder) decode(b []byte) (Result, bool) {
	// Handshake responses travel in cleartext. Check before spending a
	// counter tick on decryption.
	if b[3] == ninebotAddrKey && b[4] == ninebotCmdHandshake &&
		XorFoldInverted(b[2:len(b)-2]) == leU16(b, len(b)-2) {
		d.handshake(b[5 : len(b)-2])
		return Result{}, false
	}

	plain := make([]byte, len(b))
	copy(plain, b[:3])
	copy(plain[3:], d.cipher.apply(b[3:]))

	want := XorFoldInverted(plain[2 : len(plain)-2])
	got := leU16(plain, len(plain)-2)
	if want != got {
		d.failures++
		if d.decoded && d.failures >= 3 {
			return Result{Err: &DecryptDesyncError{Consecutive: d.failures}}, true
		}
		return Result{Err: &ChecksumError{Family: FamilyNinebotZ, Want: want, Got: got}}, true
	}
	d.failures = 0
	d.decoded = true
	return decodeNinebotFrame(FamilyNinebotZ, plain, &d.battery, &d.model)
}

// handshake installs the serial seed from a key response and resets the
// failure tracking along with the counter.
func (d *ninebotZDecoder) handshake(data []byte) {
	if len(data) < 14 {
		return
	}
	d.cipher.rekey(data[:14])
	d.decoded = false
	d.failures = 0
}

// handshakeRequest builds the cleartext key-request frame a transport
// host sends right after connecting to a Z-series device. It does not
// touch the cipher counter.
func (d *ninebotZDecoder) handshakeRequest() []byte {
	frame := []byte{0x5A, 0xA5, 0x02, ninebotAddrKey, ninebotCmdHandshake}
	sum := XorFoldInverted(frame[2:])
	return append(frame, byte(sum), byte(sum>>8))
}
