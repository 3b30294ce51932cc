// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

package eucproto

// The Ninebot Z stream cipher: payload bytes are XORed against a rolling
// 16-byte gamma key derived from the device serial. The device ships a
// generic seed; a handshake frame (command 0x5B) carries the real one.

const gammaKeySize = 16

// DefaultGammaSeed is the generic serial every unit answers to before a
// handshake completes.
const DefaultGammaSeed = "N2GUS12345678"

// GammaKey is the derived symmetric key material.
type GammaKey [gammaKeySize]byte

// DeriveGammaKey expands a session seed (the device serial) into the
// 16-byte gamma key: each key byte is the seed byte at that position,
// wrapped, plus its index.
func DeriveGammaKey(seed []byte) GammaKey {
	var key GammaKey
	if len(seed) == 0 {
		seed = []byte(DefaultGammaSeed)
	}
	for i := 0; i < gammaKeySize; i++ {
		key[i] = seed[i%len(seed)] + byte(i)
	}
	return key
}

// GammaApply XORs data against the keystream starting at the given frame
// counter. XOR is its own inverse, so the same call encrypts and
// decrypts. The input is not modified.
func GammaApply(data []byte, key GammaKey, counter uint32) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[(counter+uint32(i))%gammaKeySize]
	}
	return out
}

// gammaCipher is the per-session cipher context: derived key plus the
// frame counter, which advances once per frame sent or received and must
// stay in lockstep with the device.
type gammaCipher struct {
	key     GammaKey
	counter uint32
}

func newGammaCipher() *gammaCipher {
	return &gammaCipher{key: DeriveGammaKey(nil)}
}

// rekey installs a key from a handshake seed and restarts the counter.
func (c *gammaCipher) rekey(seed []byte) {
	c.key = DeriveGammaKey(seed)
	c.counter = 0
}

// apply transforms data with the current counter and advances it by one
// frame.
func (c *gammaCipher) apply(data []byte) []byte {
	out := GammaApply(data, c.key, c.counter)
	c.counter++
	return out
}

// wipe destroys the key material on session close.
func (c *gammaCipher) wipe() {
	c.key = GammaKey{}
	c.counter = 0
}
