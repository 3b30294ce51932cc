// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The euc-charging authors

// Package capture reads and writes raw traffic captures. A capture file
// is a CBOR stream: one metadata header followed by one record per
// transport chunk, preserving the original chunk boundaries so a replay
// exercises the decoder exactly like the live connection did.
package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Metadata describes one capture file.
type Metadata struct {
	Tool      string    `cbor:"1,keyasint"`
	CreatedAt time.Time `cbor:"2,keyasint"`
	Device    string    `cbor:"3,keyasint,omitempty"`
	Family    string    `cbor:"4,keyasint,omitempty"`
	Model     string    `cbor:"5,keyasint,omitempty"`
}

// Record is one transport chunk with its arrival offset from the start
// of the capture.
type Record struct {
	Offset time.Duration `cbor:"1,keyasint"`
	Data   []byte        `cbor:"2,keyasint"`
}

// Writer appends records to a capture stream.
type Writer struct {
	enc   *cbor.Encoder
	start time.Time
}

// NewWriter writes the metadata header and returns a writer for the
// record stream.
func NewWriter(w io.Writer, meta Metadata) (*Writer, error) {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	enc := cbor.NewEncoder(w)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("failed to write capture metadata: %w", err)
	}
	return &Writer{enc: enc, start: meta.CreatedAt}, nil
}

// Append writes one chunk stamped with the current offset.
func (w *Writer) Append(data []byte) error {
	return w.AppendAt(data, time.Since(w.start))
}

// AppendAt writes one chunk with an explicit offset, for re-writing
// existing captures.
func (w *Writer) AppendAt(data []byte, offset time.Duration) error {
	rec := Record{Offset: offset, Data: data}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write capture record: %w", err)
	}
	return nil
}

// Reader iterates over a capture stream.
type Reader struct {
	dec  *cbor.Decoder
	meta Metadata
}

// NewReader reads the metadata header and returns a reader positioned at
// the first record.
func NewReader(r io.Reader) (*Reader, error) {
	dec := cbor.NewDecoder(r)
	var meta Metadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to read capture metadata: %w", err)
	}
	return &Reader{dec: dec, meta: meta}, nil
}

// Metadata returns the capture file header.
func (r *Reader) Metadata() Metadata {
	return r.meta
}

// Next returns the next record. It returns io.EOF at the end of the
// stream.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to read capture record: %w", err)
	}
	return rec, nil
}
