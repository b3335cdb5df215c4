// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package base58check encodes and decodes the checksummed Base58 envelope
// used by serialized extended keys.
//
// Unlike btcutil/base58.CheckEncode, the payload is not split into a single
// version byte and data: extended keys carry a 4-byte version, so the whole
// payload is treated as opaque bytes.
package base58check

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

// ChecksumLen is the number of double-SHA256 bytes appended to the payload.
const ChecksumLen = 4

var (
	// ErrMalformedEncoding is returned when the input is not valid Base58 or
	// is too short to carry a checksum.
	ErrMalformedEncoding = errors.New("malformed base58 encoding")

	// ErrChecksumMismatch is returned when the embedded checksum does not
	// match the one recomputed over the payload.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Checksum returns the first four bytes of the double SHA-256 of payload.
func Checksum(payload []byte) [ChecksumLen]byte {
	var sum [ChecksumLen]byte
	copy(sum[:], chainhash.DoubleHashB(payload)[:ChecksumLen])
	return sum
}

// Encode appends the checksum to payload and returns its Base58 form.
func Encode(payload []byte) string {
	sum := Checksum(payload)
	buf := make([]byte, 0, len(payload)+ChecksumLen)
	buf = append(buf, payload...)
	buf = append(buf, sum[:]...)
	return base58.Encode(buf)
}

// Decode verifies the checksum of a Base58Check string and returns the
// payload without it. Nothing is returned unless the whole input verifies.
func Decode(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedEncoding)
	}

	raw, err := base58.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEncoding, err)
	}
	if len(raw) <= ChecksumLen {
		return nil, fmt.Errorf("%w: decoded length %d is too short", ErrMalformedEncoding, len(raw))
	}

	payload := raw[:len(raw)-ChecksumLen]
	want := Checksum(payload)
	if !bytes.Equal(raw[len(raw)-ChecksumLen:], want[:]) {
		return nil, ErrChecksumMismatch
	}

	return payload, nil
}
