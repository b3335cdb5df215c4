// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package slip132

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/complex-gh/deriveaddrs/base58check"
)

// SerializedKeyLen is the payload length of an extended key:
//
//	version (4) || depth (1) || parent fingerprint (4) ||
//	child number (4) || chain code (32) || key data (33)
const SerializedKeyLen = 4 + 1 + 4 + 4 + 32 + 33

// ErrInvalidExtendedKey is returned when a string does not decode to a
// well-formed extended public key.
var ErrInvalidExtendedKey = errors.New("invalid extended public key")

// Envelope is the decoded form of an extended public key. Values returned by
// this package are never modified in place.
type Envelope struct {
	Version           Version
	Depth             uint8
	ParentFingerprint [4]byte
	ChildNumber       uint32
	ChainCode         [32]byte
	KeyData           [33]byte
}

// ParseEnvelope decodes a Base58Check extended public key. Surrounding
// whitespace is ignored. Private extended keys are rejected.
func ParseEnvelope(text string) (*Envelope, error) {
	payload, err := base58check.Decode(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtendedKey, err)
	}
	if len(payload) != SerializedKeyLen {
		return nil, fmt.Errorf("%w: %w: payload is %d bytes, want %d",
			ErrInvalidExtendedKey, base58check.ErrMalformedEncoding, len(payload), SerializedKeyLen)
	}

	var e Envelope
	copy(e.Version[:], payload[0:4])
	e.Depth = payload[4]
	copy(e.ParentFingerprint[:], payload[5:9])
	e.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	copy(e.ChainCode[:], payload[13:45])
	copy(e.KeyData[:], payload[45:78])

	// Private key data is serialized as 0x00 || k.
	if e.KeyData[0] == 0x00 {
		return nil, fmt.Errorf("%w: key data is private", ErrInvalidExtendedKey)
	}
	if _, err := btcec.ParsePubKey(e.KeyData[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtendedKey, err)
	}

	return &e, nil
}

// Serialize returns the 78-byte payload, without checksum.
func (e *Envelope) Serialize() []byte {
	buf := make([]byte, SerializedKeyLen)
	copy(buf[0:4], e.Version[:])
	buf[4] = e.Depth
	copy(buf[5:9], e.ParentFingerprint[:])
	binary.BigEndian.PutUint32(buf[9:13], e.ChildNumber)
	copy(buf[13:45], e.ChainCode[:])
	copy(buf[45:78], e.KeyData[:])
	return buf
}

// String returns the Base58Check encoding of e.
func (e *Envelope) String() string {
	return base58check.Encode(e.Serialize())
}

// Tag identifies the registered prefix of e.
func (e *Envelope) Tag() (Tag, error) {
	return Identify(e.Version)
}

// WithVersion returns a copy of e carrying v. Nothing but the version changes.
func (e *Envelope) WithVersion(v Version) *Envelope {
	out := *e
	out.Version = v
	return &out
}
