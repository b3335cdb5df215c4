// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package base58check

import (
	"bytes"
	"errors"
	"testing"

	"github.com/matryer/is"
	"pgregory.net/rapid"
)

// bip84AccountZpub is the account-level key from the BIP84 test vector.
const bip84AccountZpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"

// TestDecode_ExtendedKey checks that a real extended key decodes to a 78-byte payload
// carrying the zpub version bytes.
func TestDecode_ExtendedKey(t *testing.T) {
	is := is.New(t)

	payload, err := Decode(bip84AccountZpub)
	is.NoErr(err)
	is.Equal(len(payload), 78)
	is.Equal(payload[:4], []byte{0x04, 0xb2, 0x47, 0x46})
	is.Equal(payload[4], byte(3)) // account depth
}

// TestEncode_InverseOfDecode re-encodes a decoded key and expects the same text back.
func TestEncode_InverseOfDecode(t *testing.T) {
	is := is.New(t)

	payload, err := Decode(bip84AccountZpub)
	is.NoErr(err)
	is.Equal(Encode(payload), bip84AccountZpub)
}

// TestDecode_RoundTripProperty checks decode(encode(p)) == p for arbitrary payloads.
func TestDecode_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 1, 128).Draw(t, "payload")

		got, err := Decode(Encode(payload))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip mismatch: got %x, want %x", got, payload)
		}
	})
}

// TestDecode_Malformed covers inputs that are not Base58 or too short.
func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "zero is not in the alphabet", input: "0OIl"},
		{name: "punctuation", input: "xpub-6CatW"},
		{name: "too short for a checksum", input: "1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			_, err := Decode(tt.input)
			is.True(errors.Is(err, ErrMalformedEncoding))
		})
	}
}

// TestDecode_SingleCharacterCorruption alters every position of a valid key and
// expects decoding to fail instead of returning different bytes.
func TestDecode_SingleCharacterCorruption(t *testing.T) {
	is := is.New(t)

	for i := range len(bip84AccountZpub) {
		b := []byte(bip84AccountZpub)
		if b[i] == '2' {
			b[i] = '3'
		} else {
			b[i] = '2'
		}

		_, err := Decode(string(b))
		is.True(err != nil)
		is.True(errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrMalformedEncoding))
	}
}

// TestChecksum_KnownValue pins the checksum of an empty payload (sha256d("")).
func TestChecksum_KnownValue(t *testing.T) {
	is := is.New(t)

	sum := Checksum(nil)
	is.Equal(sum[:], []byte{0x5d, 0xf6, 0xe0, 0xe2})
}
