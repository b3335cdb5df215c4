// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package slip132

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/complex-gh/deriveaddrs/base58check"
	"github.com/matryer/is"
	"pgregory.net/rapid"
)

const (
	// BIP32 test vector 1, chain m.
	vector1Xpub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"
	vector1Xprv = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"

	// BIP84 test vector, account m/84'/0'/0'.
	bip84Zpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
)

// TestLookup_Identify_Inverse checks the registry is a bijection over its tags.
func TestLookup_Identify_Inverse(t *testing.T) {
	is := is.New(t)

	is.Equal(len(Tags()), 10)
	for _, tag := range Tags() {
		v, err := Lookup(tag)
		is.NoErr(err)

		got, err := Identify(v)
		is.NoErr(err)
		is.Equal(got, tag)
	}
}

// TestLookup_KnownValues pins the two prefixes the derivation engine relies on.
func TestLookup_KnownValues(t *testing.T) {
	is := is.New(t)

	v, err := Lookup(XPub)
	is.NoErr(err)
	is.Equal(v.Uint32(), uint32(0x0488b21e))

	v, err = Lookup(ZPub)
	is.NoErr(err)
	is.Equal(v.Uint32(), uint32(0x04b24746))
	is.Equal(v.String(), "0x04b24746")
}

// TestLookup_Unknown rejects tags outside the registry instead of defaulting.
func TestLookup_Unknown(t *testing.T) {
	is := is.New(t)

	for _, tag := range []Tag{"", "XPUB", "xprv", "dpub"} {
		_, err := Lookup(tag)
		is.True(errors.Is(err, ErrUnsupportedVersionTag))
	}

	_, err := Identify(VersionFromUint32(0x0488ade4)) // xprv
	is.True(errors.Is(err, ErrUnrecognizedVersionBytes))
}

// TestParseEnvelope_Fields decodes the BIP84 account key.
func TestParseEnvelope_Fields(t *testing.T) {
	is := is.New(t)

	e, err := ParseEnvelope("  " + bip84Zpub + "\n")
	is.NoErr(err)
	is.Equal(e.Depth, uint8(3))
	is.Equal(e.ChildNumber, uint32(0x80000000)) // 0'
	is.True(e.KeyData[0] == 0x02 || e.KeyData[0] == 0x03)

	tag, err := e.Tag()
	is.NoErr(err)
	is.Equal(tag, ZPub)
	is.Equal(e.String(), bip84Zpub)
}

// TestParseEnvelope_RejectsPrivate makes sure private material never enters the system.
func TestParseEnvelope_RejectsPrivate(t *testing.T) {
	is := is.New(t)

	_, err := ParseEnvelope(vector1Xprv)
	is.True(errors.Is(err, ErrInvalidExtendedKey))
}

// TestParseEnvelope_BadLength accepts a valid checksum but the wrong payload size.
func TestParseEnvelope_BadLength(t *testing.T) {
	is := is.New(t)

	_, err := ParseEnvelope(base58check.Encode(bytes.Repeat([]byte{0x01}, 40)))
	is.True(errors.Is(err, ErrInvalidExtendedKey))
	is.True(errors.Is(err, base58check.ErrMalformedEncoding))
}

// TestParseEnvelope_PropagatesChecksum keeps the codec error visible to callers.
func TestParseEnvelope_PropagatesChecksum(t *testing.T) {
	is := is.New(t)

	corrupted := bip84Zpub[:len(bip84Zpub)-1] + "t"
	_, err := ParseEnvelope(corrupted)
	is.True(errors.Is(err, ErrInvalidExtendedKey))
	is.True(errors.Is(err, base58check.ErrChecksumMismatch) || errors.Is(err, base58check.ErrMalformedEncoding))
}

// TestRetarget_XpubZpub converts in both directions and back.
func TestRetarget_XpubZpub(t *testing.T) {
	is := is.New(t)

	z, err := Retarget(vector1Xpub, ZPub)
	is.NoErr(err)
	is.True(strings.HasPrefix(z, "zpub"))

	x, err := Retarget(z, XPub)
	is.NoErr(err)
	is.Equal(x, vector1Xpub)

	x, err = Retarget(bip84Zpub, XPub)
	is.NoErr(err)
	is.True(strings.HasPrefix(x, "xpub"))

	orig, err := ParseEnvelope(bip84Zpub)
	is.NoErr(err)
	conv, err := ParseEnvelope(x)
	is.NoErr(err)
	is.Equal(orig.Serialize()[4:], conv.Serialize()[4:])
}

// TestRetarget_Identity retargeting to the key's own tag returns it unchanged.
func TestRetarget_Identity(t *testing.T) {
	is := is.New(t)

	for _, k := range []string{vector1Xpub, bip84Zpub} {
		tag, err := TagOf(k)
		is.NoErr(err)

		got, err := Retarget(k, tag)
		is.NoErr(err)
		is.Equal(got, k)
	}
}

// TestRetarget_Errors covers an unknown target and a broken key.
func TestRetarget_Errors(t *testing.T) {
	is := is.New(t)

	_, err := Retarget(vector1Xpub, "qpub")
	is.True(errors.Is(err, ErrUnsupportedVersionTag))

	_, err = Retarget("not a key", ZPub)
	is.True(errors.Is(err, ErrInvalidExtendedKey))
}

// TestRetarget_AnyTagRoundTrip retargets through a random chain of tags and
// expects the original key at the end.
func TestRetarget_AnyTagRoundTrip(t *testing.T) {
	all := Tags()
	rapid.Check(t, func(t *rapid.T) {
		chain := rapid.SliceOfN(rapid.SampledFrom(all), 1, 6).Draw(t, "tags")

		k := bip84Zpub
		for _, tag := range chain {
			var err error
			k, err = Retarget(k, tag)
			if err != nil {
				t.Fatalf("retarget to %s: %v", tag, err)
			}
		}

		back, err := Retarget(k, ZPub)
		if err != nil {
			t.Fatalf("retarget back: %v", err)
		}
		if back != bip84Zpub {
			t.Fatalf("got %s, want %s", back, bip84Zpub)
		}
	})
}
