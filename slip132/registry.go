// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package slip132 maps extended public key prefixes ("xpub", "zpub", ...) to
// their serialized version bytes and rewrites keys from one prefix to another.
//
// Version values follow SLIP-0132:
// https://github.com/satoshilabs/slips/blob/master/slip-0132.md
package slip132

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// Tag is the human-readable prefix of a Base58 extended public key.
type Tag string

// Known public key tags.
const (
	XPub      Tag = "xpub" // P2PKH or P2SH, mainnet
	YPub      Tag = "ypub" // P2WPKH in P2SH, mainnet
	YPubMulti Tag = "Ypub" // multi-signature P2WSH in P2SH, mainnet
	ZPub      Tag = "zpub" // P2WPKH, mainnet
	ZPubMulti Tag = "Zpub" // multi-signature P2WSH, mainnet
	TPub      Tag = "tpub" // P2PKH or P2SH, testnet
	UPub      Tag = "upub" // P2WPKH in P2SH, testnet
	UPubMulti Tag = "Upub" // multi-signature P2WSH in P2SH, testnet
	VPub      Tag = "vpub" // P2WPKH, testnet
	VPubMulti Tag = "Vpub" // multi-signature P2WSH, testnet
)

// Version is the 4-byte prefix of a serialized extended key.
type Version [4]byte

// Uint32 returns the big-endian integer form of v.
func (v Version) Uint32() uint32 {
	return binary.BigEndian.Uint32(v[:])
}

// String renders v as 0x-prefixed hex.
func (v Version) String() string {
	return fmt.Sprintf("0x%08x", v.Uint32())
}

// VersionFromUint32 converts the integer form used in SLIP-0132 tables.
func VersionFromUint32(n uint32) Version {
	var v Version
	binary.BigEndian.PutUint32(v[:], n)
	return v
}

var (
	// ErrUnsupportedVersionTag is returned by Lookup for a tag outside the registry.
	ErrUnsupportedVersionTag = errors.New("unsupported version tag")

	// ErrUnrecognizedVersionBytes is returned by Identify when no tag uses the
	// given version bytes.
	ErrUnrecognizedVersionBytes = errors.New("unrecognized version bytes")
)

var versions = map[Tag]Version{
	XPub:      VersionFromUint32(0x0488b21e),
	YPub:      VersionFromUint32(0x049d7cb2),
	YPubMulti: VersionFromUint32(0x0295b43f),
	ZPub:      VersionFromUint32(0x04b24746),
	ZPubMulti: VersionFromUint32(0x02aa7ed3),
	TPub:      VersionFromUint32(0x043587cf),
	UPub:      VersionFromUint32(0x044a5262),
	UPubMulti: VersionFromUint32(0x024289ef),
	VPub:      VersionFromUint32(0x045f1cf6),
	VPubMulti: VersionFromUint32(0x02575483),
}

// tags is the inverse of versions, built once at init.
var tags = func() map[Version]Tag {
	m := make(map[Version]Tag, len(versions))
	for tag, v := range versions {
		if other, dup := m[v]; dup {
			panic(fmt.Sprintf("slip132: %s and %s share version %s", tag, other, v))
		}
		m[v] = tag
	}
	return m
}()

// Lookup returns the version bytes registered for tag.
func Lookup(tag Tag) (Version, error) {
	v, ok := versions[tag]
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrUnsupportedVersionTag, string(tag))
	}
	return v, nil
}

// Identify returns the tag whose version bytes equal v.
func Identify(v Version) (Tag, error) {
	tag, ok := tags[v]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnrecognizedVersionBytes, v)
	}
	return tag, nil
}

// Tags lists every registered tag in lexical order.
func Tags() []Tag {
	out := make([]Tag, 0, len(versions))
	for tag := range versions {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
