// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdpub

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPrefix is returned when a key is neither the canonical
	// nor the alternate prefix accepted by the engine.
	ErrUnsupportedPrefix = errors.New("unsupported prefix, provide an xpub or zpub")

	// ErrHardenedDerivationUnsupported is returned for indices >= 2^31.
	// Hardened children need the private key, which this package never has.
	ErrHardenedDerivationUnsupported = errors.New("hardened derivation from a public key is not supported")

	// ErrPointAtInfinity is returned when a child index yields an invalid key.
	// The caller decides what to do; the engine never skips the index.
	ErrPointAtInfinity = errors.New("derived key is invalid for this index")

	// ErrAddressEncoding signals a failure turning a public key into an address.
	ErrAddressEncoding = errors.New("could not encode address")

	// ErrCountOutOfRange is returned for address counts outside [1, MaxAddressCount].
	ErrCountOutOfRange = errors.New("address count out of range")

	// ErrUnsupportedRole is returned for a Role other than External or Internal.
	ErrUnsupportedRole = errors.New("unsupported role")
)

// DerivationError records which role and index a batch derivation failed on.
type DerivationError struct {
	Role  Role
	Index uint32
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("%s address %d: %v", e.Role, e.Index, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}
