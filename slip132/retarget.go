// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package slip132

// Retarget rewrites the version bytes of an extended public key so that it
// displays with the target prefix. Depth, fingerprint, child number, chain
// code and key data are carried over untouched: the result is the same key,
// not a re-derivation.
func Retarget(text string, target Tag) (string, error) {
	v, err := Lookup(target)
	if err != nil {
		return "", err
	}

	e, err := ParseEnvelope(text)
	if err != nil {
		return "", err
	}

	return e.WithVersion(v).String(), nil
}

// TagOf decodes text and reports its registered prefix.
func TagOf(text string) (Tag, error) {
	e, err := ParseEnvelope(text)
	if err != nil {
		return "", err
	}
	return e.Tag()
}
