// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdpub

import "fmt"

// Role selects the receive or change branch below an account key.
type Role uint32

const (
	// External is the receive chain (…/0/i).
	External Role = 0
	// Internal is the change chain (…/1/i).
	Internal Role = 1
)

// Roles lists both roles in path order.
var Roles = []Role{External, Internal}

func (r Role) String() string {
	switch r {
	case External:
		return "external"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("role(%d)", uint32(r))
	}
}

// Valid reports whether r is one of the two defined roles.
func (r Role) Valid() bool {
	return r == External || r == Internal
}

// ParseRole accepts "external"/"receive"/"0" and "internal"/"change"/"1".
func ParseRole(s string) (Role, error) {
	switch s {
	case "external", "receive", "0":
		return External, nil
	case "internal", "change", "1":
		return Internal, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}
