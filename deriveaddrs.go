// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package deriveaddrs derives batches of native segwit addresses from an
// account-level xpub or zpub and pairs each address with its BIP84
// derivation path.
//
// The package never prints, exits or touches the network. It returns plain
// records that a presentation layer (such as cmd/deriveaddrs) renders.
package deriveaddrs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/complex-gh/deriveaddrs/hdpub"
	"github.com/complex-gh/deriveaddrs/slip132"
	"golang.org/x/sync/errgroup"
)

const (
	// Purpose is the BIP43 purpose field for native segwit (BIP84).
	Purpose = 84
	// CoinType is the SLIP-44 coin type for Bitcoin mainnet.
	CoinType = 0

	// DefaultExplorerURL is prefixed to an address to build its explorer link.
	DefaultExplorerURL = "https://mempool.space/address/"
)

var (
	// ErrNoRoles is returned when a request selects neither role.
	ErrNoRoles = errors.New("no address role selected")

	// ErrAccountOutOfRange is returned for accounts that cannot be hardened.
	ErrAccountOutOfRange = errors.New("account index out of range")
)

// DerivationPath is m/84'/0'/<account>'/<role>/<index>.
type DerivationPath struct {
	Account uint32
	Role    hdpub.Role
	Index   uint32
}

func (p DerivationPath) String() string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", Purpose, CoinType, p.Account, uint32(p.Role), p.Index)
}

// DerivedAddress is one derived address with its path. ExplorerURL is empty
// unless the request asked for explorer links.
type DerivedAddress struct {
	Address     string
	Path        DerivationPath
	ExplorerURL string
}

// ParentKeyPair holds the same account key under both display prefixes.
type ParentKeyPair struct {
	XPub string
	ZPub string
}

// Request describes one derivation run.
type Request struct {
	// ExtendedKey is an xpub or zpub; surrounding whitespace is ignored.
	ExtendedKey string
	// Roles to derive. Duplicates are ignored; output is always external first.
	Roles []hdpub.Role
	// Count of addresses per role, 1 to hdpub.MaxAddressCount.
	Count int
	// Account is the hardened account index shown in derivation paths.
	Account uint32
	// ParentKeys asks for the xpub/zpub pair of the input key.
	ParentKeys bool
	// Explorer asks for an explorer URL on every address.
	Explorer bool
	// ExplorerBase overrides DefaultExplorerURL when Explorer is set.
	ExplorerBase string
}

// Validate checks the request without deriving anything.
func (r Request) Validate() error {
	if len(r.Roles) == 0 {
		return ErrNoRoles
	}
	for _, role := range r.Roles {
		if !role.Valid() {
			return fmt.Errorf("%w: %s", hdpub.ErrUnsupportedRole, role)
		}
	}
	if r.Account >= hdkeychain.HardenedKeyStart {
		return fmt.Errorf("%w: %d", ErrAccountOutOfRange, r.Account)
	}
	return hdpub.CheckCount(r.Count) //nolint:wrapcheck
}

// roles returns the selected roles deduplicated, in path order.
func (r Request) roles() []hdpub.Role {
	out := make([]hdpub.Role, 0, len(hdpub.Roles))
	for _, role := range hdpub.Roles {
		for _, want := range r.Roles {
			if want == role {
				out = append(out, role)
				break
			}
		}
	}
	return out
}

// Result is the output of a run.
type Result struct {
	// Roles lists the derived roles in output order.
	Roles []hdpub.Role
	// Addresses holds, per role, the addresses for indices 0..Count-1.
	Addresses map[hdpub.Role][]DerivedAddress
	// ParentKeys is nil unless requested.
	ParentKeys *ParentKeyPair
	// Depth of the input key. Paths assume an account key (depth 3).
	Depth uint8
}

// Orchestrator runs derivation requests against an Engine. It is safe for
// concurrent use.
type Orchestrator struct {
	engine *hdpub.Engine
}

// NewOrchestrator returns an Orchestrator. A nil engine means hdpub.NewEngine().
func NewOrchestrator(engine *hdpub.Engine) *Orchestrator {
	if engine == nil {
		engine = hdpub.NewEngine()
	}
	return &Orchestrator{engine: engine}
}

// Run derives the requested addresses. Roles are derived concurrently; ctx
// is checked between addresses.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.ExtendedKey)
	node, err := o.engine.Parse(key)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	res := &Result{
		Roles:     req.roles(),
		Addresses: make(map[hdpub.Role][]DerivedAddress, len(hdpub.Roles)),
		Depth:     node.Depth(),
	}

	if req.ParentKeys {
		pair, err := ParentKeys(key)
		if err != nil {
			return nil, err
		}
		res.ParentKeys = pair
	}

	base := req.ExplorerBase
	if base == "" {
		base = DefaultExplorerURL
	}

	batches := make([][]DerivedAddress, len(res.Roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, role := range res.Roles {
		g.Go(func() error {
			batch := make([]DerivedAddress, 0, req.Count)
			err := o.engine.Walk(key, req.Count, role, func(index uint32, addr string) error {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("address %d: %w", index, err)
				}
				d := DerivedAddress{
					Address: addr,
					Path:    DerivationPath{Account: req.Account, Role: role, Index: index},
				}
				if req.Explorer {
					d.ExplorerURL = ExplorerURL(base, addr)
				}
				batch = append(batch, d)
				return nil
			})
			if err != nil {
				return fmt.Errorf("could not derive %s addresses: %w", role, err)
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	for i, role := range res.Roles {
		res.Addresses[role] = batches[i]
	}

	return res, nil
}

// ParentKeys returns the xpub and zpub forms of an xpub or zpub key.
func ParentKeys(extendedKey string) (*ParentKeyPair, error) {
	key := strings.TrimSpace(extendedKey)

	tag, err := slip132.TagOf(key)
	if errors.Is(err, slip132.ErrUnrecognizedVersionBytes) {
		return nil, fmt.Errorf("%w: %w", hdpub.ErrUnsupportedPrefix, err)
	} else if err != nil {
		return nil, err //nolint:wrapcheck
	}

	switch tag {
	case slip132.XPub:
		z, err := slip132.Retarget(key, slip132.ZPub)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return &ParentKeyPair{XPub: key, ZPub: z}, nil
	case slip132.ZPub:
		x, err := slip132.Retarget(key, slip132.XPub)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return &ParentKeyPair{XPub: x, ZPub: key}, nil
	default:
		return nil, fmt.Errorf("%w: got %s", hdpub.ErrUnsupportedPrefix, tag)
	}
}

// ExplorerURL joins an explorer base URL and an address.
func ExplorerURL(base, address string) string {
	return base + address
}
