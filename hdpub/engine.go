// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package hdpub derives native segwit (P2WPKH) addresses from an account
// level extended public key, following BIP32 public derivation and the
// BIP84 chain layout (role, then index).
package hdpub

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/complex-gh/deriveaddrs/slip132"
)

// MaxAddressCount caps a single DeriveAddresses batch.
const MaxAddressCount = 100_000

// Deriver performs public-parent to public-child key derivation.
type Deriver interface {
	Child(parent *hdkeychain.ExtendedKey, index uint32) (*hdkeychain.ExtendedKey, error)
}

// hdkeychainDeriver is the default Deriver backed by btcutil/hdkeychain.
type hdkeychainDeriver struct{}

func (hdkeychainDeriver) Child(parent *hdkeychain.ExtendedKey, index uint32) (*hdkeychain.ExtendedKey, error) {
	return parent.Derive(index) //nolint:wrapcheck
}

// Node is a public extended key inside the derivation tree.
type Node struct {
	key *hdkeychain.ExtendedKey
}

// Depth is the number of derivation steps from the master key.
func (n *Node) Depth() uint8 {
	return n.key.Depth()
}

// ChainCode returns a copy of the node's chain code.
func (n *Node) ChainCode() []byte {
	return n.key.ChainCode()
}

// PublicKey returns the 33-byte compressed public key.
func (n *Node) PublicKey() ([]byte, error) {
	pub, err := n.key.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("could not read public key: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// String serializes the node with the engine's canonical version bytes.
func (n *Node) String() string {
	return n.key.String()
}

// Engine derives addresses from xpub/zpub keys. An Engine holds no mutable
// state and may be shared between goroutines.
type Engine struct {
	deriver   Deriver
	net       *chaincfg.Params
	canonical slip132.Tag
	alternate slip132.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithDeriver replaces the key derivation primitive, mostly for tests.
func WithDeriver(d Deriver) Option {
	return func(e *Engine) {
		e.deriver = d
	}
}

// WithNetParams sets the network used for address encoding.
func WithNetParams(net *chaincfg.Params) Option {
	return func(e *Engine) {
		e.net = net
	}
}

// NewEngine returns an Engine for mainnet xpub/zpub keys.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		deriver:   hdkeychainDeriver{},
		net:       &chaincfg.MainNetParams,
		canonical: slip132.XPub,
		alternate: slip132.ZPub,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supported lists the prefixes Parse accepts, canonical first.
func (e *Engine) Supported() []slip132.Tag {
	return []slip132.Tag{e.canonical, e.alternate}
}

// Parse decodes an extended public key. Keys using the alternate prefix are
// relabeled to the canonical one first, so derivation always starts from a
// single representation.
func (e *Engine) Parse(text string) (*Node, error) {
	env, err := slip132.ParseEnvelope(text)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	tag, err := env.Tag()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPrefix, err)
	}

	switch tag {
	case e.canonical:
	case e.alternate:
		v, err := slip132.Lookup(e.canonical)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		env = env.WithVersion(v)
	default:
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedPrefix, tag)
	}

	key, err := hdkeychain.NewKeyFromString(env.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", slip132.ErrInvalidExtendedKey, err)
	}

	return &Node{key: key}, nil
}

// DeriveChild derives the non-hardened child at index.
func (e *Engine) DeriveChild(node *Node, index uint32) (*Node, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return nil, fmt.Errorf("%w: index %d", ErrHardenedDerivationUnsupported, index)
	}

	child, err := e.deriver.Child(node.key, index)
	switch {
	case errors.Is(err, hdkeychain.ErrInvalidChild):
		return nil, fmt.Errorf("%w: index %d", ErrPointAtInfinity, index)
	case errors.Is(err, hdkeychain.ErrDeriveHardFromPublic):
		return nil, fmt.Errorf("%w: index %d", ErrHardenedDerivationUnsupported, index)
	case err != nil:
		return nil, fmt.Errorf("could not derive child %d: %w", index, err)
	}

	return &Node{key: child}, nil
}

// Address returns the bech32 P2WPKH address (witness version 0) of node.
func (e *Engine) Address(node *Node) (string, error) {
	pub, err := node.PublicKey()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAddressEncoding, err)
	}

	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub), e.net)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAddressEncoding, err)
	}

	return addr.EncodeAddress(), nil
}

// DeriveAddress derives the address at <key>/<role>/<index>.
func (e *Engine) DeriveAddress(text string, role Role, index uint32) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedRole, role)
	}

	node, err := e.Parse(text)
	if err != nil {
		return "", err
	}

	branch, err := e.DeriveChild(node, uint32(role))
	if err != nil {
		return "", err
	}

	leaf, err := e.DeriveChild(branch, index)
	if err != nil {
		return "", err
	}

	return e.Address(leaf)
}

// DeriveAddresses derives count addresses for indices 0..count-1, in order.
// Position i of the result is always the address at index i.
func (e *Engine) DeriveAddresses(text string, count int, role Role) ([]string, error) {
	addrs := make([]string, 0, clampCount(count))
	err := e.Walk(text, count, role, func(_ uint32, addr string) error {
		addrs = append(addrs, addr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addrs, nil
}

// Walk derives the same sequence as DeriveAddresses but hands each address to
// fn as soon as it is computed. A non-nil error from fn stops the walk and is
// returned as is.
func (e *Engine) Walk(text string, count int, role Role, fn func(index uint32, addr string) error) error {
	if err := CheckCount(count); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedRole, role)
	}

	node, err := e.Parse(text)
	if err != nil {
		return err
	}

	branch, err := e.DeriveChild(node, uint32(role))
	if err != nil {
		return fmt.Errorf("%s branch: %w", role, err)
	}

	for i := range uint32(count) { //nolint:gosec
		leaf, err := e.DeriveChild(branch, i)
		if err != nil {
			return &DerivationError{Role: role, Index: i, Err: err}
		}

		addr, err := e.Address(leaf)
		if err != nil {
			return &DerivationError{Role: role, Index: i, Err: err}
		}

		if err := fn(i, addr); err != nil {
			return err
		}
	}

	return nil
}

// CheckCount validates a requested batch size.
func CheckCount(count int) error {
	if count < 1 || count > MaxAddressCount {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrCountOutOfRange, count, MaxAddressCount)
	}
	return nil
}

func clampCount(count int) int {
	return max(0, min(count, MaxAddressCount))
}
