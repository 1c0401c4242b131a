package models

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SecretMaterial is a resolved signing key. It never renders its key in
// logs or format verbs and can be wiped once a signer has been derived.
type SecretMaterial struct {
	source  string
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSecretMaterial wraps a private key. Source describes where the key
// came from (account name or env var), never the key itself.
func NewSecretMaterial(source string, key *ecdsa.PrivateKey) *SecretMaterial {
	return &SecretMaterial{
		source:  source,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (s *SecretMaterial) Source() string          { return s.source }
func (s *SecretMaterial) Address() common.Address { return s.address }

// Wiped reports whether Wipe has been called
func (s *SecretMaterial) Wiped() bool { return s.key == nil }

// Wipe zeroes the private scalar and drops the key reference.
func (s *SecretMaterial) Wipe() {
	if s.key == nil {
		return
	}
	if s.key.D != nil {
		s.key.D.SetInt64(0)
	}
	s.key = nil
}

func (s *SecretMaterial) String() string {
	return fmt.Sprintf("SecretMaterial(%s, %s)", s.source, s.address.Hex())
}

func (s *SecretMaterial) GoString() string { return s.String() }

func (s *SecretMaterial) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", s.source),
		slog.String("address", s.address.Hex()),
		slog.String("key", "[REDACTED]"),
	)
}

// LooksLikePrivateKey reports whether ref is a bare 32-byte hex value,
// with or without a 0x prefix.
func LooksLikePrivateKey(ref string) bool {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(strings.TrimPrefix(ref, "0x"), "0X")
	b, err := hex.DecodeString(ref)
	return err == nil && len(b) == 32
}

// RedactSigner returns ref unless it is a raw key
func RedactSigner(ref string) string {
	if LooksLikePrivateKey(ref) {
		return "[REDACTED]"
	}
	return ref
}

// Signer is an account bound to one chain, able to authorise transactions.
// Nonce assignment is left to the chain client.
type Signer struct {
	address common.Address
	chainID *big.Int
	sign    func(*types.Transaction) (*types.Transaction, error)
}

// NewSigner derives a signer for chainID from the secret material.
func NewSigner(material *SecretMaterial, chainID *big.Int) (*Signer, error) {
	if material == nil || material.Wiped() {
		return nil, fmt.Errorf("secret material is not available")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain ID %v", chainID)
	}
	key := material.key
	txSigner := types.LatestSignerForChainID(chainID)
	return &Signer{
		address: material.Address(),
		chainID: new(big.Int).Set(chainID),
		sign: func(tx *types.Transaction) (*types.Transaction, error) {
			return types.SignTx(tx, txSigner, key)
		},
	}, nil
}

// NewSignerFunc builds a signer from an arbitrary signing function, e.g. a
// remote signer or a test double.
func NewSignerFunc(address common.Address, chainID *big.Int, sign func(*types.Transaction) (*types.Transaction, error)) *Signer {
	return &Signer{address: address, chainID: chainID, sign: sign}
}

func (s *Signer) Address() common.Address { return s.address }
func (s *Signer) ChainID() *big.Int       { return new(big.Int).Set(s.chainID) }

// SignTx signs tx for the signer's chain
func (s *Signer) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return s.sign(tx)
}

// LockKey identifies the account's nonce sequence. Network names that
// resolve to the same chain share one key.
func (s *Signer) LockKey() string {
	return s.chainID.String() + "/" + s.address.Hex()
}
