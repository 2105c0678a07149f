package accounts

import (
	"crypto/ed25519"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"
)

// txIDPrefix domain-separates transaction signatures.
var txIDPrefix = []byte("TX")

// Signer produces signatures for one address. groupIndices selects which
// transactions of txns this signer is responsible for; the result slice is
// parallel to txns, with zero-value entries at positions it did not sign.
type Signer interface {
	Address() string
	Sign(txns []sdktypes.Transaction, groupIndices []int) ([]sdktypes.SignedTxn, error)
	SignData(data []byte) ([]byte, error)
}

// EphemeralSigner signs with an in-memory ed25519 key. It backs
// CapabilityFull accounts.
type EphemeralSigner struct {
	account crypto.Account
}

var _ Signer = &EphemeralSigner{}

// NewEphemeralSigner generates a fresh account and signer.
func NewEphemeralSigner() *EphemeralSigner {
	return &EphemeralSigner{account: crypto.GenerateAccount()}
}

// NewEphemeralSignerFromKey wraps an existing private key.
func NewEphemeralSignerFromKey(key ed25519.PrivateKey) (*EphemeralSigner, error) {
	account, err := crypto.AccountFromPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &EphemeralSigner{account: account}, nil
}

func (s *EphemeralSigner) Address() string {
	return s.account.Address.String()
}

func (s *EphemeralSigner) Sign(txns []sdktypes.Transaction, groupIndices []int) ([]sdktypes.SignedTxn, error) {
	out := make([]sdktypes.SignedTxn, len(txns))
	for _, idx := range groupIndices {
		if idx < 0 || idx >= len(txns) {
			return nil, fmt.Errorf("group index %d out of range", idx)
		}
		st, err := s.signOne(txns[idx])
		if err != nil {
			return nil, err
		}
		out[idx] = st
	}
	return out, nil
}

func (s *EphemeralSigner) SignData(data []byte) ([]byte, error) {
	return ed25519.Sign(s.account.PrivateKey, data), nil
}

func (s *EphemeralSigner) signOne(txn sdktypes.Transaction) (sdktypes.SignedTxn, error) {
	toSign := append([]byte{}, txIDPrefix...)
	toSign = append(toSign, msgpack.Encode(&txn)...)
	rawSig := ed25519.Sign(s.account.PrivateKey, toSign)

	st := sdktypes.SignedTxn{Txn: txn}
	copy(st.Sig[:], rawSig)
	// A signature from a key other than the sender's must carry the
	// authorizing address so validators credit it correctly.
	if txn.Sender != s.account.Address {
		st.AuthAddr = s.account.Address
	}
	return st, nil
}
