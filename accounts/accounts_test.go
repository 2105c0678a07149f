package accounts_test

import (
	"crypto/ed25519"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/accounts"
)

func TestDirectoryListsOnlySigningCapable(t *testing.T) {
	dir := accounts.NewMemoryDirectory()
	signer := accounts.NewEphemeralSigner()
	dir.Add(accounts.Account{Address: signer.Address(), Capability: accounts.CapabilityFull}, signer)
	dir.Add(accounts.Account{Address: "watch-addr", Capability: accounts.CapabilityWatch}, nil)
	dir.Add(accounts.Account{Address: "ledger-addr", Capability: accounts.CapabilityLedger}, nil)

	capable := dir.ListSigningCapable()
	require.Len(t, capable, 1)
	require.Equal(t, signer.Address(), capable[0].Address)

	_, err := dir.SignerFor("watch-addr")
	require.Error(t, err)

	got, err := dir.SignerFor(signer.Address())
	require.NoError(t, err)
	require.Equal(t, signer.Address(), got.Address())
}

func TestEphemeralSignerSignsSelectedIndices(t *testing.T) {
	signer := accounts.NewEphemeralSigner()
	sender, err := sdktypes.DecodeAddress(signer.Address())
	require.NoError(t, err)

	txns := []sdktypes.Transaction{
		{Type: sdktypes.PaymentTx, Header: sdktypes.Header{Sender: sender, Fee: 1000}},
		{Type: sdktypes.PaymentTx, Header: sdktypes.Header{Sender: sender, Fee: 1000}},
		{Type: sdktypes.PaymentTx, Header: sdktypes.Header{Sender: sender, Fee: 1000}},
	}
	signed, err := signer.Sign(txns, []int{0, 2})
	require.NoError(t, err)
	require.Len(t, signed, 3)

	// Selected positions carry valid signatures over "TX" || msgpack(txn);
	// the sender address doubles as the ed25519 public key.
	for _, idx := range []int{0, 2} {
		st := signed[idx]
		require.Equal(t, txns[idx], st.Txn)
		require.True(t, st.AuthAddr.IsZero())

		toSign := append([]byte("TX"), msgpack.Encode(&txns[idx])...)
		require.True(t, ed25519.Verify(ed25519.PublicKey(sender[:]), toSign, st.Sig[:]))
	}
	// Unselected positions stay zero.
	require.Equal(t, sdktypes.SignedTxn{}, signed[1])
}

func TestEphemeralSignerSetsAuthAddrForForeignSender(t *testing.T) {
	signer := accounts.NewEphemeralSigner()
	foreign := crypto.GenerateAccount().Address

	txns := []sdktypes.Transaction{
		{Type: sdktypes.PaymentTx, Header: sdktypes.Header{Sender: foreign, Fee: 1000}},
	}
	signed, err := signer.Sign(txns, []int{0})
	require.NoError(t, err)
	require.Equal(t, signer.Address(), signed[0].AuthAddr.String())
}

func TestEphemeralSignerIndexOutOfRange(t *testing.T) {
	signer := accounts.NewEphemeralSigner()
	_, err := signer.Sign([]sdktypes.Transaction{{}}, []int{1})
	require.Error(t, err)
}

func TestSignData(t *testing.T) {
	key := make([]byte, ed25519.SeedSize)
	private := ed25519.NewKeyFromSeed(key)
	signer, err := accounts.NewEphemeralSignerFromKey(private)
	require.NoError(t, err)

	sig, err := signer.SignData([]byte("hello"))
	require.NoError(t, err)
	require.True(t, ed25519.Verify(private.Public().(ed25519.PublicKey), []byte("hello"), sig))
}
