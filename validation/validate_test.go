package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/accounts"
	"github.com/openweb3-io/walletbridge/registry"
	"github.com/openweb3-io/walletbridge/types"
	"github.com/openweb3-io/walletbridge/validation"
)

func fixtures(t *testing.T, chainID types.ChainID) (*registry.Registry, *accounts.MemoryDirectory) {
	t.Helper()
	reg, err := registry.New(registry.NewMemoryStore())
	require.NoError(t, err)

	require.NoError(t, reg.Upsert(types.Connection{
		ID:          "conn-1",
		Peer:        types.PeerMeta{Name: "dapp"},
		ChainID:     chainID,
		Permissions: []types.Permission{types.PermissionSignTransaction, types.PermissionSignData},
		Addresses:   []string{"addr1", "ledger-addr"},
		Connected:   true,
		LastActive:  time.Now(),
	}))

	dir := accounts.NewMemoryDirectory()
	dir.Add(accounts.Account{Address: "addr1", Capability: accounts.CapabilityFull}, nil)
	dir.Add(accounts.Account{Address: "addr2", Capability: accounts.CapabilityFull}, nil)
	dir.Add(accounts.Account{Address: "ledger-addr", Capability: accounts.CapabilityLedger}, nil)
	return reg, dir
}

func TestValidateUnknownConnection(t *testing.T) {
	reg, dir := fixtures(t, types.ChainIDTestnet)
	err := validation.Validate(reg, dir, types.NetworkTestnet, "missing", 0, "")
	require.ErrorIs(t, err, types.ErrInvalidSession)
}

func TestValidateNetworkMismatch(t *testing.T) {
	reg, dir := fixtures(t, types.ChainIDMainnet)
	err := validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", 0, "")
	require.ErrorIs(t, err, types.ErrInvalidNetwork)
}

func TestValidateWildcardChainOnTestnet(t *testing.T) {
	// A connection negotiated with the wildcard chain id 4160 is valid on
	// whatever network is active.
	reg, dir := fixtures(t, types.ChainIDAll)
	require.NoError(t, validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", types.ChainIDAll, ""))
	require.NoError(t, validation.Validate(reg, dir, types.NetworkMainnet, "conn-1", 0, ""))
}

func TestValidateDeclaredChainOverridesNegotiated(t *testing.T) {
	reg, dir := fixtures(t, types.ChainIDAll)
	err := validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", types.ChainIDMainnet, "")
	require.ErrorIs(t, err, types.ErrInvalidNetwork)
}

func TestValidateUnauthorizedSigner(t *testing.T) {
	// addr2 is locally held and signable, but the connection only authorized
	// addr1.
	reg, dir := fixtures(t, types.ChainIDTestnet)
	err := validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", 0, "addr2")
	require.ErrorIs(t, err, types.ErrInvalidSigner)
}

func TestValidateUnknownSigner(t *testing.T) {
	reg, dir := fixtures(t, types.ChainIDTestnet)
	require.NoError(t, reg.Upsert(types.Connection{
		ID:        "conn-2",
		ChainID:   types.ChainIDTestnet,
		Addresses: []string{"ghost"},
	}))
	err := validation.Validate(reg, dir, types.NetworkTestnet, "conn-2", 0, "ghost")
	require.ErrorIs(t, err, types.ErrInvalidSigner)
}

func TestValidateLedgerSignerRejected(t *testing.T) {
	// Address-authorized but hardware-backed: no in-process signer, so the
	// request is rejected rather than routed to a device.
	reg, dir := fixtures(t, types.ChainIDTestnet)
	err := validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", 0, "ledger-addr")
	require.ErrorIs(t, err, types.ErrInvalidSigner)
}

func TestValidateOk(t *testing.T) {
	reg, dir := fixtures(t, types.ChainIDTestnet)
	require.NoError(t, validation.Validate(reg, dir, types.NetworkTestnet, "conn-1", 0, "addr1"))
}
