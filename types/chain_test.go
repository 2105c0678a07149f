package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openweb3-io/walletbridge/types"
)

func TestNetworkChainID(t *testing.T) {
	require.EqualValues(t, 416001, types.NetworkMainnet.ChainID())
	require.EqualValues(t, 416002, types.NetworkTestnet.ChainID())
	require.EqualValues(t, 416003, types.NetworkBetanet.ChainID())
}

func TestNetworkCompatible(t *testing.T) {
	vectors := []struct {
		network    types.Network
		chainID    types.ChainID
		compatible bool
	}{
		{types.NetworkMainnet, types.ChainIDMainnet, true},
		{types.NetworkMainnet, types.ChainIDTestnet, false},
		{types.NetworkTestnet, types.ChainIDTestnet, true},
		{types.NetworkTestnet, types.ChainIDMainnet, false},
		{types.NetworkBetanet, types.ChainIDBetanet, true},
		// The wildcard id pairs with every network.
		{types.NetworkMainnet, types.ChainIDAll, true},
		{types.NetworkTestnet, types.ChainIDAll, true},
		{types.NetworkBetanet, types.ChainIDAll, true},
	}
	for _, v := range vectors {
		require.Equal(t, v.compatible, v.network.Compatible(v.chainID),
			"network %s chain %d", v.network, v.chainID)
	}
}

func TestConnectionAuthorized(t *testing.T) {
	conn := &types.Connection{Addresses: []string{"addr1"}}
	require.True(t, conn.Authorized("addr1"))
	require.False(t, conn.Authorized("addr2"))
}

func TestConnectionHasPermission(t *testing.T) {
	conn := &types.Connection{Permissions: []types.Permission{types.PermissionSignTransaction}}
	require.True(t, conn.HasPermission(types.PermissionSignTransaction))
	require.False(t, conn.HasPermission(types.PermissionSignData))
}
