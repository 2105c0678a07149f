package types

import "slices"

// ChainID is the numeric identifier a connection negotiates during pairing,
// scoping it to one network, or to any network via the wildcard value.
type ChainID uint32

// List of negotiable chain ids
const (
	// ChainIDAll is the wildcard id, valid on any active network.
	ChainIDAll     = ChainID(4160)
	ChainIDMainnet = ChainID(416001)
	ChainIDTestnet = ChainID(416002)
	ChainIDBetanet = ChainID(416003)
)

var SupportedChainIDs = []ChainID{
	ChainIDAll,
	ChainIDMainnet,
	ChainIDTestnet,
	ChainIDBetanet,
}

func (id ChainID) IsValid() bool {
	return slices.Contains(SupportedChainIDs, id)
}

// Network is the locally active network the holder has selected.
type Network string

const (
	NetworkMainnet = Network("mainnet")
	NetworkTestnet = Network("testnet")
	NetworkBetanet = Network("betanet")
)

var SupportedNetworks = []Network{
	NetworkMainnet,
	NetworkTestnet,
	NetworkBetanet,
}

func (n Network) IsValid() bool {
	return slices.Contains(SupportedNetworks, n)
}

// ChainID maps a network to the chain id that pins a connection to it.
func (n Network) ChainID() ChainID {
	switch n {
	case NetworkMainnet:
		return ChainIDMainnet
	case NetworkTestnet:
		return ChainIDTestnet
	case NetworkBetanet:
		return ChainIDBetanet
	}
	return 0
}

// Compatible reports whether a connection negotiated with the given chain id
// may submit requests while this network is active. The wildcard id is
// compatible with every network.
func (n Network) Compatible(id ChainID) bool {
	if id == ChainIDAll {
		return true
	}
	return id == n.ChainID()
}

// Permission is a capability granted to a connection at approval time.
type Permission string

const (
	PermissionReadAccounts    = Permission("read-accounts")
	PermissionSignTransaction = Permission("sign-transaction")
	PermissionSignData        = Permission("sign-data")
)

var SupportedPermissions = []Permission{
	PermissionReadAccounts,
	PermissionSignTransaction,
	PermissionSignData,
}

func (p Permission) IsValid() bool {
	return slices.Contains(SupportedPermissions, p)
}
