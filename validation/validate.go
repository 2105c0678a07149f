package validation

import (
	"github.com/openweb3-io/walletbridge/accounts"
	"github.com/openweb3-io/walletbridge/registry"
	"github.com/openweb3-io/walletbridge/types"
)

// Validate checks a candidate request against the session registry before it
// is admitted. Nothing partially valid is ever enqueued: every failure here
// is raised before a SignRequest is constructed.
//
// requestChainID is the chain id the inbound event declared; zero falls back
// to the connection's negotiated id. signer is optional ("" skips the signer
// check).
func Validate(reg *registry.Registry, dir accounts.Directory, active types.Network, connID string, requestChainID types.ChainID, signer string) error {
	conn, ok := reg.Find(connID)
	if !ok {
		return types.WrapErr(types.ErrInvalidSession, nil)
	}

	chainID := requestChainID
	if chainID == 0 {
		chainID = conn.ChainID
	}
	if !active.Compatible(chainID) {
		return types.WrapErr(types.ErrInvalidNetwork, nil)
	}

	if signer != "" {
		if !conn.Authorized(signer) {
			return types.WrapErr(types.ErrInvalidSigner, nil)
		}
		account, ok := dir.Get(signer)
		if !ok {
			return types.WrapErr(types.ErrInvalidSigner, nil)
		}
		// Watch and ledger accounts are address-authorized but carry no
		// in-process signer; hardware-backed remote signing is not
		// supported through this path.
		if !account.Signable() {
			return types.WrapErr(types.ErrInvalidSigner, nil)
		}
	}

	return nil
}
