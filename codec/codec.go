package codec

import (
	"encoding/base64"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/openweb3-io/walletbridge/types"
)

// DecodeUnsigned decodes the wire binary form of an unsigned transaction, as
// carried by sign-transaction requests.
func DecodeUnsigned(wire []byte) (sdktypes.Transaction, error) {
	var txn sdktypes.Transaction
	if err := msgpack.Decode(wire, &txn); err != nil {
		return sdktypes.Transaction{}, types.WrapErr(types.ErrSignRequest, err)
	}
	return txn, nil
}

// Decode converts a wire-form transaction into the display model. Both
// unsigned transactions and executed signed transactions are accepted; the
// latter carry the inner transactions produced by application calls, which
// are mapped recursively.
func Decode(wire []byte) (types.Transaction, error) {
	var stad sdktypes.SignedTxnWithAD
	if err := msgpack.Decode(wire, &stad); err == nil && stad.Txn.Type != "" {
		return displayWithAD(stad), nil
	}
	txn, err := DecodeUnsigned(wire)
	if err != nil {
		return types.Transaction{}, err
	}
	return Display(txn), nil
}

// EncodeSigned returns the wire binary form of a signed transaction. An
// explicitly supplied alternate authorizing address takes precedence over the
// transaction's original sender and is preserved in the output.
func EncodeSigned(st sdktypes.SignedTxn, authAddr string) ([]byte, error) {
	if authAddr != "" {
		addr, err := sdktypes.DecodeAddress(authAddr)
		if err != nil {
			return nil, types.WrapErr(types.ErrSignRequest, err)
		}
		st.AuthAddr = addr
	}
	return msgpack.Encode(&st), nil
}

// Display projects an unsigned transaction into the display model. The round
// trip is lossless for every field the review surface shows.
func Display(txn sdktypes.Transaction) types.Transaction {
	out := types.Transaction{
		Sender:    txn.Sender.String(),
		Fee:       uint64(txn.Fee),
		Type:      types.TxType(txn.Type),
		Note:      txn.Note,
		GenesisID: txn.GenesisID,
	}
	if (txn.Group != sdktypes.Digest{}) {
		out.Group = groupID(txn.Group)
	}

	switch txn.Type {
	case sdktypes.PaymentTx:
		out.Payment = &types.PaymentFields{
			Receiver: txn.Receiver.String(),
			Amount:   uint64(txn.Amount),
			CloseTo:  optionalAddr(txn.CloseRemainderTo),
		}
	case sdktypes.AssetTransferTx:
		out.AssetTransfer = &types.AssetTransferFields{
			AssetID:  uint64(txn.XferAsset),
			Receiver: txn.AssetReceiver.String(),
			Amount:   txn.AssetAmount,
			CloseTo:  optionalAddr(txn.AssetCloseTo),
		}
	case sdktypes.ApplicationCallTx:
		accounts := make([]string, 0, len(txn.Accounts))
		for _, acct := range txn.Accounts {
			accounts = append(accounts, acct.String())
		}
		out.AppCall = &types.AppCallFields{
			AppID:        uint64(txn.ApplicationID),
			OnCompletion: onCompletionString(txn.OnCompletion),
			Args:         txn.ApplicationArgs,
			Accounts:     accounts,
		}
	case sdktypes.KeyRegistrationTx:
		out.KeyReg = &types.KeyRegFields{
			Online: !txn.Nonparticipation && txn.VoteLast > 0,
		}
	case sdktypes.AssetConfigTx:
		out.AssetConfig = &types.AssetConfigFields{
			AssetID:   uint64(txn.ConfigAsset),
			UnitName:  txn.AssetParams.UnitName,
			AssetName: txn.AssetParams.AssetName,
			Total:     txn.AssetParams.Total,
			Decimals:  txn.AssetParams.Decimals,
		}
	case sdktypes.AssetFreezeTx:
		out.AssetFreeze = &types.AssetFreezeFields{
			AssetID: uint64(txn.FreezeAsset),
			Target:  txn.FreezeAccount.String(),
			Frozen:  txn.AssetFrozen,
		}
	}
	return out
}

// DisplayGroups projects wire transaction groups into display groups,
// preserving group and intra-group order.
func DisplayGroups(groups [][]types.WireTransaction) [][]types.Transaction {
	out := make([][]types.Transaction, 0, len(groups))
	for _, group := range groups {
		display := make([]types.Transaction, 0, len(group))
		for _, wt := range group {
			display = append(display, Display(wt.Txn))
		}
		out = append(out, display)
	}
	return out
}

func displayWithAD(stad sdktypes.SignedTxnWithAD) types.Transaction {
	out := Display(stad.Txn)
	for _, inner := range stad.EvalDelta.InnerTxns {
		out.Inner = append(out.Inner, displayWithAD(inner))
	}
	return out
}

func optionalAddr(addr sdktypes.Address) string {
	if addr.IsZero() {
		return ""
	}
	return addr.String()
}

func groupID(digest sdktypes.Digest) string {
	return base64.StdEncoding.EncodeToString(digest[:])
}

func onCompletionString(oc sdktypes.OnCompletion) string {
	switch oc {
	case sdktypes.NoOpOC:
		return "noop"
	case sdktypes.OptInOC:
		return "optin"
	case sdktypes.CloseOutOC:
		return "closeout"
	case sdktypes.ClearStateOC:
		return "clearstate"
	case sdktypes.UpdateApplicationOC:
		return "update"
	case sdktypes.DeleteApplicationOC:
		return "delete"
	}
	return "unknown"
}
