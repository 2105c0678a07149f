package testutil

import (
	"encoding/base64"
	"encoding/json"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	sdktypes "github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/openweb3-io/walletbridge/protocol/wire"
	"github.com/openweb3-io/walletbridge/types"
)

// PaymentTxn builds a minimal payment transaction fixture.
func PaymentTxn(sender, receiver sdktypes.Address, amount, fee uint64) sdktypes.Transaction {
	return sdktypes.Transaction{
		Type: sdktypes.PaymentTx,
		Header: sdktypes.Header{
			Sender:    sender,
			Fee:       sdktypes.MicroAlgos(fee),
			GenesisID: "testnet-v1.0",
		},
		PaymentTxnFields: sdktypes.PaymentTxnFields{
			Receiver: receiver,
			Amount:   sdktypes.MicroAlgos(amount),
		},
	}
}

// WalletTxn wraps a transaction the way it travels in algo_signTxn payloads.
func WalletTxn(txn sdktypes.Transaction) wire.WalletTransaction {
	return wire.WalletTransaction{
		Txn: base64.StdEncoding.EncodeToString(msgpack.Encode(&txn)),
	}
}

// SignTxnsPayload marshals groups into an algo_signTxn params blob.
func SignTxnsPayload(chainID types.ChainID, groups [][]wire.WalletTransaction) json.RawMessage {
	raw, err := json.Marshal(wire.SignTxnsParams{ChainID: chainID, Groups: groups})
	if err != nil {
		panic(err)
	}
	return raw
}

// SignDataPayload marshals an algo_signData params blob.
func SignDataPayload(chainID types.ChainID, signer, message string, data []byte) json.RawMessage {
	raw, err := json.Marshal(wire.SignDataParams{
		ChainID: chainID,
		Signer:  signer,
		Message: message,
		Data:    base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		panic(err)
	}
	return raw
}

// SessionRequestPayload marshals a session_request params blob.
func SessionRequestPayload(peerID, name string, chainID types.ChainID) json.RawMessage {
	raw, err := json.Marshal(wire.SessionRequestParams{
		PeerID:   peerID,
		PeerMeta: types.PeerMeta{Name: name, URL: "https://example.org"},
		ChainID:  chainID,
	})
	if err != nil {
		panic(err)
	}
	return raw
}
