package types

// TxType is the transaction-type tag of a reviewable transaction.
type TxType string

// TxType values
const (
	TxTypePayment       = TxType("pay")
	TxTypeKeyReg        = TxType("keyreg")
	TxTypeAssetConfig   = TxType("acfg")
	TxTypeAssetTransfer = TxType("axfer")
	TxTypeAssetFreeze   = TxType("afrz")
	TxTypeAppCall       = TxType("appl")
	TxTypeStateProof    = TxType("stpf")
)

// Transaction is the display/navigation unit the reviewer drills into. It is
// a lossy-by-design projection of the wire form: it keeps every field the
// review surface shows and drops protocol fields irrelevant to display.
// Inner transactions nest recursively to unbounded depth.
type Transaction struct {
	Sender string
	Fee    uint64
	Type   TxType

	Payment       *PaymentFields
	AssetTransfer *AssetTransferFields
	AppCall       *AppCallFields
	KeyReg        *KeyRegFields
	AssetConfig   *AssetConfigFields
	AssetFreeze   *AssetFreezeFields

	Note      []byte
	GenesisID string
	// Group is the base64 group digest shared by every member of an atomic
	// group, empty for a lone transaction.
	Group string

	// Inner holds transactions produced by application-call execution,
	// reviewable but not independently signable.
	Inner []Transaction
}

type PaymentFields struct {
	Receiver string
	Amount   uint64
	CloseTo  string
}

type AssetTransferFields struct {
	AssetID  uint64
	Receiver string
	Amount   uint64
	CloseTo  string
}

type AppCallFields struct {
	AppID        uint64
	OnCompletion string
	Args         [][]byte
	Accounts     []string
}

type KeyRegFields struct {
	Online bool
}

type AssetConfigFields struct {
	AssetID   uint64
	UnitName  string
	AssetName string
	Total     uint64
	Decimals  uint32
}

type AssetFreezeFields struct {
	AssetID uint64
	Target  string
	Frozen  bool
}
