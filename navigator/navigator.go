package navigator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openweb3-io/walletbridge/types"
)

// microAlgosPerAlgo converts fee totals for display.
var microAlgosPerAlgo = decimal.NewFromInt(1_000_000)

// Location names where the reviewer currently is in the drill-down.
type Location int

const (
	// LocationGroupList is the root; it has no back transition.
	LocationGroupList Location = iota
	// LocationGroupDetail means a top-level transaction is selected.
	LocationGroupDetail
	// LocationInnerDetail means the reviewer is n >= 1 levels deep in the
	// inner transactions of the current selection.
	LocationInnerDetail
)

func (l Location) String() string {
	switch l {
	case LocationGroupList:
		return "group-list"
	case LocationGroupDetail:
		return "group-detail"
	case LocationInnerDetail:
		return "inner-detail"
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// Navigator is the drill-down state machine for one transactions sign
// request under review. It always begins with a null selection and an empty
// inner stack; a presentation layer may choose to render a single-transaction
// request as if already selected, but that shortcut is not navigator state.
// The navigator never mutates the request: it is review only.
type Navigator struct {
	groups   [][]types.Transaction
	flat     []types.Transaction
	selected int
	// stack holds the inner transactions drilled into, outermost first.
	// Represented as an explicit stack so back-navigation is O(1) at any
	// depth.
	stack []types.Transaction
}

// New builds a navigator over the request's transaction groups.
func New(groups [][]types.Transaction) *Navigator {
	var flat []types.Transaction
	for _, group := range groups {
		flat = append(flat, group...)
	}
	return &Navigator{
		groups:   groups,
		flat:     flat,
		selected: -1,
	}
}

// Location reports the current state.
func (n *Navigator) Location() Location {
	switch {
	case n.selected < 0:
		return LocationGroupList
	case len(n.stack) == 0:
		return LocationGroupDetail
	default:
		return LocationInnerDetail
	}
}

// Depth returns how many inner levels deep the reviewer is.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// SelectTransaction selects the top-level transaction at index, entering
// GroupDetail. Selecting any index discards partial drill state: the inner
// stack is reset unconditionally, never only when the index changes.
func (n *Navigator) SelectTransaction(index int) error {
	if index < 0 || index >= len(n.flat) {
		return fmt.Errorf("transaction index %d out of range", index)
	}
	n.selected = index
	n.stack = n.stack[:0]
	return nil
}

// DrillInto descends one level into inner, which must be an inner transaction
// of the currently viewed transaction.
func (n *Navigator) DrillInto(inner types.Transaction) error {
	if n.selected < 0 {
		return fmt.Errorf("no transaction selected")
	}
	n.stack = append(n.stack, inner)
	return nil
}

// Back pops one level: InnerDetail[1] returns to GroupDetail, GroupDetail
// returns to GroupList, and GroupList is a no-op.
func (n *Navigator) Back() Location {
	switch {
	case len(n.stack) > 0:
		n.stack = n.stack[:len(n.stack)-1]
	case n.selected >= 0:
		n.selected = -1
	}
	return n.Location()
}

// Current returns the transaction under review: the deepest drilled inner
// transaction, or the top-level selection. ok is false at GroupList.
func (n *Navigator) Current() (types.Transaction, bool) {
	if len(n.stack) > 0 {
		return n.stack[len(n.stack)-1], true
	}
	if n.selected >= 0 {
		return n.flat[n.selected], true
	}
	return types.Transaction{}, false
}

// Selected returns the selected top-level index, or -1.
func (n *Navigator) Selected() int {
	return n.selected
}

// Groups returns the transaction groups under review.
func (n *Navigator) Groups() [][]types.Transaction {
	return n.groups
}

// Transactions returns the top-level transactions across all groups in
// order, the index space SelectTransaction addresses.
func (n *Navigator) Transactions() []types.Transaction {
	return n.flat
}

// TotalFee aggregates the fee field across all transactions in all groups.
// A read-only projection, not navigator state.
func (n *Navigator) TotalFee() uint64 {
	var total uint64
	for _, txn := range n.flat {
		total += txn.Fee
	}
	return total
}

// TotalFeeAlgos renders the aggregate fee in whole currency units.
func (n *Navigator) TotalFeeAlgos() decimal.Decimal {
	return decimal.NewFromInt(int64(n.TotalFee())).Div(microAlgosPerAlgo)
}
