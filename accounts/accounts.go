package accounts

import (
	"fmt"
	"sort"
	"sync"
)

// Capability describes how an account held in the directory can participate
// in signing.
type Capability string

const (
	// CapabilityFull accounts hold an in-process signer.
	CapabilityFull = Capability("full")
	// CapabilityWatch accounts are view-only.
	CapabilityWatch = Capability("watch")
	// CapabilityLedger accounts are backed by a hardware device without an
	// in-process signer. Remote hardware signing is not supported through
	// this path, so they validate like watch accounts.
	CapabilityLedger = Capability("ledger")
)

// Account is one locally held account.
type Account struct {
	Address    string
	Name       string
	Capability Capability
}

// Signable reports whether the account can produce signatures in-process.
func (a Account) Signable() bool {
	return a.Capability == CapabilityFull
}

// Directory is the account lookup contract the bridge consumes.
type Directory interface {
	// ListSigningCapable returns every account that can sign in-process.
	ListSigningCapable() []Account
	// Get looks up an account by address.
	Get(address string) (Account, bool)
	// SignerFor returns the signer bound to an address.
	SignerFor(address string) (Signer, error)
}

// MemoryDirectory is an in-memory Directory keyed by address.
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]Account
	signers  map[string]Signer
}

var _ Directory = &MemoryDirectory{}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		accounts: make(map[string]Account),
		signers:  make(map[string]Signer),
	}
}

// Add registers an account, with its signer when one exists in-process.
func (d *MemoryDirectory) Add(account Account, signer Signer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[account.Address] = account
	if signer != nil {
		d.signers[account.Address] = signer
	}
}

func (d *MemoryDirectory) ListSigningCapable() []Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Account, 0, len(d.accounts))
	for _, account := range d.accounts {
		if account.Signable() {
			out = append(out, account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (d *MemoryDirectory) Get(address string) (Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	account, ok := d.accounts[address]
	return account, ok
}

func (d *MemoryDirectory) SignerFor(address string) (Signer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	signer, ok := d.signers[address]
	if !ok {
		return nil, fmt.Errorf("no signer for address %s", address)
	}
	return signer, nil
}
