// Package wallet implements the in-memory multi-asset ledger: exact
// balance accounting, transfers, and withdrawal-voucher construction
// for Ether, ERC-20, ERC-721, and ERC-1155 assets, all under the
// staged-delta model the Environment uses for Accept/Reject semantics.
package wallet

import (
	"sort"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
)

type erc20Key struct {
	Wallet crabrolls.Address
	Token  crabrolls.Address
}

type erc721Key struct {
	Token crabrolls.Address
	ID    [32]byte
}

type erc1155Key struct {
	Wallet crabrolls.Address
	Token  crabrolls.Address
	ID     [32]byte
}

// Ledger is the four disjoint mappings of spec §3: ether, erc20,
// erc721, erc1155. It is Supervisor-scoped, never process-global, and
// is only ever mutated via ApplyDelta (on Accept) — reads and writes
// made during a callback go through a Delta instead.
type Ledger struct {
	ether   map[crabrolls.Address]crabrolls.Uint
	erc20   map[erc20Key]crabrolls.Uint
	erc721  map[erc721Key]crabrolls.Address
	erc1155 map[erc1155Key]crabrolls.Uint
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		ether:   make(map[crabrolls.Address]crabrolls.Uint),
		erc20:   make(map[erc20Key]crabrolls.Uint),
		erc721:  make(map[erc721Key]crabrolls.Address),
		erc1155: make(map[erc1155Key]crabrolls.Uint),
	}
}

// EtherBalance returns the ether balance of addr, defaulting to 0.
func (l *Ledger) EtherBalance(addr crabrolls.Address) crabrolls.Uint {
	if v, ok := l.ether[addr]; ok {
		return v
	}
	return crabrolls.ZeroUint()
}

// ERC20Balance returns the erc20 balance of (wallet, token), defaulting to 0.
func (l *Ledger) ERC20Balance(wallet, token crabrolls.Address) crabrolls.Uint {
	if v, ok := l.erc20[erc20Key{wallet, token}]; ok {
		return v
	}
	return crabrolls.ZeroUint()
}

// ERC721Owner returns the current owner of (token, id), if any.
// Absence means unowned-by-ledger, per spec §3.
func (l *Ledger) ERC721Owner(token crabrolls.Address, id crabrolls.Uint) (crabrolls.Address, bool) {
	owner, ok := l.erc721[erc721Key{token, id.Bytes32()}]
	return owner, ok
}

// ERC1155Balance returns the erc1155 balance of (wallet, token, id), defaulting to 0.
func (l *Ledger) ERC1155Balance(wallet, token crabrolls.Address, id crabrolls.Uint) crabrolls.Uint {
	if v, ok := l.erc1155[erc1155Key{wallet, token, id.Bytes32()}]; ok {
		return v
	}
	return crabrolls.ZeroUint()
}

// EtherAddresses returns, sorted by address byte-order, every address
// with a positive ether balance.
func (l *Ledger) EtherAddresses() []crabrolls.Address {
	out := make([]crabrolls.Address, 0, len(l.ether))
	for addr, bal := range l.ether {
		if !bal.IsZero() {
			out = append(out, addr)
		}
	}
	sortAddresses(out)
	return out
}

// ERC20Addresses returns, sorted, every wallet holding a positive
// balance of at least one ERC-20 token.
func (l *Ledger) ERC20Addresses() []crabrolls.Address {
	seen := make(map[crabrolls.Address]bool)
	for k, bal := range l.erc20 {
		if !bal.IsZero() {
			seen[k.Wallet] = true
		}
	}
	return sortedKeys(seen)
}

// ERC721Addresses returns, sorted, the set of current owners.
func (l *Ledger) ERC721Addresses() []crabrolls.Address {
	seen := make(map[crabrolls.Address]bool)
	for _, owner := range l.erc721 {
		seen[owner] = true
	}
	return sortedKeys(seen)
}

// ERC1155Addresses returns, sorted, every wallet with any positive
// id-balance.
func (l *Ledger) ERC1155Addresses() []crabrolls.Address {
	seen := make(map[crabrolls.Address]bool)
	for k, bal := range l.erc1155 {
		if !bal.IsZero() {
			seen[k.Wallet] = true
		}
	}
	return sortedKeys(seen)
}

// Snapshot returns a deep, independent copy of the ledger, used by the
// mock runtime to populate CycleResult.LedgerSnapshotAfter without
// aliasing live state.
func (l *Ledger) Snapshot() *Ledger {
	out := NewLedger()
	for k, v := range l.ether {
		out.ether[k] = v
	}
	for k, v := range l.erc20 {
		out.erc20[k] = v
	}
	for k, v := range l.erc721 {
		out.erc721[k] = v
	}
	for k, v := range l.erc1155 {
		out.erc1155[k] = v
	}
	return out
}

func sortAddresses(addrs []crabrolls.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return lessAddress(addrs[i], addrs[j])
	})
}

func lessAddress(a, b crabrolls.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortedKeys(set map[crabrolls.Address]bool) []crabrolls.Address {
	out := make([]crabrolls.Address, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sortAddresses(out)
	return out
}
