// Package addressbook holds the canonical addresses of trusted portal
// contracts and the dapp-address relay, keyed by chain selector. The
// portal decoder performs exact-equality matches against these.
package addressbook

import (
	"fmt"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
)

// PortalKind identifies one of the six trusted senders the decoder
// recognizes.
type PortalKind int

const (
	EtherPortal PortalKind = iota
	ERC20Portal
	ERC721Portal
	ERC1155SinglePortal
	ERC1155BatchPortal
	DAppAddressRelay
)

func (k PortalKind) String() string {
	switch k {
	case EtherPortal:
		return "EtherPortal"
	case ERC20Portal:
		return "ERC20Portal"
	case ERC721Portal:
		return "ERC721Portal"
	case ERC1155SinglePortal:
		return "ERC1155SinglePortal"
	case ERC1155BatchPortal:
		return "ERC1155BatchPortal"
	case DAppAddressRelay:
		return "DAppAddressRelay"
	default:
		return "unknown"
	}
}

// ChainSelector picks which deployment's addresses a Book serves.
type ChainSelector int

const (
	Mainnet ChainSelector = iota
	Testnet
	Local
)

// ParseChainSelector maps a config string ("mainnet"|"testnet"|"local")
// to a ChainSelector.
func ParseChainSelector(s string) (ChainSelector, error) {
	switch s {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	case "local":
		return Local, nil
	default:
		return 0, fmt.Errorf("addressbook: unknown chain selector %q", s)
	}
}

// Book is the static portal/relay address table for one chain
// selector, along with the reverse index the decoder uses to classify
// an inbound msg_sender.
type Book struct {
	selector  ChainSelector
	addresses map[PortalKind]crabrolls.Address
	byAddress map[crabrolls.Address]PortalKind
}

// NewBook builds the address table for the given chain selector.
func NewBook(selector ChainSelector) (*Book, error) {
	table, ok := tables[selector]
	if !ok {
		return nil, fmt.Errorf("addressbook: no table for chain selector %d", selector)
	}

	b := &Book{
		selector:  selector,
		addresses: make(map[PortalKind]crabrolls.Address, len(table)),
		byAddress: make(map[crabrolls.Address]PortalKind, len(table)),
	}
	for kind, hex := range table {
		addr, err := crabrolls.AddressFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("addressbook: invalid canonical address for %s: %w", kind, err)
		}
		b.addresses[kind] = addr
		b.byAddress[addr] = kind
	}
	return b, nil
}

// Address returns the canonical address for a portal kind.
func (b *Book) Address(kind PortalKind) (crabrolls.Address, bool) {
	a, ok := b.addresses[kind]
	return a, ok
}

// Classify returns the PortalKind whose canonical address equals addr,
// if any — an exact byte-wise match, never a prefix or case-insensitive
// comparison.
func (b *Book) Classify(addr crabrolls.Address) (PortalKind, bool) {
	kind, ok := b.byAddress[addr]
	return kind, ok
}

// Selector reports which chain selector this Book was built for.
func (b *Book) Selector() ChainSelector { return b.selector }

// tables holds the canonical address for every portal kind, per chain
// selector. Mainnet and testnet addresses are the canonical Cartesi
// Rollups deployment addresses; local matches the addresses the
// reference local devnet (and this package's own mock runtime) uses.
var tables = map[ChainSelector]map[PortalKind]string{
	Mainnet: {
		EtherPortal:         "0xFfdbe43d4c855BF7e0f105c400A50857f53AB044",
		ERC20Portal:         "0x9C21AEb2093C32DDbC53eEF24B873BDCd1aDa1DB",
		ERC721Portal:        "0x237F8DD094C0e47f4236f12b4Fa01d6Dae2f2761",
		ERC1155SinglePortal: "0x7CFB0193Ca87eB6e48056885E026552c3A941FC4",
		ERC1155BatchPortal:  "0xedB53860A6B52bbb7561Ad596416ee9965B055Aa",
		DAppAddressRelay:    "0xF5DE34d6BbC0446E2a45719E718efEbaaE179daE",
	},
	Testnet: {
		EtherPortal:         "0xFfdbe43d4c855BF7e0f105c400A50857f53AB044",
		ERC20Portal:         "0x9C21AEb2093C32DDbC53eEF24B873BDCd1aDa1DB",
		ERC721Portal:        "0x237F8DD094C0e47f4236f12b4Fa01d6Dae2f2761",
		ERC1155SinglePortal: "0x7CFB0193Ca87eB6e48056885E026552c3A941FC4",
		ERC1155BatchPortal:  "0xedB53860A6B52bbb7561Ad596416ee9965B055Aa",
		DAppAddressRelay:    "0xF5DE34d6BbC0446E2a45719E718efEbaaE179daE",
	},
	Local: {
		EtherPortal:         "0xFfdbe43d4c855BF7e0f105c400A50857f53AB044",
		ERC20Portal:         "0x9C21AEb2093C32DDbC53eEF24B873BDCd1aDa1DB",
		ERC721Portal:        "0x237F8DD094C0e47f4236f12b4Fa01d6Dae2f2761",
		ERC1155SinglePortal: "0x7CFB0193Ca87eB6e48056885E026552c3A941FC4",
		ERC1155BatchPortal:  "0xedB53860A6B52bbb7561Ad596416ee9965B055Aa",
		DAppAddressRelay:    "0xF5DE34d6BbC0446E2a45719E718efEbaaE179daE",
	},
}
