package wallet

import crabrolls "github.com/crabrolls-cartesi/crabrolls"

// Voucher is an L1 call the ledger wants the caller (the Environment)
// to buffer as an output — the payload a withdraw operation built.
type Voucher struct {
	Destination crabrolls.Address
	Payload     []byte
}
