// Package crabrolls is a host-side framework for Cartesi-style rollup
// dapps. It drives the rollup HTTP protocol's finish/advance/inspect
// cycle, decodes portal deposits, and exposes a staged multi-asset
// wallet ledger to application callbacks through an Environment.
package crabrolls
