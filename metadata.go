package crabrolls

// Metadata accompanies every Advance input. It is immutable for the
// duration of the callback.
type Metadata struct {
	MsgSender      Address
	BlockNumber    uint64
	BlockTimestamp uint64
	InputIndex     uint64
	EpochIndex     uint64
	PrevRandao     Uint
}
