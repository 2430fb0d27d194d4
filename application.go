package crabrolls

// Application is the dapp author's business logic. The Supervisor
// invokes Advance once per Advance input that the portal decoder
// routes to the application (spec §4.D), and Inspect once per Inspect
// input. Returning an error is equivalent to returning (StatusReject,
// nil) after the Supervisor attaches a synthetic report carrying the
// error's message (spec §7).
type Application interface {
	Advance(env Environment, metadata Metadata, deposit *Deposit, payload []byte) (FinishStatus, error)
	Inspect(env Environment, payload []byte) (FinishStatus, error)
}
