package portal

import "github.com/crabrolls-cartesi/crabrolls/addressbook"

// Mode tags a HandlerConfig's behavior, per spec §4.D.
type Mode int

const (
	// ModeHandle mutates the ledger; Advance controls whether the
	// application callback is invoked with the synthesized Deposit.
	ModeHandle Mode = iota
	// ModeIgnore skips the ledger mutation and calls the application
	// with no Deposit and the untouched raw payload.
	ModeIgnore
	// ModeDispense skips the ledger mutation and never calls the
	// application.
	ModeDispense
)

// HandlerConfig is the per-portal behavior the decoder honors. The
// zero value is ModeHandle with Advance false (mutate the ledger, do
// not call the application); the default, Handle(true), comes from
// DefaultConfigs.
type HandlerConfig struct {
	Mode    Mode
	Advance bool
}

// Handle builds a ModeHandle config.
func Handle(advance bool) HandlerConfig {
	return HandlerConfig{Mode: ModeHandle, Advance: advance}
}

// Ignore builds a ModeIgnore config.
func Ignore() HandlerConfig { return HandlerConfig{Mode: ModeIgnore} }

// Dispense builds a ModeDispense config.
func Dispense() HandlerConfig { return HandlerConfig{Mode: ModeDispense} }

// DefaultConfigs returns Handle(true) for every asset portal, the
// spec's documented default.
func DefaultConfigs() map[addressbook.PortalKind]HandlerConfig {
	return map[addressbook.PortalKind]HandlerConfig{
		addressbook.EtherPortal:         Handle(true),
		addressbook.ERC20Portal:         Handle(true),
		addressbook.ERC721Portal:        Handle(true),
		addressbook.ERC1155SinglePortal: Handle(true),
		addressbook.ERC1155BatchPortal:  Handle(true),
	}
}
