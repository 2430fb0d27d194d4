// Command crabrolls-echo is a diagnostic devtool binary: it wires a
// Supervisor against the rollup HTTP server using the standard
// environment-driven configuration, running a minimal Application
// that echoes every Advance payload back as a notice and every
// Inspect payload back as a report. It exists to exercise the
// Supervisor/Core/Decoder/Ledger wiring against a real host, not as a
// business dapp.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/addressbook"
	"github.com/crabrolls-cartesi/crabrolls/config"
	"github.com/crabrolls-cartesi/crabrolls/engine"
	"github.com/crabrolls-cartesi/crabrolls/internal/hostclient"
	"github.com/crabrolls-cartesi/crabrolls/portal"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

// echoApp reflects every input back to the host, for smoke-testing a
// Supervisor's wiring without any domain logic.
type echoApp struct{}

func (echoApp) Advance(env crabrolls.Environment, _ crabrolls.Metadata, _ *crabrolls.Deposit, payload []byte) (crabrolls.FinishStatus, error) {
	if _, err := env.SendNotice(payload); err != nil {
		return crabrolls.StatusReject, err
	}
	return crabrolls.StatusAccept, nil
}

func (echoApp) Inspect(env crabrolls.Environment, payload []byte) (crabrolls.FinishStatus, error) {
	if _, err := env.SendReport(payload); err != nil {
		return crabrolls.StatusReject, err
	}
	return crabrolls.StatusAccept, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting crabrolls-echo",
		zap.String("rollup_http_server_url", cfg.RollupHTTPServerURL),
		zap.Int("chain_selector", int(cfg.ChainSelector)),
		zap.String("log_level", cfg.LogLevel),
	)

	book, err := addressbook.NewBook(cfg.ChainSelector)
	if err != nil {
		logger.Fatal("failed to build address book", zap.Error(err))
	}

	decoder := portal.NewDecoder(book, cfg.PortalHandlerOverrides)
	core := engine.NewCore(echoApp{}, decoder, wallet.NewLedger())
	client := hostclient.New(cfg.RollupHTTPServerURL, nil)
	supervisor := engine.NewSupervisor(core, client, logger)
	supervisor.SetBackoff(cfg.MinBackoff, cfg.MaxBackoff)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal, stopping supervisor")
		cancel()
	}()

	if err := supervisor.Run(ctx); err != nil {
		logger.Fatal("supervisor exited with error", zap.Error(err))
	}

	logger.Info("crabrolls-echo shutdown complete")
}
