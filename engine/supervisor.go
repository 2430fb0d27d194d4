package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/internal/hostclient"
)

// hostTransport is the subset of hostclient.Client a Supervisor
// depends on; Run is driven against this interface so tests can point
// it at an httptest-backed mock host without touching real sockets.
type hostTransport interface {
	Finish(ctx context.Context, status string) (*hostclient.FinishResponse, error)
	AddNotice(ctx context.Context, payload []byte) (int, error)
	AddReport(ctx context.Context, payload []byte) (int, error)
	AddVoucher(ctx context.Context, destination [20]byte, payload []byte) (int, error)
}

// Supervisor drives the Idle -> Finishing -> Handling -> Flushing ->
// Idle cycle against a host transport, delegating the actual cycle
// semantics to a Core.
type Supervisor struct {
	core   *Core
	client hostTransport
	logger *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewSupervisor wires a Core against a host transport. logger may be
// nil, in which case a no-op logger is used.
func NewSupervisor(core *Core, client hostTransport, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{
		core:       core,
		client:     client,
		logger:     logger,
		minBackoff: 50 * time.Millisecond,
		maxBackoff: 2 * time.Second,
	}
}

// Run drives cycles until ctx is canceled or the host transport
// returns a protocol-terminal error. A canceled context returns nil;
// any other error is a *crabrolls.ProtocolError.
func (s *Supervisor) Run(ctx context.Context) error {
	status := string(crabrolls.StatusAccept)
	backoff := s.minBackoff

	for {
		if ctx.Err() != nil {
			return nil
		}

		correlationID := uuid.NewString()
		log := s.logger.With(zap.String("cycle_id", correlationID))

		resp, err := s.client.Finish(ctx, status)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &crabrolls.ProtocolError{Op: "finish", Err: err}
		}
		if resp == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, s.maxBackoff)
			continue
		}
		backoff = s.minBackoff

		status, err = s.handleCycle(ctx, log, resp)
		if err != nil {
			return err
		}
	}
}

// SetBackoff overrides the default empty-poll backoff bounds. It must
// be called before Run starts.
func (s *Supervisor) SetBackoff(min, max time.Duration) {
	s.minBackoff = min
	s.maxBackoff = max
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func (s *Supervisor) handleCycle(ctx context.Context, log *zap.Logger, resp *hostclient.FinishResponse) (string, error) {
	switch resp.RequestType {
	case hostclient.RequestAdvanceState:
		return s.handleAdvance(ctx, log, resp)
	case hostclient.RequestInspectState:
		return s.handleInspect(ctx, log, resp)
	default:
		log.Warn("unrecognized finish request type, rejecting", zap.String("request_type", string(resp.RequestType)))
		return string(crabrolls.StatusReject), nil
	}
}

func (s *Supervisor) handleAdvance(ctx context.Context, log *zap.Logger, resp *hostclient.FinishResponse) (string, error) {
	data, payload, err := resp.DecodeAdvance()
	if err != nil {
		log.Error("malformed advance response", zap.Error(err))
		return string(crabrolls.StatusReject), nil
	}

	metadata, err := decodeMetadata(data.Metadata)
	if err != nil {
		log.Error("malformed advance metadata", zap.Error(err))
		return string(crabrolls.StatusReject), nil
	}

	result, err := s.core.Advance(metadata, payload)
	if err != nil {
		log.Error("advance cycle failed", zap.Error(err))
		return string(crabrolls.StatusReject), nil
	}

	if result.IsRelay {
		log.Info("dapp address relay absorbed", zap.String("dapp_address", result.RelayAddress.Hex()))
		return string(crabrolls.StatusAccept), nil
	}

	return s.flush(ctx, log, result)
}

func (s *Supervisor) handleInspect(ctx context.Context, log *zap.Logger, resp *hostclient.FinishResponse) (string, error) {
	_, payload, err := resp.DecodeInspect()
	if err != nil {
		log.Error("malformed inspect response", zap.Error(err))
		return string(crabrolls.StatusReject), nil
	}

	result, err := s.core.Inspect(payload)
	if err != nil {
		log.Error("inspect cycle failed", zap.Error(err))
		return string(crabrolls.StatusReject), nil
	}

	return s.flush(ctx, log, result)
}

// flush sends a cycle's buffered outputs to the host, in insertion
// order, per spec §4.F item 4.
func (s *Supervisor) flush(ctx context.Context, log *zap.Logger, result CycleResult) (string, error) {
	if result.Status == crabrolls.StatusReject {
		log.Info("cycle rejected", zap.Int("reports", len(result.Reports)))
		for _, r := range result.Reports {
			if _, err := s.client.AddReport(ctx, r); err != nil {
				return "", &crabrolls.ProtocolError{Op: "report", Err: err}
			}
		}
		return string(crabrolls.StatusReject), nil
	}

	for _, n := range result.Notices {
		if _, err := s.client.AddNotice(ctx, n); err != nil {
			return "", &crabrolls.ProtocolError{Op: "notice", Err: err}
		}
	}
	for _, r := range result.Reports {
		if _, err := s.client.AddReport(ctx, r); err != nil {
			return "", &crabrolls.ProtocolError{Op: "report", Err: err}
		}
	}
	for _, v := range result.Vouchers {
		if _, err := s.client.AddVoucher(ctx, [20]byte(v.Destination), v.Payload); err != nil {
			return "", &crabrolls.ProtocolError{Op: "voucher", Err: err}
		}
	}

	log.Debug("cycle accepted",
		zap.Int("notices", len(result.Notices)),
		zap.Int("reports", len(result.Reports)),
		zap.Int("vouchers", len(result.Vouchers)),
	)

	return string(crabrolls.StatusAccept), nil
}

func decodeMetadata(m hostclient.AdvanceMetadata) (crabrolls.Metadata, error) {
	sender, err := crabrolls.AddressFromHex(m.MsgSender)
	if err != nil {
		return crabrolls.Metadata{}, fmt.Errorf("engine: decoding msg_sender: %w", err)
	}

	prevRandao := crabrolls.ZeroUint()
	if m.PrevRandao != "" {
		b, err := hex.DecodeString(strings.TrimPrefix(m.PrevRandao, "0x"))
		if err != nil {
			return crabrolls.Metadata{}, fmt.Errorf("engine: decoding prev_randao: %w", err)
		}
		prevRandao, err = crabrolls.NewUintFromBytes(b)
		if err != nil {
			return crabrolls.Metadata{}, fmt.Errorf("engine: parsing prev_randao: %w", err)
		}
	}

	return crabrolls.Metadata{
		MsgSender:      sender,
		BlockNumber:    m.BlockNumber,
		BlockTimestamp: m.BlockTimestamp,
		InputIndex:     m.InputIndex,
		EpochIndex:     m.EpochIndex,
		PrevRandao:     prevRandao,
	}, nil
}
