package mock

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/internal/hostclient"
)

// AdvanceInput is one queued Advance input for Server.
type AdvanceInput struct {
	MsgSender      crabrolls.Address
	BlockNumber    uint64
	BlockTimestamp uint64
	InputIndex     uint64
	EpochIndex     uint64
	PrevRandao     crabrolls.Uint
	Payload        []byte
}

// VoucherCall is one voucher Server recorded from /voucher.
type VoucherCall struct {
	Destination crabrolls.Address
	Payload     []byte
}

type queuedInput struct {
	isAdvance bool
	advance   AdvanceInput
	inspect   []byte
}

// Server is a wire-protocol-accurate stand-in for the host rollup HTTP
// endpoint, backed by gorilla/mux and httptest.Server. It blocks /finish
// until an input is queued, the way the real host does, rather than
// replying immediately with "nothing yet" — so engine.Supervisor.Run
// never has to poll it.
type Server struct {
	httpServer *httptest.Server
	queue      chan queuedInput

	mu       sync.Mutex
	notices  [][]byte
	reports  [][]byte
	vouchers []VoucherCall
}

// NewServer starts the mock host. Call Close when done.
func NewServer() *Server {
	s := &Server{queue: make(chan queuedInput, 64)}

	router := mux.NewRouter()
	router.HandleFunc("/finish", s.handleFinish).Methods(http.MethodPost)
	router.HandleFunc("/notice", s.handleNotice).Methods(http.MethodPost)
	router.HandleFunc("/report", s.handleReport).Methods(http.MethodPost)
	router.HandleFunc("/voucher", s.handleVoucher).Methods(http.MethodPost)

	s.httpServer = httptest.NewServer(router)
	return s
}

// URL is the base URL to hand to hostclient.New.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts down the underlying httptest.Server.
func (s *Server) Close() { s.httpServer.Close() }

// EnqueueAdvance queues one Advance input for the next /finish call.
func (s *Server) EnqueueAdvance(in AdvanceInput) {
	s.queue <- queuedInput{isAdvance: true, advance: in}
}

// EnqueueInspect queues one Inspect input for the next /finish call.
func (s *Server) EnqueueInspect(payload []byte) {
	s.queue <- queuedInput{isAdvance: false, inspect: payload}
}

// Notices returns a copy of every notice recorded so far, in emission order.
func (s *Server) Notices() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.notices...)
}

// Reports returns a copy of every report recorded so far, in emission order.
func (s *Server) Reports() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.reports...)
}

// Vouchers returns a copy of every voucher call recorded so far, in
// emission order.
func (s *Server) Vouchers() []VoucherCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]VoucherCall(nil), s.vouchers...)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	var req hostclient.FinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	select {
	case <-r.Context().Done():
		return
	case item := <-s.queue:
		resp := s.buildFinishResponse(item)
		writeJSON(w, resp)
	}
}

func (s *Server) buildFinishResponse(item queuedInput) hostclient.FinishResponse {
	if item.isAdvance {
		data := hostclient.AdvanceData{
			Metadata: hostclient.AdvanceMetadata{
				MsgSender:      item.advance.MsgSender.Hex(),
				BlockNumber:    item.advance.BlockNumber,
				BlockTimestamp: item.advance.BlockTimestamp,
				InputIndex:     item.advance.InputIndex,
				EpochIndex:     item.advance.EpochIndex,
				PrevRandao:     hexEncode(item.advance.PrevRandao.Bytes32()[:]),
			},
			Payload: hexEncode(item.advance.Payload),
		}
		raw, _ := json.Marshal(data)
		return hostclient.FinishResponse{RequestType: hostclient.RequestAdvanceState, Data: raw}
	}

	data := hostclient.InspectData{Payload: hexEncode(item.inspect)}
	raw, _ := json.Marshal(data)
	return hostclient.FinishResponse{RequestType: hostclient.RequestInspectState, Data: raw}
}

func (s *Server) handleNotice(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeOutputRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	idx := len(s.notices)
	s.notices = append(s.notices, payload)
	s.mu.Unlock()
	writeJSON(w, hostclient.IndexResponse{Index: idx})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeOutputRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	idx := len(s.reports)
	s.reports = append(s.reports, payload)
	s.mu.Unlock()
	writeJSON(w, hostclient.IndexResponse{Index: idx})
}

func (s *Server) handleVoucher(w http.ResponseWriter, r *http.Request) {
	var req hostclient.VoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	destBytes, err := hexDecode(req.Destination)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dest, err := crabrolls.AddressFromBytes(destBytes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload, err := hexDecode(req.Payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	idx := len(s.vouchers)
	s.vouchers = append(s.vouchers, VoucherCall{Destination: dest, Payload: payload})
	s.mu.Unlock()
	writeJSON(w, hostclient.IndexResponse{Index: idx})
}

func decodeOutputRequest(r *http.Request) ([]byte, error) {
	var req hostclient.OutputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return hexDecode(req.Payload)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func hexEncode(b []byte) string {
	if len(b) == 0 {
		return "0x"
	}
	return "0x" + hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("mock: invalid hex %q: %w", s, err)
	}
	return b, nil
}
