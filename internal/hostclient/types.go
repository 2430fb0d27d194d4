// Package hostclient is the generic JSON-over-HTTP client for the host
// rollup protocol: finish/advance/inspect, notice, report, voucher.
// Everything else about HTTP transport is assumed generic per spec
// §1's scope note; this package implements only the four calls the
// protocol defines.
package hostclient

import "encoding/json"

// RequestType distinguishes the two kinds of input finish can hand
// back.
type RequestType string

const (
	RequestAdvanceState RequestType = "advance_state"
	RequestInspectState RequestType = "inspect_state"
)

// FinishRequest is the body of POST /finish.
type FinishRequest struct {
	Status string `json:"status"`
}

// FinishResponse is the response of POST /finish when an input is
// available. RequestType selects which of AdvanceData/InspectData in
// Data to parse.
type FinishResponse struct {
	RequestType RequestType     `json:"request_type"`
	Data        json.RawMessage `json:"data"`
}

// AdvanceMetadata is the metadata object embedded in an advance_state
// finish response.
type AdvanceMetadata struct {
	MsgSender      string `json:"msg_sender"`
	BlockNumber    uint64 `json:"block_number"`
	BlockTimestamp uint64 `json:"block_timestamp"`
	InputIndex     uint64 `json:"input_index"`
	EpochIndex     uint64 `json:"epoch_index"`
	// PrevRandao is 0x-prefixed hex; empty if the host omits it.
	PrevRandao string `json:"prev_randao"`
}

// AdvanceData is the shape of FinishResponse.Data for advance_state.
type AdvanceData struct {
	Metadata AdvanceMetadata `json:"metadata"`
	Payload  string          `json:"payload"`
}

// InspectData is the shape of FinishResponse.Data for inspect_state.
type InspectData struct {
	Payload string `json:"payload"`
}

// OutputRequest is the body of POST /notice and POST /report.
type OutputRequest struct {
	Payload string `json:"payload"`
}

// VoucherRequest is the body of POST /voucher.
type VoucherRequest struct {
	Destination string `json:"destination"`
	Payload     string `json:"payload"`
}

// IndexResponse is the response of /notice, /report, and /voucher.
type IndexResponse struct {
	Index int `json:"index"`
}
