package hostclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin JSON-over-HTTP client for the four host rollup
// endpoints, styled after the teacher's http.Server construction
// (explicit timeouts) but as a client talking to the host rather than
// a server fielding dapp requests.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against baseURL (e.g. "http://127.0.0.1:5004").
// A nil httpClient gets a sane default with bounded timeouts.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
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
	return hex.DecodeString(s)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hostclient: encoding request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("hostclient: building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hostclient: calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("hostclient: %s returned status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty body leaves out at its zero value.
			return nil
		}
		return fmt.Errorf("hostclient: decoding response from %s: %w", path, err)
	}
	return nil
}

// Finish reports the prior cycle's status and requests the next
// input. A nil result with a nil error means no input is available
// yet (HTTP 200 with an empty body from a host that has nothing
// queued); callers should back off and retry.
func (c *Client) Finish(ctx context.Context, status string) (*FinishResponse, error) {
	var out FinishResponse
	if err := c.do(ctx, http.MethodPost, "/finish", FinishRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	if out.RequestType == "" {
		return nil, nil
	}
	return &out, nil
}

// DecodeAdvance parses FinishResponse.Data as AdvanceData, including
// hex-decoding its payload.
func (r *FinishResponse) DecodeAdvance() (AdvanceData, []byte, error) {
	var data AdvanceData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return AdvanceData{}, nil, fmt.Errorf("hostclient: decoding advance data: %w", err)
	}
	payload, err := hexDecode(data.Payload)
	if err != nil {
		return AdvanceData{}, nil, fmt.Errorf("hostclient: decoding advance payload hex: %w", err)
	}
	return data, payload, nil
}

// DecodeInspect parses FinishResponse.Data as InspectData, including
// hex-decoding its payload.
func (r *FinishResponse) DecodeInspect() (InspectData, []byte, error) {
	var data InspectData
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return InspectData{}, nil, fmt.Errorf("hostclient: decoding inspect data: %w", err)
	}
	payload, err := hexDecode(data.Payload)
	if err != nil {
		return InspectData{}, nil, fmt.Errorf("hostclient: decoding inspect payload hex: %w", err)
	}
	return data, payload, nil
}

// AddNotice buffers a notice with the host, returning its index.
func (c *Client) AddNotice(ctx context.Context, payload []byte) (int, error) {
	var out IndexResponse
	if err := c.do(ctx, http.MethodPost, "/notice", OutputRequest{Payload: hexEncode(payload)}, &out); err != nil {
		return 0, err
	}
	return out.Index, nil
}

// AddReport buffers a report with the host, returning its index.
func (c *Client) AddReport(ctx context.Context, payload []byte) (int, error) {
	var out IndexResponse
	if err := c.do(ctx, http.MethodPost, "/report", OutputRequest{Payload: hexEncode(payload)}, &out); err != nil {
		return 0, err
	}
	return out.Index, nil
}

// AddVoucher buffers a voucher call with the host, returning its index.
func (c *Client) AddVoucher(ctx context.Context, destination [20]byte, payload []byte) (int, error) {
	var out IndexResponse
	req := VoucherRequest{Destination: hexEncode(destination[:]), Payload: hexEncode(payload)}
	if err := c.do(ctx, http.MethodPost, "/voucher", req, &out); err != nil {
		return 0, err
	}
	return out.Index, nil
}
