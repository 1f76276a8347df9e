package bioactivity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Remote oracle defaults.
const (
	// DefaultPredictorURL is the public PeptideRanker-compatible prediction
	// endpoint.
	DefaultPredictorURL = "http://peptideranker.ilincs.org/api/predict"

	// DefaultPredictTimeout bounds one prediction request. The service is
	// best-effort; anything slower than this and the heuristic answer is
	// more useful than a late remote one.
	DefaultPredictTimeout = 10 * time.Second

	// minPredictLength is the shortest sequence worth submitting. One
	// residue carries no motif information and some deployments reject it
	// with a 4xx, so we skip the wire entirely.
	minPredictLength = 2

	// maxResponseBody limits the prediction response size. A well-formed
	// response is a few dozen bytes; anything larger is malformed.
	maxResponseBody = 64 * 1024
)

// Remote client errors. These never escape the scorer - they exist so the
// fallback decision is expressed through typed results rather than ad-hoc
// nil checks, and so client tests can assert on the failure class.
var (
	// ErrRemoteUnavailable is returned for transport failures, timeouts,
	// and non-success HTTP statuses.
	ErrRemoteUnavailable = errors.New("prediction service unavailable")

	// ErrMalformedResponse is returned when the service answered 200 but
	// the body could not be interpreted as a probability.
	ErrMalformedResponse = errors.New("malformed prediction response")

	// ErrSequenceTooShort is returned for sequences below minPredictLength,
	// which are never submitted.
	ErrSequenceTooShort = errors.New("sequence too short for remote prediction")
)

// predictRequest is the JSON payload sent to the prediction service.
type predictRequest struct {
	Sequence string `json:"sequence"`
}

// predictResponse mirrors the minimal expected JSON response: a probability
// in [0,1] that the peptide is bioactive.
type predictResponse struct {
	Score float64 `json:"score"`
}

// Client calls the remote bioactivity prediction oracle.
//
// Design decision: We accept an *http.Client rather than creating one
// internally because the analysis run owns the connection scope - one
// http.Client is acquired per run, shared across the scoring fan-out, and
// released when the run ends. It also lets tests inject httptest transports.
type Client struct {
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// baseURL is the prediction endpoint.
	baseURL string

	// timeout bounds a single prediction call.
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the prediction endpoint URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a prediction client with default endpoint and timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultPredictorURL,
		timeout:    DefaultPredictTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Predict submits one fragment sequence and returns its bioactivity score
// rescaled to [0,100].
//
// The call is attempted exactly once; every failure class maps onto
// ErrRemoteUnavailable or ErrMalformedResponse so the scorer can fall back
// without inspecting transport details. Sequences shorter than two residues
// return ErrSequenceTooShort without touching the network.
func (c *Client) Predict(ctx context.Context, sequence string) (float64, error) {
	if len(sequence) < minPredictLength {
		return 0, ErrSequenceTooShort
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(predictRequest{Sequence: sequence})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %s", ErrRemoteUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Score < 0 || out.Score > 1 {
		return 0, fmt.Errorf("%w: probability %f outside [0,1]", ErrMalformedResponse, out.Score)
	}

	return out.Score * 100, nil
}
