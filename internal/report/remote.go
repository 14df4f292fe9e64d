package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

const remoteTimeout = 15 * time.Second

// Remote forwards report requests to an HTTP function that answers with
// {"body": "<html>..."}.
type Remote struct {
	URL    string
	Client *http.Client
}

func NewRemote(url string) *Remote {
	return &Remote{
		URL: url,
		Client: &http.Client{
			Timeout:   remoteTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type remoteResponse struct {
	Body string `json:"body"`
}

func (r *Remote) Render(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode report request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build report request: %v", domain.ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: report function: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: report function returned %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode report response: %v", domain.ErrUpstream, err)
	}
	return out.Body, nil
}
