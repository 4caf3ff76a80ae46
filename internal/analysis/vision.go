package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VisionClient turns raw sheet-image bytes into a structured analysis
// payload. The production implementation calls an external model API.
type VisionClient interface {
	Analyze(ctx context.Context, image []byte) (json.RawMessage, error)
}

type HTTPVisionClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPVisionClient(baseURL, apiKey string) *HTTPVisionClient {
	return &HTTPVisionClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPVisionClient) Analyze(ctx context.Context, image []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/analyze", bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vision api: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("vision api: invalid json response")
	}
	return payload, nil
}
