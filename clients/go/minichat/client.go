// Package minichat provides a client for the MiniChat gateway API.
package minichat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TenantHeader carries the tenant identifier on every request.
const TenantHeader = "X-Tenant-Id"

// Client is a MiniChat gateway API client. All requests are scoped to one
// tenant.
type Client struct {
	BaseURL    string
	TenantID   string
	HTTPClient *http.Client
}

// NewClient creates a new MiniChat client for one tenant.
func NewClient(baseURL, tenantID string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		TenantID:   tenantID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request with the tenant header.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TenantHeader, c.TenantID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("minichat error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// SendResponse is the acknowledgment for a submitted message.
type SendResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// Send submits a message without waiting for a reply.
func (c *Client) Send(message string) (*SendResponse, error) {
	body, _ := json.Marshal(map[string]string{"message": message})
	respBody, err := c.doRequest("POST", "/api/v2/chat", body)
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamOptions tune how a streamed reply is generated and chunked.
type StreamOptions struct {
	Mode      string // "", "fast" or "slow"
	Chunked   bool   // fixed-size units instead of words
	ChunkSize int    // unit size when Chunked, 0 for server default
}

// Summary is the terminal event of a streamed reply.
type Summary struct {
	Engine      string `json:"engine"`
	TotalLength int    `json:"totalLength"`
	ChunkCount  int    `json:"chunkCount"`
}

// Stream sends a message and streams the reply. onChunk is called for every
// delivery unit in order; the returned summary reflects the whole reply.
func (c *Client) Stream(message string, opts StreamOptions, onChunk func(text string)) (*Summary, error) {
	q := url.Values{}
	q.Set("msg", message)
	if opts.Mode != "" {
		q.Set("mode", opts.Mode)
	}
	if opts.Chunked {
		q.Set("gran", "chunk")
		if opts.ChunkSize > 0 {
			q.Set("size", fmt.Sprintf("%d", opts.ChunkSize))
		}
	}

	req, err := http.NewRequest("GET", c.BaseURL+"/api/v2/chat/stream?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(TenantHeader, c.TenantID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("minichat error %d: %s", resp.StatusCode, errResp.Error)
	}

	return parseStream(resp.Body, onChunk)
}

// parseStream consumes server-sent events until a done or error event.
func parseStream(r io.Reader, onChunk func(text string)) (*Summary, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if event == "" {
				continue
			}
			switch event {
			case "chunk":
				var text string
				if err := json.Unmarshal([]byte(data), &text); err != nil {
					return nil, fmt.Errorf("bad chunk event: %w", err)
				}
				if onChunk != nil {
					onChunk(text)
				}
			case "done":
				var summary Summary
				if err := json.Unmarshal([]byte(data), &summary); err != nil {
					return nil, fmt.Errorf("bad done event: %w", err)
				}
				return &summary, nil
			case "error":
				var errEv struct {
					Error string `json:"error"`
				}
				json.Unmarshal([]byte(data), &errEv)
				return nil, fmt.Errorf("stream error: %s", errEv.Error)
			}
			event, data = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("stream ended without done event")
}

// Message is one entry of a tenant's history.
type Message struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// StateResponse is the tenant state returned by the debug endpoint.
type StateResponse struct {
	Tenant struct {
		ID             string `json:"id"`
		MessageCount   int    `json:"messageCount"`
		CreatedAt      string `json:"createdAt"`
		LastActivityAt string `json:"lastActivityAt"`
	} `json:"tenant"`
	Messages    []Message `json:"messages"`
	GlobalStats struct {
		TenantCount   int `json:"tenantCount"`
		TotalMessages int `json:"totalMessages"`
	} `json:"globalStats"`
}

// State retrieves the tenant's conversation history.
func (c *Client) State() (*StateResponse, error) {
	respBody, err := c.doRequest("GET", "/api/v2/debug/state", nil)
	if err != nil {
		return nil, err
	}

	var resp StateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearState deletes the tenant's conversation history.
func (c *Client) ClearState() (bool, error) {
	respBody, err := c.doRequest("DELETE", "/api/v2/debug/state", nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		Cleared bool `json:"cleared"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false, err
	}
	return resp.Cleared, nil
}

// HealthResponse is the gateway health report.
type HealthResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Version         string `json:"version"`
	Store           string `json:"store"`
	ResponderStatus string `json:"responderStatus"`
}

// Health checks gateway health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
