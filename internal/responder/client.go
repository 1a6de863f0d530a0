// Package responder is the gateway's client for the response-generation
// service. Its reply contract is total: any transport failure, timeout or
// non-success status degrades to a fixed fallback reply instead of an error,
// so callers never need a failure branch for generation.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/metrics"
	"github.com/Pkra99/minichat-v2/internal/models"
)

const (
	// FallbackEngine is the sentinel engine name on degraded replies. No
	// real engine uses it, so callers and tests can tell the difference.
	FallbackEngine = "fallback"

	// fallbackReply is the fixed text returned when the responder is
	// unreachable or misbehaving.
	fallbackReply = "Sorry, I'm having trouble connecting to the response service. Please try again later."

	// DefaultTimeout bounds a single responder call so an orchestrator never
	// suspends indefinitely on generation.
	DefaultTimeout = 10 * time.Second
)

// Client calls the responder service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a responder client. A timeout of zero falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// request is the POST /respond request body.
type request struct {
	Message  string `json:"message"`
	TenantID string `json:"tenantId"`
	Mode     string `json:"mode,omitempty"`
}

// RequestReply asks the responder for a complete reply. It never fails: on
// any error the fixed fallback reply is returned with the sentinel engine.
func (c *Client) RequestReply(ctx context.Context, message, tenantID string, mode models.Mode) models.GeneratedReply {
	body, err := json.Marshal(request{Message: message, TenantID: tenantID, Mode: string(mode)})
	if err != nil {
		return c.fallback(tenantID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/respond", bytes.NewReader(body))
	if err != nil {
		return c.fallback(tenantID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallback(tenantID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("tenant", tenantID).
			Int("status", resp.StatusCode).
			Msg("responder returned non-success status")
		metrics.FallbackReplies.Inc()
		return fallbackFor()
	}

	var reply models.GeneratedReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return c.fallback(tenantID, err)
	}

	c.logger.Debug().
		Str("tenant", tenantID).
		Str("engine", reply.Engine).
		Int("chars", len(reply.Reply)).
		Msg("received responder reply")

	return reply
}

// fallback logs the failure and returns the degraded reply.
func (c *Client) fallback(tenantID string, err error) models.GeneratedReply {
	c.logger.Warn().Str("tenant", tenantID).Err(err).Msg("responder call failed, using fallback reply")
	metrics.FallbackReplies.Inc()
	return fallbackFor()
}

func fallbackFor() models.GeneratedReply {
	return models.GeneratedReply{
		Reply:     fallbackReply,
		Engine:    FallbackEngine,
		Timestamp: time.Now().UTC(),
	}
}

// Health reports whether the responder's health endpoint answers 200.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
