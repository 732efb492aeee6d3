package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aalapcshah/Klipz-sub005/internal/config"
)

// Client asks an external thumbnail service to render a preview for a media
// URL. Callers treat failures as non-fatal.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a thumbnail client, or nil when no endpoint is configured
func NewClient(cfg config.ThumbnailConfig) *Client {
	if cfg.Endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	SourceURL string `json:"source_url"`
}

type generateResponse struct {
	URL string `json:"url"`
}

// Generate returns the URL of the generated thumbnail
func (c *Client) Generate(ctx context.Context, sourceURL string) (string, error) {
	body, err := json.Marshal(generateRequest{SourceURL: sourceURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("thumbnail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail service returned %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode thumbnail response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("thumbnail service returned no url")
	}

	return out.URL, nil
}
