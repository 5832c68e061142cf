package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultOnlineEndpoint is the public Google Translate web endpoint used
// as the fallback when the offline daemon cannot serve a request.
const defaultOnlineEndpoint = "https://translate.googleapis.com/translate_a/single"

// OnlineClient is the network fallback translator.
type OnlineClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewOnlineClient returns a client for the web translation endpoint.
func NewOnlineClient(endpoint string, timeout time.Duration) *OnlineClient {
	if endpoint == "" {
		endpoint = defaultOnlineEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OnlineClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// Translate translates text via the web endpoint.
func (c *OnlineClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("online translator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("online translator: status %d", resp.StatusCode)
	}

	// The endpoint answers a nested array:
	// [[["translated","original",...],["next segment",...]],...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("online translator: decode: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("online translator: empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("online translator: decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		b.WriteString(piece)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("online translator: empty translation")
	}
	return b.String(), nil
}
