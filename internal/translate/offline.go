package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// OfflineClient talks to the local translation daemon. The daemon keeps
// Argos-style language-pair models on disk and can install a missing pair
// on demand, so no request leaves the host.
type OfflineClient struct {
	httpClient *http.Client
	endpoint   string

	mu    sync.Mutex
	pairs map[string]struct{}
}

// NewOfflineClient returns a client for the daemon at endpoint. An empty
// endpoint disables the client.
func NewOfflineClient(endpoint string, timeout time.Duration) *OfflineClient {
	if endpoint == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OfflineClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

type offlineTranslateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type offlineTranslateResponse struct {
	Text string `json:"text"`
}

type offlinePair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type offlinePairsResponse struct {
	Pairs []offlinePair `json:"pairs"`
}

// Translate translates text, installing the language pair first if the
// daemon does not have it yet.
func (c *OfflineClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := c.ensurePair(ctx, source, target); err != nil {
		return "", err
	}

	var resp offlineTranslateResponse
	err := c.post(ctx, "/v1/translate", offlineTranslateRequest{Text: text, Source: source, Target: target}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", fmt.Errorf("offline translator returned empty result")
	}
	return resp.Text, nil
}

// ensurePair checks the daemon's installed pairs and requests installation
// when the pair is missing. Known pairs are cached for the process lifetime.
func (c *OfflineClient) ensurePair(ctx context.Context, source, target string) error {
	key := source + ">" + target

	c.mu.Lock()
	if _, ok := c.pairs[key]; ok {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1/pairs", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("offline translator unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("offline translator pairs: status %d", resp.StatusCode)
	}

	var pairs offlinePairsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pairs); err != nil {
		return err
	}

	c.mu.Lock()
	c.pairs = make(map[string]struct{}, len(pairs.Pairs))
	for _, p := range pairs.Pairs {
		c.pairs[p.Source+">"+p.Target] = struct{}{}
	}
	_, installed := c.pairs[key]
	c.mu.Unlock()

	if installed {
		return nil
	}

	if err := c.post(ctx, "/v1/pairs", offlinePair{Source: source, Target: target}, nil); err != nil {
		return fmt.Errorf("install pair %s->%s: %w", source, target, err)
	}

	c.mu.Lock()
	c.pairs[key] = struct{}{}
	c.mu.Unlock()
	return nil
}

func (c *OfflineClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("offline translator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("offline translator: status %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
