// Package client is the Go SDK for the market-service HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Aditya2073/agrisample/internal/apierr"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/rs/zerolog/log"
)

// SessionKey is where the SDK keeps its own access token.
const SessionKey = "market-session"

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	baseURL string
	http    *http.Client
	storage identity.Storage

	mu      sync.Mutex
	subs    map[int]chan identity.Event
	nextSub int
}

func New(baseURL string, storage identity.Storage, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		storage: storage,
		subs:    make(map[int]chan identity.Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) session(ctx context.Context) (*auth.Session, error) {
	raw, err := c.storage.Get(ctx, SessionKey)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s auth.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warn().Err(err).Msg("client: dropping unreadable stored session")
		_ = c.storage.Delete(ctx, SessionKey)
		return nil, nil
	}
	return &s, nil
}

func (c *Client) saveSession(ctx context.Context, s *auth.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.storage.Set(ctx, SessionKey, raw)
}

// Subscribe implements identity.Remote.
func (c *Client) Subscribe() (<-chan identity.Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan identity.Event, 8)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

// Subscribers reports how many auth event subscriptions are open.
func (c *Client) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Client) emit(ev identity.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			log.Warn().Str("event", string(ev.Kind)).Msg("client: subscriber is slow, event dropped")
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sess, err := c.session(ctx)
	if err != nil {
		return fmt.Errorf("client: read session: %w", err)
	}
	if sess != nil && sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body apierr.Body
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &apierr.Error{Status: resp.StatusCode, Code: body.Code, Message: body.Error, Details: body.Details}
}

func isUnauthorized(err error) bool {
	var apiErr *apierr.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
