package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var timeNow = time.Now

type ctxKeyRequestID struct{}

// WithRequestID makes outgoing backend calls carry the caller's request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

// Client is one browser session's view of the backend API. The bearer credential lives in
// the TokenStore under key; any 401 clears it and fires the unauthorized hook.
type Client struct {
	transport      *Transport
	tokens         storage.TokenStore
	key            string
	onUnauthorized func()
	log            logrus.FieldLogger
}

func NewClient(transport *Transport, tokens storage.TokenStore, key string) *Client {
	return &Client{
		transport: transport,
		tokens:    tokens,
		key:       key,
		log:       transport.log.WithField("workspace", key),
	}
}

// OnUnauthorized registers the forced-logout hook. It must be set before the client is shared.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.transport.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := requestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	token, err := c.tokens.LoadToken(ctx, c.key)
	switch {
	case err == nil:
		req.Header.Set("Authorization", "Bearer "+token)
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("load bearer token: %w", err)
	}

	resp, err := c.transport.roundTrip(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx)
		return decodeAPIError(method, path, resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	c.log.Warn("backend answered 401, dropping credential")
	if err := c.tokens.ClearToken(context.WithoutCancel(ctx), c.key); err != nil {
		c.log.WithField("error", err).Error("failed to clear bearer token")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Client) saveToken(ctx context.Context, token string) error {
	if err := c.tokens.SaveToken(ctx, c.key, token); err != nil {
		return fmt.Errorf("save bearer token: %w", err)
	}
	return nil
}

func decodeAPIError(method, path string, resp *http.Response) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Code = body.Code
	} else if len(raw) > 0 {
		apiErr.Message = string(bytes.TrimSpace(raw))
	}
	return apiErr
}

// TokenExpiry reads the exp claim without verifying the signature; the backend stays the
// authority on validity. ok is false when the token carries no readable expiry.
func TokenExpiry(token string) (expiresAt time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
