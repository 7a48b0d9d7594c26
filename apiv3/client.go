// Package apiv3 is a thin client for the upstream Twitarr-style JSON store.
// It does request/response plumbing only: no local locking, no timeout
// handling of its own, and no retry on mutating calls. Store error statuses
// are preserved verbatim in the returned error.
package apiv3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/carlmjohnson/versioninfo"

	"github.com/shipboard-social/quarterdeck/moderation"
	"github.com/shipboard-social/quarterdeck/pkg/robusthttp"
)

type Client struct {
	// Client handles idempotent GETs. If not set, defaults to
	// robusthttp.NewClient().
	Client *http.Client
	// MutationClient handles POSTs. If not set, defaults to
	// robusthttp.NewMutationClient() (no retries).
	MutationClient *http.Client
	Host           string
	Auth           *AuthInfo
	UserAgent      *string
}

type AuthInfo struct {
	Token string `json:"token"`
}

func (c *Client) getClient() *http.Client {
	if c.Client == nil {
		return robusthttp.NewClient()
	}
	return c.Client
}

func (c *Client) getMutationClient() *http.Client {
	if c.MutationClient == nil {
		return robusthttp.NewMutationClient()
	}
	return c.MutationClient
}

type RequestType int

const (
	Query = RequestType(iota)
	Procedure
)

// storeError is the JSON error body the store returns on non-2xx responses.
type storeError struct {
	IsError bool   `json:"error"`
	Reason  string `json:"reason"`
}

// Do performs one request against the store's /api/v3 surface. Query uses
// the retrying client, Procedure the single-shot one. A nil out skips body
// decoding.
func (c *Client) Do(ctx context.Context, kind RequestType, path string, params url.Values, headers map[string]string, bodyobj any, out any) error {
	var body io.Reader
	if bodyobj != nil {
		b, err := json.Marshal(bodyobj)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	var m string
	var hc *http.Client
	switch kind {
	case Query:
		m = http.MethodGet
		hc = c.getClient()
	case Procedure:
		m = http.MethodPost
		hc = c.getMutationClient()
	default:
		return fmt.Errorf("unsupported request kind: %d", kind)
	}

	uri := c.Host + "/api/v3" + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, m, uri, body)
	if err != nil {
		return err
	}
	if bodyobj != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != nil {
		req.Header.Set("User-Agent", *c.UserAgent)
	} else {
		req.Header.Set("User-Agent", "quarterdeck/"+versioninfo.Short())
	}
	if c.Auth != nil && c.Auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se storeError
		// decode failure still surfaces the verbatim status
		_ = json.NewDecoder(resp.Body).Decode(&se)
		return &moderation.UpstreamError{StatusCode: resp.StatusCode, Reason: se.Reason}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode store response: %w", err)
		}
	}
	return nil
}
