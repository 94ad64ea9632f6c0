// Package client is the receiving side of the bulk report pipeline. It
// authenticates against a lab server, pulls a session's reports down a
// single multipart stream, demultiplexes them and saves each report to
// disk under the farmer's name.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cenkalti/backoff/v4"

	"github.com/agrilab/agrilab-go/internal/progress"
)

const connectTimeout = 30 * time.Second

// Client talks to one lab server. Session state lives in the cookie
// jar, so a single login carries across all subsequent calls.
type Client struct {
	baseURL string
	version string
	http    *http.Client
	tracker *progress.Tracker
}

func New(baseURL, version string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		http:    &http.Client{Jar: jar},
		tracker: progress.NewTracker(),
	}, nil
}

// Tracker exposes the progress state machine driven by downloads, for
// the UI layer to observe.
func (c *Client) Tracker() *progress.Tracker {
	return c.tracker
}

// Connect probes the server until it answers, backing off
// exponentially, then checks version compatibility. An incompatible
// server fails immediately instead of being retried.
func (c *Client) Connect(ctx context.Context) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/version", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}

		var payload struct {
			Version string `json:"version"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return err
		}
		if err := checkVersionCompatibility(c.version, payload.Version); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectTimeout
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

// checkVersionCompatibility requires client and server to share a major
// version. Unversioned builds (dev, test) skip the check on either
// side.
func checkVersionCompatibility(clientVersion, serverVersion string) error {
	cv, err := semver.NewVersion(strings.TrimPrefix(clientVersion, "v"))
	if err != nil {
		return nil
	}
	sv, err := semver.NewVersion(strings.TrimPrefix(serverVersion, "v"))
	if err != nil {
		return nil
	}
	if cv.Major() != sv.Major() {
		return fmt.Errorf("server version %s is incompatible with client version %s", serverVersion, clientVersion)
	}
	return nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/users/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	return nil
}
