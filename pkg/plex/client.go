/*
 * clipshare fetches media shared on Discord into a Plex library.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package plex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lucasduport/clipshare/pkg/utils"
	"golang.org/x/sync/singleflight"
)

// StatusError is a non-2xx answer from Plex.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("plex: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("plex: unexpected status %d: %s", e.Code, e.Body)
}

// Client talks to one Plex Media Server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	refreshes singleflight.Group
}

// NewClient returns a client for baseURL. A zero timeout means 10s.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether the client has somewhere to send requests.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.token != ""
}

// RefreshSection asks Plex to rescan a library section. Concurrent refreshes
// of the same section share one request; a caller whose ctx ends stops
// waiting but leaves the shared request running for the others.
func (c *Client) RefreshSection(ctx context.Context, sectionID string) error {
	if !c.Enabled() {
		utils.DebugLog("Plex: not configured, skipping refresh of section %s", sectionID)
		return nil
	}
	if sectionID == "" {
		return fmt.Errorf("plex: empty section id")
	}
	ch := c.refreshes.DoChan(sectionID, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.http.Timeout)
		defer cancel()
		return nil, c.refresh(shared, sectionID)
	})
	select {
	case res := <-ch:
		if res.Shared {
			utils.DebugLog("Plex: refresh of section %s coalesced", sectionID)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) refresh(ctx context.Context, sectionID string) error {
	endpoint := fmt.Sprintf("%s/library/sections/%s/refresh", c.baseURL, url.PathEscape(sectionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("plex: build request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("plex: refresh section %s: %w", sectionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	utils.InfoLog("Plex: refresh requested for section %s", sectionID)
	return nil
}
