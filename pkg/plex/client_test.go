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
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshSection(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Plex-Token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", time.Second)
	require.NoError(t, c.RefreshSection(context.Background(), "3"))
	assert.Equal(t, "/library/sections/3/refresh", gotPath)
	assert.Equal(t, "tok", gotToken)
}

func TestRefreshSectionStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "bad", time.Second).RefreshSection(context.Background(), "3")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "unauthorized", se.Body)
}

func TestRefreshSectionDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	assert.NoError(t, c.RefreshSection(context.Background(), "1"))
	assert.NoError(t, NewClient("", "tok", 0).RefreshSection(context.Background(), "1"))
}

func TestRefreshSectionEmptyID(t *testing.T) {
	assert.Error(t, NewClient("http://plex", "tok", 0).RefreshSection(context.Background(), ""))
}

func TestRefreshSectionCoalesces(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.RefreshSection(context.Background(), "7"))
		}()
	}
	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, time.Millisecond)
	// give the other callers time to join the in-progress refresh
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), hits.Load())
}

func TestRefreshSectionCallerCancelDoesNotAbortShared(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- c.RefreshSection(ctx, "7") }()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, time.Millisecond)

	secondErr := make(chan error, 1)
	go func() { secondErr <- c.RefreshSection(context.Background(), "7") }()
	// let the second caller join before the first one gives up
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), hits.Load())
}
