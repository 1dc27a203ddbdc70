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

package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BeginEnd(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	assert.False(t, r.IsInFlight(k), "fresh registry")

	r.Begin(k)
	assert.True(t, r.IsInFlight(k))

	// second begin is a no-op
	r.Begin(k)
	assert.True(t, r.IsInFlight(k))

	r.End(k)
	assert.False(t, r.IsInFlight(k))

	// repeated end on an absent key is a no-op
	r.End(k)
	r.End(k)
	assert.False(t, r.IsInFlight(k))
}

func TestRegistry_EndWithoutBegin(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")
	r.End(k)
	assert.False(t, r.IsInFlight(k))
}

func TestRegistry_KeysAreIndependent(t *testing.T) {
	tests := []struct {
		name  string
		begun Key
		other Key
	}{
		{"different actor", NewKey("DOWNLOAD", "msg1", "userA"), NewKey("DOWNLOAD", "msg1", "userB")},
		{"different subject", NewKey("DOWNLOAD", "msg1", "userA"), NewKey("DOWNLOAD", "msg2", "userA")},
		{"different kind", NewKey("DOWNLOAD", "msg1", "userA"), NewKey("CLIP", "msg1", "userA")},
		{"shifted boundary", NewKey("AB", "C", "x"), NewKey("A", "BC", "x")},
		{"shifted into actor", NewKey("k", "ab", "c"), NewKey("k", "a", "bc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.Begin(tt.begun)
			assert.True(t, r.IsInFlight(tt.begun))
			assert.False(t, r.IsInFlight(tt.other))
		})
	}
}

func TestRegistry_TryBegin(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	require.True(t, r.TryBegin(k))
	require.False(t, r.TryBegin(k))
	r.End(k)
	require.True(t, r.TryBegin(k))
}

func TestRegistry_DoRunsAndReleases(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	var sawInFlight bool
	err := r.Do(k, func() error {
		sawInFlight = r.IsInFlight(k)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawInFlight, "key is marked while fn runs")
	assert.False(t, r.IsInFlight(k), "key is released after fn returns")
}

func TestRegistry_DoReleasesOnError(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")
	boom := errors.New("boom")

	err := r.Do(k, func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, r.IsInFlight(k))

	// the same key is usable again
	ran := false
	require.NoError(t, r.Do(k, func() error { ran = true; return nil }))
	assert.True(t, ran)
}

func TestRegistry_DoReleasesOnPanic(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = r.Do(k, func() error { panic("kaboom") })
	})
	assert.False(t, r.IsInFlight(k))

	r.Begin(k)
	assert.True(t, r.IsInFlight(k), "begin after a panicking run is not blocked")
}

func TestRegistry_DoRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	err := r.Do(k, func() error {
		called := false
		inner := r.Do(k, func() error { called = true; return nil })
		assert.ErrorIs(t, inner, ErrInFlight)
		assert.False(t, called)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, r.IsInFlight(k))
}

func TestRegistry_DoRespectsManualBegin(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")
	r.Begin(k)

	err := r.Do(k, func() error { t.Fatal("must not run"); return nil })
	require.ErrorIs(t, err, ErrInFlight)
	assert.True(t, r.IsInFlight(k), "rejected Do leaves the existing mark alone")
}

func TestRegistry_ConcurrentSameKeySingleRunner(t *testing.T) {
	r := NewRegistry()
	k := NewKey("DOWNLOAD", "msg1", "userA")

	var running, maxRunning, ran, rejected atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Do(k, func() error {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				ran.Add(1)
				<-release
				running.Add(-1)
				return nil
			})
			if errors.Is(err, ErrInFlight) {
				rejected.Add(1)
			}
		}()
	}

	require.Eventually(t, func() bool {
		return ran.Load() == 1 && rejected.Load() == 31
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, int32(31), rejected.Load())
	assert.False(t, r.IsInFlight(k))
}

func TestRegistry_ConcurrentDistinctKeysProceed(t *testing.T) {
	r := NewRegistry()

	const n = 8
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := NewKey("DOWNLOAD", "msg", string(rune('a'+i)))
			errs[i] = r.Do(k, func() error {
				started.Done()
				<-release
				return nil
			})
		}()
	}

	// every key must be running at the same time, otherwise this blocks
	done := make(chan struct{})
	go func() { started.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("distinct keys did not run concurrently")
	}
	close(release)
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestRegistry_ConcurrentBeginEnd(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := NewKey("k", "s", string(rune('a'+i%26)))
			for j := 0; j < 100; j++ {
				r.Begin(k)
				_ = r.IsInFlight(k)
				r.End(k)
			}
		}()
	}
	wg.Wait()
	for i := 0; i < 26; i++ {
		assert.False(t, r.IsInFlight(NewKey("k", "s", string(rune('a'+i)))))
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	a := NewKey("DOWNLOAD", "msg1", "userA")
	b := NewKey("CLIP", "msg2", "userB")
	r.Begin(a)
	r.Begin(b)
	r.Reset()
	assert.False(t, r.IsInFlight(a))
	assert.False(t, r.IsInFlight(b))
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) record(ev string, k Key) {
	o.mu.Lock()
	o.events = append(o.events, ev+":"+k.Kind)
	o.mu.Unlock()
}

func (o *recordingObserver) Rejected(k Key) { o.record("rejected", k) }
func (o *recordingObserver) Started(k Key)  { o.record("started", k) }
func (o *recordingObserver) Finished(k Key) { o.record("finished", k) }

func TestRegistry_Observer(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRegistry(WithObserver(obs))
	k := NewKey("DOWNLOAD", "msg1", "userA")

	_ = r.Do(k, func() error {
		_ = r.Do(k, func() error { return nil })
		return errors.New("failed")
	})

	assert.Equal(t, []string{"started:DOWNLOAD", "rejected:DOWNLOAD", "finished:DOWNLOAD"}, obs.events)
}
