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
)

// ErrInFlight is returned by Do when the key is already running.
var ErrInFlight = errors.New("flight: operation already in flight")

// Observer is notified when Do admits or rejects an operation.
// Callbacks run on the caller's goroutine and must not block.
type Observer interface {
	Rejected(key Key)
	Started(key Key)
	Finished(key Key)
}

// Registry is the set of keys currently in flight.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	mu       sync.Mutex
	inFlight map[Key]struct{}
	observer Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver attaches an Observer to the registry.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{inFlight: make(map[Key]struct{})}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsInFlight reports whether key is currently marked.
func (r *Registry) IsInFlight(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[key]
	return ok
}

// Begin marks key as in flight. Marking an already marked key is a no-op.
//
// IsInFlight followed by Begin is not atomic: two callers can both see false
// and both proceed. Use TryBegin or Do when that matters.
func (r *Registry) Begin(key Key) {
	r.mu.Lock()
	r.inFlight[key] = struct{}{}
	r.mu.Unlock()
}

// End clears key. Clearing an absent key is a no-op.
func (r *Registry) End(key Key) {
	r.mu.Lock()
	delete(r.inFlight, key)
	r.mu.Unlock()
}

// TryBegin marks key and returns true, unless key was already in flight.
func (r *Registry) TryBegin(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[key]; ok {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

// Do runs fn while key is marked in flight and clears the mark however fn
// exits, including by panic, which is re-raised afterwards.
// If key is already in flight, fn is not called and Do returns ErrInFlight.
// The registry lock is never held while fn runs.
func (r *Registry) Do(key Key, fn func() error) error {
	if !r.TryBegin(key) {
		if r.observer != nil {
			r.observer.Rejected(key)
		}
		return ErrInFlight
	}
	if r.observer != nil {
		r.observer.Started(key)
	}
	defer func() {
		r.End(key)
		if r.observer != nil {
			r.observer.Finished(key)
		}
	}()
	return fn()
}

// Reset clears every mark. Only for shutdown and test teardown.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.inFlight = make(map[Key]struct{})
	r.mu.Unlock()
}
