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
	"net/url"
	"strings"
)

// Key identifies one logical operation.
//
// Keys compare field by field, so ("AB", "C") and ("A", "BC") never collide.
type Key struct {
	Kind    string // control or action that triggered the operation
	Subject string // message, resource or record the action targets
	Actor   string // who invoked it
}

// NewKey builds a Key from its three parts.
func NewKey(kind, subject, actor string) Key {
	return Key{Kind: kind, Subject: subject, Actor: actor}
}

// String returns a canonical form of the key. Each field is path-escaped
// before joining, so the separator never appears inside a field and distinct
// keys always render differently.
func (k Key) String() string {
	return strings.Join([]string{
		url.PathEscape(k.Kind),
		url.PathEscape(k.Subject),
		url.PathEscape(k.Actor),
	}, "/")
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Key{}, &KeyError{Raw: s}
	}
	fields := make([]string, 3)
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil {
			return Key{}, &KeyError{Raw: s, Err: err}
		}
		fields[i] = v
	}
	return NewKey(fields[0], fields[1], fields[2]), nil
}

// KeyError reports a string that is not a canonical key.
type KeyError struct {
	Raw string
	Err error
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return "flight: malformed key " + `"` + e.Raw + `": ` + e.Err.Error()
	}
	return "flight: malformed key " + `"` + e.Raw + `"`
}

func (e *KeyError) Unwrap() error { return e.Err }
