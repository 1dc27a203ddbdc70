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

// Package flight tracks which operations are currently running so that a
// second start for the same operation can be turned away.
//
// Unlike golang.org/x/sync/singleflight, a duplicate caller is not made to
// wait for the first one and does not share its result: it is rejected at
// once. This fits UI triggers such as a button clicked several times before
// the first click has finished its work.
//
// # Usage
//
//	reg := flight.NewRegistry()
//
//	key := flight.NewKey("media_download", messageID, userID)
//	err := reg.Do(key, func() error {
//	    return download(ctx, url)
//	})
//	if errors.Is(err, flight.ErrInFlight) {
//	    // acknowledge the click, do nothing else
//	}
//
// A Registry is scoped to the process. Nothing is persisted.
package flight
