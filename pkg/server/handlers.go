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

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/clipshare/pkg/database"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// getFlight reports whether kind/subject/actor is running. A single
// key=<kind>/<subject>/<actor> parameter is accepted too.
func (s *Server) getFlight(ctx *gin.Context) {
	if raw := ctx.Query("key"); raw != "" {
		key, err := flight.ParseKey(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, types.APIResponse{Success: false, Error: err.Error()})
			return
		}
		s.writeFlight(ctx, key)
		return
	}

	kind, subject, actor := ctx.Query("kind"), ctx.Query("subject"), ctx.Query("actor")
	var missing []string
	for _, q := range [][2]string{{"kind", kind}, {"subject", subject}, {"actor", actor}} {
		if q[1] == "" {
			missing = append(missing, q[0])
		}
	}
	if len(missing) > 0 {
		ctx.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error:   "missing query parameter(s): " + strings.Join(missing, ", "),
		})
		return
	}

	s.writeFlight(ctx, flight.NewKey(kind, subject, actor))
}

func (s *Server) writeFlight(ctx *gin.Context, key flight.Key) {
	ctx.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data: types.FlightStatus{
			Key:      key.String(),
			Kind:     key.Kind,
			Subject:  key.Subject,
			Actor:    key.Actor,
			InFlight: s.deps.Flights.IsInFlight(key),
		},
	})
}

// listDownloads returns recent download history, newest first.
func (s *Server) listDownloads(ctx *gin.Context) {
	limit := 10
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, types.APIResponse{Success: false, Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if s.deps.History == nil {
		ctx.JSON(http.StatusServiceUnavailable, types.APIResponse{Success: false, Error: "download history is disabled"})
		return
	}

	recs, err := s.deps.History.RecentDownloads(ctx.Request.Context(), limit)
	if errors.Is(err, database.ErrNotInitialized) {
		ctx.JSON(http.StatusServiceUnavailable, types.APIResponse{Success: false, Error: "download history is disabled"})
		return
	}
	if err != nil {
		utils.ErrorLog("API: listing downloads: %v", err)
		ctx.JSON(http.StatusInternalServerError, types.APIResponse{Success: false, Error: "failed to list downloads"})
		return
	}
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Data: recs})
}
