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
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// setupInternalAPI registers the /api/internal routes.
func (s *Server) setupInternalAPI(r *gin.Engine) {
	api := r.Group("/api/internal")
	api.Use(s.apiKeyAuth())

	api.Use(func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.ErrorLog("API PANIC RECOVERED: %v\nStack trace: %s", err, debug.Stack())
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, types.APIResponse{
					Success: false,
					Error:   fmt.Sprintf("Internal server error: %v", err),
				})
			}
		}()
		ctx.Next()
	})

	api.GET("/flights", s.getFlight)
	api.GET("/downloads", s.listDownloads)

	// Debug endpoint to verify API is working
	api.GET("/ping", func(ctx *gin.Context) {
		utils.DebugLog("API ping received")
		ctx.JSON(http.StatusOK, types.APIResponse{
			Success: true,
			Message: "API is running",
			Data: map[string]interface{}{
				"time":         time.Now().UTC().Format(time.RFC3339),
				"db_connected": s.deps.History != nil,
			},
		})
	})
}

// apiKeyAuth middleware validates the internal API key
func (s *Server) apiKeyAuth() gin.HandlerFunc {
	want := []byte(s.cfg.Key.Reveal())
	return func(ctx *gin.Context) {
		key := ctx.GetHeader("X-API-Key")
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(key), want) != 1 {
			utils.DebugLog("API authentication failed - invalid key: %s", utils.MaskString(key))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error:   "Invalid API key",
			})
			return
		}
		ctx.Next()
	}
}
