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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// HistoryReader lists past downloads.
type HistoryReader interface {
	RecentDownloads(ctx context.Context, limit int) ([]types.DownloadRecord, error)
}

// Deps are what the internal API reports on.
type Deps struct {
	Flights  *flight.Registry
	History  HistoryReader       // nil when no database is configured
	Gatherer prometheus.Gatherer // nil disables /metrics
}

// Server is the internal HTTP API.
type Server struct {
	cfg    config.APIConfig
	deps   Deps
	router *gin.Engine
}

// New builds the router. Nothing listens until Serve.
func New(cfg config.APIConfig, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	if cfg.Key == "" {
		utils.WarnLog("INTERNAL_API_KEY not set, every internal API call will be rejected")
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("X-API-Key")
	router.Use(cors.New(corsCfg))

	s.setupInternalAPI(router)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	s.router = router
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr is the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLog("[clipshare] Internal API listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("internal api: %w", err)
	case <-ctx.Done():
	}

	utils.InfoLog("[clipshare] Internal API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("internal api shutdown: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		utils.DebugLog("API %s %s -> %d (%s)", ctx.Request.Method, ctx.Request.URL.Path,
			ctx.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
