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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// ErrNotInitialized is returned by every method of a nil or closed manager.
var ErrNotInitialized = errors.New("database not initialized")

// DBManager handles database operations
type DBManager struct {
	db          *sql.DB
	initialized bool
}

// NewDBManager opens the PostgreSQL download history.
func NewDBManager(ctx context.Context, cfg config.DatabaseConfig) (*DBManager, error) {
	utils.InfoLog("Initializing PostgreSQL database connection")
	utils.DebugLog("Connecting to PostgreSQL: host=%s port=%d dbname=%s user=%s", cfg.Host, cfg.Port, cfg.Name, cfg.User)

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		utils.ErrorLog("Failed to connect to database: %v", err)
		db.Close()
		return nil, utils.ErrorWithLocation(fmt.Errorf("database connection test failed: %w", err))
	}
	utils.InfoLog("Database connection successful")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	manager := &DBManager{db: db}
	if err := manager.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	manager.initialized = true
	return manager, nil
}

// IsInitialized returns whether the database is initialized
func (m *DBManager) IsInitialized() bool {
	return m != nil && m.initialized && m.db != nil
}

// Close closes the database connection
func (m *DBManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	utils.InfoLog("Closing database connection")
	m.initialized = false
	return m.db.Close()
}
