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
	"fmt"

	"github.com/lucasduport/clipshare/pkg/utils"
)

// initSchema creates database tables if they don't exist
func (m *DBManager) initSchema(ctx context.Context) error {
	utils.InfoLog("Initializing database schema")

	if m == nil || m.db == nil {
		return ErrNotInitialized
	}

	if _, err := m.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS download_history (
            id UUID PRIMARY KEY,
            discord_id TEXT NOT NULL,
            channel_id TEXT NOT NULL,
            source_url TEXT NOT NULL,
            title TEXT,
            file_path TEXT,
            size_bytes BIGINT DEFAULT 0,
            clip_section TEXT,
            status TEXT NOT NULL,
            error TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `); err != nil {
		utils.ErrorLog("Failed to create download_history table: %v", err)
		return fmt.Errorf("failed to create download_history table: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS download_history_created_at_idx
            ON download_history (created_at DESC)
    `); err != nil {
		utils.ErrorLog("Failed to create download_history index: %v", err)
		return fmt.Errorf("failed to create download_history index: %w", err)
	}

	utils.InfoLog("Database schema initialized successfully")
	return nil
}
