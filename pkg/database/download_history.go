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
	"strings"

	"github.com/google/uuid"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// MaxRecentDownloads caps RecentDownloads.
const MaxRecentDownloads = 50

// RecordDownload stores the outcome of one download or clip job.
// A missing ID is filled in.
func (m *DBManager) RecordDownload(ctx context.Context, rec *types.DownloadRecord) error {
	if !m.IsInitialized() {
		return ErrNotInitialized
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	utils.DebugLog("Database: Recording download %s for %s (%s)", rec.ID, rec.DiscordID, rec.Status)

	err := m.db.QueryRowContext(ctx, `
        INSERT INTO download_history
          (id, discord_id, channel_id, source_url, title, file_path, size_bytes, clip_section, status, error)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `, rec.ID, rec.DiscordID, rec.ChannelID, rec.SourceURL, rec.Title, rec.FilePath,
		rec.SizeBytes, rec.ClipSection, string(rec.Status), rec.Error).Scan(&rec.CreatedAt)
	if err != nil {
		utils.ErrorLog("Database error recording download: %v", err)
		return fmt.Errorf("record download: %w", err)
	}
	return nil
}

// RecentDownloads returns up to limit records, newest first.
func (m *DBManager) RecentDownloads(ctx context.Context, limit int) ([]types.DownloadRecord, error) {
	if !m.IsInitialized() {
		return nil, ErrNotInitialized
	}
	limit = clampLimit(limit)

	rows, err := m.db.QueryContext(ctx, `
        SELECT id, discord_id, channel_id, source_url, COALESCE(title, ''), COALESCE(file_path, ''),
               COALESCE(size_bytes, 0), COALESCE(clip_section, ''), status, COALESCE(error, ''), created_at
        FROM download_history
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		utils.ErrorLog("Database error listing downloads: %v", err)
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	out := make([]types.DownloadRecord, 0, limit)
	for rows.Next() {
		var rec types.DownloadRecord
		var status string
		if err := rows.Scan(&rec.ID, &rec.DiscordID, &rec.ChannelID, &rec.SourceURL, &rec.Title,
			&rec.FilePath, &rec.SizeBytes, &rec.ClipSection, &status, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		rec.Status = types.DownloadStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > MaxRecentDownloads {
		return MaxRecentDownloads
	}
	return limit
}

func validateRecord(rec *types.DownloadRecord) error {
	if rec == nil {
		return fmt.Errorf("record download: nil record")
	}
	var missing []string
	if rec.DiscordID == "" {
		missing = append(missing, "discord_id")
	}
	if rec.ChannelID == "" {
		missing = append(missing, "channel_id")
	}
	if rec.SourceURL == "" {
		missing = append(missing, "source_url")
	}
	if !rec.Status.Valid() {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return fmt.Errorf("record download: missing %s", strings.Join(missing, ", "))
	}
	return nil
}
