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

package types

import "time"

// DownloadStatus is the outcome of a download job.
type DownloadStatus string

const (
	DownloadCompleted DownloadStatus = "completed"
	DownloadFailed    DownloadStatus = "failed"
)

// Valid reports whether s is a known status.
func (s DownloadStatus) Valid() bool {
	return s == DownloadCompleted || s == DownloadFailed
}

// DownloadRecord is one row of download history.
type DownloadRecord struct {
	ID          string         `json:"id"`
	DiscordID   string         `json:"discord_id"`   // who pressed the button
	ChannelID   string         `json:"channel_id"`   // where the link was posted
	SourceURL   string         `json:"source_url"`   // link handed to yt-dlp
	Title       string         `json:"title"`        // title reported by the extractor
	FilePath    string         `json:"file_path"`    // final location on disk
	SizeBytes   int64          `json:"size_bytes"`   // size on disk
	ClipSection string         `json:"clip_section"` // "1:00-1:30" for clips, empty otherwise
	Status      DownloadStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FlightStatus answers whether an operation key is busy.
type FlightStatus struct {
	Key      string `json:"key"`
	Kind     string `json:"kind"`
	Subject  string `json:"subject"`
	Actor    string `json:"actor"`
	InFlight bool   `json:"in_flight"`
}

// APIResponse is a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
