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

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CredentialString is a secret that prints masked.
type CredentialString string

func (c CredentialString) String() string {
	if c == "" {
		return ""
	}
	return "********"
}

// Reveal returns the raw secret.
func (c CredentialString) Reveal() string { return string(c) }

// DiscordConfig holds the bot identity and where it listens.
type DiscordConfig struct {
	Token           CredentialString
	AdminRoleID     string
	DevGuildID      string
	AllowedChannels []string // empty means every channel
	PromptExpiry    time.Duration
	CleanupInterval time.Duration
}

// MediaConfig controls yt-dlp.
type MediaConfig struct {
	YTDLPPath       string
	DownloadDir     string
	DownloadTimeout time.Duration
	MaxClipLength   time.Duration
	Format          string
}

// PlexConfig points at the Plex server whose library receives downloads.
type PlexConfig struct {
	BaseURL   string
	Token     CredentialString
	SectionID string
	Timeout   time.Duration
}

// APIConfig is the internal HTTP API.
type APIConfig struct {
	Host string
	Port int
	Key  CredentialString
}

// DatabaseConfig is the optional PostgreSQL download history.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password CredentialString
	SSLMode  string
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		dsnQuote(d.Host), d.Port, dsnQuote(d.Name), dsnQuote(d.User), dsnQuote(d.Password.Reveal()), dsnQuote(sslmode))
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dsnQuote wraps a keyword value in single quotes so spaces and quotes survive.
func dsnQuote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// BotConfig is everything the clipshare process needs.
type BotConfig struct {
	Discord  DiscordConfig
	Media    MediaConfig
	Plex     PlexConfig
	API      APIConfig
	Database DatabaseConfig
}

// ChannelAllowed reports whether the bot should react in channelID.
func (c *BotConfig) ChannelAllowed(channelID string) bool {
	if len(c.Discord.AllowedChannels) == 0 {
		return true
	}
	for _, id := range c.Discord.AllowedChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// Validate reports every problem found, joined.
func (c *BotConfig) Validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord token is required"))
	}
	if strings.TrimSpace(c.Media.DownloadDir) == "" {
		errs = append(errs, errors.New("download directory is required"))
	}
	if c.Media.YTDLPPath == "" {
		errs = append(errs, errors.New("yt-dlp path is required"))
	}
	if c.Media.DownloadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("download timeout must be positive, got %s", c.Media.DownloadTimeout))
	}
	if c.Media.MaxClipLength <= 0 {
		errs = append(errs, fmt.Errorf("max clip length must be positive, got %s", c.Media.MaxClipLength))
	}
	if c.Discord.PromptExpiry <= 0 {
		errs = append(errs, fmt.Errorf("prompt expiry must be positive, got %s", c.Discord.PromptExpiry))
	}
	if c.Discord.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("cleanup interval must be positive, got %s", c.Discord.CleanupInterval))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api port out of range: %d", c.API.Port))
	}
	if c.Plex.BaseURL != "" && c.Plex.SectionID == "" {
		errs = append(errs, errors.New("plex section id is required when plex is configured"))
	}
	return errors.Join(errs...)
}
