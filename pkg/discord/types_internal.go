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

package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/metrics"
	"github.com/lucasduport/clipshare/pkg/types"
)

// Component and modal custom IDs. The download, clip and refresh IDs double
// as flight key kinds.
const (
	customIDDownload    = "media_download"
	customIDClip        = "media_clip"
	customIDPlexRefresh = "plex_refresh"
	modalIDClipPrefix   = "media_clip_modal:"
	inputIDClipStart    = "clip_start"
	inputIDClipEnd      = "clip_end"
)

// HistoryStore keeps a record of finished jobs.
type HistoryStore interface {
	RecordDownload(ctx context.Context, rec *types.DownloadRecord) error
	RecentDownloads(ctx context.Context, limit int) ([]types.DownloadRecord, error)
}

// LibraryRefresher tells the media server to pick up new files.
type LibraryRefresher interface {
	Enabled() bool
	RefreshSection(ctx context.Context, sectionID string) error
}

// discordAPI is the slice of *discordgo.Session the interaction flows use.
type discordAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Deps are the collaborators the bot drives.
type Deps struct {
	Flights    *flight.Registry
	Downloader media.Downloader
	History    HistoryStore
	Library    LibraryRefresher
	Metrics    *metrics.Metrics
}

// Bot represents the Discord bot and its stateful maps for interactive flows.
type Bot struct {
	session    *discordgo.Session
	cfg        *config.BotConfig
	devGuildID string

	flights    *flight.Registry
	downloader media.Downloader
	history    HistoryStore
	library    LibraryRefresher
	metrics    *metrics.Metrics

	registeredCommands []*discordgo.ApplicationCommand

	// Link prompts by prompt message ID
	prompts    map[string]*linkPrompt
	promptLock sync.RWMutex

	ctx    context.Context // cancelled on Stop; parent of every job
	cancel context.CancelFunc
}

// Context for a link prompt (embed + Download/Clip buttons)
type linkPrompt struct {
	PromptID        string
	SourceMessageID string
	ChannelID       string
	AuthorID        string
	URL             string
	Created         time.Time
}

// job is one guarded download or clip.
type job struct {
	Kind      string
	UserID    string
	ChannelID string
	URL       string
	Clip      *media.ClipRange
}
