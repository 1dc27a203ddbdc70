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
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/config"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// NewBot creates a new Discord bot. The session is not opened until Start.
func NewBot(cfg *config.BotConfig, deps Deps) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("discord: nil config")
	}
	if deps.Flights == nil || deps.Downloader == nil {
		return nil, errors.New("discord: flight registry and downloader are required")
	}
	dg, err := discordgo.New("Bot " + cfg.Discord.Token.Reveal())
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}

	bot := newBot(cfg, deps)
	bot.session = dg

	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleMessageUpdate)
	dg.AddHandler(bot.handleMessageDelete)
	dg.AddHandler(bot.handleInteractionCreate)
	dg.AddHandler(bot.handleApplicationCommand)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s != nil && s.State != nil && s.State.User != nil {
			utils.InfoLog("Discord ready: %s (%s)", s.State.User.Username, s.State.User.ID)
		} else {
			utils.InfoLog("Discord ready: session state not populated yet")
		}
	})

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	return bot, nil
}

// newBot wires everything but the gateway session.
func newBot(cfg *config.BotConfig, deps Deps) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		cfg:        cfg,
		devGuildID: cfg.Discord.DevGuildID,
		flights:    deps.Flights,
		downloader: deps.Downloader,
		history:    deps.History,
		library:    deps.Library,
		metrics:    deps.Metrics,
		prompts:    make(map[string]*linkPrompt),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start opens the gateway and registers slash commands.
func (b *Bot) Start() error {
	utils.InfoLog("Starting Discord bot with intents: Guilds, GuildMessages, DirectMessages, MessageContent")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	if err := b.registerSlashCommands(); err != nil {
		utils.ErrorLog("Failed to register slash commands: %v", err)
	}
	if b.devGuildID == "" {
		utils.WarnLog("Slash commands registered globally; this can take up to 1 hour to appear. Set DISCORD_DEV_GUILD_ID to register instantly in a guild during development.")
	}
	go b.cleanupRoutine()
	return nil
}

// Stop cancels running jobs and closes the gateway.
func (b *Bot) Stop() {
	utils.InfoLog("Stopping Discord bot")
	b.cancel()
	if err := b.unregisterSlashCommands(); err != nil {
		utils.WarnLog("Failed to unregister slash commands: %v", err)
	}
	if b.session != nil {
		if err := b.session.Close(); err != nil {
			utils.WarnLog("Discord: closing session: %v", err)
		}
	}
}

// cleanupRoutine periodically drops expired prompts
func (b *Bot) cleanupRoutine() {
	ticker := time.NewTicker(b.cfg.Discord.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case now := <-ticker.C:
			if n := b.cleanupExpiredPrompts(now); n > 0 {
				utils.DebugLog("Discord: dropped %d expired prompt(s)", n)
			}
		}
	}
}

// cleanupExpiredPrompts removes prompts older than the configured expiry.
func (b *Bot) cleanupExpiredPrompts(now time.Time) int {
	b.promptLock.Lock()
	defer b.promptLock.Unlock()
	cutoff := now.Add(-b.cfg.Discord.PromptExpiry)
	n := 0
	for id, p := range b.prompts {
		if p.Created.Before(cutoff) {
			delete(b.prompts, id)
			n++
		}
	}
	return n
}
