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
	"github.com/lucasduport/clipshare/pkg/database"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// command definitions
func (b *Bot) commandSpecs() []*discordgo.ApplicationCommand {
	kinds := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "download", Value: customIDDownload},
		{Name: "clip", Value: customIDClip},
		{Name: "plex refresh", Value: customIDPlexRefresh},
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "recent",
			Description: "Show the latest downloads",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "How many (1-50)", MinValue: floatPtr(1), MaxValue: float64(database.MaxRecentDownloads)},
			},
		},
		{
			Name:        "inflight",
			Description: "Check whether a download, clip or refresh is running (admin)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "kind", Description: "Operation", Required: true, Choices: kinds},
				{Type: discordgo.ApplicationCommandOptionString, Name: "subject", Description: "Source message ID, or Plex section for refresh", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Who pressed the button (defaults to you)"},
			},
		},
	}
}

// registerSlashCommands registers commands globally or in a dev guild.
func (b *Bot) registerSlashCommands() error {
	if b.session == nil {
		return fmt.Errorf("session not initialized")
	}
	if b.session.State == nil || b.session.State.User == nil {
		return fmt.Errorf("session user not ready")
	}
	appID := b.session.State.User.ID
	guildID := b.devGuildID
	// If no explicit dev guild, and the bot is in exactly one guild, auto-scope to that for fast iteration.
	if guildID == "" && len(b.session.State.Guilds) == 1 {
		guildID = b.session.State.Guilds[0].ID
		b.devGuildID = guildID
		utils.InfoLog("Slash commands: auto-using guild %s for development registration", guildID)
	}
	// BulkOverwrite avoids duplicates and keeps commands in sync
	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, guildID, b.commandSpecs())
	if err != nil {
		return fmt.Errorf("bulk overwrite: %w", err)
	}
	b.registeredCommands = cmds
	scope := "global"
	if guildID != "" {
		scope = "guild:" + guildID
	}
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	utils.InfoLog("Slash commands registered (%s): %v", scope, names)
	return nil
}

// unregisterSlashCommands removes commands from the dev guild. Global deletions are slow, so skip if global.
func (b *Bot) unregisterSlashCommands() error {
	if b.session == nil || len(b.registeredCommands) == 0 || b.devGuildID == "" {
		return nil
	}
	if b.session.State == nil || b.session.State.User == nil {
		return nil
	}
	appID := b.session.State.User.ID
	var errs []error
	for _, cmd := range b.registeredCommands {
		if err := b.session.ApplicationCommandDelete(appID, b.devGuildID, cmd.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", cmd.Name, err))
		}
	}
	b.registeredCommands = nil
	return errors.Join(errs...)
}

// handleApplicationCommand routes slash commands.
func (b *Bot) handleApplicationCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.handleCommand(s, i.Interaction)
}

func (b *Bot) handleCommand(api discordAPI, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "recent":
		b.handleRecent(api, i, int(optInt(data, "count", 10)))
	case "inflight":
		if !b.hasAdminRole(i.Member) {
			respondEphemeral(api, i, fail("Not allowed", "This command is restricted to admins."))
			return
		}
		actor := optUserID(data, "user")
		if actor == "" {
			actor = interactionUserID(i)
		}
		key := flight.NewKey(optString(data, "kind"), optString(data, "subject"), actor)
		b.handleInFlight(api, i, key)
	default:
		utils.DebugLog("Discord: unknown command %q", data.Name)
	}
}

func (b *Bot) handleRecent(api discordAPI, i *discordgo.Interaction, count int) {
	if b.history == nil {
		respondEphemeral(api, i, warn("History disabled", "No database is configured."))
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()
	recs, err := b.history.RecentDownloads(ctx, count)
	switch {
	case errors.Is(err, database.ErrNotInitialized):
		respondEphemeral(api, i, warn("History disabled", "No database is configured."))
	case err != nil:
		utils.ErrorLog("Discord: listing recent downloads: %v", err)
		respondEphemeral(api, i, fail("History unavailable", "Could not read download history."))
	default:
		respondEphemeral(api, i, recentEmbed(recs))
	}
}

func (b *Bot) handleInFlight(api discordAPI, i *discordgo.Interaction, key flight.Key) {
	if b.flights.IsInFlight(key) {
		respondEphemeral(api, i, warn("Busy", fmt.Sprintf("`%s` is running.", key)))
		return
	}
	respondEphemeral(api, i, info("Idle", fmt.Sprintf("`%s` is not running.", key)))
}
