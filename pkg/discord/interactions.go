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

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// handleInteractionCreate processes button presses and modal submits.
func (b *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i.Interaction)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(s, i.Interaction)
	}
}

func (b *Bot) handleComponent(api discordAPI, i *discordgo.Interaction) {
	if i.Message == nil {
		return
	}
	userID := interactionUserID(i)
	switch customID := i.MessageComponentData().CustomID; customID {
	case customIDDownload:
		p := b.lookupPrompt(i.Message.ID)
		if p == nil {
			respondEphemeral(api, i, warn("Prompt expired", "Post the link again to get a new prompt."))
			return
		}
		j := job{Kind: customIDDownload, UserID: userID, ChannelID: p.ChannelID, URL: p.URL}
		b.startJob(api, i, flight.NewKey(customIDDownload, p.SourceMessageID, userID), j)

	case customIDClip:
		p := b.lookupPrompt(i.Message.ID)
		if p == nil {
			respondEphemeral(api, i, warn("Prompt expired", "Post the link again to get a new prompt."))
			return
		}
		if err := api.InteractionRespond(i, clipModal(p.PromptID)); err != nil {
			utils.WarnLog("Discord: failed to open clip modal: %v", err)
		}

	case customIDPlexRefresh:
		b.refreshLibrary(api, i, userID)

	default:
		utils.DebugLog("Discord: ignoring component %q", customID)
	}
}

func (b *Bot) handleModalSubmit(api discordAPI, i *discordgo.Interaction) {
	data := i.ModalSubmitData()
	promptID, ok := parseClipModalID(data.CustomID)
	if !ok {
		utils.DebugLog("Discord: ignoring modal %q", data.CustomID)
		return
	}
	p := b.lookupPrompt(promptID)
	if p == nil {
		respondEphemeral(api, i, warn("Prompt expired", "Post the link again to get a new prompt."))
		return
	}

	values := modalValues(data)
	rng, err := media.ParseClipRange(values[inputIDClipStart], values[inputIDClipEnd])
	if err == nil {
		err = rng.Validate(b.cfg.Media.MaxClipLength)
	}
	if err != nil {
		respondEphemeral(api, i, fail("Invalid clip", err.Error()))
		return
	}

	userID := interactionUserID(i)
	j := job{Kind: customIDClip, UserID: userID, ChannelID: p.ChannelID, URL: p.URL, Clip: &rng}
	b.startJob(api, i, flight.NewKey(customIDClip, p.SourceMessageID, userID), j)
}

// startJob runs a download or clip under the flight guard and reports back.
func (b *Bot) startJob(api discordAPI, i *discordgo.Interaction, key flight.Key, j job) {
	err := b.guarded(api, i, key, deferEphemeral(), func(ctx context.Context) error {
		res, err := b.runJob(ctx, j)
		b.deliver(api, i, j, res, err)
		return err
	})
	if err != nil && !errors.Is(err, flight.ErrInFlight) {
		utils.DebugLog("Discord: %s ended with error: %v", key, err)
	}
}

func (b *Bot) refreshLibrary(api discordAPI, i *discordgo.Interaction, userID string) {
	if b.library == nil || !b.library.Enabled() {
		respondEphemeral(api, i, warn("Plex not configured", "Library refresh is unavailable."))
		return
	}
	sectionID := b.cfg.Plex.SectionID
	key := flight.NewKey(customIDPlexRefresh, sectionID, userID)
	_ = b.guarded(api, i, key, deferEphemeral(), func(ctx context.Context) error {
		if err := b.library.RefreshSection(ctx, sectionID); err != nil {
			editResponse(api, i, fail("Plex refresh failed", err.Error()))
			return err
		}
		editResponse(api, i, success("Plex refresh started", fmt.Sprintf("Section %s is rescanning.", sectionID)))
		return nil
	})
}
