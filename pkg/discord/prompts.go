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
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// handleMessageCreate offers a prompt for the first media link in a message.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.promptForLinks(s, m.Message)
}

func (b *Bot) promptForLinks(api discordAPI, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if !b.cfg.ChannelAllowed(m.ChannelID) {
		return
	}
	links := media.ExtractLinks(m.Content)
	if len(links) == 0 {
		return
	}
	link := links[0]

	msg, err := api.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{linkPromptEmbed(link, m.Author.ID)},
		Components:      promptButtons(),
		Reference:       m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		utils.ErrorLog("Discord: failed to send link prompt in %s: %v", m.ChannelID, err)
		return
	}
	b.storePrompt(&linkPrompt{
		PromptID:        msg.ID,
		SourceMessageID: m.ID,
		ChannelID:       m.ChannelID,
		AuthorID:        m.Author.ID,
		URL:             link,
		Created:         time.Now(),
	})
	utils.DebugLog("Discord: prompt %s for %s (%s)", msg.ID, link, m.ID)
}

// handleMessageUpdate follows edits of a prompted message: a changed first
// link updates the prompt, a removed link withdraws it.
func (b *Bot) handleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	b.followEdit(s, m.Message)
}

func (b *Bot) followEdit(api discordAPI, m *discordgo.Message) {
	// Link unfurls arrive as updates without an edit timestamp or content.
	if m == nil || m.EditedTimestamp == nil {
		return
	}
	p := b.promptForSource(m.ID)
	if p == nil {
		return
	}
	links := media.ExtractLinks(m.Content)
	if len(links) == 0 {
		b.dropPrompt(p.PromptID)
		if err := api.ChannelMessageDelete(p.ChannelID, p.PromptID); err != nil {
			utils.WarnLog("Discord: failed to delete prompt %s: %v", p.PromptID, err)
		}
		return
	}
	if links[0] == p.URL {
		return
	}

	b.setPromptURL(p.PromptID, links[0])

	embeds := []*discordgo.MessageEmbed{linkPromptEmbed(links[0], p.AuthorID)}
	if _, err := api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      p.PromptID,
		Channel: p.ChannelID,
		Embeds:  &embeds,
	}); err != nil {
		utils.WarnLog("Discord: failed to update prompt %s: %v", p.PromptID, err)
	}
}

// handleMessageDelete drops a prompt when either it or its source is deleted.
func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m == nil || m.Message == nil {
		return
	}
	b.forgetMessage(m.ID)
}

func (b *Bot) forgetMessage(messageID string) {
	if b.dropPrompt(messageID) {
		return
	}
	if p := b.promptForSource(messageID); p != nil {
		b.dropPrompt(p.PromptID)
	}
}

func (b *Bot) storePrompt(p *linkPrompt) {
	b.promptLock.Lock()
	b.prompts[p.PromptID] = p
	b.promptLock.Unlock()
}

// lookupPrompt returns a copy of the prompt context, or nil once it expired.
func (b *Bot) lookupPrompt(promptID string) *linkPrompt {
	b.promptLock.RLock()
	defer b.promptLock.RUnlock()
	p, ok := b.prompts[promptID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (b *Bot) promptForSource(sourceID string) *linkPrompt {
	b.promptLock.RLock()
	defer b.promptLock.RUnlock()
	for _, p := range b.prompts {
		if p.SourceMessageID == sourceID {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (b *Bot) setPromptURL(promptID, url string) {
	b.promptLock.Lock()
	defer b.promptLock.Unlock()
	if p, ok := b.prompts[promptID]; ok {
		p.URL = url
	}
}

func (b *Bot) dropPrompt(promptID string) bool {
	b.promptLock.Lock()
	defer b.promptLock.Unlock()
	if _, ok := b.prompts[promptID]; !ok {
		return false
	}
	delete(b.prompts, promptID)
	return true
}
