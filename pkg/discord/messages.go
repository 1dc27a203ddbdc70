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
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasduport/clipshare/pkg/media"
	"github.com/lucasduport/clipshare/pkg/types"
	"github.com/lucasduport/clipshare/pkg/utils"
)

// Common embed colors
const (
	colorInfo    = 0x5BC0DE // teal-ish
	colorSuccess = 0x28A745 // green
	colorWarn    = 0xFFC107 // amber
	colorError   = 0xDC3545 // red
)

// newEmbed builds a styled embed, skipping nil fields.
func newEmbed(color int, title, description string, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(fields) > 0 {
		embed.Fields = make([]*discordgo.MessageEmbedField, 0, len(fields))
		for _, f := range fields {
			if f != nil {
				embed.Fields = append(embed.Fields, f)
			}
		}
	}
	return embed
}

// Convenience wrappers with fixed color themes.
func info(title, desc string, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return newEmbed(colorInfo, title, desc, fields...)
}
func success(title, desc string, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return newEmbed(colorSuccess, title, desc, fields...)
}
func warn(title, desc string, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return newEmbed(colorWarn, title, desc, fields...)
}
func fail(title, desc string, fields ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return newEmbed(colorError, title, desc, fields...)
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if value == "" {
		return nil
	}
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

// respondEphemeral answers an interaction with an embed only the invoker sees.
func respondEphemeral(api discordAPI, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	err := api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		utils.WarnLog("Discord: failed to respond to interaction: %v", err)
	}
}

// editResponse replaces the deferred "thinking" reply with an embed.
func editResponse(api discordAPI, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		utils.WarnLog("Discord: failed to edit interaction response: %v", err)
	}
}

// deferEphemeral acknowledges now and lets the reply be edited later.
func deferEphemeral() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
}

func linkPromptEmbed(link, authorID string) *discordgo.MessageEmbed {
	return info("Media link detected",
		fmt.Sprintf("<@%s> shared %s\nPress **Download** to add it to the library, or **Clip** to keep a section.", authorID, link),
		field("Source", media.Host(link), true),
	)
}

func promptButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Download", Style: discordgo.PrimaryButton, CustomID: customIDDownload, Emoji: &discordgo.ComponentEmoji{Name: "⬇️"}},
			discordgo.Button{Label: "Clip", Style: discordgo.SecondaryButton, CustomID: customIDClip, Emoji: &discordgo.ComponentEmoji{Name: "✂️"}},
		}},
	}
}

func refreshButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Refresh Plex", Style: discordgo.SecondaryButton, CustomID: customIDPlexRefresh},
		}},
	}
}

// clipModal asks for the start and end of a clip.
func clipModal(promptID string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: clipModalID(promptID),
			Title:    "Clip a section",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: inputIDClipStart, Label: "Start (e.g. 1:05 or 65)", Style: discordgo.TextInputShort, Required: true, MaxLength: 12},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: inputIDClipEnd, Label: "End (e.g. 1:35 or 95)", Style: discordgo.TextInputShort, Required: true, MaxLength: 12},
				}},
			},
		},
	}
}

// completionEmbed announces a finished job in the channel.
func completionEmbed(j job, res *media.Result) *discordgo.MessageEmbed {
	title := "Download complete"
	if j.Clip != nil {
		title = "Clip complete"
	}
	return success(title,
		fmt.Sprintf("**%s** was added for <@%s>.", media.EscapeMarkdown(media.Truncate(res.Title, 200)), j.UserID),
		field("Length", media.FormatTimestamp(res.Duration), true),
		field("Size", utils.HumanBytes(res.Filesize), true),
		clipField(j.Clip),
		field("Source", j.URL, false),
	)
}

func clipField(c *media.ClipRange) *discordgo.MessageEmbedField {
	if c == nil {
		return nil
	}
	return field("Section", c.String(), true)
}

func jobFailedEmbed(j job, err error) *discordgo.MessageEmbed {
	return fail("Download failed", fmt.Sprintf("Could not fetch %s", j.URL),
		field("Error", media.Truncate(err.Error(), 1000), false))
}

// recentEmbed lists download history, newest first.
func recentEmbed(recs []types.DownloadRecord) *discordgo.MessageEmbed {
	if len(recs) == 0 {
		return info("Recent downloads", "Nothing downloaded yet.")
	}
	var sb strings.Builder
	for _, r := range recs {
		mark := "✅"
		if r.Status != types.DownloadCompleted {
			mark = "❌"
		}
		title := r.Title
		if title == "" {
			title = r.SourceURL
		}
		fmt.Fprintf(&sb, "%s **%s**", mark, media.EscapeMarkdown(media.Truncate(title, 80)))
		if r.ClipSection != "" {
			fmt.Fprintf(&sb, " `%s`", r.ClipSection)
		}
		fmt.Fprintf(&sb, " by <@%s> <t:%d:R>\n", r.DiscordID, r.CreatedAt.Unix())
	}
	return info("Recent downloads", media.Truncate(sb.String(), 4000))
}
