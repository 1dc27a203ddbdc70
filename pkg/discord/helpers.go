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
	"strings"

	"github.com/bwmarrin/discordgo"
)

// interactionUserID extracts user ID from an interaction.
func interactionUserID(i *discordgo.Interaction) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// clipModalID builds the modal custom ID carrying the prompt message ID.
func clipModalID(promptID string) string {
	return modalIDClipPrefix + promptID
}

// parseClipModalID returns the prompt message ID from a clip modal ID.
func parseClipModalID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, modalIDClipPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(customID, modalIDClipPrefix)
	return id, id != ""
}

// modalValues flattens the text inputs of a modal submit by custom ID.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	out := make(map[string]string)
	for _, c := range data.Components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		default:
			continue
		}
		for _, inner := range row {
			switch ti := inner.(type) {
			case *discordgo.TextInput:
				out[ti.CustomID] = strings.TrimSpace(ti.Value)
			case discordgo.TextInput:
				out[ti.CustomID] = strings.TrimSpace(ti.Value)
			}
		}
	}
	return out
}

// Helpers to extract slash command options
func optString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, o := range data.Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

func optInt(data discordgo.ApplicationCommandInteractionData, name string, def int64) int64 {
	for _, o := range data.Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionInteger {
			return o.IntValue()
		}
	}
	return def
}

func optUserID(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, o := range data.Options {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionUser {
			if u := o.UserValue(nil); u != nil {
				return u.ID
			}
		}
	}
	return ""
}

func floatPtr(v float64) *float64 { return &v }
