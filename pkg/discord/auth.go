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

import "github.com/bwmarrin/discordgo"

// hasAdminRole checks if the interaction member has the configured admin role.
func (b *Bot) hasAdminRole(member *discordgo.Member) bool {
	if b.cfg.Discord.AdminRoleID == "" || member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		if roleID == b.cfg.Discord.AdminRoleID {
			return true
		}
	}
	return false
}
